// Package app provides database initialization and setup.
package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/printops/plate-service/config"
	"github.com/printops/plate-service/internal/circuitbreaker"
	"github.com/printops/plate-service/internal/logger"
	"github.com/printops/plate-service/internal/repository"
	"github.com/printops/plate-service/internal/service"
)

// DatabaseComponents holds run history persistence components.
type DatabaseComponents struct {
	DB                 *repository.MongoDB
	History            service.HistoryService
	RunsCircuitBreaker *circuitbreaker.CircuitBreaker
}

// InitializeDatabase initializes the MongoDB connection and the run history
// service. Returns nil if persistence is disabled or the connection fails;
// the service runs fine without it.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	db, err := repository.NewMongoDB(cfg.URI, cfg.DatabaseName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing without run history")
		return nil
	}

	log.Info().Msg("Connected to MongoDB")

	if err := db.SetRunsTTL(context.Background(), cfg.RunsTTLDays); err != nil {
		log.Warn().Err(err).Msg("Failed to set runs TTL index (may already exist)")
	}

	runsCB := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             "mongodb-runs",
	})

	runsRepo := repository.NewRunsRepository(db)
	runsRepoWithCB := repository.NewRunsRepositoryWithCircuitBreaker(runsRepo, runsCB)
	history := service.NewHistoryService(runsRepoWithCB, logger.ForComponent("history"))

	return &DatabaseComponents{
		DB:                 db,
		History:            history,
		RunsCircuitBreaker: runsCB,
	}
}
