// Package app provides router configuration.
package app

import (
	"context"

	"github.com/printops/plate-service/config"
	"github.com/printops/plate-service/internal/http"
	"github.com/printops/plate-service/internal/service"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	Handler       *http.Handler
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter initializes HTTP handlers and router configuration.
func InitializeRouter(services *ServiceComponents, dbComponents *DatabaseComponents, cfg config.Config) *RouterComponents {
	var history service.HistoryService
	if dbComponents != nil {
		history = dbComponents.History
	}

	handler := http.NewHandler(services.Queue, history)
	healthHandler := http.NewHealthHandler()

	if dbComponents != nil {
		if dbComponents.RunsCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_runs", dbComponents.RunsCircuitBreaker)
		}
		if dbComponents.DB != nil {
			db := dbComponents.DB
			healthHandler.RegisterChecker("mongodb", http.HealthCheckerFunc(func() error {
				return db.HealthCheck(context.Background())
			}))
		}
	}

	routerCfg := http.RouterConfig{
		RateLimit:   cfg.Server.RateLimit,
		RateWindow:  cfg.Server.RateWindow,
		EnableAuth:  cfg.Auth.Enabled,
		APIKeys:     cfg.Auth.APIKeys,
		CORSOrigins: cfg.Server.CORSOrigins,
		SwaggerUser: cfg.Server.SwaggerUser,
		SwaggerPass: cfg.Server.SwaggerPass,
	}

	return &RouterComponents{
		Handler:       handler,
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}
