package optimizer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/printops/plate-service/internal/domain/model"
)

// Phase labels the coarse-grained progress checkpoints reported while a
// run executes.
type Phase string

const (
	// PhaseInitializing covers seeding and model construction.
	PhaseInitializing Phase = "initializing"
	// PhaseOptimizing covers the search itself.
	PhaseOptimizing Phase = "optimizing"
)

// ProgressFunc receives phase transitions of an optimization run.
type ProgressFunc func(phase Phase)

// Service runs plate optimizations end to end: seed, model, search,
// validate. Each run owns its own model and tracker; no state is shared
// across runs.
type Service struct {
	driver             *Driver
	sheetsMax          int
	improvementTimeout time.Duration
	log                zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDriver overrides the search driver configuration.
func WithDriver(d *Driver) ServiceOption {
	return func(s *Service) {
		if d != nil {
			s.driver = d
		}
	}
}

// WithSheetsMax overrides the per-plate sheets upper bound.
func WithSheetsMax(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.sheetsMax = limit
		}
	}
}

// WithServiceImprovementTimeout overrides the large-instance improvement
// timeout applied by the tracker.
func WithServiceImprovementTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.improvementTimeout = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// NewService creates an optimizer service with default search settings.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		driver:             NewDriver(),
		sheetsMax:          DefaultSheetsMax,
		improvementTimeout: DefaultImprovementTimeout,
		log:                log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one optimization: seeds the warm start, builds the
// constraint model, drives the search, and validates the result. It
// returns ErrNoSolution when the search found nothing feasible and an
// ErrInvalidInstance-wrapped error when the instance cannot be modeled.
func (s *Service) Run(ctx context.Context, inst model.Instance, progress ProgressFunc) (*model.Solution, error) {
	if progress != nil {
		progress(PhaseInitializing)
	}

	seed := Seed(inst.Tags, inst.UpsPerPlate, inst.PlateCount)

	pm, err := BuildModelWithSheetsMax(inst, seed, s.sheetsMax)
	if err != nil {
		return nil, err
	}

	if progress != nil {
		progress(PhaseOptimizing)
	}

	tracker := NewTracker(pm,
		WithImprovementTimeout(s.improvementTimeout),
		WithTrackerLogger(s.log),
	)

	s.log.Info().
		Int("tags", len(inst.Tags)).
		Int("plates", inst.PlateCount).
		Int("ups_per_plate", inst.UpsPerPlate).
		Bool("large_instance", inst.Large()).
		Msg("Starting plate optimization")

	status, stats, err := s.driver.Solve(ctx, pm, tracker)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("status", status.String()).
		Int("solutions", stats.Solutions).
		Dur("wall_time", stats.WallTime).
		Int64("iterations", stats.Iterations).
		Msg("Search finished")

	best, ok := tracker.Best()
	if !ok {
		return nil, ErrNoSolution
	}

	ValidateSolution(best, inst.Large(), s.log)
	return best, nil
}
