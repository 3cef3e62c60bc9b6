package repository

import (
	"context"

	"github.com/printops/plate-service/internal/circuitbreaker"
)

// RunsRepositoryWithCircuitBreaker wraps a runs repository with circuit
// breaker protection so a struggling MongoDB never stalls job completion.
type RunsRepositoryWithCircuitBreaker struct {
	repo RunsRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

// NewRunsRepositoryWithCircuitBreaker creates a new protected runs repository.
func NewRunsRepositoryWithCircuitBreaker(repo RunsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *RunsRepositoryWithCircuitBreaker {
	return &RunsRepositoryWithCircuitBreaker{repo: repo, cb: cb}
}

// Create inserts a run document unless the circuit is open. An open circuit
// drops the write silently; run history is best-effort.
func (r *RunsRepositoryWithCircuitBreaker) Create(ctx context.Context, run *RunDocument) error {
	err := r.cb.Execute(ctx, func() error {
		return r.repo.Create(ctx, run)
	})
	if err == circuitbreaker.ErrCircuitOpen {
		return nil
	}
	return err
}

// Query returns matching run documents with circuit breaker protection.
func (r *RunsRepositoryWithCircuitBreaker) Query(ctx context.Context, opts RunQueryOptions) ([]*RunDocument, error) {
	var result []*RunDocument
	err := r.cb.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Query(ctx, opts)
		return cbErr
	})
	return result, err
}
