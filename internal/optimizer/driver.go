package optimizer

import (
	"context"
	"time"

	"github.com/printops/plate-service/internal/solver"
)

const (
	// DefaultSeed fixes the search's random source across runs for
	// reproducibility.
	DefaultSeed int64 = 42
	// DefaultWorkers is the number of parallel search lanes.
	DefaultWorkers = 8
)

// TimeBudget returns the wall-clock cap for a given tag count. Instances
// above the large-instance threshold get no cap at all: their runtime is
// bounded by the tracker's improvement timeout instead, because the
// right deadline there is instance-dependent.
func TimeBudget(tagCount int) time.Duration {
	switch {
	case tagCount <= 25:
		return 60 * time.Second
	case tagCount <= 50:
		return 300 * time.Second
	case tagCount <= 100:
		return 600 * time.Second
	default:
		return 0
	}
}

// Driver configures and starts the solver for one plate model, attaching
// the tracker as the solution-notification sink.
type Driver struct {
	Seed          int64
	Workers       int
	MaxIterations int64
	// Budget maps tag count to a wall-clock cap; nil means TimeBudget.
	Budget func(tagCount int) time.Duration
}

// NewDriver returns a driver with the standard search configuration.
func NewDriver() *Driver {
	return &Driver{Seed: DefaultSeed, Workers: DefaultWorkers}
}

// Solve runs the search. The tracker shares the run's cancellation token
// so it can halt the search from inside a solution notification.
func (d *Driver) Solve(ctx context.Context, pm *PlateModel, tracker *Tracker) (solver.Status, solver.Stats, error) {
	budget := d.Budget
	if budget == nil {
		budget = TimeBudget
	}
	workers := d.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	tracker.bindStop(cancel)

	opts := solver.Options{
		Seed:          d.Seed,
		Workers:       workers,
		MaxTime:       budget(len(pm.Instance.Tags)),
		MaxIterations: d.MaxIterations,
	}
	return solver.Solve(runCtx, pm.Model, opts, tracker)
}
