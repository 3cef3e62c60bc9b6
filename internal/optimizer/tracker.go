package optimizer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/printops/plate-service/internal/domain/model"
	"github.com/printops/plate-service/internal/metrics"
	"github.com/printops/plate-service/internal/solver"
)

// DefaultImprovementTimeout is how long a large-instance search may go
// without improving the best objective before the tracker halts it.
const DefaultImprovementTimeout = 10 * time.Minute

// Tracker receives every improving solution found during search,
// materializes the best one into the domain result shape, and implements
// the no-improvement timeout that truncates otherwise-unbounded search
// on large instances.
//
// The solver invokes OnSolution serially, but the tracker still guards
// its best-solution slot with a mutex so Best can be read concurrently.
type Tracker struct {
	pm *PlateModel

	mu            sync.Mutex
	best          *model.Solution
	bestObjective int
	found         bool
	solutionCount int

	large              bool
	improvementTimeout time.Duration
	lastImprovement    time.Time
	startedAt          time.Time
	now                func() time.Time
	stop               context.CancelFunc

	log zerolog.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithImprovementTimeout overrides the large-instance no-improvement
// timeout.
func WithImprovementTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.improvementTimeout = d
		}
	}
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// WithTrackerLogger sets the tracker's logger.
func WithTrackerLogger(l zerolog.Logger) TrackerOption {
	return func(t *Tracker) { t.log = l }
}

// NewTracker creates a tracker for one optimization run.
func NewTracker(pm *PlateModel, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		pm:                 pm,
		large:              pm.Instance.Large(),
		improvementTimeout: DefaultImprovementTimeout,
		now:                time.Now,
		log:                log.Logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.startedAt = t.now()
	t.lastImprovement = t.startedAt
	return t
}

// bindStop wires the cancellation token shared with the search driver.
func (t *Tracker) bindStop(stop context.CancelFunc) {
	t.mu.Lock()
	t.stop = stop
	t.mu.Unlock()
}

// OnSolution implements solver.Collector. It records strictly improving
// objectives, materializes the corresponding Solution, and in
// large-instance mode halts the search once improvements dry up.
func (t *Tracker) OnSolution(sol *solver.Solution) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.solutionCount++
	objective := 0
	for _, v := range t.pm.PlateSheets {
		objective += sol.Value(v)
	}

	if !t.found || objective < t.bestObjective {
		t.bestObjective = objective
		t.found = true
		t.best = t.materialize(sol, objective)
		metrics.IncSolutionsFound()
		if t.large {
			t.lastImprovement = t.now()
		}

		t.log.Debug().
			Int("total_sheets", objective).
			Float64("waste_pct", t.best.Summary.WastePercentage).
			Int("solution_number", t.solutionCount).
			Dur("elapsed", t.now().Sub(t.startedAt)).
			Msg("New best solution found")
	}

	if t.large && t.now().Sub(t.lastImprovement) >= t.improvementTimeout {
		t.log.Info().
			Dur("improvement_timeout", t.improvementTimeout).
			Dur("runtime", t.now().Sub(t.startedAt)).
			Int("solutions_found", t.solutionCount).
			Int("best_objective", t.bestObjective).
			Msg("Stopping search: no improvement within timeout")
		if t.stop != nil {
			t.stop()
		}
	}
}

// Best returns the best materialized solution seen so far, if any.
func (t *Tracker) Best() (*model.Solution, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.best, t.found
}

// BestObjective returns the minimal total sheets seen so far.
func (t *Tracker) BestObjective() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bestObjective, t.found
}

// SolutionCount returns the number of notifications received.
func (t *Tracker) SolutionCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.solutionCount
}

// materialize turns raw variable values into the domain Solution shape.
func (t *Tracker) materialize(sol *solver.Solution, objective int) *model.Solution {
	inst := t.pm.Instance
	totalItems := inst.TotalQuantity()
	totalProduced := 0

	assignments := make([]model.PlateAssignment, 0, len(inst.Tags))
	plates := make([]model.PlateUsage, inst.PlateCount)

	for j := 0; j < inst.PlateCount; j++ {
		sheets := sol.Value(t.pm.PlateSheets[j])
		plates[j] = model.PlateUsage{
			PlateIndex: j,
			Used:       sol.BoolValue(t.pm.PlateUsed[j]),
			Sheets:     sheets,
		}
		for i := range inst.Tags {
			if sol.Value(t.pm.TagPlate[i]) != j {
				continue
			}
			ups := sol.Value(t.pm.Ups[i])
			produced := ups * sheets
			assignments = append(assignments, model.PlateAssignment{
				Tag:        inst.Tags[i],
				PlateIndex: j,
				Ups:        ups,
				Sheets:     sheets,
				Produced:   produced,
				Excess:     produced - inst.Tags[i].Quantity,
			})
			plates[j].TagCount++
			totalProduced += produced
		}
	}

	return &model.Solution{
		Assignments: assignments,
		Plates:      plates,
		Summary: model.Summary{
			TotalSheets:     objective,
			TotalProduced:   totalProduced,
			TotalExcess:     totalProduced - totalItems,
			WastePercentage: model.WastePercentage(totalProduced, totalItems),
			TotalPlates:     inst.PlateCount,
			TotalItems:      totalItems,
			UpsCapacity:     inst.UpsPerPlate,
		},
	}
}
