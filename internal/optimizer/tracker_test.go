package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printops/plate-service/internal/solver"
)

// solveOnce runs a short real search on the model and returns the last
// improving raw solution, so tracker tests work with genuine solver output.
func solveOnce(t *testing.T, pm *PlateModel) *solver.Solution {
	t.Helper()

	var last *solver.Solution
	status, _, err := solver.Solve(context.Background(), pm.Model, solver.Options{
		Seed:    42,
		Workers: 4,
		MaxTime: 5 * time.Second,
	}, solver.CollectorFunc(func(sol *solver.Solution) {
		last = sol
	}))
	require.NoError(t, err)
	require.Equal(t, solver.StatusFeasible, status)
	require.NotNil(t, last)
	return last
}

func buildTestModel(t *testing.T) *PlateModel {
	t.Helper()

	inst := testInstance([]int{100, 50, 30}, 4, 2)
	seed := Seed(inst.Tags, inst.UpsPerPlate, inst.PlateCount)
	pm, err := BuildModel(inst, seed)
	require.NoError(t, err)
	return pm
}

func TestTrackerRecordsImprovingSolutions(t *testing.T) {
	pm := buildTestModel(t)
	raw := solveOnce(t, pm)

	tracker := NewTracker(pm, WithTrackerLogger(zerolog.Nop()))

	_, found := tracker.Best()
	assert.False(t, found)

	tracker.OnSolution(raw)

	best, found := tracker.Best()
	require.True(t, found)
	require.NotNil(t, best)
	obj, _ := tracker.BestObjective()
	assert.Equal(t, best.Summary.TotalSheets, obj)
	assert.Equal(t, 1, tracker.SolutionCount())

	// Replaying an equal-objective solution counts the notification but
	// must not replace the best.
	tracker.OnSolution(raw)
	assert.Equal(t, 2, tracker.SolutionCount())
	again, _ := tracker.BestObjective()
	assert.Equal(t, obj, again)
}

func TestTrackerMaterializesConsistentSolution(t *testing.T) {
	pm := buildTestModel(t)
	raw := solveOnce(t, pm)

	tracker := NewTracker(pm, WithTrackerLogger(zerolog.Nop()))
	tracker.OnSolution(raw)

	best, found := tracker.Best()
	require.True(t, found)

	require.Len(t, best.Assignments, 3)
	require.Len(t, best.Plates, 2)

	sheetsTotal := 0
	for _, plate := range best.Plates {
		sheetsTotal += plate.Sheets
	}
	assert.Equal(t, sheetsTotal, best.Summary.TotalSheets)

	produced := 0
	for _, a := range best.Assignments {
		assert.GreaterOrEqual(t, a.Ups, 1)
		assert.LessOrEqual(t, a.Ups, pm.Instance.UpsPerPlate)
		assert.GreaterOrEqual(t, a.Produced, a.Tag.Quantity)
		assert.Equal(t, a.Ups*a.Sheets, a.Produced)
		produced += a.Produced
	}
	assert.Equal(t, produced, best.Summary.TotalProduced)
	assert.Equal(t, produced-180, best.Summary.TotalExcess)
	assert.Equal(t, 180, best.Summary.TotalItems)
	assert.Equal(t, 4, best.Summary.UpsCapacity)
}

func TestTrackerImprovementTimeoutStopsSearch(t *testing.T) {
	pm := buildTestModel(t)
	raw := solveOnce(t, pm)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker := NewTracker(pm,
		WithImprovementTimeout(10*time.Minute),
		WithClock(func() time.Time { return now }),
		WithTrackerLogger(zerolog.Nop()),
	)
	tracker.large = true

	stopped := false
	tracker.bindStop(func() { stopped = true })

	tracker.OnSolution(raw)
	assert.False(t, stopped)

	// No improvement for longer than the timeout: the next notification
	// must halt the search.
	now = now.Add(11 * time.Minute)
	tracker.OnSolution(raw)
	assert.True(t, stopped)
}

func TestTrackerTimeoutResetsOnImprovement(t *testing.T) {
	pm := buildTestModel(t)
	raw := solveOnce(t, pm)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker := NewTracker(pm,
		WithImprovementTimeout(10*time.Minute),
		WithClock(func() time.Time { return now }),
		WithTrackerLogger(zerolog.Nop()),
	)
	tracker.large = true

	stopped := false
	tracker.bindStop(func() { stopped = true })

	// First solution lands late, but it improves, so the clock restarts.
	now = now.Add(9 * time.Minute)
	tracker.OnSolution(raw)
	assert.False(t, stopped)

	now = now.Add(9 * time.Minute)
	tracker.OnSolution(raw)
	assert.False(t, stopped)
}
