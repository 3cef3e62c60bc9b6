package optimizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printops/plate-service/internal/domain/model"
)

func testService() *Service {
	return NewService(
		WithDriver(&Driver{
			Seed:    42,
			Workers: 4,
			Budget:  func(int) time.Duration { return 5 * time.Second },
		}),
		WithLogger(zerolog.Nop()),
	)
}

func TestServiceRunEndToEnd(t *testing.T) {
	inst := testInstance([]int{100, 50, 30}, 4, 2)

	var phases []Phase
	sol, err := testService().Run(context.Background(), inst, func(p Phase) {
		phases = append(phases, p)
	})
	require.NoError(t, err)
	require.NotNil(t, sol)

	assert.Equal(t, []Phase{PhaseInitializing, PhaseOptimizing}, phases)

	// Every tag covered at its assigned plate's sheet count.
	require.Len(t, sol.Assignments, 3)
	for _, a := range sol.Assignments {
		assert.GreaterOrEqual(t, a.Produced, a.Tag.Quantity)
		assert.Equal(t, a.Ups*a.Sheets, a.Produced)
	}

	// A used plate's print form is fully populated; unused plates host
	// nothing.
	upsPerPlate := make(map[int]int)
	for _, a := range sol.Assignments {
		upsPerPlate[a.PlateIndex] += a.Ups
	}
	for _, plate := range sol.Plates {
		if plate.Used {
			assert.Equal(t, 4, upsPerPlate[plate.PlateIndex])
		} else {
			assert.Zero(t, upsPerPlate[plate.PlateIndex])
		}
	}

	// With three tags on two plates, a split would leave a saturated
	// single-tag plate, so all tags share one plate.
	assert.Len(t, sol.TagsPerPlate(), 1)

	sheets := 0
	for _, plate := range sol.Plates {
		sheets += plate.Sheets
	}
	assert.Equal(t, sheets, sol.Summary.TotalSheets)
	assert.Equal(t, model.WastePercentage(sol.Summary.TotalProduced, sol.Summary.TotalItems), sol.Summary.WastePercentage)
}

func TestServiceRunLargeInstanceNoLoneTags(t *testing.T) {
	// 102 tags crosses the large-instance threshold, where the model
	// itself requires every used plate to host at least two tags. Unit
	// quantities with two ups per plate keep the search cheap: 51 plates
	// of two tags each is feasible straight from the warm start.
	quantities := make([]int, 102)
	for i := range quantities {
		quantities[i] = 1
	}
	inst := testInstance(quantities, 2, 51)
	require.True(t, inst.Large())

	svc := NewService(
		WithDriver(&Driver{
			Seed:    42,
			Workers: 4,
			Budget:  func(int) time.Duration { return 10 * time.Second },
		}),
		WithSheetsMax(8),
		WithLogger(zerolog.Nop()),
	)

	sol, err := svc.Run(context.Background(), inst, nil)
	require.NoError(t, err)
	require.NotNil(t, sol)

	require.Len(t, sol.Assignments, 102)
	for plate, count := range sol.TagsPerPlate() {
		assert.GreaterOrEqual(t, count, 2, "plate %s hosts a single tag", model.PlateLabel(plate))
	}
	for _, a := range sol.Assignments {
		assert.GreaterOrEqual(t, a.Produced, a.Tag.Quantity)
	}
}

func TestServiceRunInvalidInstance(t *testing.T) {
	inst := testInstance([]int{10}, 4, 0)

	sol, err := testService().Run(context.Background(), inst, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInstance))
	assert.Nil(t, sol)
}

func TestServiceRunNoSolution(t *testing.T) {
	// A single tag must sit alone on the only plate, which the
	// single-tag saturation rule forbids, so no feasible assignment
	// exists.
	inst := testInstance([]int{100}, 4, 1)

	svc := NewService(
		WithDriver(&Driver{
			Seed:    42,
			Workers: 2,
			Budget:  func(int) time.Duration { return 500 * time.Millisecond },
		}),
		WithLogger(zerolog.Nop()),
	)

	sol, err := svc.Run(context.Background(), inst, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSolution))
	assert.Nil(t, sol)
}

func TestTimeBudget(t *testing.T) {
	tests := []struct {
		tagCount int
		want     time.Duration
	}{
		{1, 60 * time.Second},
		{25, 60 * time.Second},
		{26, 300 * time.Second},
		{50, 300 * time.Second},
		{51, 600 * time.Second},
		{100, 600 * time.Second},
		{101, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeBudget(tt.tagCount))
	}
}
