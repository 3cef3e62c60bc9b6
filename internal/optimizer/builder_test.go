package optimizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printops/plate-service/internal/domain/model"
)

func testInstance(quantities []int, upsPerPlate, plateCount int) model.Instance {
	return model.Instance{
		Tags:        tagsWithQuantities(quantities...),
		UpsPerPlate: upsPerPlate,
		PlateCount:  plateCount,
	}
}

func TestBuildModelRejectsInvalidInstances(t *testing.T) {
	tests := []struct {
		name string
		inst model.Instance
	}{
		{"zero plates", testInstance([]int{10}, 4, 0)},
		{"zero ups per plate", testInstance([]int{10}, 0, 2)},
		{"no tags", testInstance(nil, 4, 2)},
		{"non-positive quantity", testInstance([]int{10, 0}, 4, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, err := BuildModel(tt.inst, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInstance))
			assert.Nil(t, pm)
		})
	}
}

func TestBuildModelShape(t *testing.T) {
	inst := testInstance([]int{100, 50, 30}, 4, 2)
	seed := Seed(inst.Tags, inst.UpsPerPlate, inst.PlateCount)

	pm, err := BuildModel(inst, seed)
	require.NoError(t, err)

	assert.Len(t, pm.TagPlate, 3)
	assert.Len(t, pm.Ups, 3)
	assert.Len(t, pm.PlateSheets, 2)
	assert.Len(t, pm.PlateUsed, 2)
	require.Len(t, pm.TagOnPlate, 3)
	for _, row := range pm.TagOnPlate {
		assert.Len(t, row, 2)
	}
	assert.Equal(t, inst, pm.Instance)
	assert.NoError(t, pm.Model.Validate())
	assert.Positive(t, pm.Model.NumConstraints())
}

func TestBuildModelIgnoresOutOfRangeSeed(t *testing.T) {
	inst := testInstance([]int{100, 50}, 4, 2)
	seed := []SeedAssignment{
		{TagIndex: 0, PlateIndex: 0, Ups: 2},
		{TagIndex: 99, PlateIndex: 1, Ups: 2}, // stale index, must be skipped
	}

	pm, err := BuildModel(inst, seed)
	require.NoError(t, err)
	assert.NoError(t, pm.Model.Validate())
}

func TestBuildModelSheetsMaxFallback(t *testing.T) {
	inst := testInstance([]int{100}, 4, 2)

	pm, err := BuildModelWithSheetsMax(inst, nil, -1)
	require.NoError(t, err)
	assert.NoError(t, pm.Model.Validate())
}
