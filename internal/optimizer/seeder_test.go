package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printops/plate-service/internal/domain/model"
)

func tagsWithQuantities(quantities ...int) []model.Tag {
	tags := make([]model.Tag, len(quantities))
	for i, q := range quantities {
		tags[i] = model.Tag{Color: "C", Size: "S", Quantity: q}
	}
	return tags
}

func TestSeedRejectsDegenerateInput(t *testing.T) {
	tests := []struct {
		name        string
		tags        []model.Tag
		upsPerPlate int
		plateCount  int
	}{
		{"no tags", nil, 4, 2},
		{"zero plates", tagsWithQuantities(10), 4, 0},
		{"zero ups", tagsWithQuantities(10), 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Seed(tt.tags, tt.upsPerPlate, tt.plateCount))
		})
	}
}

func TestSeedBalancesByQuantity(t *testing.T) {
	tags := tagsWithQuantities(100, 80, 60, 40)

	seed := Seed(tags, 4, 2)
	require.Len(t, seed, 4)

	plateOf := make(map[int]int)
	for _, sa := range seed {
		plateOf[sa.TagIndex] = sa.PlateIndex
	}

	// Longest-processing-time balancing: 100 and 40 pair against 80 and 60.
	assert.Equal(t, plateOf[0], plateOf[3])
	assert.Equal(t, plateOf[1], plateOf[2])
	assert.NotEqual(t, plateOf[0], plateOf[1])
}

func TestSeedUpsSumToCapacity(t *testing.T) {
	tags := tagsWithQuantities(100, 80, 60, 40, 20)

	seed := Seed(tags, 6, 2)
	require.Len(t, seed, 5)

	upsSum := make(map[int]int)
	for _, sa := range seed {
		assert.GreaterOrEqual(t, sa.Ups, 1)
		upsSum[sa.PlateIndex] += sa.Ups
	}
	for plate, sum := range upsSum {
		assert.Equalf(t, 6, sum, "plate %d", plate)
	}
}

func TestSeedDeterministic(t *testing.T) {
	tags := tagsWithQuantities(7, 7, 7, 3, 3, 12, 1)

	first := Seed(tags, 5, 3)
	second := Seed(tags, 5, 3)

	assert.Equal(t, first, second)
}

func TestSeedLargeRepairsLoneTags(t *testing.T) {
	// One dominant tag plus a hundred small ones: the balanced partition
	// leaves the dominant tag alone on its plate and the repair pass must
	// fold it into another group.
	quantities := make([]int, 0, 101)
	quantities = append(quantities, 10000)
	for i := 0; i < 100; i++ {
		quantities = append(quantities, 1)
	}
	tags := tagsWithQuantities(quantities...)
	require.Greater(t, len(tags), model.LargeInstanceThreshold)

	seed := Seed(tags, 8, 3)
	require.Len(t, seed, 101)

	perPlate := make(map[int]int)
	for _, sa := range seed {
		perPlate[sa.PlateIndex]++
	}
	for plate, count := range perPlate {
		assert.NotEqualf(t, 1, count, "plate %d left with a single tag", plate)
	}
}

func TestSeedSmallKeepsLoneTags(t *testing.T) {
	// At or below the threshold the lone-tag repair must not run.
	tags := tagsWithQuantities(1000, 1, 1)

	seed := Seed(tags, 4, 2)
	require.Len(t, seed, 3)

	perPlate := make(map[int]int)
	for _, sa := range seed {
		perPlate[sa.PlateIndex]++
	}
	assert.Contains(t, perPlate, 0)
	assert.Equal(t, 1, perPlate[0])
}

func TestProportionalUps(t *testing.T) {
	tags := tagsWithQuantities(90, 10)

	ups := proportionalUps(tags, []int{0, 1}, 10)

	require.Len(t, ups, 2)
	assert.Equal(t, 9, ups[0])
	assert.Equal(t, 1, ups[1])
}

func TestProportionalUpsZeroQuantities(t *testing.T) {
	tags := tagsWithQuantities(0, 0)

	ups := proportionalUps(tags, []int{0, 1}, 4)

	require.Len(t, ups, 2)
	assert.Equal(t, 4, ups[0]+ups[1])
	assert.GreaterOrEqual(t, ups[0], 1)
	assert.GreaterOrEqual(t, ups[1], 1)
}
