// Package optimizer implements the plate optimization engine: the greedy
// warm-start seeder, the constraint model, the search driver, the
// best-solution tracker, and post-solve validation.
package optimizer

import (
	"math"
	"sort"

	"github.com/printops/plate-service/internal/domain/model"
)

// SeedAssignment is one entry of the greedy warm start: a tag, the plate
// it is placed on, and its suggested ups. Used only as a search hint,
// never returned as an answer.
type SeedAssignment struct {
	TagIndex   int
	PlateIndex int
	Ups        int
}

// Seed partitions tags into plate groups balanced by quantity and
// apportions ups within each group proportionally to quantity. For
// instances above the large-instance threshold, plates left holding a
// single tag are repaired by folding that tag into the busiest-starved
// group before the assignment ever reaches the solver.
//
// Seed is deterministic: sorting is stable and every minimum-load choice
// takes the first minimum index.
func Seed(tags []model.Tag, upsPerPlate, plateCount int) []SeedAssignment {
	if len(tags) == 0 || plateCount <= 0 || upsPerPlate <= 0 {
		return nil
	}

	var groups [][]int
	if len(tags) > model.LargeInstanceThreshold {
		groups = balancedPartitionNoSingles(tags, plateCount)
	} else {
		groups = balancedPartition(tags, plateCount)
	}

	out := make([]SeedAssignment, 0, len(tags))
	for plateIndex, group := range groups {
		if len(group) == 0 {
			continue
		}
		upsList := proportionalUps(tags, group, upsPerPlate)
		for k, tagIndex := range group {
			out = append(out, SeedAssignment{
				TagIndex:   tagIndex,
				PlateIndex: plateIndex,
				Ups:        upsList[k],
			})
		}
	}
	return out
}

// balancedPartition distributes tag indices over plateCount groups with
// longest-processing-time balancing: tags sorted by quantity descending,
// each placed on the group with the lowest accumulated quantity.
func balancedPartition(tags []model.Tag, plateCount int) [][]int {
	order := make([]int, len(tags))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return tags[order[a]].Quantity > tags[order[b]].Quantity
	})

	groups := make([][]int, plateCount)
	loads := make([]int, plateCount)
	for _, tagIndex := range order {
		j := minLoadIndex(loads)
		groups[j] = append(groups[j], tagIndex)
		loads[j] += tags[tagIndex].Quantity
	}
	return groups
}

// balancedPartitionNoSingles runs the balanced partition and then evicts
// every lone tag, reinserting it into the lightest non-empty group so no
// plate is left with exactly one tag.
func balancedPartitionNoSingles(tags []model.Tag, plateCount int) [][]int {
	groups := balancedPartition(tags, plateCount)

	loads := make([]int, plateCount)
	for j, group := range groups {
		for _, tagIndex := range group {
			loads[j] += tags[tagIndex].Quantity
		}
	}

	for j := range groups {
		if len(groups[j]) != 1 {
			continue
		}
		lone := groups[j][0]
		groups[j] = nil
		loads[j] = 0

		target, targetLoad := -1, math.MaxInt
		for k := range groups {
			if k == j || len(groups[k]) == 0 {
				continue
			}
			if loads[k] < targetLoad {
				target, targetLoad = k, loads[k]
			}
		}
		if target < 0 {
			// Nothing to merge with; keep the lone tag where it was.
			groups[j] = []int{lone}
			loads[j] = tags[lone].Quantity
			continue
		}
		groups[target] = append(groups[target], lone)
		loads[target] += tags[lone].Quantity
	}
	return groups
}

// proportionalUps splits upsPerPlate among the group's tags by quantity
// share with a floor of one, then nudges the smallest value up (or the
// largest down, never below one) until the sum lands exactly on
// upsPerPlate.
func proportionalUps(tags []model.Tag, group []int, upsPerPlate int) []int {
	total := 0
	for _, tagIndex := range group {
		total += tags[tagIndex].Quantity
	}

	ups := make([]int, len(group))
	for k, tagIndex := range group {
		if total == 0 {
			ups[k] = 1
			continue
		}
		share := float64(tags[tagIndex].Quantity) / float64(total) * float64(upsPerPlate)
		ups[k] = int(math.Round(share))
		if ups[k] < 1 {
			ups[k] = 1
		}
	}

	for sumInts(ups) < upsPerPlate {
		ups[minValueIndex(ups)]++
	}
	for sumInts(ups) > upsPerPlate {
		k := maxValueIndex(ups)
		if ups[k] <= 1 {
			break
		}
		ups[k]--
	}
	return ups
}

func minLoadIndex(loads []int) int {
	j := 0
	for k := 1; k < len(loads); k++ {
		if loads[k] < loads[j] {
			j = k
		}
	}
	return j
}

func minValueIndex(xs []int) int {
	j := 0
	for k := 1; k < len(xs); k++ {
		if xs[k] < xs[j] {
			j = k
		}
	}
	return j
}

func maxValueIndex(xs []int) int {
	j := 0
	for k := 1; k < len(xs); k++ {
		if xs[k] > xs[j] {
			j = k
		}
	}
	return j
}

func sumInts(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}
