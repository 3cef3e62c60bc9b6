package model

import "math"

// PlateAssignment is the per-tag decision output: which plate the tag
// prints on, how many ups it receives, and the production it yields at
// the plate's sheet count.
type PlateAssignment struct {
	Tag        Tag
	PlateIndex int
	Ups        int
	Sheets     int
	Produced   int
	Excess     int
}

// PlateLabel converts a plate index into its letter label (A, B, C, ...).
func PlateLabel(index int) string {
	return string(rune('A' + index))
}

// Label returns the letter label of the assignment's plate.
func (a PlateAssignment) Label() string {
	return PlateLabel(a.PlateIndex)
}

// PlateUsage describes one plate in a solution: whether it hosts any
// tags and how many sheets it prints. An unused plate contributes
// nothing to the objective.
type PlateUsage struct {
	PlateIndex int
	Used       bool
	Sheets     int
	TagCount   int
}

// Summary aggregates a solution's production totals.
type Summary struct {
	TotalSheets     int     `json:"totalSheets"`
	TotalProduced   int     `json:"totalProduced"`
	TotalExcess     int     `json:"totalExcess"`
	WastePercentage float64 `json:"wastePercentage"`
	TotalPlates     int     `json:"totalPlates"`
	TotalItems      int     `json:"totalItems"`
	UpsCapacity     int     `json:"upsCapacity"`
}

// Solution is a materialized snapshot of one feasible assignment found
// during search. Solutions are immutable once built.
type Solution struct {
	Assignments []PlateAssignment
	Plates      []PlateUsage
	Summary     Summary
}

// WastePercentage computes excess as a fraction of total produced
// quantity, in percent, rounded to 2 decimals. Defined as 0.0 when
// nothing is produced.
func WastePercentage(totalProduced, totalItems int) float64 {
	if totalProduced == 0 {
		return 0.0
	}
	pct := float64(totalProduced-totalItems) / float64(totalProduced) * 100
	return math.Round(pct*100) / 100
}

// TagsPerPlate recomputes the per-plate tag counts from the assignments.
// Used by the post-solve validator as a double-check of the model's
// occupancy constraints.
func (s *Solution) TagsPerPlate() map[int]int {
	counts := make(map[int]int)
	for _, a := range s.Assignments {
		counts[a.PlateIndex]++
	}
	return counts
}
