package optimizer

import (
	"fmt"

	"github.com/printops/plate-service/internal/domain/model"
	"github.com/printops/plate-service/internal/solver"
)

const (
	// DefaultSheetsMax bounds the sheets variable of every plate.
	DefaultSheetsMax = 10000

	productMax = 1000000
)

// PlateModel is the constraint model for one optimization instance
// together with the variable handles the tracker needs to materialize
// solutions.
type PlateModel struct {
	Model       *solver.Model
	TagPlate    []solver.IntVar
	Ups         []solver.IntVar
	PlateSheets []solver.IntVar
	PlateUsed   []solver.BoolVar
	TagOnPlate  [][]solver.BoolVar
	Instance    model.Instance
}

// BuildModel translates an instance into a constraint model and attaches
// the seeder's warm-start hints. It fails fast on instances that cannot
// be modeled, before any search starts.
func BuildModel(inst model.Instance, seed []SeedAssignment) (*PlateModel, error) {
	return BuildModelWithSheetsMax(inst, seed, DefaultSheetsMax)
}

// BuildModelWithSheetsMax builds the model with a custom upper bound on
// per-plate sheets.
func BuildModelWithSheetsMax(inst model.Instance, seed []SeedAssignment, sheetsMax int) (*PlateModel, error) {
	if err := validateInstance(inst); err != nil {
		return nil, err
	}
	if sheetsMax < 1 {
		sheetsMax = DefaultSheetsMax
	}

	m := solver.NewModel()
	numTags := len(inst.Tags)
	large := inst.Large()

	pm := &PlateModel{
		Model:       m,
		TagPlate:    make([]solver.IntVar, numTags),
		Ups:         make([]solver.IntVar, numTags),
		PlateSheets: make([]solver.IntVar, inst.PlateCount),
		PlateUsed:   make([]solver.BoolVar, inst.PlateCount),
		TagOnPlate:  make([][]solver.BoolVar, numTags),
		Instance:    inst,
	}

	for i := 0; i < numTags; i++ {
		pm.TagPlate[i] = m.NewIntVar(0, inst.PlateCount-1, fmt.Sprintf("tag_%d_plate", i))
		pm.Ups[i] = m.NewIntVar(1, inst.UpsPerPlate, fmt.Sprintf("ups_%d", i))
		pm.TagOnPlate[i] = make([]solver.BoolVar, inst.PlateCount)
	}
	for j := 0; j < inst.PlateCount; j++ {
		pm.PlateSheets[j] = m.NewIntVar(1, sheetsMax, fmt.Sprintf("plate_sheets_%d", j))
		pm.PlateUsed[j] = m.NewBoolVar(fmt.Sprintf("plate_used_%d", j))
	}

	// Warm-start hints on placement and ups; they guide the search but
	// never constrain feasibility.
	for _, s := range seed {
		if s.TagIndex < 0 || s.TagIndex >= numTags {
			continue
		}
		m.AddHint(pm.TagPlate[s.TagIndex], s.PlateIndex)
		m.AddHint(pm.Ups[s.TagIndex], s.Ups)
	}

	for j := 0; j < inst.PlateCount; j++ {
		usedLits := make([]solver.Literal, 0, numTags)
		unusedLits := make([]solver.Literal, 0, numTags)
		for i := 0; i < numTags; i++ {
			on := m.NewBoolVar(fmt.Sprintf("tag_%d_on_plate_%d", i, j))
			m.AddEqConstReif(pm.TagPlate[i], j, on)
			pm.TagOnPlate[i][j] = on
			usedLits = append(usedLits, on.Lit())
			unusedLits = append(unusedLits, on.Not())

			// Capacity: sheets * ups must cover the quantity wherever the
			// tag is actually assigned.
			product := m.NewIntVar(1, productMax, fmt.Sprintf("prod_tag_%d_plate_%d", i, j))
			m.AddMultiplicationEquality(product, pm.PlateSheets[j], pm.Ups[i])
			m.AddGeConst(product, inst.Tags[i].Quantity, on.Lit())
		}

		// A plate is used iff at least one tag sits on it.
		m.AddBoolOr(usedLits, pm.PlateUsed[j].Lit())
		m.AddBoolAnd(unusedLits, pm.PlateUsed[j].Not())
	}

	for j := 0; j < inst.PlateCount; j++ {
		terms := make([]solver.IntVar, numTags)
		onInts := make([]solver.IntVar, numTags)
		for i := 0; i < numTags; i++ {
			term := m.NewIntVar(0, inst.UpsPerPlate, fmt.Sprintf("active_ups_%d_%d", i, j))
			m.AddMultiplicationEquality(term, pm.Ups[i], pm.TagOnPlate[i][j].AsInt())
			terms[i] = term
			onInts[i] = pm.TagOnPlate[i][j].AsInt()
		}

		totalUps := m.NewIntVar(0, inst.UpsPerPlate, fmt.Sprintf("total_ups_plate_%d", j))
		m.AddSumEquality(totalUps, terms)

		// A used plate's print form is always fully populated.
		m.AddEqConst(totalUps, inst.UpsPerPlate, pm.PlateUsed[j].Lit())
		m.AddEqConst(totalUps, 0, pm.PlateUsed[j].Not())

		tagCount := m.NewIntVar(0, numTags, fmt.Sprintf("tag_count_plate_%d", j))
		m.AddSumEquality(tagCount, onInts)

		if large {
			// Both directions, so the single-tag state is unreachable
			// rather than merely discouraged: a used plate hosts at least
			// two tags, and no plate ever hosts exactly one.
			m.AddGeConst(tagCount, 2, pm.PlateUsed[j].Lit())
			m.AddNeqConst(tagCount, 1)
		} else {
			// A lone tag is tolerated only while the plate is not fully
			// saturated; the sheets objective already penalizes the rest.
			onlyOne := m.NewBoolVar(fmt.Sprintf("only_one_tag_plate_%d", j))
			m.AddEqConstReif(tagCount, 1, onlyOne)

			saturated := m.NewBoolVar(fmt.Sprintf("saturated_plate_%d", j))
			m.AddEqConstReif(totalUps, inst.UpsPerPlate, saturated)

			m.AddBoolOr([]solver.Literal{onlyOne.Not(), saturated.Not()})
		}
	}

	m.Minimize(pm.PlateSheets...)

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstance, err)
	}
	return pm, nil
}

func validateInstance(inst model.Instance) error {
	if inst.PlateCount < 1 {
		return fmt.Errorf("%w: plate count must be positive, got %d", ErrInvalidInstance, inst.PlateCount)
	}
	if inst.UpsPerPlate < 1 {
		return fmt.Errorf("%w: ups per plate must be positive, got %d", ErrInvalidInstance, inst.UpsPerPlate)
	}
	if len(inst.Tags) == 0 {
		return fmt.Errorf("%w: no tags provided", ErrInvalidInstance)
	}
	for i, t := range inst.Tags {
		if t.Quantity <= 0 {
			return fmt.Errorf("%w: tag %d (%s/%s) has non-positive quantity %d", ErrInvalidInstance, i, t.Color, t.Size, t.Quantity)
		}
	}
	return nil
}
