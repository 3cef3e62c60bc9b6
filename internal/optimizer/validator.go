package optimizer

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/printops/plate-service/internal/domain/model"
)

// ValidateSolution double-checks a returned solution against the
// large-instance single-tag-plate prohibition by recomputing per-plate
// tag counts from the materialized result. Solver correctness is never
// taken on faith; findings surface as warning diagnostics only, and the
// solution is still returned to the caller.
func ValidateSolution(sol *model.Solution, large bool, log zerolog.Logger) []string {
	if sol == nil || !large {
		return nil
	}

	var warnings []string
	for plate, count := range sol.TagsPerPlate() {
		if count == 1 {
			warnings = append(warnings,
				fmt.Sprintf("plate %s hosts a single tag", model.PlateLabel(plate)))
		}
	}

	if len(warnings) > 0 {
		log.Warn().
			Strs("violations", warnings).
			Msg("Single-tag plates found in large-instance solution")
	}
	return warnings
}
