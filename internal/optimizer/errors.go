package optimizer

import "errors"

var (
	// ErrNoSolution indicates the search terminated without finding any
	// feasible assignment. This is an outcome, not a fault; callers
	// decide how to surface it.
	ErrNoSolution = errors.New("no solution found")

	// ErrInvalidInstance indicates the problem instance cannot be
	// modeled: it is rejected before any search starts, distinguishable
	// from a search that found nothing.
	ErrInvalidInstance = errors.New("invalid instance")
)
