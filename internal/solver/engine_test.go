package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, m *Model, opts Options) (*Solution, Status, Stats) {
	t.Helper()

	var best *Solution
	status, stats, err := Solve(context.Background(), m, opts, CollectorFunc(func(sol *Solution) {
		best = sol
	}))
	require.NoError(t, err)
	return best, status, stats
}

func quickOpts() Options {
	return Options{Seed: 1, Workers: 2, MaxTime: 2 * time.Second}
}

func TestSolveConstants(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 15, "x")
	y := m.NewIntVar(0, 15, "y")
	m.AddEqConst(x, 7)
	m.AddGeConst(y, 12)

	sol, status, _ := solve(t, m, quickOpts())

	require.Equal(t, StatusFeasible, status)
	require.NotNil(t, sol)
	assert.Equal(t, 7, sol.Value(x))
	assert.GreaterOrEqual(t, sol.Value(y), 12)
}

func TestSolveMinimize(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 15, "x")
	m.AddGeConst(x, 5)
	m.Minimize(x)

	sol, status, stats := solve(t, m, quickOpts())

	require.Equal(t, StatusFeasible, status)
	require.NotNil(t, sol)
	assert.Equal(t, 5, sol.Value(x))
	assert.Equal(t, 5, stats.BestObjective)
}

func TestSolveReifiedEquality(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 15, "x")
	b := m.NewBoolVar("b")
	m.AddEqConstReif(x, 3, b)
	m.AddBoolOr([]Literal{b.Lit()})

	sol, status, _ := solve(t, m, quickOpts())

	require.Equal(t, StatusFeasible, status)
	assert.Equal(t, 3, sol.Value(x))
	assert.True(t, sol.BoolValue(b))
}

func TestSolveNotEqual(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 3, "x")
	m.AddNeqConst(x, 0)
	m.AddNeqConst(x, 1)
	m.AddNeqConst(x, 3)

	sol, status, _ := solve(t, m, quickOpts())

	require.Equal(t, StatusFeasible, status)
	assert.Equal(t, 2, sol.Value(x))
}

func TestSolveConditionalNotEqual(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 1, "x")
	b := m.NewBoolVar("b")
	m.AddBoolOr([]Literal{b.Lit()})
	m.AddNeqConst(x, 0, b.Lit())
	m.Minimize(x)

	sol, status, _ := solve(t, m, quickOpts())

	// b holds, so even under minimization x cannot settle at 0.
	require.Equal(t, StatusFeasible, status)
	assert.Equal(t, 1, sol.Value(x))
}

func TestSolveImplicationChain(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	c := m.NewBoolVar("c")
	m.AddBoolOr([]Literal{a.Lit()})
	m.AddImplication(a.Lit(), b.Lit())
	m.AddImplication(b.Lit(), c.Lit())

	sol, status, _ := solve(t, m, quickOpts())

	require.Equal(t, StatusFeasible, status)
	assert.True(t, sol.BoolValue(a))
	assert.True(t, sol.BoolValue(b))
	assert.True(t, sol.BoolValue(c))
}

func TestSolveMultiplication(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(1, 15, "x")
	y := m.NewIntVar(1, 15, "y")
	p := m.NewIntVar(0, 225, "p")
	m.AddMultiplicationEquality(p, x, y)
	m.AddGeConst(p, 36)

	sol, status, _ := solve(t, m, quickOpts())

	require.Equal(t, StatusFeasible, status)
	assert.Equal(t, sol.Value(x)*sol.Value(y), sol.Value(p))
	assert.GreaterOrEqual(t, sol.Value(p), 36)
}

func TestSolveSum(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 15, "x")
	y := m.NewIntVar(0, 15, "y")
	s := m.NewIntVar(0, 30, "s")
	m.AddSumEquality(s, []IntVar{x, y})
	m.AddEqConst(s, 10)

	sol, status, _ := solve(t, m, quickOpts())

	require.Equal(t, StatusFeasible, status)
	assert.Equal(t, 10, sol.Value(x)+sol.Value(y))
}

func TestSolveConditionalConstraint(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 15, "x")
	b := m.NewBoolVar("b")
	// x must be 9 when b holds; force b off and pin x elsewhere.
	m.AddEqConst(x, 9, b.Lit())
	m.AddEqConst(x, 2)
	m.AddBoolOr([]Literal{b.Not()})

	sol, status, _ := solve(t, m, quickOpts())

	require.Equal(t, StatusFeasible, status)
	assert.Equal(t, 2, sol.Value(x))
	assert.False(t, sol.BoolValue(b))
}

func TestSolveStartsFromHints(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 1000, "x")
	m.AddGeConst(x, 500)
	m.AddHint(x, 700)

	sol, status, _ := solve(t, m, Options{Seed: 1, Workers: 1, MaxIterations: 10})

	require.Equal(t, StatusFeasible, status)
	assert.Equal(t, 700, sol.Value(x))
}

func TestSolveUnsatisfiableStaysUnknown(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 5, "x")
	m.AddGeConst(x, 9)

	sol, status, stats := solve(t, m, Options{Seed: 1, Workers: 1, MaxIterations: 2000})

	assert.Equal(t, StatusUnknown, status)
	assert.Nil(t, sol)
	assert.Zero(t, stats.Solutions)
}

func TestSolveInvalidModel(t *testing.T) {
	m := NewModel()

	_, _, err := Solve(context.Background(), m, DefaultOptions(), nil)
	assert.Error(t, err)
}

func TestSolveHonorsContext(t *testing.T) {
	m := NewModel()
	x := m.NewIntVar(0, 5, "x")
	m.AddGeConst(x, 9) // unsatisfiable, search would run forever

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	status, _, err := Solve(ctx, m, Options{Seed: 1, Workers: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, status)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusUnknown, "unknown"},
		{StatusFeasible, "feasible"},
		{StatusOptimal, "optimal"},
		{StatusInfeasible, "infeasible"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}
