// Package solver provides a small finite-domain constraint solver with a
// declarative model API and a callback-driven search engine.
//
// A Model holds integer and boolean decision variables together with the
// constraint classes needed for assignment problems: linear
// equality/inequality (optionally enforced only under boolean literals),
// reified equality indicators, multiplicative equality, boolean
// disjunction/conjunction, and linear sums. Variables accept warm-start
// hints that guide but never constrain the search, and the model can carry
// a minimization objective over a set of variables.
//
// Solve explores assignments with parallel search lanes and reports every
// improving feasible assignment to a Collector, one notification at a
// time. Search stops cooperatively through the caller's context.
package solver

import (
	"errors"
	"fmt"
)

// IntVar is a handle to an integer decision variable in a Model.
type IntVar int

// BoolVar is a handle to a boolean decision variable in a Model.
type BoolVar int

// AsInt returns the variable as an IntVar over {0, 1}, for use in
// arithmetic constraints.
func (b BoolVar) AsInt() IntVar {
	return IntVar(b)
}

// Literal is a BoolVar or its negation, used to condition constraint
// enforcement and to build clauses.
type Literal struct {
	v       BoolVar
	negated bool
}

// Lit returns the positive literal for the variable.
func (b BoolVar) Lit() Literal {
	return Literal{v: b}
}

// Not returns the negated literal for the variable.
func (b BoolVar) Not() Literal {
	return Literal{v: b, negated: true}
}

func (l Literal) holds(a []int) bool {
	return (a[l.v] == 1) != l.negated
}

type varDef struct {
	lo, hi  int
	name    string
	hint    int
	hasHint bool
	// derived variables are outputs of functional constraints; the engine
	// recomputes them instead of searching over them.
	derived bool
}

// Model is a collection of variables and constraints describing a
// satisfaction or minimization problem. A Model is built once, solved,
// and discarded; it is not safe for concurrent mutation.
type Model struct {
	vars      []varDef
	cons      []constraint
	objective []IntVar
	err       error
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewIntVar adds an integer variable with the inclusive domain [lo, hi].
func (m *Model) NewIntVar(lo, hi int, name string) IntVar {
	if lo > hi && m.err == nil {
		m.err = fmt.Errorf("solver: variable %s has empty domain [%d, %d]", name, lo, hi)
	}
	m.vars = append(m.vars, varDef{lo: lo, hi: hi, name: name})
	return IntVar(len(m.vars) - 1)
}

// NewBoolVar adds a boolean variable.
func (m *Model) NewBoolVar(name string) BoolVar {
	m.vars = append(m.vars, varDef{lo: 0, hi: 1, name: name})
	return BoolVar(len(m.vars) - 1)
}

// AddHint suggests a starting value for the variable. Hints accelerate
// search convergence but never constrain feasibility.
func (m *Model) AddHint(v IntVar, value int) {
	d := &m.vars[v]
	if value < d.lo {
		value = d.lo
	}
	if value > d.hi {
		value = d.hi
	}
	d.hint = value
	d.hasHint = true
}

// AddHintBool suggests a starting value for a boolean variable.
func (m *Model) AddHintBool(b BoolVar, value bool) {
	hint := 0
	if value {
		hint = 1
	}
	m.AddHint(b.AsInt(), hint)
}

// markDerived flags v as the output of a functional constraint.
func (m *Model) markDerived(v IntVar) {
	m.vars[v].derived = true
}

// AddEqConst constrains v == value, enforced only when every literal in
// onlyIf holds.
func (m *Model) AddEqConst(v IntVar, value int, onlyIf ...Literal) {
	m.cons = append(m.cons, &linearCon{vars: []IntVar{v}, op: opEq, rhs: value, onlyIf: onlyIf})
}

// AddNeqConst constrains v != value, enforced only when every literal in
// onlyIf holds.
func (m *Model) AddNeqConst(v IntVar, value int, onlyIf ...Literal) {
	m.cons = append(m.cons, &linearCon{vars: []IntVar{v}, op: opNeq, rhs: value, onlyIf: onlyIf})
}

// AddGeConst constrains v >= value, enforced only when every literal in
// onlyIf holds.
func (m *Model) AddGeConst(v IntVar, value int, onlyIf ...Literal) {
	m.cons = append(m.cons, &linearCon{vars: []IntVar{v}, op: opGe, rhs: value, onlyIf: onlyIf})
}

// AddEqConstReif posts b <=> (v == value), linking the indicator to the
// equality in both directions. The indicator becomes a derived variable.
func (m *Model) AddEqConstReif(v IntVar, value int, b BoolVar) {
	m.markDerived(b.AsInt())
	m.cons = append(m.cons, &reifEqCon{x: v, value: value, b: b})
}

// AddMultiplicationEquality posts target == x * y. The target becomes a
// derived variable.
func (m *Model) AddMultiplicationEquality(target, x, y IntVar) {
	m.markDerived(target)
	m.cons = append(m.cons, &multCon{target: target, x: x, y: y})
}

// AddSumEquality posts target == sum(vars). The target becomes a derived
// variable.
func (m *Model) AddSumEquality(target IntVar, vars []IntVar) {
	m.markDerived(target)
	vs := make([]IntVar, len(vars))
	copy(vs, vars)
	m.cons = append(m.cons, &sumCon{target: target, vars: vs})
}

// AddBoolOr posts the disjunction of lits, enforced only when every
// literal in onlyIf holds.
func (m *Model) AddBoolOr(lits []Literal, onlyIf ...Literal) {
	ls := make([]Literal, len(lits))
	copy(ls, lits)
	m.cons = append(m.cons, &clauseCon{lits: ls, conj: false, onlyIf: onlyIf})
}

// AddBoolAnd posts the conjunction of lits, enforced only when every
// literal in onlyIf holds.
func (m *Model) AddBoolAnd(lits []Literal, onlyIf ...Literal) {
	ls := make([]Literal, len(lits))
	copy(ls, lits)
	m.cons = append(m.cons, &clauseCon{lits: ls, conj: true, onlyIf: onlyIf})
}

// AddImplication posts a => b.
func (m *Model) AddImplication(a, b Literal) {
	m.cons = append(m.cons, &clauseCon{lits: []Literal{b}, conj: true, onlyIf: []Literal{a}})
}

// Minimize sets the objective to the sum of the given variables.
func (m *Model) Minimize(vars ...IntVar) {
	m.objective = append([]IntVar(nil), vars...)
}

// Validate reports model construction errors: empty domains or a model
// with no variables.
func (m *Model) Validate() error {
	if m.err != nil {
		return m.err
	}
	if len(m.vars) == 0 {
		return errors.New("solver: model has no variables")
	}
	return nil
}

// NumVars returns the number of variables in the model.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of posted constraints.
func (m *Model) NumConstraints() int { return len(m.cons) }
