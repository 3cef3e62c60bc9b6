package solver

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// Status is the terminal outcome of a search.
type Status int

const (
	// StatusUnknown means the search ended without finding a feasible
	// assignment and without proving infeasibility.
	StatusUnknown Status = iota
	// StatusFeasible means at least one feasible assignment was found.
	StatusFeasible
	// StatusOptimal means the best assignment was proven optimal.
	StatusOptimal
	// StatusInfeasible means the model was proven to have no feasible
	// assignment.
	StatusInfeasible
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusFeasible:
		return "feasible"
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Options configures a search run.
type Options struct {
	// Seed fixes the random source for reproducible searches.
	Seed int64
	// Workers is the number of parallel search lanes.
	Workers int
	// MaxTime caps the wall-clock search time. Zero means no cap; the
	// caller's context is then the only way to stop the search.
	MaxTime time.Duration
	// MaxIterations caps the number of moves per lane. Zero means no cap.
	MaxIterations int64
}

// DefaultOptions returns the standard search configuration.
func DefaultOptions() Options {
	return Options{Seed: 1, Workers: 1}
}

// Stats summarizes a finished search.
type Stats struct {
	WallTime      time.Duration
	Solutions     int
	BestObjective int
	Iterations    int64
}

// Solution is an immutable snapshot of a feasible assignment.
type Solution struct {
	values    []int
	objective int
}

// Value returns the assigned value of an integer variable.
func (s *Solution) Value(v IntVar) int { return s.values[v] }

// BoolValue returns the assigned value of a boolean variable.
func (s *Solution) BoolValue(b BoolVar) bool { return s.values[b] == 1 }

// Objective returns the objective value of the assignment.
func (s *Solution) Objective() int { return s.objective }

// Collector receives every improving feasible assignment found during
// search. OnSolution is invoked synchronously and never concurrently;
// implementations may stop the search by cancelling the context passed
// to Solve.
type Collector interface {
	OnSolution(sol *Solution)
}

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc func(sol *Solution)

// OnSolution implements Collector.
func (f CollectorFunc) OnSolution(sol *Solution) { f(sol) }

const (
	noiseProbability  = 0.10
	restartThreshold  = 4000
	smallDomainLimit  = 16
	ctxCheckInterval  = 64
	perturbedVarShare = 8
)

// search holds state shared by all lanes of one Solve call.
type search struct {
	m          *Model
	funcs      []functional
	funcByOut  map[int]functional
	conRoots   [][]int // per constraint: decision variables it depends on
	varConsAll [][]int // per variable: constraints reading it

	mu         sync.Mutex
	collector  Collector
	bestValues []int
	best       int
	found      bool
	solutions  int

	// bestBound mirrors best for lock-free reads from lane hot loops.
	bestBound atomic.Int64
}

// Solve searches the model and reports every improving feasible
// assignment to the collector. It returns when the context is cancelled,
// the time or iteration budget is exhausted, or all lanes finish.
func Solve(ctx context.Context, m *Model, opts Options, collector Collector) (Status, Stats, error) {
	start := time.Now()
	if err := m.Validate(); err != nil {
		return StatusUnknown, Stats{}, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	if opts.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.MaxTime)
		defer cancel()
	}

	s := newSearch(m, collector)

	var wg sync.WaitGroup
	iterations := make([]int64, opts.Workers)
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func(lane int) {
			defer wg.Done()
			iterations[lane] = s.runLane(ctx, opts, lane)
		}(w)
	}
	wg.Wait()

	stats := Stats{WallTime: time.Since(start)}
	for _, it := range iterations {
		stats.Iterations += it
	}
	s.mu.Lock()
	stats.Solutions = s.solutions
	stats.BestObjective = s.best
	found := s.found
	s.mu.Unlock()

	if found {
		return StatusFeasible, stats, nil
	}
	return StatusUnknown, stats, nil
}

func newSearch(m *Model, collector Collector) *search {
	s := &search{
		m:         m,
		funcByOut: make(map[int]functional),
		collector: collector,
		best:      math.MaxInt,
	}
	s.bestBound.Store(math.MaxInt64)
	for _, c := range m.cons {
		if f, ok := c.(functional); ok {
			s.funcs = append(s.funcs, f)
			s.funcByOut[f.output()] = f
		}
	}
	s.conRoots = make([][]int, len(m.cons))
	s.varConsAll = make([][]int, len(m.vars))
	for ci, c := range m.cons {
		s.conRoots[ci] = s.decisionRoots(c.touched())
		for _, v := range c.touched() {
			s.varConsAll[v] = append(s.varConsAll[v], ci)
		}
	}
	return s
}

// decisionRoots expands derived variables into the decision variables
// that determine them.
func (s *search) decisionRoots(vs []int) []int {
	seen := make(map[int]bool)
	var out []int
	stack := append([]int(nil), vs...)
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[v] {
			continue
		}
		seen[v] = true
		if s.m.vars[v].derived {
			if f, ok := s.funcByOut[v]; ok {
				stack = append(stack, f.inputs()...)
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// lane is the per-worker search state.
type lane struct {
	s       *search
	rng     *rand.Rand
	assign  []int
	viol    []int
	total   int
	changed []int
	dirty   []bool
}

func (s *search) runLane(ctx context.Context, opts Options, index int) int64 {
	ln := &lane{
		s:       s,
		rng:     rand.New(rand.NewSource(opts.Seed + int64(index))),
		assign:  make([]int, len(s.m.vars)),
		viol:    make([]int, len(s.m.cons)),
		dirty:   make([]bool, len(s.m.vars)),
		changed: make([]int, 0, len(s.m.vars)),
	}
	ln.restart(true)

	var iter, sinceImprove int64
	for {
		if opts.MaxIterations > 0 && iter >= opts.MaxIterations {
			return iter
		}
		if iter%ctxCheckInterval == 0 && ctx.Err() != nil {
			return iter
		}
		iter++

		if ln.total == 0 {
			obj := ln.objective()
			if s.report(obj, ln.assign) {
				sinceImprove = 0
			}
			if obj <= ln.bound() {
				// Cannot improve the global best from here without a
				// change, so perturb and keep searching.
				ln.perturb()
				continue
			}
		}

		if !ln.step() {
			ln.restart(false)
			sinceImprove = 0
			continue
		}

		sinceImprove++
		if sinceImprove > restartThreshold {
			ln.restart(iter%2 == 0)
			sinceImprove = 0
		}
	}
}

// report publishes an improving feasible assignment. Returns true when
// the assignment improved the global best.
func (s *search) report(obj int, values []int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.found && obj >= s.best {
		return false
	}
	s.best = obj
	s.found = true
	s.solutions++
	s.bestBound.Store(int64(obj))
	snapshot := make([]int, len(values))
	copy(snapshot, values)
	s.bestValues = snapshot
	if s.collector != nil {
		s.collector.OnSolution(&Solution{values: snapshot, objective: obj})
	}
	return true
}

// bound returns the objective value the lane must beat.
func (ln *lane) bound() int {
	best := ln.s.bestBound.Load()
	if best == math.MaxInt64 {
		return math.MaxInt
	}
	return int(best) - 1
}

func (ln *lane) objective() int {
	obj := 0
	for _, v := range ln.s.m.objective {
		obj += ln.assign[v]
	}
	return obj
}

// cost is the lane's guiding metric: constraint violations plus the
// amount by which the objective exceeds the current bound.
func (ln *lane) cost() int {
	c := ln.total
	if bound := ln.bound(); bound != math.MaxInt {
		if over := ln.objective() - bound; over > 0 {
			c += over
		}
	}
	return c
}

// restart reinitializes the assignment, from hints or at random.
func (ln *lane) restart(fromHints bool) {
	for v := range ln.s.m.vars {
		d := &ln.s.m.vars[v]
		switch {
		case fromHints && d.hasHint:
			ln.assign[v] = d.hint
		case fromHints:
			ln.assign[v] = d.lo
		default:
			ln.assign[v] = d.lo + ln.rng.Intn(d.hi-d.lo+1)
		}
	}
	ln.propagateAll()
	ln.recomputeAllViolations()
}

// perturb randomizes a share of the decision variables around the
// current assignment to escape the reported local optimum.
func (ln *lane) perturb() {
	n := len(ln.s.m.vars)/perturbedVarShare + 1
	for i := 0; i < n; i++ {
		v := ln.rng.Intn(len(ln.s.m.vars))
		d := &ln.s.m.vars[v]
		if d.derived {
			continue
		}
		ln.set(v, d.lo+ln.rng.Intn(d.hi-d.lo+1))
	}
	ln.flush()
}

// step performs one min-conflicts move. Returns false when there is no
// violated constraint with repairable variables.
func (ln *lane) step() bool {
	ci := ln.pickViolated()
	if ci < 0 {
		// All hard constraints hold; the pressure comes from the
		// objective bound. Work on an objective variable instead.
		return ln.stepObjective()
	}

	roots := ln.s.conRoots[ci]
	if len(roots) == 0 {
		return false
	}
	v := roots[ln.rng.Intn(len(roots))]
	return ln.moveVar(v, ln.s.m.cons[ci])
}

// stepObjective lowers a random objective variable toward the bound.
func (ln *lane) stepObjective() bool {
	if len(ln.s.m.objective) == 0 {
		return false
	}
	v := int(ln.s.m.objective[ln.rng.Intn(len(ln.s.m.objective))])
	if ln.s.m.vars[v].derived {
		return false
	}
	return ln.moveVar(v, nil)
}

// moveVar tries candidate values for v and keeps the lowest-cost one.
func (ln *lane) moveVar(v int, c constraint) bool {
	cur := ln.assign[v]
	candidates := ln.candidates(v, c)
	if len(candidates) == 0 {
		return false
	}

	if ln.rng.Float64() < noiseProbability {
		ln.set(v, candidates[ln.rng.Intn(len(candidates))])
		ln.flush()
		return true
	}

	bestVal, bestCost := cur, math.MaxInt
	for _, val := range candidates {
		ln.set(v, val)
		ln.flush()
		if cost := ln.cost(); cost < bestCost || (cost == bestCost && ln.rng.Intn(2) == 0) {
			bestCost = cost
			bestVal = val
		}
		ln.set(v, cur)
		ln.flush()
	}
	if bestVal == cur {
		return true
	}
	ln.set(v, bestVal)
	ln.flush()
	return true
}

// candidates assembles the values to try for v: full enumeration for
// small domains, otherwise local and geometric steps plus any
// constraint-specific suggestions.
func (ln *lane) candidates(v int, c constraint) []int {
	d := &ln.s.m.vars[v]
	cur := ln.assign[v]
	if d.hi-d.lo+1 <= smallDomainLimit {
		out := make([]int, 0, d.hi-d.lo)
		for val := d.lo; val <= d.hi; val++ {
			if val != cur {
				out = append(out, val)
			}
		}
		return out
	}

	raw := []int{cur - 1, cur + 1, cur / 2, cur * 2, d.lo, d.lo + ln.rng.Intn(d.hi-d.lo+1)}
	if c != nil {
		raw = append(raw, c.suggest(v, ln.assign)...)
		raw = append(raw, ln.chainSuggest(c, v)...)
		for _, ci := range ln.s.varConsAll[v] {
			raw = append(raw, ln.s.m.cons[ci].suggest(v, ln.assign)...)
		}
	}
	out := raw[:0]
	seen := make(map[int]bool, len(raw))
	for _, val := range raw {
		if val < d.lo {
			val = d.lo
		}
		if val > d.hi {
			val = d.hi
		}
		if val != cur && !seen[val] {
			seen[val] = true
			out = append(out, val)
		}
	}
	return out
}

// chainSuggest chases a bound on a derived product one functional level
// down: a constraint on p where p == x * y implies a minimal value for a
// factor given the other.
func (ln *lane) chainSuggest(c constraint, v int) []int {
	lc, ok := c.(*linearCon)
	if !ok || len(lc.vars) != 1 {
		return nil
	}
	f, ok := ln.s.funcByOut[int(lc.vars[0])]
	if !ok {
		return nil
	}
	mc, ok := f.(*multCon)
	if !ok {
		return nil
	}
	var other IntVar
	switch v {
	case int(mc.x):
		other = mc.y
	case int(mc.y):
		other = mc.x
	default:
		return nil
	}
	if ln.assign[other] <= 0 {
		return nil
	}
	return []int{ceilDiv(lc.rhs, ln.assign[other])}
}

// pickViolated returns a random violated constraint index, or -1.
func (ln *lane) pickViolated() int {
	if ln.total == 0 {
		return -1
	}
	// Reservoir-style pick over violated constraints.
	count, pick := 0, -1
	for ci, v := range ln.viol {
		if v > 0 {
			count++
			if ln.rng.Intn(count) == 0 {
				pick = ci
			}
		}
	}
	return pick
}

// set assigns v and marks it dirty; flush must run before costs are read.
func (ln *lane) set(v, val int) {
	if ln.assign[v] == val {
		return
	}
	ln.assign[v] = val
	if !ln.dirty[v] {
		ln.dirty[v] = true
		ln.changed = append(ln.changed, v)
	}
}

// flush propagates functional definitions and refreshes the violation
// degrees of every constraint touched by the changed variables.
func (ln *lane) flush() {
	if len(ln.changed) == 0 {
		return
	}
	// One ordered pass suffices: functional constraints are posted in
	// dependency order.
	for _, f := range ln.s.funcs {
		inputChanged := false
		for _, in := range f.inputs() {
			if ln.dirty[in] {
				inputChanged = true
				break
			}
		}
		if !inputChanged {
			continue
		}
		out := f.output()
		if val := f.recompute(ln.assign); val != ln.assign[out] {
			ln.assign[out] = val
			if !ln.dirty[out] {
				ln.dirty[out] = true
				ln.changed = append(ln.changed, out)
			}
		}
	}

	refreshed := make(map[int]bool)
	for _, v := range ln.changed {
		for _, ci := range ln.s.varConsAll[v] {
			if refreshed[ci] {
				continue
			}
			refreshed[ci] = true
			old := ln.viol[ci]
			now := ln.s.m.cons[ci].violation(ln.assign)
			ln.viol[ci] = now
			ln.total += now - old
		}
		ln.dirty[v] = false
	}
	ln.changed = ln.changed[:0]
}

func (ln *lane) propagateAll() {
	for _, f := range ln.s.funcs {
		ln.assign[f.output()] = f.recompute(ln.assign)
	}
	for _, v := range ln.changed {
		ln.dirty[v] = false
	}
	ln.changed = ln.changed[:0]
}

func (ln *lane) recomputeAllViolations() {
	ln.total = 0
	for ci, c := range ln.s.m.cons {
		ln.viol[ci] = c.violation(ln.assign)
		ln.total += ln.viol[ci]
	}
}
