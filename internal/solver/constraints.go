package solver

// constraint is the engine-facing view of a posted constraint: it can
// report its violation degree under an assignment, list the variables it
// touches, and suggest repair values for one of them.
type constraint interface {
	// touched returns every variable index the constraint reads,
	// including enforcement literals.
	touched() []int
	// violation returns 0 when the constraint is satisfied under a,
	// and a positive degree otherwise.
	violation(a []int) int
	// suggest returns candidate values for variable v that would move
	// the constraint toward satisfaction. May return nil.
	suggest(v int, a []int) []int
}

// functional is a constraint whose target variable is fully determined by
// its inputs; the engine recomputes the target instead of searching it.
type functional interface {
	constraint
	output() int
	recompute(a []int) int
	inputs() []int
}

func litsHold(lits []Literal, a []int) bool {
	for _, l := range lits {
		if !l.holds(a) {
			return false
		}
	}
	return true
}

func litVars(lits []Literal, dst []int) []int {
	for _, l := range lits {
		dst = append(dst, int(l.v))
	}
	return dst
}

type linearOp int

const (
	opEq linearOp = iota
	opNeq
	opGe
)

// linearCon constrains sum(vars) op rhs under the onlyIf literals.
type linearCon struct {
	vars   []IntVar
	op     linearOp
	rhs    int
	onlyIf []Literal
}

func (c *linearCon) touched() []int {
	out := make([]int, 0, len(c.vars)+len(c.onlyIf))
	for _, v := range c.vars {
		out = append(out, int(v))
	}
	return litVars(c.onlyIf, out)
}

func (c *linearCon) sum(a []int) int {
	s := 0
	for _, v := range c.vars {
		s += a[v]
	}
	return s
}

func (c *linearCon) violation(a []int) int {
	if !litsHold(c.onlyIf, a) {
		return 0
	}
	s := c.sum(a)
	switch c.op {
	case opEq:
		d := s - c.rhs
		if d < 0 {
			d = -d
		}
		return d
	case opNeq:
		if s == c.rhs {
			return 1
		}
		return 0
	default: // opGe
		if s < c.rhs {
			return c.rhs - s
		}
		return 0
	}
}

func (c *linearCon) suggest(v int, a []int) []int {
	for _, l := range c.onlyIf {
		if int(l.v) == v {
			// Flipping the enforcement literal disables the constraint.
			if l.holds(a) {
				return []int{1 - a[v]}
			}
			return nil
		}
	}
	member := false
	for _, cv := range c.vars {
		if int(cv) == v {
			member = true
			break
		}
	}
	if !member {
		return nil
	}
	// Value closing the gap for a unit-coefficient member.
	rest := c.sum(a) - a[v]
	switch c.op {
	case opEq:
		return []int{c.rhs - rest}
	case opGe:
		return []int{c.rhs - rest}
	default: // opNeq: any step away from equality
		return []int{a[v] + 1, a[v] - 1}
	}
}

// reifEqCon links b <=> (x == value). The indicator b is derived.
type reifEqCon struct {
	x     IntVar
	value int
	b     BoolVar
}

func (c *reifEqCon) touched() []int { return []int{int(c.x), int(c.b)} }

func (c *reifEqCon) violation(a []int) int {
	want := 0
	if a[c.x] == c.value {
		want = 1
	}
	if a[c.b] != want {
		return 1
	}
	return 0
}

func (c *reifEqCon) suggest(v int, a []int) []int {
	if v == int(c.x) {
		if a[c.b] == 1 {
			return []int{c.value}
		}
		return []int{c.value + 1, c.value - 1}
	}
	return nil
}

func (c *reifEqCon) output() int { return int(c.b) }

func (c *reifEqCon) inputs() []int { return []int{int(c.x)} }

func (c *reifEqCon) recompute(a []int) int {
	if a[c.x] == c.value {
		return 1
	}
	return 0
}

// multCon posts target == x * y with a derived target.
type multCon struct {
	target, x, y IntVar
}

func (c *multCon) touched() []int { return []int{int(c.target), int(c.x), int(c.y)} }

func (c *multCon) violation(a []int) int {
	d := a[c.target] - a[c.x]*a[c.y]
	if d < 0 {
		d = -d
	}
	return d
}

func (c *multCon) suggest(v int, a []int) []int {
	switch v {
	case int(c.x):
		if a[c.y] != 0 {
			return []int{ceilDiv(a[c.target], a[c.y])}
		}
	case int(c.y):
		if a[c.x] != 0 {
			return []int{ceilDiv(a[c.target], a[c.x])}
		}
	}
	return nil
}

func (c *multCon) output() int { return int(c.target) }

func (c *multCon) inputs() []int { return []int{int(c.x), int(c.y)} }

func (c *multCon) recompute(a []int) int { return a[c.x] * a[c.y] }

// sumCon posts target == sum(vars) with a derived target.
type sumCon struct {
	target IntVar
	vars   []IntVar
}

func (c *sumCon) touched() []int {
	out := make([]int, 0, len(c.vars)+1)
	out = append(out, int(c.target))
	for _, v := range c.vars {
		out = append(out, int(v))
	}
	return out
}

func (c *sumCon) violation(a []int) int {
	s := 0
	for _, v := range c.vars {
		s += a[v]
	}
	d := a[c.target] - s
	if d < 0 {
		d = -d
	}
	return d
}

func (c *sumCon) suggest(v int, a []int) []int { return nil }

func (c *sumCon) output() int { return int(c.target) }

func (c *sumCon) inputs() []int {
	out := make([]int, len(c.vars))
	for i, v := range c.vars {
		out[i] = int(v)
	}
	return out
}

func (c *sumCon) recompute(a []int) int {
	s := 0
	for _, v := range c.vars {
		s += a[v]
	}
	return s
}

// clauseCon is a disjunction (or conjunction) of literals under the
// onlyIf enforcement literals.
type clauseCon struct {
	lits   []Literal
	conj   bool
	onlyIf []Literal
}

func (c *clauseCon) touched() []int {
	out := make([]int, 0, len(c.lits)+len(c.onlyIf))
	out = litVars(c.lits, out)
	return litVars(c.onlyIf, out)
}

func (c *clauseCon) violation(a []int) int {
	if !litsHold(c.onlyIf, a) {
		return 0
	}
	if c.conj {
		n := 0
		for _, l := range c.lits {
			if !l.holds(a) {
				n++
			}
		}
		return n
	}
	for _, l := range c.lits {
		if l.holds(a) {
			return 0
		}
	}
	return 1
}

func (c *clauseCon) suggest(v int, a []int) []int {
	for _, l := range c.onlyIf {
		if int(l.v) == v && l.holds(a) {
			return []int{1 - a[v]}
		}
	}
	for _, l := range c.lits {
		if int(l.v) == v {
			return []int{1 - a[v]}
		}
	}
	return nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
