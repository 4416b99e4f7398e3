package solver

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/petri"
)

// Fake is a deterministic, in-process stand-in for a real SMT solver,
// implementing Driver by brute-force explicit-state search over net instead
// of delegating to an SMT-LIB subprocess. It exists so the engine packages
// and the end-to-end scenarios of spec.md §8 are testable without an
// installed Z3-equivalent binary, and so CI never depends on one.
//
// Limitations (acceptable for its role as a test double, not a production
// solver): free variables (KindVar) and symbolic deltas always evaluate to
// 0, so reduction-bridge formulas involving auxiliary variables are out of
// scope for Fake; get-unsat-core returns every currently labeled assertion
// rather than a minimized core; the explored path length is capped by
// maxDepth to bound the brute-force search.
type Fake struct {
	net      *petri.Net
	maxDepth int

	mu     sync.Mutex
	frames [][]assertion
	model  []petri.Marking

	killed atomic.Bool
	labelN int
}

type assertion struct {
	e     *formula.Expr
	label string
}

var _ Driver = (*Fake)(nil)

// ErrSearchTooDeep is returned by CheckSat when the assertions reference an
// order beyond maxDepth.
var ErrSearchTooDeep = errors.New("solver: fake driver search exceeds configured depth bound")

// NewFake returns a Fake bound to net, exploring paths up to maxDepth steps.
// maxDepth should comfortably exceed the longest unrolling any engine under
// test will reach (the S1-S6 scenarios of spec.md §8 never exceed single
// digits).
func NewFake(net *petri.Net, maxDepth int) *Fake {
	return &Fake{net: net, maxDepth: maxDepth, frames: [][]assertion{nil}}
}

func (f *Fake) Push() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, nil)
	return nil
}

func (f *Fake) Pop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) <= 1 {
		return nil
	}
	f.frames = f.frames[:len(f.frames)-1]
	return nil
}

func (f *Fake) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = [][]assertion{nil}
	return nil
}

// DeclarePlaces is a no-op for Fake: place non-negativity always holds for
// a real petri.Marking, so there is nothing to track.
func (f *Fake) DeclarePlaces(k int) error { return nil }

func (f *Fake) Assert(e *formula.Expr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	top := len(f.frames) - 1
	f.frames[top] = append(f.frames[top], assertion{e: e})
	return nil
}

func (f *Fake) AssertLabeled(e *formula.Expr, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	top := len(f.frames) - 1
	f.frames[top] = append(f.frames[top], assertion{e: e, label: label})
	return nil
}

// AssertRaw is a no-op: Fake evaluates formula.Expr trees against concrete
// markings (see the Fake doc comment's free-variable limitation) and has no
// SMT-LIB text interpreter to hand raw reduction-bridge assertions to.
func (f *Fake) AssertRaw(text string) error { return nil }

func (f *Fake) NextLabel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labelN++
	return fmt.Sprintf("lit@c%d", f.labelN)
}

func (f *Fake) Kill()        { f.killed.Store(true) }
func (f *Fake) Killed() bool { return f.killed.Load() }

// active flattens every currently pushed assertion.
func (f *Fake) active() []assertion {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []assertion
	for _, level := range f.frames {
		out = append(out, level...)
	}
	return out
}

// CheckSat searches for a path m0..mN (N = the highest order referenced by
// any active assertion) consistent with net's transition relation
// (including stutter) that satisfies every active assertion.
func (f *Fake) CheckSat() (Verdict, error) {
	if f.Killed() {
		return Aborted, nil
	}
	active := f.active()

	maxOrder := 0
	for _, a := range active {
		if m := formula.MaxStep(a.e); m > maxOrder {
			maxOrder = m
		}
	}
	if maxOrder > f.maxDepth {
		return Unknown, ErrSearchTooDeep
	}

	path := make([]petri.Marking, maxOrder+1)
	found := searchPath(f.net, active, path, 0, maxOrder)
	if f.Killed() {
		return Aborted, nil
	}
	if !found {
		return Unsat, nil
	}
	f.mu.Lock()
	f.model = path
	f.mu.Unlock()
	return Sat, nil
}

// GetMarking returns the order'th marking of the path found by the last
// satisfiable CheckSat.
func (f *Fake) GetMarking(order int) (petri.Marking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order < 0 || order >= len(f.model) {
		return nil, fmt.Errorf("%w: order %d out of range [0,%d)", ErrProtocolMismatch, order, len(f.model))
	}
	return f.model[order].Clone(), nil
}

// GetUnsatCore returns every currently labeled assertion (an
// over-approximation of a minimized unsat core; see the Fake doc comment).
func (f *Fake) GetUnsatCore() ([]string, error) {
	var labels []string
	for _, a := range f.active() {
		if a.label != "" {
			labels = append(labels, a.label)
		}
	}
	return labels, nil
}

// evalAtPath evaluates a boolean-kinded e against a full path of markings,
// resolving each TokenCount node's place-sum at its pinned Step (defaulting
// to order 0 if unpinned).
func evalAtPath(e *formula.Expr, path []petri.Marking) bool {
	switch e.Kind {
	case formula.KindBoolConst:
		return e.BoolVal
	case formula.KindNot:
		return !evalAtPath(e.Operands[0], path)
	case formula.KindAnd:
		for _, o := range e.Operands {
			if !evalAtPath(o, path) {
				return false
			}
		}
		return true
	case formula.KindOr:
		for _, o := range e.Operands {
			if evalAtPath(o, path) {
				return true
			}
		}
		return false
	case formula.KindAtom:
		l, r := evalArithAtPath(e.Left, path), evalArithAtPath(e.Right, path)
		switch e.CompareOp {
		case formula.OpEq:
			return l == r
		case formula.OpNe:
			return l != r
		case formula.OpLe:
			return l <= r
		case formula.OpGe:
			return l >= r
		case formula.OpLt:
			return l < r
		case formula.OpGt:
			return l > r
		}
	}
	return false
}

// evalArithAtPath evaluates an arithmetic term against path. Free variables
// and symbolic deltas evaluate to 0 (see the Fake doc comment).
func evalArithAtPath(e *formula.Expr, path []petri.Marking) int64 {
	switch e.Kind {
	case formula.KindIntConst:
		return e.IntVal
	case formula.KindTokenCount:
		step := 0
		if e.StepSet {
			step = e.Step
		}
		if step < 0 || step >= len(path) {
			return 0
		}
		m := path[step]
		var sum int64
		for _, p := range e.Places {
			if int(p) >= 0 && int(p) < len(m) {
				sum += m[p]
			}
		}
		return sum + e.IntDelta
	case formula.KindArith:
		if len(e.ArithOps) == 0 {
			return 0
		}
		acc := evalArithAtPath(e.ArithOps[0], path)
		for _, o := range e.ArithOps[1:] {
			v := evalArithAtPath(o, path)
			switch e.ArithOp {
			case formula.ArithPlus:
				acc += v
			case formula.ArithTimes:
				acc *= v
			}
		}
		return acc
	}
	return 0
}

// searchPath performs a depth-first search filling path[i..end] and
// evaluates every assertion once path is complete. It tries, at each step,
// stuttering and every enabled transition's successor marking.
func searchPath(net *petri.Net, active []assertion, path []petri.Marking, i, end int) bool {
	if i == 0 {
		path[0] = net.InitialMarking()
	}
	if i == end {
		for _, a := range active {
			if !evalAtPath(a.e, path) {
				return false
			}
		}
		return true
	}
	cur := path[i]
	// Stutter.
	path[i+1] = cur
	if searchPath(net, active, path, i+1, end) {
		return true
	}
	for _, tr := range net.EnabledTransitions(cur) {
		next, err := net.Fire(cur, tr)
		if err != nil {
			continue
		}
		path[i+1] = next
		if searchPath(net, active, path, i+1, end) {
			return true
		}
	}
	return false
}
