// Package ic3 implements the IC3/PDR frame-based procedure (spec.md §4.7):
// an ordered list of frames, a blocking-cube workset, inductive
// generalization via unsat-core minimization, frame propagation, and
// fixpoint detection. This is the most elaborate of the three engines, so it
// follows spec.md §4.7's named sub-procedures (strengthen, propagate,
// inductively_generalize, generate_clause, push_generalization) as
// correspondingly named unexported methods rather than inlining them into
// one loop.
package ic3

import (
	"sort"

	"github.com/lmachina/reachkit/encode"
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/lmachina/reachkit/internal/rlog"
	"github.com/lmachina/reachkit/petri"
	"github.com/lmachina/reachkit/solver"
)

// Verdict is IC3's result.
type Verdict byte

const (
	Running Verdict = iota
	CEX
	INV
	Cancelled
)

// Result is what Prove returns.
type Result struct {
	Verdict Verdict
	Model   petri.Marking
	Frame   int // the fixpoint frame index, when Verdict == INV
}

// cube is an unordered conjunction of atoms (spec.md's "Cube"), always
// expressed with TokenCount left, IntConst right per formula.DNF's
// normalization, carried unpinned so it can be asserted at any order via
// formula.PinAt.
type cube []*formula.Expr

func (c cube) expr() *formula.Expr {
	if len(c) == 1 {
		return c[0]
	}
	return formula.And(c...)
}

// negateCube returns the blocking clause derived from a cube: a disjunction
// of each atom's negation (spec.md §4.7's generate_clause).
func negateCube(c cube) *formula.Expr {
	return formula.Negate(c.expr())
}

// markingCube builds the (non-minimized) cube asserting every place of net
// equals its value in m — the conservative predecessor-state extraction
// used by push_generalization before generate_clause's unsat core shrinks
// it down to the literals that actually matter.
func markingCube(net *petri.Net, m petri.Marking) cube {
	places := net.Places()
	c := make(cube, 0, len(places))
	for _, pl := range places {
		ref, _ := net.PlaceByID(pl.ID)
		c = append(c, formula.Atom(formula.TokenCount([]petri.PlaceRef{ref}, 0), formula.OpEq, formula.IntConst(m[ref])))
	}
	return c
}

// reachedCube extracts the disjunct of f.R (already in DNF) that m
// satisfies, as a cube — the bad-state extraction used at the top of
// strengthen.
func reachedCube(f *formula.Formula, m petri.Marking) cube {
	disjunct := formula.ReachedCube(f.R, m)
	if disjunct == nil {
		return nil
	}
	return formula.CubeAtoms(disjunct)
}

// stateAt pairs a cube with the frame index push_generalization discovered
// it at (spec.md §4.7's "(n+1, s)" worklist entries).
type stateAt struct {
	n int
	c cube
}

// counterexample unwinds strengthen/inductively_generalize back to Prove
// without Go exceptions (spec.md §9: "Exception-based control flow... becomes
// an explicit result variant").
type counterexample struct {
	model petri.Marking
}

// Engine holds IC3's mutable frame state across one Prove call. It is not
// safe for concurrent use — the portfolio scheduler gives every worker its
// own Engine and its own Driver.
type Engine struct {
	net    *petri.Net
	f      *formula.Formula
	driver solver.Driver
	tok    cancel.Token
	log    rlog.Logger

	frames      []*frame // frames[0] is a placeholder; F0 ≡ I is asserted directly, never stored as clauses
	declaredMax int
}

// Prove runs the IC3/PDR loop against net and f over driver until a
// counterexample is found, a fixpoint proves invariance, or tok is
// cancelled. driver must not yet have any context asserted; Prove declares
// and asserts everything it needs, including order 0's initial marking.
func Prove(tok cancel.Token, driver solver.Driver, net *petri.Net, f *formula.Formula, log rlog.Logger) Result {
	if log == nil {
		log = rlog.Discard{}
	}
	e := &Engine{net: net, f: f, driver: driver, tok: tok, log: log, declaredMax: -1}

	if res, done := e.checkBaseCases(); done {
		return res
	}

	e.frames = []*frame{newFrame(), newFrame(f.P)} // F0 placeholder, F1 = {P}

	k := 1
	for {
		select {
		case <-e.tok.Done():
			return Result{Verdict: Cancelled}
		default:
		}

		e.frames = append(e.frames, newFrame(f.P)) // F_{k+1} = {P}

		if cex := e.strengthen(k); cex != nil {
			return Result{Verdict: CEX, Model: cex.model}
		}
		e.propagate(k)

		if i, ok := e.fixpoint(); ok {
			e.log.Info("ic3: fixpoint reached", map[string]any{"frame": i})
			return Result{Verdict: INV, Frame: i}
		}
		k++
	}
}

// checkBaseCases runs the two pre-loop checks spec.md §4.7 requires before
// entering strengthen/propagate: I⇒P and I∧T⇒P'.
func (e *Engine) checkBaseCases() (Result, bool) {
	e.ensureDeclared(1)

	// I ⇒ P, i.e. I ∧ R is unsat at order 0.
	if err := e.driver.Push(); err != nil {
		return Result{Verdict: Cancelled}, true
	}
	if err := e.driver.Assert(encode.InitialMarking(e.net, 0)); err != nil {
		return Result{Verdict: Cancelled}, true
	}
	if err := e.driver.Assert(formula.PinAt(e.f.R, 0)); err != nil {
		return Result{Verdict: Cancelled}, true
	}
	v, err := e.driver.CheckSat()
	if err != nil {
		return Result{Verdict: Cancelled}, true
	}
	if v == solver.Aborted {
		return Result{Verdict: Cancelled}, true
	}
	if v == solver.Sat {
		m, _ := e.driver.GetMarking(0)
		_ = e.driver.Pop()
		return Result{Verdict: CEX, Model: m}, true
	}
	if err := e.driver.Pop(); err != nil {
		return Result{Verdict: Cancelled}, true
	}

	// I ∧ T ⇒ P', i.e. I@0 ∧ T(0,1) ∧ R@1 is unsat.
	if err := e.driver.Push(); err != nil {
		return Result{Verdict: Cancelled}, true
	}
	if err := e.driver.Assert(encode.InitialMarking(e.net, 0)); err != nil {
		return Result{Verdict: Cancelled}, true
	}
	if err := e.driver.Assert(encode.TransitionRelation(e.net, 0, false)); err != nil {
		return Result{Verdict: Cancelled}, true
	}
	if err := e.driver.Assert(formula.PinAt(e.f.R, 1)); err != nil {
		return Result{Verdict: Cancelled}, true
	}
	v, err = e.driver.CheckSat()
	if err != nil {
		return Result{Verdict: Cancelled}, true
	}
	if v == solver.Aborted {
		return Result{Verdict: Cancelled}, true
	}
	if v == solver.Sat {
		m, _ := e.driver.GetMarking(1)
		_ = e.driver.Pop()
		return Result{Verdict: CEX, Model: m}, true
	}
	if err := e.driver.Pop(); err != nil {
		return Result{Verdict: Cancelled}, true
	}
	return Result{}, false
}

// ensureDeclared declares every place order up to and including k that has
// not already been declared on this Engine's driver.
func (e *Engine) ensureDeclared(k int) {
	for o := e.declaredMax + 1; o <= k; o++ {
		_ = e.driver.DeclarePlaces(o)
	}
	if k > e.declaredMax {
		e.declaredMax = k
	}
}

// assertFrame asserts frame i's content at order: F0 is asserted as the
// literal initial marking (spec.md §3's "F0 ≡ I"); every other frame is
// asserted as the conjunction of its clauses, pinned to order.
func (e *Engine) assertFrame(i, order int) error {
	if i == 0 {
		return e.driver.Assert(encode.InitialMarking(e.net, order))
	}
	fr := e.frames[i]
	for _, c := range fr.clauses {
		if err := e.driver.Assert(formula.PinAt(c, order)); err != nil {
			return err
		}
	}
	return nil
}

// strengthen repeatedly blocks reachable-in-one-step violations of Fk ∧ T ⇒
// P' until none remain (spec.md §4.7).
func (e *Engine) strengthen(k int) *counterexample {
	for {
		select {
		case <-e.tok.Done():
			return nil
		default:
		}

		e.ensureDeclared(k + 1)
		if err := e.driver.Push(); err != nil {
			return nil
		}
		if err := e.assertFrame(k, k); err != nil {
			_ = e.driver.Pop()
			return nil
		}
		if err := e.driver.Assert(encode.TransitionRelation(e.net, k, false)); err != nil {
			_ = e.driver.Pop()
			return nil
		}
		if err := e.driver.Assert(formula.PinAt(e.f.R, k+1)); err != nil {
			_ = e.driver.Pop()
			return nil
		}
		v, err := e.driver.CheckSat()
		if err != nil || v == solver.Aborted {
			_ = e.driver.Pop()
			return nil
		}
		if v == solver.Unsat {
			_ = e.driver.Pop()
			return nil // Fk ∧ T ⇒ P' holds
		}
		m, err := e.driver.GetMarking(k + 1)
		_ = e.driver.Pop()
		if err != nil {
			return nil
		}
		s := reachedCube(e.f, m)
		if s == nil {
			s = markingCube(e.net, m)
		}
		n, cex := e.inductivelyGeneralize(s, k-2, k)
		if cex != nil {
			return cex
		}
		if cex := e.pushGeneralization([]stateAt{{n: n + 1, c: s}}, k); cex != nil {
			return cex
		}
	}
}

// propagate pushes every clause of Fi that is inductive relative to Fi into
// Fi+1, for i=1..k (spec.md §4.7).
func (e *Engine) propagate(k int) {
	for i := 1; i <= k; i++ {
		for _, c := range e.frames[i].clauses {
			select {
			case <-e.tok.Done():
				return
			default:
			}
			if e.implies(i, c) {
				e.frames[i+1].add(c)
			}
		}
	}
}

// implies checks Fi ∧ T ⇒ c' by checking Fi ∧ T ∧ ¬c' for unsat.
func (e *Engine) implies(i int, c *formula.Expr) bool {
	e.ensureDeclared(i + 1)
	if err := e.driver.Push(); err != nil {
		return false
	}
	defer func() { _ = e.driver.Pop() }()
	if err := e.assertFrame(i, i); err != nil {
		return false
	}
	if err := e.driver.Assert(encode.TransitionRelation(e.net, i, false)); err != nil {
		return false
	}
	if err := e.driver.Assert(formula.PinAt(formula.Negate(c), i+1)); err != nil {
		return false
	}
	v, err := e.driver.CheckSat()
	if err != nil {
		return false
	}
	return v == solver.Unsat
}

// fixpoint reports the smallest i for which clauses(Fi) == clauses(Fi+1) as
// sets (spec.md §4.7).
func (e *Engine) fixpoint() (int, bool) {
	for i := 1; i < len(e.frames)-1; i++ {
		if e.frames[i].equalSet(e.frames[i+1]) {
			return i, true
		}
	}
	return 0, false
}

// inductivelyGeneralize implements spec.md §4.7's inductively_generalize:
// find the largest frame s can't be excluded from within [max(1,min+1),k],
// generalize a blocking clause there, and report one level below it (or k if
// s survives every frame in range).
func (e *Engine) inductivelyGeneralize(s cube, min, k int) (int, *counterexample) {
	if min < 0 {
		if reach, m := e.reachableFromInit(s); reach {
			return 0, &counterexample{model: m}
		}
	}
	lo := min + 1
	if lo < 1 {
		lo = 1
	}
	for i := k; i >= lo; i-- {
		if reach, _ := e.reachableAtFrame(i, s); reach {
			e.generateClause(s, i-1, k)
			return i - 1, nil
		}
	}
	e.generateClause(s, k, k)
	return k, nil
}

// reachableFromInit checks whether I ∧ s is sat at order 0.
func (e *Engine) reachableFromInit(s cube) (bool, petri.Marking) {
	e.ensureDeclared(0)
	if err := e.driver.Push(); err != nil {
		return false, nil
	}
	defer func() { _ = e.driver.Pop() }()
	if err := e.driver.Assert(encode.InitialMarking(e.net, 0)); err != nil {
		return false, nil
	}
	if err := e.driver.Assert(formula.PinAt(s.expr(), 0)); err != nil {
		return false, nil
	}
	v, err := e.driver.CheckSat()
	if err != nil || v != solver.Sat {
		return false, nil
	}
	m, _ := e.driver.GetMarking(0)
	return true, m
}

// reachableAtFrame checks whether Fn ∧ T ∧ s' is sat — whether s has a
// predecessor consistent with Fn — returning that predecessor's marking at
// order n.
func (e *Engine) reachableAtFrame(n int, s cube) (bool, petri.Marking) {
	e.ensureDeclared(n + 1)
	if err := e.driver.Push(); err != nil {
		return false, nil
	}
	defer func() { _ = e.driver.Pop() }()
	if err := e.assertFrame(n, n); err != nil {
		return false, nil
	}
	if err := e.driver.Assert(encode.TransitionRelation(e.net, n, false)); err != nil {
		return false, nil
	}
	if err := e.driver.Assert(formula.PinAt(s.expr(), n+1)); err != nil {
		return false, nil
	}
	v, err := e.driver.CheckSat()
	if err != nil || v != solver.Sat {
		return false, nil
	}
	m, _ := e.driver.GetMarking(n)
	return true, m
}

// generateClause implements spec.md §4.7's generate_clause: runs the solver
// with each literal of s' individually labeled under Fi ∧ T ∧ ¬s, expects
// unsat, and builds the blocking clause from the negated unsat core (falling
// back to the full cube if the driver returns an empty core, e.g. solver.Fake).
// The clause is added to every frame 1..i+1.
func (e *Engine) generateClause(s cube, i, k int) {
	e.ensureDeclared(i + 1)
	if err := e.driver.Push(); err != nil {
		return
	}
	ok := e.assertFrame(i, i) == nil &&
		e.driver.Assert(encode.TransitionRelation(e.net, i, false)) == nil &&
		e.driver.Assert(formula.PinAt(formula.Negate(s.expr()), i)) == nil
	labels := make(map[string]*formula.Expr, len(s))
	if ok {
		for _, atom := range s {
			lbl := e.driver.NextLabel()
			if err := e.driver.AssertLabeled(formula.PinAt(atom, i+1), lbl); err != nil {
				ok = false
				break
			}
			labels[lbl] = atom
		}
	}
	var core []string
	if ok {
		if v, err := e.driver.CheckSat(); err == nil && v == solver.Unsat {
			core, _ = e.driver.GetUnsatCore()
		}
	}
	_ = e.driver.Pop()

	coreAtoms := make([]*formula.Expr, 0, len(core))
	for _, lbl := range core {
		if atom, found := labels[lbl]; found {
			coreAtoms = append(coreAtoms, atom)
		}
	}
	if len(coreAtoms) == 0 {
		coreAtoms = s
	}
	clause := negateCube(coreAtoms)

	top := i + 1
	if top > len(e.frames)-1 {
		top = len(e.frames) - 1
	}
	for j := 1; j <= top; j++ {
		e.frames[j].add(clause)
	}
}

// pushGeneralization implements spec.md §4.7's push_generalization: drain a
// worklist of (frame index, cube) pairs, always processing the smallest
// index first, pulling out real predecessors and re-blocking them at a
// higher level until every entry exceeds k.
func (e *Engine) pushGeneralization(states []stateAt, k int) *counterexample {
	for len(states) > 0 {
		sort.SliceStable(states, func(a, b int) bool { return states[a].n < states[b].n })
		st := states[0]
		states = states[1:]
		if st.n > k {
			return nil
		}
		if reach, model := e.reachableAtFrame(st.n, st.c); reach {
			pred := markingCube(e.net, model)
			m, cex := e.inductivelyGeneralize(pred, st.n-2, k)
			if cex != nil {
				return cex
			}
			states = append(states, stateAt{n: m + 1, c: pred})
		} else {
			m, cex := e.inductivelyGeneralize(st.c, st.n, k)
			if cex != nil {
				return cex
			}
			states = append(states, stateAt{n: m + 1, c: st.c})
		}
	}
	return nil
}
