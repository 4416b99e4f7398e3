package solver

import (
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/petri"
)

// Driver is the capability every BMC/k-Induction/IC3 worker programs
// against: push/pop a context, declare places, assert pinned formulas, and
// check satisfiability — without committing to whether the other end is a
// real SMT-LIB subprocess (TextDriver, wrapping a Proc) or the deterministic
// explicit-state stand-in used in tests (Fake). This is the same
// "capability set implemented by each variant" shape spec.md §9 calls for
// in place of the source's AbstractChecker inheritance.
type Driver interface {
	Push() error
	Pop() error
	Reset() error

	// DeclarePlaces declares every place of the bound net at order k and
	// asserts its non-negativity.
	DeclarePlaces(k int) error

	// Assert adds e (already pinned to its intended order(s), see
	// formula.PinAt) to the current context.
	Assert(e *formula.Expr) error

	// AssertLabeled is like Assert, but names the assertion label for
	// later retrieval via GetUnsatCore (spec.md §6's unsat-core mode).
	AssertLabeled(e *formula.Expr, label string) error

	// AssertRaw asserts already-rendered SMT-LIB2 text verbatim, bypassing
	// formula.Expr entirely. Only package reduction's bridge equations need
	// this today: they are built directly as SMT-LIB strings (package
	// reduction has no dependency on formula), so there is no Expr to hand
	// to Assert.
	AssertRaw(text string) error

	CheckSat() (Verdict, error)
	GetMarking(order int) (petri.Marking, error)
	GetUnsatCore() ([]string, error)
	NextLabel() string

	Kill()
	Killed() bool
}
