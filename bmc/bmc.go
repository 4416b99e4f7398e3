// Package bmc implements the Bounded Model Checking engine (spec.md §4.5):
// iterative unrolling of the transition relation with a single-level
// push/pop of the feared-events predicate at each order, until either a
// counterexample is found or a k-Induction-announced bound is met.
package bmc

import (
	"github.com/lmachina/reachkit/encode"
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/lmachina/reachkit/internal/rlog"
	"github.com/lmachina/reachkit/petri"
	"github.com/lmachina/reachkit/solver"
)

// Verdict is BMC's result.
type Verdict byte

const (
	Running Verdict = iota
	CEX
	INV
	Cancelled
)

// Result is what Run returns.
type Result struct {
	Verdict Verdict
	Order   int
	Model   petri.Marking
}

// Bound is a non-blocking, write-once-per-sender channel on which a
// k-Induction worker announces its inductive bound (spec.md §4.5 step 4,
// §5 rendezvous point 1). BMC polls it once per unroll iteration.
type Bound <-chan int

// Run executes the BMC loop against net and f, asserting R (f.P's
// underlying feared predicate, f.R) fresh at every order. driver must
// already have order 0 declared and the initial marking asserted; Run
// declares every subsequent order itself. bound may be nil if no
// k-Induction worker is racing this BMC instance.
func Run(tok cancel.Token, driver solver.Driver, net *petri.Net, f *formula.Formula, bound Bound, log rlog.Logger) Result {
	if log == nil {
		log = rlog.Discard{}
	}
	k := 0
	inductiveBound := -1
	for {
		select {
		case <-tok.Done():
			return Result{Verdict: Cancelled}
		default:
		}

		if err := driver.Push(); err != nil {
			log.Error("bmc: push failed", map[string]any{"order": k, "err": err.Error()})
			return Result{Verdict: Cancelled}
		}
		if err := driver.Assert(formula.PinAt(f.R, k)); err != nil {
			log.Error("bmc: assert R failed", map[string]any{"order": k, "err": err.Error()})
			return Result{Verdict: Cancelled}
		}

		verdict, err := driver.CheckSat()
		if err != nil {
			log.Error("bmc: check-sat failed", map[string]any{"order": k, "err": err.Error()})
			return Result{Verdict: Cancelled}
		}
		if verdict == solver.Aborted {
			return Result{Verdict: Cancelled}
		}

		if verdict == solver.Sat {
			model, err := driver.GetMarking(k)
			if err != nil {
				log.Error("bmc: get-marking failed", map[string]any{"order": k, "err": err.Error()})
				return Result{Verdict: Cancelled}
			}
			log.Info("bmc: counterexample found", map[string]any{"order": k})
			return Result{Verdict: CEX, Order: k, Model: model}
		}

		if err := driver.Pop(); err != nil {
			log.Error("bmc: pop failed", map[string]any{"order": k, "err": err.Error()})
			return Result{Verdict: Cancelled}
		}
		if err := driver.DeclarePlaces(k + 1); err != nil {
			return Result{Verdict: Cancelled}
		}
		if err := driver.Assert(encode.TransitionRelation(net, k, false)); err != nil {
			return Result{Verdict: Cancelled}
		}
		k++

		if bound != nil && inductiveBound < 0 {
			select {
			case boundK, ok := <-bound:
				if ok {
					inductiveBound = boundK
				}
			default:
			}
		}
		if inductiveBound >= 0 && k >= inductiveBound {
			log.Info("bmc: k-induction bound reached", map[string]any{"order": k, "bound": inductiveBound})
			return Result{Verdict: INV, Order: k}
		}
	}
}
