// Package kinduction implements the k-Induction engine (spec.md §4.6): a
// companion loop to bmc that asserts safety along a k-length path and checks
// for a safe-to-safe inductive step, announcing a termination bound to BMC
// once the step holds.
package kinduction

import (
	"github.com/lmachina/reachkit/encode"
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/lmachina/reachkit/internal/rlog"
	"github.com/lmachina/reachkit/petri"
	"github.com/lmachina/reachkit/solver"
)

// Verdict is k-Induction's result. Unlike bmc, this engine never produces a
// counterexample itself — it only ever concludes INV or exits silently on
// cancellation, leaving CEX discovery to the other portfolio workers.
type Verdict byte

const (
	Running Verdict = iota
	INV
	Cancelled
)

// Result is what Run returns.
type Result struct {
	Verdict Verdict
	Order   int
}

// BoundSink is the write-once-per-sender channel (spec.md §5 rendezvous
// point 1) on which Run announces its inductive bound to a racing bmc.Run.
// A nil BoundSink means no BMC worker is listening.
type BoundSink chan<- int

// Run executes the k-Induction loop against net and f. driver must already
// have orders 0 and 1 declared and the transition relation 0→1 asserted
// (spec.md §4.6 step 1's initial-k precondition); Run asserts P@0 and
// declares and asserts every subsequent order itself. Unlike bmc.Run, no initial marking is
// asserted: this engine reasons about the inductive step in isolation, not
// about reachability from m0.
func Run(tok cancel.Token, driver solver.Driver, net *petri.Net, f *formula.Formula, bound BoundSink, log rlog.Logger) Result {
	if log == nil {
		log = rlog.Discard{}
	}
	k := 0
	if err := driver.Assert(formula.PinAt(f.P, k)); err != nil {
		log.Error("kinduction: assert P failed", map[string]any{"order": k, "err": err.Error()})
		return Result{Verdict: Cancelled}
	}
	for {
		select {
		case <-tok.Done():
			return Result{Verdict: Cancelled}
		default:
		}

		if err := driver.Push(); err != nil {
			log.Error("kinduction: push failed", map[string]any{"order": k, "err": err.Error()})
			return Result{Verdict: Cancelled}
		}
		if err := driver.Assert(formula.PinAt(f.R, k+1)); err != nil {
			log.Error("kinduction: assert R failed", map[string]any{"order": k + 1, "err": err.Error()})
			return Result{Verdict: Cancelled}
		}

		verdict, err := driver.CheckSat()
		if err != nil {
			log.Error("kinduction: check-sat failed", map[string]any{"order": k, "err": err.Error()})
			return Result{Verdict: Cancelled}
		}
		if verdict == solver.Aborted {
			return Result{Verdict: Cancelled}
		}

		if verdict == solver.Unsat {
			b := k + 1
			announce(bound, b)
			log.Info("kinduction: inductive step holds", map[string]any{"bound": b})
			return Result{Verdict: INV, Order: b}
		}

		// sat: the candidate step is inconclusive on its own. Advance the
		// path by one order and strengthen it with P at the new order, so
		// the next check runs with P@0..P@k asserted.
		if err := driver.Pop(); err != nil {
			log.Error("kinduction: pop failed", map[string]any{"order": k, "err": err.Error()})
			return Result{Verdict: Cancelled}
		}
		k++
		if err := driver.DeclarePlaces(k + 1); err != nil {
			return Result{Verdict: Cancelled}
		}
		if err := driver.Assert(encode.TransitionRelation(net, k, false)); err != nil {
			return Result{Verdict: Cancelled}
		}
		if err := driver.Assert(formula.PinAt(f.P, k)); err != nil {
			log.Error("kinduction: assert P failed", map[string]any{"order": k, "err": err.Error()})
			return Result{Verdict: Cancelled}
		}
	}
}

// announce is a non-blocking, best-effort write-once send: if bound is nil,
// unbuffered with no reader, or already holds a prior announcement, the
// send is simply dropped rather than blocking the engine's exit.
func announce(bound BoundSink, k int) {
	if bound == nil {
		return
	}
	select {
	case bound <- k:
	default:
	}
}
