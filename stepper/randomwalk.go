package stepper

import (
	"math/rand"

	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/lmachina/reachkit/petri"
)

// WalkResult is RandomWalk's outcome.
type WalkResult struct {
	Found bool
	Model petri.Marking
	Trace []petri.TransRef
}

// RandomWalk fires uniformly-random enabled transitions from net's initial
// marking up to bound steps, checking f.R after every step (spec.md §8.1's
// supplemented feature, grounded on
// _examples/original_source/smpt/checkers/randomwalk.py and
// smpt/interfaces/hwalk.py): a cheap, embarrassingly parallel falsification
// heuristic that can win the portfolio race before any SMT-based method
// completes. It reuses Step's enabled-transition enumeration rather than
// duplicating firing logic.
func RandomWalk(tok cancel.Token, net *petri.Net, f *formula.Formula, bound int, rng *rand.Rand) WalkResult {
	m := net.InitialMarking()
	if formula.Eval(f.R, m) {
		return WalkResult{Found: true, Model: m}
	}

	trace := make([]petri.TransRef, 0, bound)
	for i := 0; i < bound; i++ {
		if tok.Cancelled() {
			return WalkResult{}
		}
		enabled := net.EnabledTransitions(m)
		if len(enabled) == 0 {
			return WalkResult{}
		}
		tr := enabled[rng.Intn(len(enabled))]
		next, err := net.Fire(m, tr)
		if err != nil {
			return WalkResult{}
		}
		m = next
		trace = append(trace, tr)
		if formula.Eval(f.R, m) {
			return WalkResult{Found: true, Model: m, Trace: trace}
		}
	}
	return WalkResult{}
}
