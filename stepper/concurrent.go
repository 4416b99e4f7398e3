package stepper

import (
	"github.com/lmachina/reachkit/bmc"
	"github.com/lmachina/reachkit/encode"
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/lmachina/reachkit/internal/rlog"
	"github.com/lmachina/reachkit/kinduction"
	"github.com/lmachina/reachkit/petri"
	"github.com/lmachina/reachkit/solver"
)

// pairFormula builds the EF-tagged Formula for "some reachable marking makes
// at least one of pairs simultaneously positive" (spec.md §4.8's "exists a
// marking with a new concurrent pair" formula).
func pairFormula(pairs [][2]int) *formula.Formula {
	disjuncts := make([]*formula.Expr, 0, len(pairs))
	for _, pr := range pairs {
		i, j := petri.PlaceRef(pr[0]), petri.PlaceRef(pr[1])
		disjuncts = append(disjuncts, formula.And(
			formula.Atom(formula.TokenCount([]petri.PlaceRef{i}, 0), formula.OpGe, formula.IntConst(1)),
			formula.Atom(formula.TokenCount([]petri.PlaceRef{j}, 0), formula.OpGe, formula.IntConst(1)),
		))
	}
	return formula.NewFormula(formula.Or(disjuncts...), formula.TagFinally)
}

// NewDriverFunc returns a fresh, independently-owned Driver each call, so
// AnalyzeConcurrentPlaces's two internal racing workers never share an SMT
// context (spec.md §5: "workers never share an SMT context").
type NewDriverFunc func() solver.Driver

// AnalyzeConcurrentPlaces runs the concurrent-places analysis of spec.md
// §4.8. It alternates plain concrete stepping (cheap, exhausts quickly) with
// a bounded symbolic search for a witness to a still-unmarked pair: BMC
// races k-Induction on the same "new pair reachable" formula exactly as the
// portfolio scheduler races engines on the checked property itself (spec.md
// §4.9) — BMC's CEX supplies the witness marking the stepper alone missed
// (e.g. reached only via a longer path than newDriver's stepping frontier
// has explored), k-Induction's INV proves no such marking exists anywhere,
// closing out that round.
func AnalyzeConcurrentPlaces(tok cancel.Token, newDriver NewDriverFunc, net *petri.Net, log rlog.Logger) (*ConcurrentMatrix, error) {
	if log == nil {
		log = rlog.Discard{}
	}
	m := NewConcurrentMatrix(net.NumPlaces())
	m0 := net.InitialMarking()
	m.MarkPositive(m0)

	frontier := []petri.Marking{m0}
	visited := map[string]struct{}{markingKey(m0): {}}

	for {
		if tok.Cancelled() {
			return m, nil
		}
		if m.Complete() {
			return m, nil
		}

		var next []petri.Marking
		for _, mk := range frontier {
			for _, succ := range Step(net, mk) {
				key := markingKey(succ)
				if _, seen := visited[key]; seen {
					continue
				}
				visited[key] = struct{}{}
				m.MarkPositive(succ)
				next = append(next, succ)
			}
		}
		if len(next) > 0 {
			frontier = next
			continue
		}

		pairs := m.UnmarkedPairs()
		if len(pairs) == 0 {
			return m, nil
		}
		f := pairFormula(pairs)

		found, witness, complete := raceBMCAndKInduction(tok, newDriver, net, f, log)
		if tok.Cancelled() {
			return m, nil
		}
		if found {
			key := markingKey(witness)
			if _, seen := visited[key]; !seen {
				visited[key] = struct{}{}
				m.MarkPositive(witness)
				frontier = []petri.Marking{witness}
				continue
			}
			// Already visited but the symbolic search still reported it:
			// nothing left to learn from re-stepping it, so the round is
			// done; loop back to re-check completeness / pick new pairs.
			continue
		}
		if complete {
			return m, nil
		}
		// Neither a witness nor a completeness proof: the bounded search
		// was inconclusive (cancelled or erroed). Stop rather than spin.
		return m, nil
	}
}

// raceBMCAndKInduction runs bmc.Run and kinduction.Run against the same
// formula over independent drivers, returning as soon as one concludes, and
// killing the loser's driver (spec.md §4.9's first-result-wins rule, scoped
// to these two local workers rather than the full portfolio).
func raceBMCAndKInduction(tok cancel.Token, newDriver NewDriverFunc, net *petri.Net, f *formula.Formula, log rlog.Logger) (found bool, witness petri.Marking, complete bool) {
	type outcome struct {
		from    string
		verdict string
		model   petri.Marking
	}
	results := make(chan outcome, 2)

	bmcDriver := newDriver()
	kiDriver := newDriver()

	go func() {
		_ = bmcDriver.DeclarePlaces(0)
		_ = bmcDriver.Assert(encode.InitialMarking(net, 0))
		res := bmc.Run(tok, bmcDriver, net, f, nil, log)
		switch res.Verdict {
		case bmc.CEX:
			results <- outcome{from: "bmc", verdict: "cex", model: res.Model}
		default:
			results <- outcome{from: "bmc", verdict: "other"}
		}
	}()
	go func() {
		_ = kiDriver.DeclarePlaces(0)
		_ = kiDriver.DeclarePlaces(1)
		_ = kiDriver.Assert(encode.TransitionRelation(net, 0, false))
		res := kinduction.Run(tok, kiDriver, net, f, nil, log)
		switch res.Verdict {
		case kinduction.INV:
			results <- outcome{from: "ki", verdict: "inv"}
		default:
			results <- outcome{from: "ki", verdict: "other"}
		}
	}()

	first := <-results
	bmcDriver.Kill()
	kiDriver.Kill()
	<-results // drain the loser so its goroutine never blocks on a full channel

	switch first.verdict {
	case "cex":
		return true, first.model, false
	case "inv":
		return false, nil, true
	default:
		return false, nil, false
	}
}
