package portfolio_test

import (
	"testing"
	"time"

	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/lmachina/reachkit/petri"
	"github.com/lmachina/reachkit/portfolio"
	"github.com/lmachina/reachkit/solver"
	"github.com/stretchr/testify/require"
)

// buildCounterNet is an unbounded counter: a single place fed by a single
// unconditional transition. p >= N is reachable for every N, but only after
// N firings, so a large N lies beyond the Fake driver's bounded search.
func buildCounterNet(t *testing.T) *petri.Net {
	t.Helper()
	n := petri.NewNet("s1")
	_, err := n.AddPlace("p", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t", petri.ArcSpec{Post: map[string]int64{"p": 1}})
	require.NoError(t, err)
	return n
}

func TestRunFindsCounterexampleViaRandomWalk(t *testing.T) {
	n := petri.NewNet("s2")
	_, err := n.AddPlace("p", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t", petri.ArcSpec{Post: map[string]int64{"p": 1}})
	require.NoError(t, err)

	pRef, _ := n.PlaceByID("p")
	prop := formula.Atom(formula.TokenCount([]petri.PlaceRef{pRef}, 0), formula.OpGe, formula.IntConst(1))
	f := formula.ReachabilityFormula(prop, formula.TagFinally)

	newDriver := func() solver.Driver { return solver.NewFake(n, 4) }
	tok := cancel.New()
	res := portfolio.Run(tok, newDriver, n, f, portfolio.Config{
		Workers:         []portfolio.Worker{portfolio.RandomWalk, portfolio.BMC},
		RandomWalkBound: 5,
		RandomWalkSeed:  1,
	}, nil)

	require.Equal(t, portfolio.CEX, res.Verdict)
	require.Equal(t, int64(1), res.Model[pRef])
}

// buildLoopNet mirrors ic3_test.go's S5 scenario: a token-preserving loop
// over two places, so a+b>=2 is never reachable from a(1) b(0).
func buildLoopNet(t *testing.T) *petri.Net {
	t.Helper()
	n := petri.NewNet("s5")
	_, err := n.AddPlace("a", 1)
	require.NoError(t, err)
	_, err = n.AddPlace("b", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t1", petri.ArcSpec{Pre: map[string]int64{"a": 1}, Post: map[string]int64{"b": 1}})
	require.NoError(t, err)
	_, err = n.AddTransition("t2", petri.ArcSpec{Pre: map[string]int64{"b": 1}, Post: map[string]int64{"a": 1}})
	require.NoError(t, err)
	return n
}

func TestRunProvesInvariantViaKInduction(t *testing.T) {
	n := buildLoopNet(t)
	aRef, _ := n.PlaceByID("a")
	bRef, _ := n.PlaceByID("b")
	bad := formula.Atom(formula.TokenCount([]petri.PlaceRef{aRef, bRef}, 0), formula.OpGe, formula.IntConst(2))
	f := formula.ReachabilityFormula(bad, formula.TagFinally)

	newDriver := func() solver.Driver { return solver.NewFake(n, 12) }
	tok := cancel.New()
	res := portfolio.Run(tok, newDriver, n, f, portfolio.Config{
		Workers: []portfolio.Worker{portfolio.KInduction, portfolio.IC3},
	}, nil)

	require.Equal(t, portfolio.INV, res.Verdict)
}

func TestRunHonorsTimeout(t *testing.T) {
	n := buildCounterNet(t)
	pRef, _ := n.PlaceByID("p")
	unreachable := formula.Atom(formula.TokenCount([]petri.PlaceRef{pRef}, 0), formula.OpGe, formula.IntConst(1000))
	f := formula.ReachabilityFormula(unreachable, formula.TagFinally)

	newDriver := func() solver.Driver { return solver.NewFake(n, 3) }
	tok := cancel.New()
	res := portfolio.Run(tok, newDriver, n, f, portfolio.Config{
		Workers: []portfolio.Worker{portfolio.BMC},
		Timeout: 10 * time.Millisecond,
	}, nil)

	require.Equal(t, portfolio.Indeterminate, res.Verdict)
}

// TestRunSurvivesInconclusiveWorker pins spec.md §4.9/§7: CP never itself
// concludes the checked property (it only ever writes an inconclusive
// workerResult, runWorker's CP case), so racing it alongside RandomWalk must
// not let CP's early, verdict-less result end the portfolio at
// Indeterminate while RandomWalk still has a real chance to find the
// counterexample.
func TestRunSurvivesInconclusiveWorker(t *testing.T) {
	n := petri.NewNet("s2")
	_, err := n.AddPlace("p", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t", petri.ArcSpec{Post: map[string]int64{"p": 1}})
	require.NoError(t, err)

	pRef, _ := n.PlaceByID("p")
	prop := formula.Atom(formula.TokenCount([]petri.PlaceRef{pRef}, 0), formula.OpGe, formula.IntConst(1))
	f := formula.ReachabilityFormula(prop, formula.TagFinally)

	newDriver := func() solver.Driver { return solver.NewFake(n, 4) }
	tok := cancel.New()
	res := portfolio.Run(tok, newDriver, n, f, portfolio.Config{
		Workers:         []portfolio.Worker{portfolio.CP, portfolio.RandomWalk},
		RandomWalkBound: 5,
		RandomWalkSeed:  1,
	}, nil)

	require.Equal(t, portfolio.CEX, res.Verdict)
	require.Equal(t, int64(1), res.Model[pRef])
}

func TestWorkerStringNames(t *testing.T) {
	require.Equal(t, "bmc", portfolio.BMC.String())
	require.Equal(t, "kinduction", portfolio.KInduction.String())
	require.Equal(t, "ic3", portfolio.IC3.String())
	require.Equal(t, "random-walk", portfolio.RandomWalk.String())
	require.Equal(t, "concurrent-places", portfolio.CP.String())
}
