package bmc_test

import (
	"testing"

	"github.com/lmachina/reachkit/bmc"
	"github.com/lmachina/reachkit/encode"
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/lmachina/reachkit/petri"
	"github.com/lmachina/reachkit/solver"
	"github.com/stretchr/testify/require"
)

// setupDriver returns a Fake driver with order 0 declared and the initial
// marking asserted, as Run requires of its caller.
func setupDriver(t *testing.T, net *petri.Net, maxDepth int) *solver.Fake {
	t.Helper()
	d := solver.NewFake(net, maxDepth)
	require.NoError(t, d.DeclarePlaces(0))
	require.NoError(t, d.Assert(encode.InitialMarking(net, 0)))
	return d
}

// TestRunFindsCounterexample is the S2 scenario: pl p(0), tr t -> p. p>=1 is
// reachable after exactly one step.
func TestRunFindsCounterexample(t *testing.T) {
	n := petri.NewNet("s2")
	_, err := n.AddPlace("p", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t", petri.ArcSpec{Post: map[string]int64{"p": 1}})
	require.NoError(t, err)

	pRef, _ := n.PlaceByID("p")
	prop := formula.Atom(formula.TokenCount([]petri.PlaceRef{pRef}, 0), formula.OpGe, formula.IntConst(1))
	f := formula.ReachabilityFormula(prop, formula.TagFinally)

	d := setupDriver(t, n, 8)
	tok := cancel.New()

	res := bmc.Run(tok, d, n, f, nil, nil)
	require.Equal(t, bmc.CEX, res.Verdict)
	require.Equal(t, 1, res.Order)
	require.Equal(t, int64(1), res.Model[pRef])
}

// TestRunReachesInductiveBound exercises a net that never deadlocks (a
// two-cycle p<->q), so BMC alone never finds a counterexample for the
// deadlock property; a simulated k-Induction worker announces an inductive
// bound of 2, which Run must honor on the iteration it is reached.
func TestRunReachesInductiveBound(t *testing.T) {
	n := petri.NewNet("cycle")
	_, err := n.AddPlace("p", 1)
	require.NoError(t, err)
	_, err = n.AddPlace("q", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t1", petri.ArcSpec{
		Pre:  map[string]int64{"p": 1},
		Post: map[string]int64{"q": 1},
	})
	require.NoError(t, err)
	_, err = n.AddTransition("t2", petri.ArcSpec{
		Pre:  map[string]int64{"q": 1},
		Post: map[string]int64{"p": 1},
	})
	require.NoError(t, err)

	f := formula.DeadlockFormula(n)
	d := setupDriver(t, n, 8)
	tok := cancel.New()

	bound := make(chan int, 1)
	bound <- 2

	res := bmc.Run(tok, d, n, f, bound, nil)
	require.Equal(t, bmc.INV, res.Verdict)
	require.Equal(t, 2, res.Order)
}

// TestRunCancelledBeforeFirstIteration verifies Run honors an
// already-cancelled token without touching the driver.
func TestRunCancelledBeforeFirstIteration(t *testing.T) {
	n := petri.NewNet("s1")
	_, err := n.AddPlace("p", 1)
	require.NoError(t, err)
	_, err = n.AddPlace("q", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t", petri.ArcSpec{
		Pre:  map[string]int64{"p": 1},
		Post: map[string]int64{"q": 1},
	})
	require.NoError(t, err)

	f := formula.DeadlockFormula(n)
	d := setupDriver(t, n, 8)
	tok := cancel.New()
	tok.Cancel()

	res := bmc.Run(tok, d, n, f, nil, nil)
	require.Equal(t, bmc.Cancelled, res.Verdict)
}

// TestRunAbortedWhenDriverKilled verifies a driver killed mid-race (the
// portfolio scheduler's Registry.KillAllExcept path) surfaces as Cancelled.
func TestRunAbortedWhenDriverKilled(t *testing.T) {
	n := petri.NewNet("s1")
	_, err := n.AddPlace("p", 1)
	require.NoError(t, err)
	_, err = n.AddPlace("q", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t", petri.ArcSpec{
		Pre:  map[string]int64{"p": 1},
		Post: map[string]int64{"q": 1},
	})
	require.NoError(t, err)

	f := formula.DeadlockFormula(n)
	d := setupDriver(t, n, 8)
	d.Kill()
	tok := cancel.New()

	res := bmc.Run(tok, d, n, f, nil, nil)
	require.Equal(t, bmc.Cancelled, res.Verdict)
}
