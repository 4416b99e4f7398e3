package kinduction_test

import (
	"testing"

	"github.com/lmachina/reachkit/encode"
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/lmachina/reachkit/kinduction"
	"github.com/lmachina/reachkit/petri"
	"github.com/lmachina/reachkit/solver"
	"github.com/stretchr/testify/require"
)

// buildCycle builds a token-preserving two-transition loop: pl p(1) q(0);
// tr t1 p -> q; tr t2 q -> p. Deadlock is never reachable from m0.
func buildCycle(t *testing.T) *petri.Net {
	t.Helper()
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
	return n
}

// setupDriver returns a Fake driver with orders 0 and 1 declared and the
// transition relation 0→1 asserted, as Run requires of its caller.
func setupDriver(t *testing.T, net *petri.Net, maxDepth int) *solver.Fake {
	t.Helper()
	d := solver.NewFake(net, maxDepth)
	require.NoError(t, d.DeclarePlaces(0))
	require.NoError(t, d.DeclarePlaces(1))
	require.NoError(t, d.Assert(encode.TransitionRelation(net, 0, false)))
	return d
}

func TestRunConcludesInductiveStepAndAnnouncesBound(t *testing.T) {
	n := buildCycle(t)
	f := formula.DeadlockFormula(n)
	d := setupDriver(t, n, 8)
	tok := cancel.New()

	bound := make(chan int, 1)
	res := kinduction.Run(tok, d, n, f, bound, nil)

	require.Equal(t, kinduction.INV, res.Verdict)
	require.Equal(t, 1, res.Order)

	select {
	case b := <-bound:
		require.Equal(t, 1, b)
	default:
		t.Fatal("expected a bound announcement on the channel")
	}
}

func TestRunCancelledBeforeFirstIteration(t *testing.T) {
	n := buildCycle(t)
	f := formula.DeadlockFormula(n)
	d := setupDriver(t, n, 8)
	tok := cancel.New()
	tok.Cancel()

	res := kinduction.Run(tok, d, n, f, nil, nil)
	require.Equal(t, kinduction.Cancelled, res.Verdict)
}

func TestRunAbortedWhenDriverKilled(t *testing.T) {
	n := buildCycle(t)
	f := formula.DeadlockFormula(n)
	d := setupDriver(t, n, 8)
	d.Kill()
	tok := cancel.New()

	res := kinduction.Run(tok, d, n, f, nil, nil)
	require.Equal(t, kinduction.Cancelled, res.Verdict)
}

// TestRunToleratesNilBoundSink verifies a nil BoundSink is a safe no-op
// destination for the announcement, for engines run without a racing BMC
// worker (e.g. stepper's concurrent-places use of k-Induction).
func TestRunToleratesNilBoundSink(t *testing.T) {
	n := buildCycle(t)
	f := formula.DeadlockFormula(n)
	d := setupDriver(t, n, 8)
	tok := cancel.New()

	require.NotPanics(t, func() {
		res := kinduction.Run(tok, d, n, f, nil, nil)
		require.Equal(t, kinduction.INV, res.Verdict)
	})
}
