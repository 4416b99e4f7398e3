package solver_test

import (
	"testing"

	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/petri"
	"github.com/lmachina/reachkit/solver"
	"github.com/stretchr/testify/require"
)

// buildSequential builds the S1 scenario: p(1) q(0), t: p -> q.
func buildSequential(t *testing.T) *petri.Net {
	t.Helper()
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
	return n
}

func TestFakeFindsReachableMarking(t *testing.T) {
	// S2: pl p (0), tr t -> p. Reachability of {p} should be Sat after one
	// step.
	n := petri.NewNet("s2")
	_, err := n.AddPlace("p", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t", petri.ArcSpec{Post: map[string]int64{"p": 1}})
	require.NoError(t, err)

	f := solver.NewFake(n, 4)
	pRef, _ := n.PlaceByID("p")
	target := formula.Atom(formula.TokenCountAt([]petri.PlaceRef{pRef}, 0, 1), formula.OpGe, formula.IntConst(1))
	require.NoError(t, f.Assert(target))

	v, err := f.CheckSat()
	require.NoError(t, err)
	require.Equal(t, solver.Sat, v)

	m, err := f.GetMarking(1)
	require.NoError(t, err)
	require.Equal(t, int64(1), m[pRef])
}

func TestFakeInhibitorStarvation(t *testing.T) {
	// S3: pl p(1) q(0), tr t p?-1 -> q. q is never reachable.
	n := petri.NewNet("s3")
	_, err := n.AddPlace("p", 1)
	require.NoError(t, err)
	_, err = n.AddPlace("q", 0)
	require.NoError(t, err)
	_, err = n.AddTransition("t", petri.ArcSpec{
		Pre:  map[string]int64{"p": -1},
		Post: map[string]int64{"q": 1},
	})
	require.NoError(t, err)

	f := solver.NewFake(n, 4)
	qRef, _ := n.PlaceByID("q")
	target := formula.Atom(formula.TokenCountAt([]petri.PlaceRef{qRef}, 0, 3), formula.OpGe, formula.IntConst(1))
	require.NoError(t, f.Assert(target))

	v, err := f.CheckSat()
	require.NoError(t, err)
	require.Equal(t, solver.Unsat, v)
}

func TestFakePushPopScoping(t *testing.T) {
	n := buildSequential(t)
	pRef, _ := n.PlaceByID("p")

	f := solver.NewFake(n, 4)
	require.NoError(t, f.Push())
	impossible := formula.Atom(formula.TokenCountAt([]petri.PlaceRef{pRef}, 0, 0), formula.OpGe, formula.IntConst(5))
	require.NoError(t, f.Assert(impossible))

	v, err := f.CheckSat()
	require.NoError(t, err)
	require.Equal(t, solver.Unsat, v)

	require.NoError(t, f.Pop())
	v, err = f.CheckSat()
	require.NoError(t, err)
	require.Equal(t, solver.Sat, v, "with the impossible assertion popped, the empty context is trivially sat")
}

func TestFakeAbortedAfterKill(t *testing.T) {
	n := buildSequential(t)
	f := solver.NewFake(n, 4)
	f.Kill()
	v, err := f.CheckSat()
	require.NoError(t, err)
	require.Equal(t, solver.Aborted, v)
}

func TestFakeUnsatCoreReturnsLabeledAssertions(t *testing.T) {
	n := buildSequential(t)
	pRef, _ := n.PlaceByID("p")
	f := solver.NewFake(n, 4)
	require.NoError(t, f.AssertLabeled(
		formula.Atom(formula.TokenCountAt([]petri.PlaceRef{pRef}, 0, 0), formula.OpGe, formula.IntConst(99)),
		"lit@c1",
	))
	v, err := f.CheckSat()
	require.NoError(t, err)
	require.Equal(t, solver.Unsat, v)

	core, err := f.GetUnsatCore()
	require.NoError(t, err)
	require.Equal(t, []string{"lit@c1"}, core)
}
