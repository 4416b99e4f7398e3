package encode_test

import (
	"testing"

	"github.com/lmachina/reachkit/encode"
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/petri"
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

func TestDeclareSymbolsAndNonNegativity(t *testing.T) {
	n := buildSequential(t)
	symbols, nonNeg := encode.Declare(n, 0)
	require.Equal(t, []string{"p@0", "q@0"}, symbols)

	pr := formula.NewPrinter(n)
	require.Equal(t, "(and (>= p@0 0) (>= q@0 0))", pr.SMTLib(nonNeg, 99 /* must be ignored: every node is pinned */))
}

func TestInitialMarking(t *testing.T) {
	n := buildSequential(t)
	pr := formula.NewPrinter(n)
	e := encode.InitialMarking(n, 0)
	require.Equal(t, "(and (= p@0 1) (= q@0 0))", pr.SMTLib(e, 5))
}

func TestTransitionRelationSingleTransitionNoStutter(t *testing.T) {
	n := buildSequential(t)
	pr := formula.NewPrinter(n)
	rel := encode.TransitionRelation(n, 0, true)
	// One disjunct, no stutter: the Or() constructor collapses a single
	// operand to a bare conjunction.
	text := pr.SMTLib(rel, 0)
	require.Contains(t, text, "(>= p@0 1)")
	require.Contains(t, text, "(= q@1 (+ q@0 1))")
	require.Contains(t, text, "(= p@1 (+ p@0 -1))")
	require.NotContains(t, text, "forall")
}

func TestTransitionRelationHasStutterByDefault(t *testing.T) {
	n := buildSequential(t)
	pr := formula.NewPrinter(n)
	rel := encode.TransitionRelation(n, 0, false)
	require.Equal(t, formula.KindOr, rel.Kind)
	require.Len(t, rel.Operands, 2, "one transition disjunct plus the stutter disjunct")
	text := pr.SMTLib(rel, 0)
	require.Contains(t, text, "(= p@1 p@0)")
	require.Contains(t, text, "(= q@1 q@0)")
}

// TestReadArcGuardUsesRawPreThreshold pins spec.md §8 Testable Property 3:
// a transition with pre(p)=5, post(p)=3 (Inputs[p]=2, Tests[p]=3) must gate
// firing on p@k >= 5, not on the separate, strictly weaker Inputs/Tests
// bounds (p@k >= 2 and p@k >= 3, jointly satisfied at p@k=4 < 5).
func TestReadArcGuardUsesRawPreThreshold(t *testing.T) {
	n := petri.NewNet("readguard")
	_, err := n.AddPlace("p", 5)
	require.NoError(t, err)
	_, err = n.AddTransition("t", petri.ArcSpec{
		Pre:  map[string]int64{"p": 5},
		Post: map[string]int64{"p": 3},
	})
	require.NoError(t, err)

	tr, _ := n.TransByID("t")
	trans := n.Transition(tr)
	p, _ := n.PlaceByID("p")
	require.Equal(t, int64(2), trans.Inputs[p])
	require.Equal(t, int64(3), trans.Tests[p])

	pr := formula.NewPrinter(n)
	rel := encode.TransitionRelation(n, 0, true)
	text := pr.SMTLib(rel, 0)
	require.Contains(t, text, "(>= p@0 5)")
	require.NotContains(t, text, "(>= p@0 2)")
	require.NotContains(t, text, "(>= p@0 3)")
}

func TestInhibitorGuard(t *testing.T) {
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

	pr := formula.NewPrinter(n)
	rel := encode.TransitionRelation(n, 0, true)
	text := pr.SMTLib(rel, 0)
	require.Contains(t, text, "(< p@0 1)")
}
