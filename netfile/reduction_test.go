package netfile_test

import (
	"strings"
	"testing"

	"github.com/lmachina/reachkit/netfile"
	"github.com/lmachina/reachkit/reduction"
	"github.com/stretchr/testify/require"
)

func TestParseReductionS4Equations(t *testing.T) {
	text := "e0 |- p1 = p2 + k1\n"
	sys, err := netfile.ParseReduction(strings.NewReader(text), []string{"p1"}, []string{"p2"})
	require.NoError(t, err)

	_, ok := sys.InitialPlaces["p1"]
	require.True(t, ok)
	_, ok = sys.ReducedPlaces["p2"]
	require.True(t, ok)
	_, ok = sys.Auxiliary["k1"]
	require.True(t, ok)

	require.Len(t, sys.Equations, 1)
	eq := sys.Equations[0]
	require.Equal(t, reduction.OpEq, eq.Op)
	require.True(t, eq.ContainsReduced)
	require.Equal(t, []reduction.Term{{Coeff: 1, Name: "p1"}}, eq.Left)
	require.Equal(t, []reduction.Term{{Coeff: 1, Name: "p2"}, {Coeff: 1, Name: "k1"}}, eq.Right)
}

func TestParseReductionCoefficientsAndInequality(t *testing.T) {
	text := "e1 |- 2*p1 >= p2\n"
	sys, err := netfile.ParseReduction(strings.NewReader(text), []string{"p1"}, []string{"p2"})
	require.NoError(t, err)
	require.Len(t, sys.Equations, 1)
	eq := sys.Equations[0]
	require.Equal(t, reduction.OpGe, eq.Op)
	require.Equal(t, []reduction.Term{{Coeff: 2, Name: "p1"}}, eq.Left)
}

func TestParseReductionInitialOnlyEquationNotContainsReduced(t *testing.T) {
	text := "e2 |- p1 = k1\n"
	sys, err := netfile.ParseReduction(strings.NewReader(text), []string{"p1"}, []string{"p2"})
	require.NoError(t, err)
	require.Len(t, sys.Equations, 1)
	require.False(t, sys.Equations[0].ContainsReduced)
}

func TestParseReductionMissingOperatorErrors(t *testing.T) {
	text := "e3 |- p1 p2\n"
	_, err := netfile.ParseReduction(strings.NewReader(text), []string{"p1"}, []string{"p2"})
	require.ErrorIs(t, err, netfile.ErrMalformedEquation)
}

func TestParseReductionMissingTurnstileErrors(t *testing.T) {
	_, err := netfile.ParseReduction(strings.NewReader("p1 = p2\n"), []string{"p1"}, []string{"p2"})
	require.ErrorIs(t, err, netfile.ErrMalformedEquation)
}
