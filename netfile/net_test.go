package netfile_test

import (
	"strings"
	"testing"

	"github.com/lmachina/reachkit/netfile"
	"github.com/stretchr/testify/require"
)

func TestParseNetS1Deadlock(t *testing.T) {
	text := "net s1\npl p (1)\npl q (0)\ntr t p -> q\n"
	n, err := netfile.ParseNet(strings.NewReader(text))
	require.NoError(t, err)
	require.Equal(t, "s1", n.ID())
	require.Equal(t, 2, n.NumPlaces())
	require.Equal(t, 1, n.NumTransitions())

	pRef, err := n.PlaceByID("p")
	require.NoError(t, err)
	require.Equal(t, int64(1), n.Place(pRef).Initial)
}

func TestParseNetS2Reachability(t *testing.T) {
	text := "net s2\npl p (0)\ntr t -> p\n"
	n, err := netfile.ParseNet(strings.NewReader(text))
	require.NoError(t, err)
	tr, err := n.TransByID("t")
	require.NoError(t, err)
	pRef, _ := n.PlaceByID("p")
	require.Equal(t, int64(1), n.Transition(tr).Outputs[pRef])
}

func TestParseNetS3Inhibitor(t *testing.T) {
	text := "net s3\npl p (1)\npl q (0)\ntr t p?-1 -> q\n"
	n, err := netfile.ParseNet(strings.NewReader(text))
	require.NoError(t, err)
	tr, err := n.TransByID("t")
	require.NoError(t, err)
	pRef, _ := n.PlaceByID("p")
	w, ok := n.Transition(tr).IsInhibited(pRef)
	require.True(t, ok)
	require.Equal(t, int64(1), w)
}

func TestParseNetS5Loop(t *testing.T) {
	text := "net s5\npl a (1)\npl b (0)\ntr t1 a -> b\ntr t2 b -> a\n"
	n, err := netfile.ParseNet(strings.NewReader(text))
	require.NoError(t, err)
	require.Equal(t, 2, n.NumTransitions())
}

func TestParseNetWeightedAndTestArcs(t *testing.T) {
	text := "net w\npl p (5)\npl guard (2)\npl q (0)\ntr t p*2 guard?1 -> q*3\n"
	n, err := netfile.ParseNet(strings.NewReader(text))
	require.NoError(t, err)
	tr, err := n.TransByID("t")
	require.NoError(t, err)
	pRef, _ := n.PlaceByID("p")
	guardRef, _ := n.PlaceByID("guard")
	qRef, _ := n.PlaceByID("q")
	trn := n.Transition(tr)
	require.Equal(t, int64(2), trn.Inputs[pRef])
	require.Equal(t, int64(1), trn.Tests[guardRef])
	require.Equal(t, int64(3), trn.Outputs[qRef])
}

func TestParseNetKAndMSuffixes(t *testing.T) {
	text := "net kM\npl p (2K)\npl q (1M)\ntr t p -> q\n"
	n, err := netfile.ParseNet(strings.NewReader(text))
	require.NoError(t, err)
	pRef, _ := n.PlaceByID("p")
	qRef, _ := n.PlaceByID("q")
	require.Equal(t, int64(2000), n.Place(pRef).Initial)
	require.Equal(t, int64(1_000_000), n.Place(qRef).Initial)
}

func TestParseNetIdentifierNormalization(t *testing.T) {
	text := "net norm\npl p#1,2 (0)\ntr t -> p.1.2\n"
	n, err := netfile.ParseNet(strings.NewReader(text))
	require.NoError(t, err)
	_, err = n.PlaceByID("p.1.2")
	require.NoError(t, err)
}

func TestParseNetMissingHeader(t *testing.T) {
	_, err := netfile.ParseNet(strings.NewReader("pl p (0)\n"))
	require.ErrorIs(t, err, netfile.ErrMissingNetHeader)
}

func TestParseNetLabeledTransition(t *testing.T) {
	text := "net lbl\npl p (1)\npl q (0)\ntr t : mylabel p -> q\n"
	n, err := netfile.ParseNet(strings.NewReader(text))
	require.NoError(t, err)
	_, err = n.TransByID("t")
	require.NoError(t, err)
}
