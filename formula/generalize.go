package formula

import "github.com/lmachina/reachkit/petri"

// walkTokenCounts applies fn to every KindTokenCount node reachable from e.
func walkTokenCounts(e *Expr, fn func(*Expr)) {
	if e == nil {
		return
	}
	if e.Kind == KindTokenCount {
		fn(e)
		return
	}
	for _, o := range e.Operands {
		walkTokenCounts(o, fn)
	}
	for _, o := range e.ArithOps {
		walkTokenCounts(o, fn)
	}
	walkTokenCounts(e.Left, fn)
	walkTokenCounts(e.Right, fn)
	walkTokenCounts(e.QBody, fn)
}

// Generalize replaces every TokenCount's place-sum Σp by Σp + Σ delta(p)
// (spec.md §4.3): it returns a clone of e with IntDelta adjusted on every
// TokenCount node by the sum of delta over that node's Places.
func Generalize(e *Expr, delta map[petri.PlaceRef]int64) *Expr {
	c := e.Clone()
	walkTokenCounts(c, func(tc *Expr) {
		var sum int64
		for _, p := range tc.Places {
			sum += delta[p]
		}
		tc.IntDelta += sum
	})
	return c
}

// GeneralizeSaturated is like Generalize, but for every place present in
// symbolic it appends the corresponding symbolic delta name to SymDeltas
// instead of folding a numeric delta into IntDelta. This is used when the
// exact numeric effect of a transition on a place cannot be pinned down and
// must instead be carried as a fresh SMT symbol (spec.md §4.3's "saturated
// generalization").
func GeneralizeSaturated(e *Expr, delta map[petri.PlaceRef]int64, symbolic map[petri.PlaceRef]string) *Expr {
	c := e.Clone()
	walkTokenCounts(c, func(tc *Expr) {
		var sum int64
		var syms []string
		for _, p := range tc.Places {
			if name, ok := symbolic[p]; ok {
				syms = append(syms, name)
				continue
			}
			sum += delta[p]
		}
		tc.IntDelta += sum
		tc.SymDeltas = append(tc.SymDeltas, syms...)
	})
	return c
}
