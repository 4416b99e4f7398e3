// Package encode builds the first-order arithmetic encodings the BMC,
// k-Induction, and IC3 engines assert against the SMT solver (spec.md §4.2):
// place declarations, the initial marking, and the one-step transition
// relation, each returned as a formula.Expr (or, for declarations, a plain
// symbol list) so callers can render them with a formula.Printer for either
// SMT-LIB text or human-readable diagnostics.
package encode

import (
	"fmt"

	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/petri"
)

// Declare returns the SMT-LIB symbol names for every place of net at order
// k, in place-index order, plus the non-negativity formula p@k >= 0 for
// each (spec.md §4.2: "each place p becomes the integer variable p@k with
// the constraint p@k >= 0"). The returned formula pins every TokenCount to
// k, so it renders correctly however the Printer is invoked.
func Declare(net *petri.Net, k int) (symbols []string, nonNegative *formula.Expr) {
	places := net.Places()
	atoms := make([]*formula.Expr, 0, len(places))
	for _, pl := range places {
		ref, _ := net.PlaceByID(pl.ID)
		symbols = append(symbols, fmt.Sprintf("%s@%d", pl.ID, k))
		atoms = append(atoms, formula.Atom(formula.TokenCountAt([]petri.PlaceRef{ref}, 0, k), formula.OpGe, formula.IntConst(0)))
	}
	if len(atoms) == 0 {
		return symbols, formula.BoolConst(true)
	}
	return symbols, formula.And(atoms...)
}

// InitialMarking returns the conjunction "p@k = m0(p)" over every place of
// net (spec.md §4.2), every term pinned to k.
func InitialMarking(net *petri.Net, k int) *formula.Expr {
	places := net.Places()
	atoms := make([]*formula.Expr, 0, len(places))
	for _, pl := range places {
		ref, _ := net.PlaceByID(pl.ID)
		atoms = append(atoms, formula.Atom(formula.TokenCountAt([]petri.PlaceRef{ref}, 0, k), formula.OpEq, formula.IntConst(pl.Initial)))
	}
	if len(atoms) == 0 {
		return formula.BoolConst(true)
	}
	return formula.And(atoms...)
}

// TransitionRelation returns the one-step relation from order k to k+1: an
// Or over every transition's firing-guard-and-update conjunction, plus a
// stutter disjunct "forall p. p@(k+1) = p@k" unless exactStep is true
// (spec.md §4.2). Every TokenCount is pinned to k or k+1, so the returned
// expression renders the same regardless of the order a Printer is invoked
// at.
func TransitionRelation(net *petri.Net, k int, exactStep bool) *formula.Expr {
	transitions := net.Transitions()
	disjuncts := make([]*formula.Expr, 0, len(transitions)+1)
	for _, tr := range transitions {
		disjuncts = append(disjuncts, transitionDisjunct(net, tr, k))
	}
	if !exactStep {
		disjuncts = append(disjuncts, stutterDisjunct(net, k))
	}
	if len(disjuncts) == 0 {
		return formula.BoolConst(false)
	}
	return formula.Or(disjuncts...)
}

// transitionDisjunct builds a single transition's firing-guard-and-update
// conjunction across orders k (pre-state) and k+1 (post-state) (spec.md
// §4.2 components (1) and (2)).
func transitionDisjunct(net *petri.Net, tr *petri.Transition, k int) *formula.Expr {
	var atoms []*formula.Expr

	// (1) firing guard: one atom per place against its raw Pre threshold
	// (the same rule petri.Net.Enabled applies), not the split
	// Inputs/Tests lower bounds — for a place with both pre(p)>0 and
	// post(p)>0, Inputs[p]+Tests[p]=pre(p), so two separate >= atoms over
	// Inputs and Tests only enforce p@k >= max(inputs,tests), strictly
	// weaker than the real p@k >= pre(p).
	for p, w := range tr.Pre {
		if w < 0 {
			atoms = append(atoms, formula.Atom(cur(p, k), formula.OpLt, formula.IntConst(-w)))
			continue
		}
		if w > 0 {
			atoms = append(atoms, formula.Atom(cur(p, k), formula.OpGe, formula.IntConst(w)))
		}
	}

	// (2) update: every connected place advances by its signed delta;
	// tested-only places (read but never written) are unchanged; every
	// untouched place is unchanged.
	connected := make(map[petri.PlaceRef]struct{})
	for _, p := range tr.ConnectedPlaces() {
		connected[p] = struct{}{}
	}
	for p := range connected {
		if delta, touched := tr.Delta[p]; touched {
			atoms = append(atoms, formula.Atom(next(p, k), formula.OpEq, formula.TokenCountAt([]petri.PlaceRef{p}, delta, k)))
		} else {
			atoms = append(atoms, formula.Atom(next(p, k), formula.OpEq, cur(p, k)))
		}
	}
	for _, pl := range net.Places() {
		ref, _ := net.PlaceByID(pl.ID)
		if _, ok := connected[ref]; ok {
			continue
		}
		atoms = append(atoms, formula.Atom(next(ref, k), formula.OpEq, cur(ref, k)))
	}

	if len(atoms) == 0 {
		return formula.BoolConst(true)
	}
	return formula.And(atoms...)
}

// cur returns place p's TokenCount term pinned to the pre-state order k.
func cur(p petri.PlaceRef, k int) *formula.Expr {
	return formula.TokenCountAt([]petri.PlaceRef{p}, 0, k)
}

// next returns place p's TokenCount term pinned to the post-state order k+1.
func next(p petri.PlaceRef, k int) *formula.Expr {
	return formula.TokenCountAt([]petri.PlaceRef{p}, 0, k+1)
}

// stutterDisjunct returns the "no place changes" disjunct from order k to
// k+1.
func stutterDisjunct(net *petri.Net, k int) *formula.Expr {
	places := net.Places()
	atoms := make([]*formula.Expr, 0, len(places))
	for _, pl := range places {
		ref, _ := net.PlaceByID(pl.ID)
		atoms = append(atoms, formula.Atom(next(ref, k), formula.OpEq, cur(ref, k)))
	}
	if len(atoms) == 0 {
		return formula.BoolConst(true)
	}
	return formula.And(atoms...)
}
