package formula

// Negate returns the negation of e with negation propagated one level
// through every connective (spec.md §4.3):
//
//	not not φ        -> φ
//	not (φ ∧ ψ)       -> (¬φ) ∨ (¬ψ)
//	not (φ ∨ ψ)       -> (¬φ) ∧ (¬ψ)
//	not (x op y)      -> x (neg op) y
//
// Negate is involutive modulo operator-commutation normalization (spec.md
// §8 property 5): Negate(Negate(φ)) is structurally equal to φ.
func Negate(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindBoolConst:
		return BoolConst(!e.BoolVal)
	case KindNot:
		return e.Operands[0]
	case KindAnd:
		negs := make([]*Expr, len(e.Operands))
		for i, o := range e.Operands {
			negs[i] = Negate(o)
		}
		return Or(negs...)
	case KindOr:
		negs := make([]*Expr, len(e.Operands))
		for i, o := range e.Operands {
			negs[i] = Negate(o)
		}
		return And(negs...)
	case KindAtom:
		return Atom(e.Left, e.CompareOp.Negated(), e.Right)
	default:
		// Arithmetic terms, free variables, and quantified formulas are not
		// boolean connectives; negation only ever reaches this branch for a
		// bare KindForall, which this module does not need to push through
		// (quantifiers never appear inside a DNF cube, per spec.md §3).
		return Not(e)
	}
}
