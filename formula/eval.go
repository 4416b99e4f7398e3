package formula

import "github.com/lmachina/reachkit/petri"

// Eval evaluates a boolean-kinded e against marking m. It panics if e is not
// a boolean connective or atom, since Eval is only ever invoked on checked
// Formula.R/P expressions (spec.md §3).
func Eval(e *Expr, m petri.Marking) bool {
	switch e.Kind {
	case KindBoolConst:
		return e.BoolVal
	case KindNot:
		return !Eval(e.Operands[0], m)
	case KindAnd:
		for _, o := range e.Operands {
			if !Eval(o, m) {
				return false
			}
		}
		return true
	case KindOr:
		for _, o := range e.Operands {
			if Eval(o, m) {
				return true
			}
		}
		return false
	case KindAtom:
		l, r := EvalArith(e.Left, m), EvalArith(e.Right, m)
		switch e.CompareOp {
		case OpEq:
			return l == r
		case OpNe:
			return l != r
		case OpLe:
			return l <= r
		case OpGe:
			return l >= r
		case OpLt:
			return l < r
		case OpGt:
			return l > r
		}
	}
	return false
}

// EvalArith evaluates an arithmetic term (TokenCount, IntConst, or Arith) in
// marking m. KindVar terms evaluate to 0, since free variables only ever
// appear inside reduction-bridge constraints (resolved by the solver, not by
// Eval) rather than in terms Eval is asked to judge.
func EvalArith(e *Expr, m petri.Marking) int64 {
	switch e.Kind {
	case KindIntConst:
		return e.IntVal
	case KindTokenCount:
		var sum int64
		for _, p := range e.Places {
			if int(p) >= 0 && int(p) < len(m) {
				sum += m[p]
			}
		}
		return sum + e.IntDelta
	case KindArith:
		if len(e.ArithOps) == 0 {
			return 0
		}
		acc := EvalArith(e.ArithOps[0], m)
		for _, o := range e.ArithOps[1:] {
			v := EvalArith(o, m)
			switch e.ArithOp {
			case ArithPlus:
				acc += v
			case ArithTimes:
				acc *= v
			}
		}
		return acc
	}
	return 0
}

// CubeAtoms flattens a DNF cube (an atom or an And of atoms) into its atom
// list.
func CubeAtoms(cube *Expr) []*Expr {
	if cube.Kind == KindAnd {
		return cube.Operands
	}
	return []*Expr{cube}
}

// ReachedCube returns the first disjunct of a DNF-converted formula that m
// satisfies, or nil if none does. It is how engines identify which symbolic
// cube a concrete counterexample marking belongs to (spec.md §4.6, §4.7).
func ReachedCube(dnf *Expr, m petri.Marking) *Expr {
	var clauses []*Expr
	if dnf.Kind == KindOr {
		clauses = dnf.Operands
	} else {
		clauses = []*Expr{dnf}
	}
	for _, c := range clauses {
		if Eval(c, m) {
			return c
		}
	}
	return nil
}
