package formula

// DNF converts e to disjunctive normal form (spec.md §4.3, §8 property 4):
// the result is either an atom, an And of atoms, or an Or whose operands are
// atoms or And-of-atoms. Every atom is normalized so its TokenCount operand
// is on the left and its IntConst operand is on the right, and tagged with
// its monotonicity.
func DNF(e *Expr) *Expr {
	clauses := dnfClauses(e)
	for i, c := range clauses {
		clauses[i] = normalizeClause(c)
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return &Expr{Kind: KindOr, Operands: clauses}
}

// dnfClauses returns e's disjuncts, each a single atom/bool-const or an And
// of such leaves.
func dnfClauses(e *Expr) []*Expr {
	switch e.Kind {
	case KindNot:
		return dnfClauses(Negate(e))
	case KindBoolConst, KindAtom:
		return []*Expr{e}
	case KindOr:
		out := make([]*Expr, 0, len(e.Operands))
		for _, o := range e.Operands {
			out = append(out, dnfClauses(o)...)
		}
		return out
	case KindAnd:
		if len(e.Operands) == 0 {
			return []*Expr{BoolConst(true)}
		}
		result := dnfClauses(e.Operands[0])
		for _, op := range e.Operands[1:] {
			opClauses := dnfClauses(op)
			next := make([]*Expr, 0, len(result)*len(opClauses))
			for _, a := range result {
				for _, b := range opClauses {
					next = append(next, mergeConjuncts(a, b))
				}
			}
			result = next
		}
		return result
	default:
		return []*Expr{e}
	}
}

// mergeConjuncts flattens a and b (each either a leaf or an And of leaves)
// into a single And of leaves.
func mergeConjuncts(a, b *Expr) *Expr {
	leaves := make([]*Expr, 0, 2)
	leaves = append(leaves, conjunctLeaves(a)...)
	leaves = append(leaves, conjunctLeaves(b)...)
	if len(leaves) == 1 {
		return leaves[0]
	}
	return &Expr{Kind: KindAnd, Operands: leaves}
}

func conjunctLeaves(e *Expr) []*Expr {
	if e.Kind == KindAnd {
		return e.Operands
	}
	return []*Expr{e}
}

// normalizeClause normalizes every atom of a DNF clause (an atom or an And
// of atoms) and tags monotonicity.
func normalizeClause(c *Expr) *Expr {
	if c.Kind == KindAnd {
		out := make([]*Expr, len(c.Operands))
		for i, a := range c.Operands {
			out[i] = normalizeAtom(a)
		}
		return &Expr{Kind: KindAnd, Operands: out}
	}
	return normalizeAtom(c)
}

// normalizeAtom commutes an atom so TokenCount is on the left and IntConst
// on the right, then tags monotonicity (spec.md §4.3).
func normalizeAtom(a *Expr) *Expr {
	if a.Kind != KindAtom {
		return a
	}
	out := *a
	if out.Left.Kind == KindIntConst && out.Right.Kind == KindTokenCount {
		out.Left, out.Right = out.Right, out.Left
		out.CompareOp = out.CompareOp.Commuted()
	}
	out.Mono = classifyMonotonicity(&out)
	return &out
}

// classifyMonotonicity tags an atom Σp op c as monotonic for op in {>=, >}
// and anti-monotonic for op in {<=, <}; other operators (=, distinct) are
// untagged (spec.md §4.3).
func classifyMonotonicity(a *Expr) MonoTag {
	if a.Left == nil || a.Right == nil {
		return MonoUnknown
	}
	if a.Left.Kind != KindTokenCount || a.Right.Kind != KindIntConst {
		return MonoUnknown
	}
	switch a.CompareOp {
	case OpGe, OpGt:
		return MonoMonotonic
	case OpLe, OpLt:
		return MonoAntiMonotonic
	default:
		return MonoUnknown
	}
}
