// Package formula implements the typed AST for boolean state formulas over
// Petri net markings (spec.md §2, §3, §4.3): boolean constants, the
// connectives not/and/or, comparison atoms, and arithmetic terms built from
// place-sums, integer constants, free variables, and a universal quantifier.
//
// Go has no tagged-union (sum) types, so Expr is the idiomatic approximation:
// a single struct carrying a Kind tag, with only the fields relevant to that
// Kind populated. DNF conversion, negation, evaluation, and generalization
// are package functions that switch on Kind, mirroring how the cgo Z3 binding in
// other_examples' z3-solver.go builds a small closed set of Bool/Int
// expression kinds behind a uniform API.
package formula

import "github.com/lmachina/reachkit/petri"

// Kind tags the variant held by an Expr.
type Kind byte

const (
	KindBoolConst Kind = iota
	KindNot
	KindAnd
	KindOr
	KindAtom
	KindTokenCount
	KindIntConst
	KindArith
	KindVar
	KindForall
)

// CompareOp is an atom's relational operator.
type CompareOp byte

const (
	OpEq CompareOp = iota
	OpLe
	OpGe
	OpLt
	OpGt
	OpNe
)

// Negated returns the relational operator for "not (x Op y)".
func (o CompareOp) Negated() CompareOp {
	switch o {
	case OpEq:
		return OpNe
	case OpNe:
		return OpEq
	case OpLe:
		return OpGt
	case OpGt:
		return OpLe
	case OpGe:
		return OpLt
	case OpLt:
		return OpGe
	}
	return o
}

// Commuted returns the operator for "y Op' x" equivalent to "x Op y".
func (o CompareOp) Commuted() CompareOp {
	switch o {
	case OpLe:
		return OpGe
	case OpGe:
		return OpLe
	case OpLt:
		return OpGt
	case OpGt:
		return OpLt
	}
	return o
}

func (o CompareOp) String() string {
	switch o {
	case OpEq:
		return "="
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpNe:
		return "distinct"
	}
	return "?"
}

// ArithOp is the operator of an arithmetic term built from multiple
// operands.
type ArithOp byte

const (
	ArithPlus ArithOp = iota
	ArithTimes
)

// MonoTag records the monotonicity classification of an atom, only
// meaningful once the atom is in DNF with a TokenCount left operand and an
// IntConst right operand (spec.md §3, §4.3).
type MonoTag byte

const (
	MonoUnknown MonoTag = iota
	MonoMonotonic
	MonoAntiMonotonic
)

// Expr is a node of the formula AST. Exactly one group of fields below is
// meaningful, selected by Kind.
type Expr struct {
	Kind Kind

	// KindBoolConst
	BoolVal bool

	// KindNot: Operands[0] is the negated sub-expression.
	// KindAnd / KindOr: Operands holds the conjuncts/disjuncts.
	Operands []*Expr

	// KindAtom
	Left      *Expr
	Right     *Expr
	CompareOp CompareOp
	Mono      MonoTag // only valid once in DNF

	// KindTokenCount: the arithmetic term Σ Places + IntDelta + Σ SymDeltas,
	// each Place read at time order Step unless the node itself is rendered
	// at a caller-supplied order (see formula.Printer). StepSet distinguishes
	// "pin this node to an absolute order" (needed when one expression, such
	// as a transition's update conjunct, must reference two different orders
	// at once, e.g. p@(k+1) = p@k) from "inherit whatever order the Printer
	// is asked to render at" (the common case: R/P asserted at a single
	// varying k by BMC/k-Induction).
	Places    []petri.PlaceRef
	IntDelta  int64
	SymDeltas []string
	Step      int
	StepSet   bool

	// KindIntConst
	IntVal int64

	// KindArith
	ArithOp  ArithOp
	ArithOps []*Expr

	// KindVar
	VarName  string
	VarIndex int

	// KindForall
	QVars []string
	QBody *Expr
}

// BoolConst returns a boolean-constant expression.
func BoolConst(v bool) *Expr { return &Expr{Kind: KindBoolConst, BoolVal: v} }

// Not returns the negation of e as an AST node (not yet negation-propagated;
// see Negate for that).
func Not(e *Expr) *Expr { return &Expr{Kind: KindNot, Operands: []*Expr{e}} }

// And returns the conjunction of operands. And() with zero operands is the
// vacuous true.
func And(operands ...*Expr) *Expr {
	if len(operands) == 1 {
		return operands[0]
	}
	return &Expr{Kind: KindAnd, Operands: operands}
}

// Or returns the disjunction of operands. Or() with zero operands is the
// vacuous false.
func Or(operands ...*Expr) *Expr {
	if len(operands) == 1 {
		return operands[0]
	}
	return &Expr{Kind: KindOr, Operands: operands}
}

// Atom returns the comparison left Op right.
func Atom(left *Expr, op CompareOp, right *Expr) *Expr {
	return &Expr{Kind: KindAtom, Left: left, Right: right, CompareOp: op}
}

// TokenCount returns the arithmetic term Σ places + delta + Σ symDeltas,
// read at whatever order a Printer is asked to render it at.
func TokenCount(places []petri.PlaceRef, delta int64, symDeltas ...string) *Expr {
	return &Expr{Kind: KindTokenCount, Places: places, IntDelta: delta, SymDeltas: symDeltas}
}

// TokenCountAt is like TokenCount, but pins the node to absolute order step
// regardless of the order a Printer is asked to render the surrounding
// expression at. Used to build formulas that span two orders at once (e.g.
// a transition's update conjunct p@(k+1) = p@k).
func TokenCountAt(places []petri.PlaceRef, delta int64, step int, symDeltas ...string) *Expr {
	return &Expr{Kind: KindTokenCount, Places: places, IntDelta: delta, SymDeltas: symDeltas, Step: step, StepSet: true}
}

// IntConst returns an integer-constant term.
func IntConst(v int64) *Expr { return &Expr{Kind: KindIntConst, IntVal: v} }

// Arith returns an arithmetic term combining operands with op.
func Arith(op ArithOp, operands ...*Expr) *Expr {
	return &Expr{Kind: KindArith, ArithOp: op, ArithOps: operands}
}

// Var returns a free-variable term.
func Var(name string, index int) *Expr {
	return &Expr{Kind: KindVar, VarName: name, VarIndex: index}
}

// Forall returns a universally quantified formula.
func Forall(vars []string, body *Expr) *Expr {
	return &Expr{Kind: KindForall, QVars: vars, QBody: body}
}

// Clone returns a deep-enough copy of e (new Expr nodes, shared leaf slices)
// safe to mutate (e.g. tag Mono) without affecting e.
func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}
	c := *e
	if e.Operands != nil {
		c.Operands = make([]*Expr, len(e.Operands))
		for i, o := range e.Operands {
			c.Operands[i] = o.Clone()
		}
	}
	if e.ArithOps != nil {
		c.ArithOps = make([]*Expr, len(e.ArithOps))
		for i, o := range e.ArithOps {
			c.ArithOps[i] = o.Clone()
		}
	}
	c.Left = e.Left.Clone()
	c.Right = e.Right.Clone()
	c.QBody = e.QBody.Clone()
	return &c
}
