package formula

import (
	"fmt"
	"strings"

	"github.com/lmachina/reachkit/petri"
)

// Printer renders Expr trees against a concrete Net, resolving each
// TokenCount's Places to the net's place identifiers and tagging them with a
// step index so the same Expr can be asserted at different points of a BMC
// unrolling (spec.md §4.2's "p@k" symbol naming convention).
type Printer struct {
	Net *petri.Net
}

// NewPrinter returns a Printer bound to net.
func NewPrinter(net *petri.Net) *Printer {
	return &Printer{Net: net}
}

// symbolAt returns the SMT-LIB symbol name for place p at step k.
func (pr *Printer) symbolAt(p petri.PlaceRef, k int) string {
	place := pr.Net.Place(p)
	if place == nil {
		return fmt.Sprintf("p%d@%d", p, k)
	}
	return fmt.Sprintf("%s@%d", place.ID, k)
}

// SMTLib renders e as an SMT-LIB2 term, resolving TokenCount places at step
// k. Free variables (KindVar) render as their VarName unchanged; they are
// expected to already be declared (e.g. a reduction bridge's auxiliary
// symbols, spec.md §4.4).
func (pr *Printer) SMTLib(e *Expr, k int) string {
	var b strings.Builder
	pr.writeSMT(&b, e, k)
	return b.String()
}

func (pr *Printer) writeSMT(b *strings.Builder, e *Expr, k int) {
	switch e.Kind {
	case KindBoolConst:
		if e.BoolVal {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNot:
		b.WriteString("(not ")
		pr.writeSMT(b, e.Operands[0], k)
		b.WriteString(")")
	case KindAnd:
		pr.writeSExpr(b, "and", e.Operands, k)
	case KindOr:
		pr.writeSExpr(b, "or", e.Operands, k)
	case KindAtom:
		fmt.Fprintf(b, "(%s ", smtOp(e.CompareOp))
		pr.writeSMT(b, e.Left, k)
		b.WriteString(" ")
		pr.writeSMT(b, e.Right, k)
		b.WriteString(")")
	case KindTokenCount:
		pr.writeTokenCount(b, e, k)
	case KindIntConst:
		fmt.Fprintf(b, "%d", e.IntVal)
	case KindArith:
		op := "+"
		if e.ArithOp == ArithTimes {
			op = "*"
		}
		pr.writeSExpr(b, op, e.ArithOps, k)
	case KindVar:
		b.WriteString(e.VarName)
	case KindForall:
		b.WriteString("(forall (")
		for i, v := range e.QVars {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(b, "(%s Int)", v)
		}
		b.WriteString(") ")
		pr.writeSMT(b, e.QBody, k)
		b.WriteString(")")
	}
}

func (pr *Printer) writeSExpr(b *strings.Builder, op string, operands []*Expr, k int) {
	fmt.Fprintf(b, "(%s", op)
	for _, o := range operands {
		b.WriteString(" ")
		pr.writeSMT(b, o, k)
	}
	b.WriteString(")")
}

func (pr *Printer) writeTokenCount(b *strings.Builder, e *Expr, k int) {
	if e.StepSet {
		k = e.Step
	}
	terms := make([]string, 0, len(e.Places)+len(e.SymDeltas)+1)
	for _, p := range e.Places {
		terms = append(terms, pr.symbolAt(p, k))
	}
	terms = append(terms, e.SymDeltas...)
	if e.IntDelta != 0 || len(terms) == 0 {
		terms = append(terms, fmt.Sprintf("%d", e.IntDelta))
	}
	if len(terms) == 1 {
		b.WriteString(terms[0])
		return
	}
	fmt.Fprintf(b, "(+ %s)", strings.Join(terms, " "))
}

func smtOp(op CompareOp) string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "distinct"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	}
	return "="
}

// Text renders e as a human-readable infix expression using the net's actual
// place identifiers in place of raw indices, at the given step.
func (pr *Printer) Text(e *Expr, k int) string {
	var b strings.Builder
	pr.writeText(&b, e, k)
	return b.String()
}

func (pr *Printer) writeText(b *strings.Builder, e *Expr, k int) {
	switch e.Kind {
	case KindAtom:
		pr.writeText(b, e.Left, k)
		fmt.Fprintf(b, " %s ", e.CompareOp)
		pr.writeText(b, e.Right, k)
	case KindNot:
		b.WriteString("not ")
		pr.writeText(b, e.Operands[0], k)
	case KindAnd:
		pr.writeTextJoined(b, e.Operands, " and ", k)
	case KindOr:
		pr.writeTextJoined(b, e.Operands, " or ", k)
	case KindTokenCount:
		if e.StepSet {
			k = e.Step
		}
		names := make([]string, 0, len(e.Places)+len(e.SymDeltas))
		for _, p := range e.Places {
			names = append(names, pr.symbolAt(p, k))
		}
		names = append(names, e.SymDeltas...)
		joined := strings.Join(names, " + ")
		if e.IntDelta != 0 {
			if joined == "" {
				joined = fmt.Sprintf("%d", e.IntDelta)
			} else {
				joined = fmt.Sprintf("%s + %d", joined, e.IntDelta)
			}
		}
		if joined == "" {
			joined = "0"
		}
		if len(e.Places)+len(e.SymDeltas) > 1 || (e.IntDelta != 0 && len(e.Places)+len(e.SymDeltas) > 0) {
			fmt.Fprintf(b, "(%s)", joined)
		} else {
			b.WriteString(joined)
		}
	case KindIntConst:
		fmt.Fprintf(b, "%d", e.IntVal)
	default:
		b.WriteString(e.String())
	}
}

func (pr *Printer) writeTextJoined(b *strings.Builder, operands []*Expr, sep string, k int) {
	b.WriteString("(")
	for i, o := range operands {
		if i > 0 {
			b.WriteString(sep)
		}
		pr.writeText(b, o, k)
	}
	b.WriteString(")")
}
