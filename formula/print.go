package formula

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders e as a human-readable infix expression using raw place
// indices (e.g. "(p3 + p7) >= 2"). It does not know place names; callers that
// have a *petri.Net should prefer Printer.Text, which renders actual place
// identifiers.
func (e *Expr) String() string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e *Expr) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	switch e.Kind {
	case KindBoolConst:
		b.WriteString(strconv.FormatBool(e.BoolVal))
	case KindNot:
		b.WriteString("not ")
		writeExpr(b, e.Operands[0])
	case KindAnd:
		writeJoined(b, e.Operands, " and ")
	case KindOr:
		writeJoined(b, e.Operands, " or ")
	case KindAtom:
		writeExpr(b, e.Left)
		fmt.Fprintf(b, " %s ", e.CompareOp)
		writeExpr(b, e.Right)
	case KindTokenCount:
		if len(e.Places) == 0 && len(e.SymDeltas) == 0 {
			fmt.Fprintf(b, "%d", e.IntDelta)
			return
		}
		b.WriteString("(")
		first := true
		for _, p := range e.Places {
			if !first {
				b.WriteString(" + ")
			}
			fmt.Fprintf(b, "p%d", p)
			first = false
		}
		for _, s := range e.SymDeltas {
			if !first {
				b.WriteString(" + ")
			}
			b.WriteString(s)
			first = false
		}
		if e.IntDelta != 0 {
			fmt.Fprintf(b, " + %d", e.IntDelta)
		}
		b.WriteString(")")
	case KindIntConst:
		fmt.Fprintf(b, "%d", e.IntVal)
	case KindArith:
		op := " + "
		if e.ArithOp == ArithTimes {
			op = " * "
		}
		writeJoined(b, e.ArithOps, op)
	case KindVar:
		b.WriteString(e.VarName)
	case KindForall:
		b.WriteString("forall ")
		b.WriteString(strings.Join(e.QVars, " "))
		b.WriteString(". ")
		writeExpr(b, e.QBody)
	}
}

func writeJoined(b *strings.Builder, operands []*Expr, sep string) {
	b.WriteString("(")
	for i, o := range operands {
		if i > 0 {
			b.WriteString(sep)
		}
		writeExpr(b, o)
	}
	b.WriteString(")")
}
