package solver

import (
	"fmt"

	"github.com/lmachina/reachkit/encode"
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/petri"
)

// TextDriver renders Driver calls to real SMT-LIB2 text over a Proc, using a
// formula.Printer bound to net to resolve place names.
type TextDriver struct {
	proc *Proc
	pr   *formula.Printer
	net  *petri.Net
}

var _ Driver = (*TextDriver)(nil)

// NewTextDriver returns a Driver that speaks to proc using net's place
// identifiers.
func NewTextDriver(proc *Proc, net *petri.Net) *TextDriver {
	return &TextDriver{proc: proc, pr: formula.NewPrinter(net), net: net}
}

func (d *TextDriver) Push() error  { return d.proc.Push() }
func (d *TextDriver) Pop() error   { return d.proc.Pop() }
func (d *TextDriver) Reset() error { return d.proc.Reset() }

// DeclarePlaces declares every place of the bound net at order k and
// asserts its non-negativity, per package encode's Declare.
func (d *TextDriver) DeclarePlaces(k int) error {
	symbols, nonNeg := encode.Declare(d.net, k)
	for _, sym := range symbols {
		if err := d.proc.Write(fmt.Sprintf("(declare-fun %s () Int)", sym)); err != nil {
			return err
		}
	}
	return d.Assert(nonNeg)
}

func (d *TextDriver) Assert(e *formula.Expr) error {
	return d.proc.Write(fmt.Sprintf("(assert %s)", d.pr.SMTLib(e, 0)))
}

// AssertLabeled asserts e under a :named label for later unsat-core
// extraction (spec.md §6).
func (d *TextDriver) AssertLabeled(e *formula.Expr, label string) error {
	return d.proc.Write(fmt.Sprintf("(assert (! %s :named %s))", d.pr.SMTLib(e, 0), label))
}

// AssertRaw writes text to the solver process unchanged.
func (d *TextDriver) AssertRaw(text string) error {
	return d.proc.Write(text)
}

func (d *TextDriver) CheckSat() (Verdict, error)                 { return d.proc.CheckSat() }
func (d *TextDriver) GetMarking(order int) (petri.Marking, error) { return d.proc.GetMarking(d.net, order) }
func (d *TextDriver) GetUnsatCore() ([]string, error)             { return d.proc.GetUnsatCore() }
func (d *TextDriver) NextLabel() string                          { return d.proc.NextLabel() }
func (d *TextDriver) Kill()                                       { d.proc.Kill() }
func (d *TextDriver) Killed() bool                                { return d.proc.Killed() }
