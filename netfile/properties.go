package netfile

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/petri"
)

// Property is one parsed entry of a properties file: its declared id and the
// Formula built from its path-quantified atom.
type Property struct {
	ID      string
	Formula *formula.Formula
}

type propertySetXML struct {
	XMLName    xml.Name      `xml:"property-set"`
	Properties []propertyXML `xml:"property"`
}

type propertyXML struct {
	ID      string     `xml:"id,attr"`
	Formula formulaXML `xml:"formula"`
}

type formulaXML struct {
	ExistsPath *pathXML `xml:"exists-path"`
	AllPaths   *pathXML `xml:"all-paths"`
}

type pathXML struct {
	Finally  *atomXML `xml:"finally"`
	Globally *atomXML `xml:"globally"`
}

type atomXML struct {
	IntegerLE  *compareXML  `xml:"integer-le"`
	IntegerGE  *compareXML  `xml:"integer-ge"`
	IntegerEQ  *compareXML  `xml:"integer-eq"`
	IsFireable *fireableXML `xml:"is-fireable"`
	Deadlock   *struct{}    `xml:"deadlock"`
}

type compareXML struct {
	TokensCount     *tokensCountXML `xml:"tokens-count"`
	IntegerConstant *int64          `xml:"integer-constant"`
}

type tokensCountXML struct {
	Place []string `xml:"place"`
}

type fireableXML struct {
	Transition []string `xml:"transition"`
}

// ParseProperties decodes a properties XML document (spec.md §6: top
// connectives exists-path/finally or all-paths/globally, atoms
// integer-le/ge/eq, is-fireable, tokens-count, integer-constant, deadlock)
// into a Formula per property, resolving every named place/transition
// against net.
func ParseProperties(r io.Reader, net *petri.Net) ([]Property, error) {
	var doc propertySetXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("netfile.ParseProperties: %w", err)
	}

	out := make([]Property, 0, len(doc.Properties))
	for _, p := range doc.Properties {
		f, err := buildProperty(p, net)
		if err != nil {
			return nil, fmt.Errorf("netfile.ParseProperties: property %q: %w", p.ID, err)
		}
		out = append(out, Property{ID: p.ID, Formula: f})
	}
	return out, nil
}

func buildProperty(p propertyXML, net *petri.Net) (*formula.Formula, error) {
	var tag formula.Tag
	var atom *atomXML
	switch {
	case p.Formula.ExistsPath != nil:
		tag = formula.TagFinally
		atom = p.Formula.ExistsPath.Finally
	case p.Formula.AllPaths != nil:
		tag = formula.TagGlobally
		atom = p.Formula.AllPaths.Globally
	default:
		return nil, ErrMissingFormula
	}
	if atom == nil {
		return nil, ErrMissingFormula
	}
	if atom.Deadlock != nil {
		return formula.DeadlockFormula(net), nil
	}

	expr, err := buildAtomExpr(atom, net)
	if err != nil {
		return nil, err
	}
	return formula.ReachabilityFormula(expr, tag), nil
}

func buildAtomExpr(a *atomXML, net *petri.Net) (*formula.Expr, error) {
	switch {
	case a.IntegerLE != nil:
		return buildCompareExpr(a.IntegerLE, formula.OpLe, net)
	case a.IntegerGE != nil:
		return buildCompareExpr(a.IntegerGE, formula.OpGe, net)
	case a.IntegerEQ != nil:
		return buildCompareExpr(a.IntegerEQ, formula.OpEq, net)
	case a.IsFireable != nil:
		return buildFireableExpr(a.IsFireable, net)
	default:
		return nil, ErrUnsupportedAtom
	}
}

// buildCompareExpr resolves a tokens-count/integer-constant comparison atom.
// The properties format spec.md §6 names always pairs one tokens-count
// operand against one integer-constant threshold (the standard reachability
// cardinality query shape); a compare atom with any other operand
// combination is rejected as unsupported.
func buildCompareExpr(c *compareXML, op formula.CompareOp, net *petri.Net) (*formula.Expr, error) {
	if c.TokensCount == nil || c.IntegerConstant == nil {
		return nil, ErrUnsupportedAtom
	}
	refs := make([]petri.PlaceRef, 0, len(c.TokensCount.Place))
	for _, id := range c.TokensCount.Place {
		ref, err := net.PlaceByID(id)
		if err != nil {
			return nil, fmt.Errorf("place %q: %w", id, err)
		}
		refs = append(refs, ref)
	}
	return formula.Atom(formula.TokenCount(refs, 0), op, formula.IntConst(*c.IntegerConstant)), nil
}

// buildFireableExpr builds "some named transition is currently enabled",
// mirroring formula's own (unexported) transition-enabling condition: every
// place with a positive firing threshold holds at least that many tokens,
// and every inhibitor place holds fewer than its threshold.
func buildFireableExpr(fx *fireableXML, net *petri.Net) (*formula.Expr, error) {
	disjuncts := make([]*formula.Expr, 0, len(fx.Transition))
	for _, id := range fx.Transition {
		ref, err := net.TransByID(id)
		if err != nil {
			return nil, fmt.Errorf("transition %q: %w", id, err)
		}
		disjuncts = append(disjuncts, transitionEnabledExpr(net.Transition(ref)))
	}
	if len(disjuncts) == 0 {
		return nil, ErrUnsupportedAtom
	}
	return formula.Or(disjuncts...), nil
}

func transitionEnabledExpr(tr *petri.Transition) *formula.Expr {
	var atoms []*formula.Expr
	// One atom per place against its raw Pre threshold (petri.Net.Enabled's
	// own rule), not the split Inputs/Tests lower bounds: for a place with
	// both pre(p)>0 and post(p)>0, Inputs[p]+Tests[p]=pre(p), so two
	// separate >= atoms only enforce p@k >= max(inputs,tests).
	for p, w := range tr.Pre {
		if w < 0 {
			atoms = append(atoms, formula.Atom(formula.TokenCount([]petri.PlaceRef{p}, 0), formula.OpLt, formula.IntConst(-w)))
			continue
		}
		if w > 0 {
			atoms = append(atoms, formula.Atom(formula.TokenCount([]petri.PlaceRef{p}, 0), formula.OpGe, formula.IntConst(w)))
		}
	}
	if len(atoms) == 0 {
		return formula.BoolConst(true)
	}
	return formula.And(atoms...)
}
