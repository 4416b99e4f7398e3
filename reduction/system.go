// Package reduction models the linear equation system that relates a larger
// "initial" Petri net to a smaller "reduced" net produced by an external
// net-reduction tool (spec.md §3, §4.3's reduction system and §6's
// "generated equations" file format; parsing itself lives in package
// netfile, which only needs to build a System value).
//
// System is built once at parse time and consulted read-only afterward, the
// same lifecycle builder/api.go gives core.Graph: a staged construction
// followed by an immutable value handed to the rest of the program.
package reduction

import "errors"

// Sentinel errors for equation construction, mirroring petri's Err* style.
var (
	ErrUnknownVariable  = errors.New("reduction: variable not declared in any of the three name sets")
	ErrEmptyEquation    = errors.New("reduction: equation has an empty side")
	ErrDuplicateVarName = errors.New("reduction: variable name reused across disjoint sets")
)

// Op is an equation's relational operator.
type Op byte

const (
	OpEq Op = iota
	OpLe
	OpGe
	OpLt
	OpGt
)

func (o Op) String() string {
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
	}
	return "?"
}

// Term is a single summand of an equation side: an optional integer
// multiplier times a named variable (an initial-net place, a reduced-net
// place, or a fresh auxiliary variable).
type Term struct {
	Coeff int64
	Name  string
}

// Equation is one parsed line of a reduction-equations file: Left Op Right,
// each side a sum of Terms. ContainsReduced records whether any reduced-net
// place name appears on either side, since the bridge constraints emitted
// for an initial-net-only equation never need the reduced net's declarations
// (spec.md §4.4).
type Equation struct {
	Left, Right     []Term
	Op              Op
	ContainsReduced bool
}

// System is the full parsed reduction certificate: the three disjoint name
// sets it declares over, and its equations.
type System struct {
	InitialPlaces  map[string]struct{}
	ReducedPlaces  map[string]struct{}
	Auxiliary      map[string]struct{}
	Equations      []Equation
}

// NewSystem returns an empty System ready to accept declared names and
// equations via Declare/AddEquation.
func NewSystem() *System {
	return &System{
		InitialPlaces: make(map[string]struct{}),
		ReducedPlaces: make(map[string]struct{}),
		Auxiliary:     make(map[string]struct{}),
	}
}

// NameKind identifies which of the three disjoint sets a variable belongs
// to.
type NameKind byte

const (
	KindInitial NameKind = iota
	KindReduced
	KindAux
)

// Declare registers name in the given set. It returns ErrDuplicateVarName if
// name is already declared in a different set.
func (s *System) Declare(name string, kind NameKind) error {
	sets := [3]map[string]struct{}{s.InitialPlaces, s.ReducedPlaces, s.Auxiliary}
	for i, set := range sets {
		if _, ok := set[name]; ok && NameKind(i) != kind {
			return ErrDuplicateVarName
		}
	}
	sets[kind][name] = struct{}{}
	return nil
}

// kindOf reports which set name belongs to, if any.
func (s *System) kindOf(name string) (NameKind, bool) {
	if _, ok := s.InitialPlaces[name]; ok {
		return KindInitial, true
	}
	if _, ok := s.ReducedPlaces[name]; ok {
		return KindReduced, true
	}
	if _, ok := s.Auxiliary[name]; ok {
		return KindAux, true
	}
	return 0, false
}

// AddEquation validates that every term's variable is declared, computes
// ContainsReduced, and appends eq to the system.
func (s *System) AddEquation(eq Equation) error {
	if len(eq.Left) == 0 || len(eq.Right) == 0 {
		return ErrEmptyEquation
	}
	containsReduced := false
	for _, side := range [][]Term{eq.Left, eq.Right} {
		for _, t := range side {
			kind, ok := s.kindOf(t.Name)
			if !ok {
				return ErrUnknownVariable
			}
			if kind == KindReduced {
				containsReduced = true
			}
		}
	}
	eq.ContainsReduced = containsReduced
	s.Equations = append(s.Equations, eq)
	return nil
}
