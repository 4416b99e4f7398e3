package reduction

import (
	"fmt"
	"sort"
	"strings"
)

// Indices selects the two time orders a System's equations are asserted
// under: reduced-net place names are suffixed @kReduced, initial-net place
// names @kInitial. InitialUnindexed mirrors spec.md §4.4's "k_initial
// absent" case: initial-net variables are then emitted unindexed.
type Indices struct {
	KReduced         int
	KInitial         int
	InitialUnindexed bool
}

// symbol resolves a declared variable's SMT-LIB symbol under idx: auxiliary
// variables are never indexed; reduced-net places are suffixed @kReduced;
// initial-net places are suffixed @kInitial unless InitialUnindexed.
func (s *System) symbol(name string, idx Indices) string {
	kind, ok := s.kindOf(name)
	if !ok {
		return name
	}
	switch kind {
	case KindAux:
		return name
	case KindReduced:
		return fmt.Sprintf("%s@%d", name, idx.KReduced)
	default: // KindInitial
		if idx.InitialUnindexed {
			return name
		}
		return fmt.Sprintf("%s@%d", name, idx.KInitial)
	}
}

// DeclareAuxiliary returns the SMT-LIB declarations and non-negativity
// assertions for every auxiliary variable (spec.md §4.4 group (i)). Order is
// not significant to the solver but is stabilized by iterating Auxiliary in
// the order System.AuxNames returns.
func (s *System) DeclareAuxiliary() []string {
	var out []string
	for _, name := range s.AuxNames() {
		out = append(out, fmt.Sprintf("(declare-fun %s () Int)", name))
		out = append(out, fmt.Sprintf("(assert (>= %s 0))", name))
	}
	return out
}

// AuxNames returns the system's auxiliary variable names in a stable,
// sorted-by-insertion-order-independent (lexicographic) order so repeated
// calls and repeated encodings are deterministic.
func (s *System) AuxNames() []string {
	return sortedKeys(s.Auxiliary)
}

// TimeInvariantAssertions returns the SMT-LIB text for every equation with
// no reduced-net variable (group (ii)): these never change across BMC/
// k-Induction iterations and are asserted once at startup, unindexed except
// for initial-net places under idx.
func (s *System) TimeInvariantAssertions(idx Indices) []string {
	var out []string
	for _, eq := range s.Equations {
		if eq.ContainsReduced {
			continue
		}
		out = append(out, fmt.Sprintf("(assert %s)", s.equationSMT(eq, idx)))
	}
	return out
}

// ReducedAssertions returns the SMT-LIB text for every equation that
// mentions a reduced-net variable (group (iii)), re-indexed at idx.KReduced.
func (s *System) ReducedAssertions(idx Indices) []string {
	var out []string
	for _, eq := range s.Equations {
		if !eq.ContainsReduced {
			continue
		}
		out = append(out, fmt.Sprintf("(assert %s)", s.equationSMT(eq, idx)))
	}
	return out
}

// LinkingAssertions returns, for every name present in both the initial- and
// reduced-net sets (a place that exists, under possibly different names, in
// both nets), the equality linking its two indexed symbols (spec.md §4.4
// group (iv)). sharedNames maps an initial-net place name to the
// corresponding reduced-net place name.
func (s *System) LinkingAssertions(idx Indices, sharedNames map[string]string) []string {
	out := make([]string, 0, len(sharedNames))
	for _, initName := range sortedMapKeys(sharedNames) {
		redName := sharedNames[initName]
		out = append(out, fmt.Sprintf("(assert (= %s %s))", s.symbol(initName, idx), s.symbol(redName, idx)))
	}
	return out
}

func (s *System) equationSMT(eq Equation, idx Indices) string {
	left := s.sideSMT(eq.Left, idx)
	right := s.sideSMT(eq.Right, idx)
	return fmt.Sprintf("(%s %s %s)", eq.Op, left, right)
}

func (s *System) sideSMT(terms []Term, idx Indices) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		sym := s.symbol(t.Name, idx)
		switch t.Coeff {
		case 1:
			parts[i] = sym
		case 0:
			parts[i] = "0"
		default:
			parts[i] = fmt.Sprintf("(* %d %s)", t.Coeff, sym)
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return fmt.Sprintf("(+ %s)", strings.Join(parts, " "))
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedMapKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
