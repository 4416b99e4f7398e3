package petri

import "errors"

// ErrTransitionDisabled is returned by Fire when t is not enabled at m.
var ErrTransitionDisabled = errors.New("petri: transition not enabled")

// Marking is a total map PlaceRef -> non-negative token count. Comparison
// and arithmetic are componentwise (spec.md §3).
type Marking []int64

// InitialMarking builds the Marking m0 from the net's declared place
// initial values, ordered by PlaceRef.
func (n *Net) InitialMarking() Marking {
	places := n.Places()
	m := make(Marking, len(places))
	for i, p := range places {
		m[i] = p.Initial
	}
	return m
}

// Clone returns an independent copy of m.
func (m Marking) Clone() Marking {
	out := make(Marking, len(m))
	copy(out, m)
	return out
}

// GreaterEq reports whether m >= other componentwise, treating a shorter
// other as zero-padded.
func (m Marking) GreaterEq(other Marking) bool {
	for i := range other {
		if m[i] < other[i] {
			return false
		}
	}
	return true
}

// Equal reports componentwise equality.
func (m Marking) Equal(other Marking) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// Enabled reports whether t can fire at m: for every place with a positive
// firing threshold, m(p) >= pre(p); for every inhibitor, m(p) < |pre(p)|.
func (n *Net) Enabled(m Marking, tr TransRef) bool {
	t := n.Transition(tr)
	for p, w := range t.Pre {
		if w < 0 {
			if m[p] >= -w {
				return false
			}
			continue
		}
		if w > 0 && m[p] < w {
			return false
		}
	}
	return true
}

// EnabledTransitions returns every TransRef enabled at m, in transition
// insertion order.
func (n *Net) EnabledTransitions(m Marking) []TransRef {
	trs := n.Transitions()
	out := make([]TransRef, 0, len(trs))
	for i := range trs {
		tr := TransRef(i)
		if n.Enabled(m, tr) {
			out = append(out, tr)
		}
	}
	return out
}

// Fire returns the marking obtained by firing t at m: m - inputs(t) +
// outputs(t). Returns ErrTransitionDisabled if t is not enabled at m.
func (n *Net) Fire(m Marking, tr TransRef) (Marking, error) {
	if !n.Enabled(m, tr) {
		return nil, ErrTransitionDisabled
	}
	t := n.Transition(tr)
	out := m.Clone()
	for p, w := range t.Inputs {
		out[p] -= w
	}
	for p, w := range t.Outputs {
		out[p] += w
	}
	return out, nil
}
