package petri

// ArcSpec is the raw, pre-normalization description of a transition's arcs,
// keyed by place ID. Pre entries may be negative to denote an inhibitor arc
// of that magnitude (spec.md §4.2/§3). Post entries are always non-negative.
type ArcSpec struct {
	Pre  map[string]int64
	Post map[string]int64
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// AddTransition inserts a new transition, normalizing arcs into the
// (inputs, outputs, tests, delta, pre) quadruple documented on Transition.
//
// Normalization invariant (spec.md §3): for each place p, if both pre(p)>0
// and post(p)>0, tests[p] = min(pre,post), |delta| = |pre-post|,
// inputs[p] = max(0, pre-post), outputs[p] = max(0, post-pre); otherwise
// exactly one of inputs/outputs carries the weight and delta is its signed
// counterpart. A negative pre(p) (inhibitor) never contributes to
// inputs/outputs/tests/delta on its own.
func (n *Net) AddTransition(id string, arcs ArcSpec) (TransRef, error) {
	if id == "" {
		return 0, ErrEmptyTransID
	}

	n.muTrans.Lock()
	defer n.muTrans.Unlock()

	if _, exists := n.transIndex[id]; exists {
		return 0, ErrDuplicateTrans
	}

	t := &Transition{
		ID:      id,
		Pre:     make(map[PlaceRef]int64),
		Post:    make(map[PlaceRef]int64),
		Inputs:  make(map[PlaceRef]int64),
		Outputs: make(map[PlaceRef]int64),
		Tests:   make(map[PlaceRef]int64),
		Delta:   make(map[PlaceRef]int64),
	}

	places := make(map[string]struct{}, len(arcs.Pre)+len(arcs.Post))
	for p := range arcs.Pre {
		places[p] = struct{}{}
	}
	for p := range arcs.Post {
		places[p] = struct{}{}
	}

	for pid := range places {
		ref, err := n.placeByIDLocked(pid)
		if err != nil {
			return 0, err
		}

		preV := arcs.Pre[pid]
		postV := arcs.Post[pid]

		t.Pre[ref] = preV
		if postV != 0 {
			t.Post[ref] = postV
		}

		switch {
		case preV > 0 && postV > 0:
			t.Tests[ref] = minInt64(preV, postV)
			if in := maxInt64(0, preV-postV); in > 0 {
				t.Inputs[ref] = in
			}
			if out := maxInt64(0, postV-preV); out > 0 {
				t.Outputs[ref] = out
			}
			t.Delta[ref] = postV - preV
		case preV > 0:
			// preV>0 and postV<=0: inhibitor is impossible here since preV>0,
			// so this is a plain consuming arc.
			t.Inputs[ref] = preV
			t.Delta[ref] = -preV
		case postV > 0:
			t.Outputs[ref] = postV
			t.Delta[ref] = postV
		default:
			// preV <= 0: either an inhibitor (preV<0) or the place appears
			// with weight 0 on both sides, which contributes nothing beyond
			// the bare Pre[ref] entry already recorded above.
		}
	}

	ref := TransRef(len(n.transitions))
	n.transitions = append(n.transitions, t)
	n.transIndex[id] = ref
	return ref, nil
}

// placeByIDLocked resolves id while muTrans is already held; it takes its
// own muPlace.RLock since the two locks guard disjoint state.
func (n *Net) placeByIDLocked(id string) (PlaceRef, error) {
	n.muPlace.RLock()
	defer n.muPlace.RUnlock()
	ref, ok := n.placeIndex[id]
	if !ok {
		return 0, ErrPlaceNotFound
	}
	return ref, nil
}

// TransByID resolves a transition's name to its handle.
func (n *Net) TransByID(id string) (TransRef, error) {
	n.muTrans.RLock()
	defer n.muTrans.RUnlock()
	ref, ok := n.transIndex[id]
	if !ok {
		return 0, ErrTransNotFound
	}
	return ref, nil
}

// Transition dereferences a TransRef.
func (n *Net) Transition(ref TransRef) *Transition {
	n.muTrans.RLock()
	defer n.muTrans.RUnlock()
	return n.transitions[ref]
}

// Transitions returns every transition in insertion order.
func (n *Net) Transitions() []*Transition {
	n.muTrans.RLock()
	defer n.muTrans.RUnlock()
	return n.transitions
}

// NumTransitions returns the number of transitions in the net.
func (n *Net) NumTransitions() int {
	n.muTrans.RLock()
	defer n.muTrans.RUnlock()
	return len(n.transitions)
}
