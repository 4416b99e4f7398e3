package ic3

import "github.com/lmachina/reachkit/formula"

// frame is one level of the IC3 clause database (spec.md §3's Frames
// invariants): a deduplicated set of clauses, identified by their canonical
// text form since two structurally-equal clauses built on different
// occasions are still the same clause.
type frame struct {
	clauses []*formula.Expr
	seen    map[string]struct{}
}

// newFrame returns a frame seeded with the given clauses (e.g. the safety
// clause P every non-initial frame carries, spec.md §3).
func newFrame(seed ...*formula.Expr) *frame {
	fr := &frame{seen: make(map[string]struct{})}
	for _, c := range seed {
		fr.add(c)
	}
	return fr
}

// add inserts c if not already present, reporting whether it was new.
func (fr *frame) add(c *formula.Expr) bool {
	key := c.String()
	if _, ok := fr.seen[key]; ok {
		return false
	}
	fr.seen[key] = struct{}{}
	fr.clauses = append(fr.clauses, c)
	return true
}

// equalSet reports whether fr and other hold the same clause set, the
// fixpoint-detection comparison of spec.md §4.7.
func (fr *frame) equalSet(other *frame) bool {
	if len(fr.seen) != len(other.seen) {
		return false
	}
	for k := range fr.seen {
		if _, ok := other.seen[k]; !ok {
			return false
		}
	}
	return true
}
