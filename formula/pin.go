package formula

// PinAt returns a clone of e with every TokenCount node that does not
// already carry an explicit Step pinned to order k. It is how engines
// assert a single formula (e.g. a Formula's R or P) at a specific BMC/
// k-Induction order without depending on the render-time k a
// formula.Printer happens to be called with (spec.md §4.5/§4.6: "assert R
// at order k").
func PinAt(e *Expr, k int) *Expr {
	c := e.Clone()
	walkTokenCounts(c, func(tc *Expr) {
		if !tc.StepSet {
			tc.Step = k
			tc.StepSet = true
		}
	})
	return c
}

// MaxStep returns the largest Step among e's pinned TokenCount nodes, or 0
// if none are pinned.
func MaxStep(e *Expr) int {
	max := 0
	walkTokenCounts(e, func(tc *Expr) {
		if tc.StepSet && tc.Step > max {
			max = tc.Step
		}
	})
	return max
}
