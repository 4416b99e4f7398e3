// Package reachkit decides reachability-style properties on Petri nets by
// driving an external SMT solver through a portfolio of symbolic
// model-checking procedures (BMC, k-Induction, IC3/PDR, random-walk) plus an
// explicit-state concurrent-places analyzer, optionally exploiting a
// net-reduction certificate that relates an initial net to a smaller reduced
// net through linear equations between place counts.
//
// Packages, leaves first:
//
//	petri/      — the Petri net and marking data model (places, transitions,
//	              arc normalization into inputs/outputs/tests/delta/pre)
//	formula/    — the typed boolean/arithmetic state-formula algebra (DNF,
//	              negation, monotonicity, generalization, SMT-LIB emission)
//	encode/     — the net's first-order arithmetic encoding at a given order
//	reduction/  — the reduction-equations bridge between an initial and a
//	              reduced net
//	solver/     — the long-lived SMT child process driver and its model parser
//	bmc/        — the bounded model-checking unrolling loop
//	kinduction/ — the k-induction inductive-step companion loop
//	ic3/        — the frame-based IC3/PDR procedure with inductive
//	              generalization via unsat-core extraction
//	stepper/    — concrete-state successor enumeration, the concurrent-places
//	              matrix and analyzer, and the random-walk heuristic
//	portfolio/  — the scheduler racing a configured subset of the above
//	netfile/    — the .net/.pnml/properties-XML/reduction file-format parsers
//	cmd/reachkit — the CLI entry point
package reachkit
