package solver

import (
	"regexp"
	"strconv"
	"strings"
)

// defineFunRe matches a single `(define-fun <symbol> () Int <value>)` line,
// tolerating the `(- N)` negative-literal form SMT-LIB solvers emit.
var defineFunRe = regexp.MustCompile(`\(define-fun\s+([A-Za-z0-9_@.!$%&*+\-/:<=>?^~]+)\s*\(\)\s*Int\s+(\(-\s*\d+\)|-?\d+)\)`)

// ParseModel extracts every `(define-fun <symbol> () Int <value>)` binding
// from a raw (get-model) response, keyed by the full symbol (any "@k" suffix
// is kept as part of the key, since the caller resolves indexing via
// lookupModelValue).
func ParseModel(raw string) map[string]int64 {
	out := make(map[string]int64)
	for _, m := range defineFunRe.FindAllStringSubmatch(raw, -1) {
		name, raw := m[1], m[2]
		out[name] = parseIntLiteral(raw)
	}
	return out
}

func parseIntLiteral(s string) int64 {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") {
		s = strings.TrimPrefix(s, "(")
		s = strings.TrimSuffix(s, ")")
		s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "-"))
		v, _ := strconv.ParseInt(s, 10, 64)
		return -v
	}
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// splitIndexed splits a symbol of the form "name@k" into its base name and
// integer index; ok is false for an unindexed symbol.
func splitIndexed(symbol string) (name string, k int, ok bool) {
	i := strings.LastIndex(symbol, "@")
	if i < 0 {
		return symbol, 0, false
	}
	idx, err := strconv.Atoi(symbol[i+1:])
	if err != nil {
		return symbol, 0, false
	}
	return symbol[:i], idx, true
}

// lookupModelValue resolves placeID's value in values for the requested
// order (spec.md §4.1: "only variables matching the requested order (or
// unindexed if no order was given) are retained"). order<0 means "no
// order": only the bare, unindexed symbol is consulted.
func lookupModelValue(values map[string]int64, placeID string, order int) (int64, bool) {
	if order < 0 {
		v, ok := values[placeID]
		return v, ok
	}
	for sym, v := range values {
		name, k, indexed := splitIndexed(sym)
		if indexed && name == placeID && k == order {
			return v, true
		}
	}
	return 0, false
}
