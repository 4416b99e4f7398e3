package netfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lmachina/reachkit/reduction"
)

// ParseReduction reads a reduction-equations file's "generated equations"
// block (spec.md §6): lines of the form `<name> |- <sum> <op> <sum>`,
// op in {=, <=, >=, <, >}. initialPlaces and reducedPlaces declare the two
// net-place name sets up front; any term name outside both is declared as a
// fresh auxiliary variable the first time it is seen.
func ParseReduction(r io.Reader, initialPlaces, reducedPlaces []string) (*reduction.System, error) {
	sys := reduction.NewSystem()
	declared := make(map[string]struct{}, len(initialPlaces)+len(reducedPlaces))
	for _, p := range initialPlaces {
		if err := sys.Declare(p, reduction.KindInitial); err != nil {
			return nil, fmt.Errorf("netfile.ParseReduction: %w", err)
		}
		declared[p] = struct{}{}
	}
	for _, p := range reducedPlaces {
		if err := sys.Declare(p, reduction.KindReduced); err != nil {
			return nil, fmt.Errorf("netfile.ParseReduction: %w", err)
		}
		declared[p] = struct{}{}
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		eq, err := parseEquationLine(sys, declared, line)
		if err != nil {
			return nil, fmt.Errorf("netfile.ParseReduction: %w", err)
		}
		if err := sys.AddEquation(eq); err != nil {
			return nil, fmt.Errorf("netfile.ParseReduction: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("netfile.ParseReduction: %w", err)
	}
	return sys, nil
}

// parseEquationLine parses one `<name> |- <sum> <op> <sum>` line, declaring
// any never-before-seen term name in sys as an auxiliary variable.
func parseEquationLine(sys *reduction.System, declared map[string]struct{}, line string) (reduction.Equation, error) {
	turnstile := strings.Index(line, "|-")
	if turnstile < 0 {
		return reduction.Equation{}, fmt.Errorf("%w: %q", ErrMalformedEquation, line)
	}
	body := strings.Fields(line[turnstile+2:])

	opIdx, op := -1, reduction.OpEq
	for i, tok := range body {
		if o, ok := equationOp(tok); ok {
			opIdx, op = i, o
			break
		}
	}
	if opIdx < 0 {
		return reduction.Equation{}, fmt.Errorf("%w: no operator in %q", ErrMalformedEquation, line)
	}

	left, err := parseSum(sys, declared, body[:opIdx])
	if err != nil {
		return reduction.Equation{}, err
	}
	right, err := parseSum(sys, declared, body[opIdx+1:])
	if err != nil {
		return reduction.Equation{}, err
	}
	return reduction.Equation{Left: left, Right: right, Op: op}, nil
}

func equationOp(tok string) (reduction.Op, bool) {
	switch tok {
	case "=":
		return reduction.OpEq, true
	case "<=", "≤":
		return reduction.OpLe, true
	case ">=", "≥":
		return reduction.OpGe, true
	case "<":
		return reduction.OpLt, true
	case ">":
		return reduction.OpGt, true
	}
	return 0, false
}

// parseSum parses a `+`-separated sum of terms (each `<coeff>*<name>` or
// bare `<name>`), auto-declaring any unseen name as an auxiliary variable.
// declared tracks every name already registered with sys across the whole
// parse (initial/reduced places plus auxiliary names seen on earlier lines),
// since System exposes no query for "is this name already declared".
func parseSum(sys *reduction.System, declared map[string]struct{}, tokens []string) ([]reduction.Term, error) {
	var terms []reduction.Term
	for _, tok := range tokens {
		if tok == "+" {
			continue
		}
		coeff, name := int64(1), tok
		if idx := strings.IndexByte(tok, '*'); idx >= 0 {
			c, err := strconv.ParseInt(tok[:idx], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: coefficient %q", ErrMalformedEquation, tok)
			}
			coeff, name = c, tok[idx+1:]
		}
		if _, ok := declared[name]; !ok {
			if err := sys.Declare(name, reduction.KindAux); err != nil {
				return nil, err
			}
			declared[name] = struct{}{}
		}
		terms = append(terms, reduction.Term{Coeff: coeff, Name: name})
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: empty sum", ErrMalformedEquation)
	}
	return terms, nil
}
