package netfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lmachina/reachkit/petri"
)

// ParseNet reads the Tina `.net` textual dialect of spec.md §6: a leading
// `net <id>` header, then `pl <id> (<marking>)` and
// `tr <id> [: <label>] <pre-arcs> -> <post-arcs>` lines in any order, arcs of
// the forms `p`, `p*w`, `p?w` (test), `p?-w` (inhibitor).
func ParseNet(r io.Reader) (*petri.Net, error) {
	sc := bufio.NewScanner(r)
	var net *petri.Net

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "net":
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: %q", ErrMalformedNet, line)
			}
			net = petri.NewNet(normalizeID(fields[1]))
		case "pl":
			if net == nil {
				return nil, ErrMissingNetHeader
			}
			if err := parsePlaceLine(net, fields, line); err != nil {
				return nil, err
			}
		case "tr":
			if net == nil {
				return nil, ErrMissingNetHeader
			}
			if err := parseTransitionLine(net, fields, line); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unexpected line %q", ErrMalformedNet, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("netfile.ParseNet: %w", err)
	}
	if net == nil {
		return nil, ErrMissingNetHeader
	}
	return net, nil
}

func parsePlaceLine(net *petri.Net, fields []string, line string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: %q", ErrMalformedNet, line)
	}
	id := normalizeID(fields[1])
	marking, err := parseWeight(strings.Trim(fields[2], "()"))
	if err != nil {
		return fmt.Errorf("netfile.ParseNet: place %q: %w", id, err)
	}
	if _, err := net.AddPlace(id, marking); err != nil {
		return fmt.Errorf("netfile.ParseNet: place %q: %w", id, err)
	}
	return nil
}

func parseTransitionLine(net *petri.Net, fields []string, line string) error {
	if len(fields) < 4 {
		return fmt.Errorf("%w: %q", ErrMalformedNet, line)
	}
	id := normalizeID(fields[1])
	i := 2
	if fields[i] == ":" {
		i += 2 // skip ": <label>"
	}
	arrow := -1
	for j := i; j < len(fields); j++ {
		if fields[j] == "->" {
			arrow = j
			break
		}
	}
	if arrow < 0 {
		return fmt.Errorf("%w: transition %q missing \"->\"", ErrMalformedNet, id)
	}

	arcs := petri.ArcSpec{Pre: map[string]int64{}, Post: map[string]int64{}}
	for _, tok := range fields[i:arrow] {
		if err := applyArcToken(&arcs, tok, true); err != nil {
			return fmt.Errorf("netfile.ParseNet: transition %q: %w", id, err)
		}
	}
	for _, tok := range fields[arrow+1:] {
		if err := applyArcToken(&arcs, tok, false); err != nil {
			return fmt.Errorf("netfile.ParseNet: transition %q: %w", id, err)
		}
	}

	if _, err := net.AddTransition(id, arcs); err != nil {
		return fmt.Errorf("netfile.ParseNet: transition %q: %w", id, err)
	}
	return nil
}

// applyArcToken parses one arc token (`p`, `p*w`, `p?w`, `p?-w`) and records
// its weight(s) into arcs, isPre selecting which side a plain/weighted arc
// contributes to (test and inhibitor arcs set both/Pre regardless of side).
func applyArcToken(arcs *petri.ArcSpec, tok string, isPre bool) error {
	if idx := strings.IndexByte(tok, '?'); idx >= 0 {
		place := normalizeID(tok[:idx])
		rest := tok[idx+1:]
		if strings.HasPrefix(rest, "-") {
			w, err := parseWeight(rest[1:])
			if err != nil {
				return err
			}
			arcs.Pre[place] = -w
			return nil
		}
		w, err := parseWeight(rest)
		if err != nil {
			return err
		}
		arcs.Pre[place] = w
		arcs.Post[place] = w
		return nil
	}

	place := tok
	weight := int64(1)
	if idx := strings.IndexByte(tok, '*'); idx >= 0 {
		place = tok[:idx]
		w, err := parseWeight(tok[idx+1:])
		if err != nil {
			return err
		}
		weight = w
	}
	place = normalizeID(place)
	if isPre {
		arcs.Pre[place] = weight
	} else {
		arcs.Post[place] = weight
	}
	return nil
}

// parseWeight parses an integer literal with spec.md §6's optional K/M
// suffix (x1000, x1000000).
func parseWeight(s string) (int64, error) {
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		mult = 1_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"):
		mult = 1_000_000
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedWeight, s)
	}
	return v * mult, nil
}
