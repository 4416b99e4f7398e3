// Package netfile parses the four input file formats spec.md §6 names: the
// Tina `.net` textual dialect, an optional `.pnml` name/NUPN-unit file, an
// optional properties XML file, and an optional reduction-equations file.
// Each parser is hand-written (bufio.Scanner line-by-line plus
// strings.Fields token splitting for the line-oriented formats,
// encoding/xml for PNML and properties) rather than built on a parser
// combinator or grammar library, following builder/api.go's staged
// tokenize-then-validate-then-construct convention: a line is first split
// into fields, the fields are validated against the expected shape for that
// line kind, and only then fed into the petri/reduction constructors.
package netfile

import "errors"

// Sentinel errors, in the style of petri's and reduction's Err* vars.
var (
	ErrMissingNetHeader = errors.New("netfile: missing leading \"net <id>\" line")
	ErrMalformedNet     = errors.New("netfile: malformed .net line")
	ErrMalformedArc     = errors.New("netfile: malformed arc token")
	ErrMalformedWeight  = errors.New("netfile: malformed integer weight")
	ErrMalformedPNML    = errors.New("netfile: malformed PNML document")
	ErrMalformedEquation = errors.New("netfile: malformed reduction-equation line")
	ErrUnsupportedAtom  = errors.New("netfile: unsupported property atom")
	ErrMissingFormula   = errors.New("netfile: property has no exists-path/all-paths body")
)

// normalizeID applies spec.md §6's identifier normalization: '#' and ','
// become '.', '{' and '}' are stripped.
func normalizeID(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '#', ',':
			out = append(out, '.')
		case '{', '}':
			// stripped
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
