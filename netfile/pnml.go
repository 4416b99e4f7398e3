package netfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// PNML is the subset of a `.pnml` document spec.md §6 consumes: the
// place-id-to-display-name mapping, and an optional NUPN toolspecific
// section (unit-safe pragma, root unit, nested unit tree).
type PNML struct {
	NetID string
	Names map[string]string // place id -> display name
	NUPN  *NUPN
}

// NUPN is the parsed NUPN toolspecific structure of a PNML document: a
// unit-safe pragma, the root unit's id, and every declared unit's local
// places and subunits.
type NUPN struct {
	UnitSafe bool
	Root     string
	Units    map[string]Unit
}

// Unit is one node of the NUPN unit tree.
type Unit struct {
	ID       string
	Places   []string
	Subunits []string
}

type pnmlDoc struct {
	XMLName xml.Name  `xml:"pnml"`
	Net     pnmlNetEl `xml:"net"`
}

type pnmlNetEl struct {
	ID    string     `xml:"id,attr"`
	Pages []pnmlPage `xml:"page"`
}

type pnmlPage struct {
	Places       []pnmlPlace       `xml:"place"`
	Toolspecific []pnmlToolspecific `xml:"toolspecific"`
}

type pnmlPlace struct {
	ID   string    `xml:"id,attr"`
	Name *pnmlName `xml:"name"`
}

type pnmlName struct {
	Text string `xml:"text"`
}

type pnmlToolspecific struct {
	Tool      string         `xml:"tool,attr"`
	Structure *pnmlStructure `xml:"structure"`
}

type pnmlStructure struct {
	UnitSafe string     `xml:"unit-safe,attr"`
	Root     string     `xml:"root,attr"`
	Units    []pnmlUnit `xml:"unit"`
}

type pnmlUnit struct {
	ID       string `xml:"id,attr"`
	Places   string `xml:"places"`
	Subunits string `xml:"subunits"`
}

// ParsePNML decodes a PNML document into the name map and (if present) the
// NUPN toolspecific structure. A document with no NUPN toolspecific section
// returns a PNML with a nil NUPN field.
func ParsePNML(r io.Reader) (*PNML, error) {
	var doc pnmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("netfile.ParsePNML: %w: %w", ErrMalformedPNML, err)
	}

	out := &PNML{NetID: doc.Net.ID, Names: make(map[string]string)}
	for _, page := range doc.Net.Pages {
		for _, pl := range page.Places {
			if pl.Name != nil {
				out.Names[pl.ID] = pl.Name.Text
			}
		}
		for _, ts := range page.Toolspecific {
			if ts.Tool != "nupn" || ts.Structure == nil {
				continue
			}
			out.NUPN = buildNUPN(ts.Structure)
		}
	}
	return out, nil
}

func buildNUPN(s *pnmlStructure) *NUPN {
	n := &NUPN{
		UnitSafe: s.UnitSafe == "true",
		Root:     s.Root,
		Units:    make(map[string]Unit, len(s.Units)),
	}
	for _, u := range s.Units {
		n.Units[u.ID] = Unit{
			ID:       u.ID,
			Places:   fieldsOrNil(u.Places),
			Subunits: fieldsOrNil(u.Subunits),
		}
	}
	return n
}

func fieldsOrNil(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
