package netfile_test

import (
	"strings"
	"testing"

	"github.com/lmachina/reachkit/netfile"
	"github.com/stretchr/testify/require"
)

func TestParsePNMLNames(t *testing.T) {
	doc := `<?xml version="1.0"?>
<pnml>
  <net id="s1">
    <page>
      <place id="p0"><name><text>token-holder</text></name></place>
      <place id="p1"><name><text>receiver</text></name></place>
    </page>
  </net>
</pnml>`

	p, err := netfile.ParsePNML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "s1", p.NetID)
	require.Equal(t, "token-holder", p.Names["p0"])
	require.Equal(t, "receiver", p.Names["p1"])
	require.Nil(t, p.NUPN)
}

func TestParsePNMLNoName(t *testing.T) {
	doc := `<?xml version="1.0"?>
<pnml>
  <net id="anon">
    <page>
      <place id="p0"/>
    </page>
  </net>
</pnml>`

	p, err := netfile.ParsePNML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Empty(t, p.Names)
}

func TestParsePNMLNUPN(t *testing.T) {
	doc := `<?xml version="1.0"?>
<pnml>
  <net id="nupn-net">
    <page>
      <place id="p0"><name><text>p0</text></name></place>
      <place id="p1"><name><text>p1</text></name></place>
      <toolspecific tool="nupn" version="1.1">
        <structure unit-safe="true" root="u0">
          <unit id="u0">
            <places>p0 p1</places>
            <subunits>u1</subunits>
          </unit>
          <unit id="u1">
            <places>p1</places>
          </unit>
        </structure>
      </toolspecific>
    </page>
  </net>
</pnml>`

	p, err := netfile.ParsePNML(strings.NewReader(doc))
	require.NoError(t, err)
	require.NotNil(t, p.NUPN)
	require.True(t, p.NUPN.UnitSafe)
	require.Equal(t, "u0", p.NUPN.Root)
	require.ElementsMatch(t, []string{"p0", "p1"}, p.NUPN.Units["u0"].Places)
	require.ElementsMatch(t, []string{"u1"}, p.NUPN.Units["u0"].Subunits)
	require.ElementsMatch(t, []string{"p1"}, p.NUPN.Units["u1"].Places)
	require.Nil(t, p.NUPN.Units["u1"].Subunits)
}
