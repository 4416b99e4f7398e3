package netfile_test

import (
	"strings"
	"testing"

	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/netfile"
	"github.com/lmachina/reachkit/petri"
	"github.com/stretchr/testify/require"
)

func TestParsePropertiesReachabilityGE(t *testing.T) {
	net, err := netfile.ParseNet(strings.NewReader("net s2\npl p (0)\ntr t -> p\n"))
	require.NoError(t, err)

	xmlDoc := `<?xml version="1.0"?>
<property-set>
  <property id="p0">
    <formula>
      <exists-path>
        <finally>
          <integer-ge>
            <tokens-count><place>p</place></tokens-count>
            <integer-constant>1</integer-constant>
          </integer-ge>
        </finally>
      </exists-path>
    </formula>
  </property>
</property-set>`

	props, err := netfile.ParseProperties(strings.NewReader(xmlDoc), net)
	require.NoError(t, err)
	require.Len(t, props, 1)
	require.Equal(t, "p0", props[0].ID)
	require.Equal(t, formula.TagFinally, props[0].Formula.Tag)
}

func TestParsePropertiesDeadlock(t *testing.T) {
	net, err := netfile.ParseNet(strings.NewReader("net s1\npl p (1)\npl q (0)\ntr t p -> q\n"))
	require.NoError(t, err)

	xmlDoc := `<?xml version="1.0"?>
<property-set>
  <property id="deadlock-check">
    <formula>
      <exists-path>
        <finally>
          <deadlock/>
        </finally>
      </exists-path>
    </formula>
  </property>
</property-set>`

	props, err := netfile.ParseProperties(strings.NewReader(xmlDoc), net)
	require.NoError(t, err)
	require.Len(t, props, 1)
	require.NotNil(t, props[0].Formula)
}

func TestParsePropertiesGlobally(t *testing.T) {
	net, err := netfile.ParseNet(strings.NewReader("net s5\npl a (1)\npl b (0)\ntr t1 a -> b\ntr t2 b -> a\n"))
	require.NoError(t, err)

	xmlDoc := `<?xml version="1.0"?>
<property-set>
  <property id="inv">
    <formula>
      <all-paths>
        <globally>
          <integer-le>
            <tokens-count><place>a</place><place>b</place></tokens-count>
            <integer-constant>1</integer-constant>
          </integer-le>
        </globally>
      </all-paths>
    </formula>
  </property>
</property-set>`

	props, err := netfile.ParseProperties(strings.NewReader(xmlDoc), net)
	require.NoError(t, err)
	require.Len(t, props, 1)
	require.Equal(t, formula.TagGlobally, props[0].Formula.Tag)
}

func TestParsePropertiesIsFireable(t *testing.T) {
	net, err := netfile.ParseNet(strings.NewReader("net s1\npl p (1)\npl q (0)\ntr t p -> q\n"))
	require.NoError(t, err)

	xmlDoc := `<?xml version="1.0"?>
<property-set>
  <property id="fireable">
    <formula>
      <exists-path>
        <finally>
          <is-fireable>
            <transition>t</transition>
          </is-fireable>
        </finally>
      </exists-path>
    </formula>
  </property>
</property-set>`

	props, err := netfile.ParseProperties(strings.NewReader(xmlDoc), net)
	require.NoError(t, err)
	require.Len(t, props, 1)
}

// TestParsePropertiesIsFireableReadArcThreshold pins spec.md §8 Testable
// Property 3 for the is-fireable atom: a transition with pre(p)=5,
// post(p)=3 (Inputs[p]=2, Tests[p]=3) must only be fireable once p holds 5
// tokens, not 4 (the split Inputs/Tests bug's failure marking).
func TestParsePropertiesIsFireableReadArcThreshold(t *testing.T) {
	net, err := netfile.ParseNet(strings.NewReader("net readguard\npl p (5)\ntr t p*5 -> p*3\n"))
	require.NoError(t, err)

	xmlDoc := `<?xml version="1.0"?>
<property-set>
  <property id="fireable">
    <formula>
      <exists-path>
        <finally>
          <is-fireable>
            <transition>t</transition>
          </is-fireable>
        </finally>
      </exists-path>
    </formula>
  </property>
</property-set>`

	props, err := netfile.ParseProperties(strings.NewReader(xmlDoc), net)
	require.NoError(t, err)
	require.Len(t, props, 1)

	require.False(t, formula.Eval(props[0].Formula.R, petri.Marking{4}), "p=4 < pre(p)=5: t is not fireable")
	require.True(t, formula.Eval(props[0].Formula.R, petri.Marking{5}), "p=5 >= pre(p)=5: t is fireable")
}

func TestParsePropertiesUnknownPlaceErrors(t *testing.T) {
	net, err := netfile.ParseNet(strings.NewReader("net s1\npl p (1)\npl q (0)\ntr t p -> q\n"))
	require.NoError(t, err)

	xmlDoc := `<?xml version="1.0"?>
<property-set>
  <property id="bad">
    <formula>
      <exists-path>
        <finally>
          <integer-ge>
            <tokens-count><place>nope</place></tokens-count>
            <integer-constant>1</integer-constant>
          </integer-ge>
        </finally>
      </exists-path>
    </formula>
  </property>
</property-set>`

	_, err = netfile.ParseProperties(strings.NewReader(xmlDoc), net)
	require.Error(t, err)
}
