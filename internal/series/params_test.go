package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParamSet() *ParamSet {
	return &ParamSet{
		MaxSupply:             "100",
		EnforceUniqueMintArgs: true,
		Mint: []Param{
			{Key: "hue", Spec: Spec{Default: Number(120), Type: "number"}},
			{Key: "label", Spec: Spec{Default: String("dot"), Type: "string"}},
		},
		Owner: []Param{
			{Key: "speed", Spec: Spec{Default: Number(1), Type: "number"}},
		},
		Packages: []string{"p5@1.4.2"},
	}
}

func TestParamSetGroupAndKeys(t *testing.T) {
	p := testParamSet()

	assert.Equal(t, []string{"hue", "label"}, p.Keys(GroupMint))
	assert.Equal(t, []string{"speed"}, p.Keys(GroupOwner))
	assert.Nil(t, p.Group(Group("bogus")))
}

func TestApplyPositional(t *testing.T) {
	p := testParamSet()

	p.ApplyPositional(GroupMint, []Value{Number(240), nil})

	hue, ok := AsNumber(p.Mint[0].Spec.Default)
	require.True(t, ok)
	assert.Equal(t, float64(240), hue)

	// nil entry leaves the declared default alone
	label, ok := AsString(p.Mint[1].Spec.Default)
	require.True(t, ok)
	assert.Equal(t, "dot", label)
}

func TestApplyPositionalExtraArgsIgnored(t *testing.T) {
	p := testParamSet()

	p.ApplyPositional(GroupOwner, []Value{Number(3), Number(9), Number(27)})

	require.Len(t, p.Owner, 1)
	speed, ok := AsNumber(p.Owner[0].Spec.Default)
	require.True(t, ok)
	assert.Equal(t, float64(3), speed)
}

func TestIncludePackageIdempotent(t *testing.T) {
	p := testParamSet()

	p.IncludePackage("p5@1.4.2")
	p.IncludePackage("tone@14.7.77")
	p.IncludePackage("tone@14.7.77")

	assert.Equal(t, []string{"p5@1.4.2", "tone@14.7.77"}, p.Packages)
	assert.True(t, p.HasPackage("p5@1.4.2"))
	assert.False(t, p.HasPackage("d3@7.0.0"))
}

func TestBlockRegeneratesDirectiveRegion(t *testing.T) {
	p := testParamSet()

	block, err := p.Block()
	require.NoError(t, err)

	assert.True(t, len(block) > 0)
	assert.Contains(t, block, "@params\n{")
	assert.Contains(t, block, "}\n@params")
	assert.Contains(t, block, `max_supply: "100",`)
	assert.Contains(t, block, "enforce_unique_mint_args: true,")
	assert.Contains(t, block, `hue: { default: 120, type: "number" },`)
	assert.Contains(t, block, `label: { default: "dot", type: "string" },`)
	assert.Contains(t, block, `packages: ["p5@1.4.2"],`)
}

func TestBlockQuotesNonIdentifierKeys(t *testing.T) {
	p := &ParamSet{
		Mint: []Param{
			{Key: "weird-key", Spec: Spec{Default: Null{}, Type: "string"}},
		},
	}

	block, err := p.Block()
	require.NoError(t, err)
	assert.Contains(t, block, `"weird-key": { default: null, type: "string" },`)
}
