package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atelier/internal/series"
)

func substituteParams() *series.ParamSet {
	return &series.ParamSet{
		Mint: []series.Param{
			{Key: "hue", Spec: series.Spec{Default: series.Number(120), Type: "number"}},
			{Key: "label", Spec: series.Spec{Default: series.String("dot"), Type: "string"}},
		},
		Owner: []series.Param{
			{Key: "speed", Spec: series.Spec{Default: series.Number(1.5), Type: "number"}},
		},
	}
}

func TestSubstituteDefaults(t *testing.T) {
	script := "fill({{hue}}); text('{{label}}'); move({{speed}});"

	out, err := Substitute(script, substituteParams(), Context{})
	require.NoError(t, err)

	assert.Equal(t, "fill(120); text('dot'); move(1.5);", out)
}

func TestSubstituteStringsAreLiteral(t *testing.T) {
	// String defaults splice unquoted: the template supplies the quotes.
	p := &series.ParamSet{
		Mint: []series.Param{
			{Key: "name", Spec: series.Spec{Default: series.String("alpha"), Type: "string"}},
		},
	}

	out, err := Substitute(`let n = "{{name}}";`, p, Context{})
	require.NoError(t, err)
	assert.Equal(t, `let n = "alpha";`, out)
}

func TestSubstituteNonStringValuesAsJSON(t *testing.T) {
	p := &series.ParamSet{
		Owner: []series.Param{
			{Key: "flag", Spec: series.Spec{Default: series.Bool(true), Type: "boolean"}},
			{Key: "points", Spec: series.Spec{Default: series.Array{series.Number(1), series.Number(2)}, Type: "array"}},
			{Key: "empty", Spec: series.Spec{Default: series.Null{}, Type: "string"}},
		},
	}

	out, err := Substitute("{{flag}} {{points}} {{empty}}", p, Context{})
	require.NoError(t, err)
	assert.Equal(t, "true [1,2] null", out)
}

func TestSubstituteIdentityTokens(t *testing.T) {
	out, err := Substitute(
		"let owner = {{OWNER_ID}}; let n = {{NUM_TRANSFERS}};",
		&series.ParamSet{},
		Context{OwnerID: "alice.near", NumTransfers: 7},
	)
	require.NoError(t, err)

	// Owner id is single-quoted; transfer count is a bare number.
	assert.Equal(t, "let owner = 'alice.near'; let n = 7;", out)
}

func TestSubstituteMintBeforeOwner(t *testing.T) {
	// A mint default may itself contain an owner placeholder; the owner
	// pass runs after and resolves it.
	p := &series.ParamSet{
		Mint: []series.Param{
			{Key: "expr", Spec: series.Spec{Default: series.String("{{speed}} * 2"), Type: "string"}},
		},
		Owner: []series.Param{
			{Key: "speed", Spec: series.Spec{Default: series.Number(3), Type: "number"}},
		},
	}

	out, err := Substitute("{{expr}}", p, Context{})
	require.NoError(t, err)
	assert.Equal(t, "3 * 2", out)
}

func TestSubstituteUnmatchedPlaceholdersSurvive(t *testing.T) {
	out, err := Substitute("keep {{unknown}} as-is", &series.ParamSet{}, Context{})
	require.NoError(t, err)
	assert.Equal(t, "keep {{unknown}} as-is", out)
}

func TestSubstituteIdempotent(t *testing.T) {
	p := substituteParams()
	ctx := Context{OwnerID: "bob.near", NumTransfers: 2}
	script := "fill({{hue}}); owner({{OWNER_ID}}); n({{NUM_TRANSFERS}}); {{mystery}}"

	once, err := Substitute(script, p, ctx)
	require.NoError(t, err)

	twice, err := Substitute(once, p, ctx)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}
