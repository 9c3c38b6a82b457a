package sandbox

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeGolden(t *testing.T) {
	c := NewComposer("")

	doc := c.Compose(
		"canvas { background: #000; }",
		"<canvas></canvas>",
		"console.log('ready')",
		[]string{"https://cdn.example/p5.js"},
	)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "compose_basic", []byte(doc))
}

func TestComposeBootstrapBeforePackages(t *testing.T) {
	c := NewComposer(DefaultOrigin)

	doc := c.Compose("", "", "draw()", []string{"https://cdn.example/p5.js"})

	bootstrap := strings.Index(doc, "window.console[type]")
	include := strings.Index(doc, `<script src="https://cdn.example/p5.js"></script>`)
	user := strings.Index(doc, "<script>draw()</script>")

	require.NotEqual(t, -1, bootstrap)
	require.NotEqual(t, -1, include)
	require.NotEqual(t, -1, user)
	assert.Less(t, bootstrap, include)
	assert.Less(t, include, user)
}

func TestComposeOneIncludePerPackage(t *testing.T) {
	c := NewComposer(DefaultOrigin)

	doc := c.Compose("", "", "", []string{"u1", "u2"})

	assert.Equal(t, 1, strings.Count(doc, `<script src="u1"></script>`))
	assert.Equal(t, 1, strings.Count(doc, `<script src="u2"></script>`))
	assert.Less(t, strings.Index(doc, `src="u1"`), strings.Index(doc, `src="u2"`))
}

func TestComposeNoPackages(t *testing.T) {
	c := NewComposer(DefaultOrigin)

	doc := c.Compose("body {}", "<p>hi</p>", "run()", nil)

	assert.NotContains(t, doc, "<script src=")
	assert.Contains(t, doc, "<style>body {}</style>")
	assert.Contains(t, doc, "<p>hi</p>")
	assert.Contains(t, doc, "<script>run()</script>")
}

func TestComposeSplicesLiterally(t *testing.T) {
	// User script must arrive byte-for-byte: no HTML escaping.
	c := NewComposer(DefaultOrigin)

	doc := c.Compose("", "", `if (a < b && c > d) { alert("x"); }`, nil)
	assert.Contains(t, doc, `if (a < b && c > d) { alert("x"); }`)
}

func TestComposeTargetsConfiguredOrigin(t *testing.T) {
	c := NewComposer("https://studio.example/")

	doc := c.Compose("", "", "", nil)
	assert.Contains(t, doc, `"https://studio.example/"`)
	assert.NotContains(t, doc, DefaultOrigin)
}

func TestDataURLEncodesByContent(t *testing.T) {
	u := DataURL("<html># fragment?</html>")

	assert.True(t, strings.HasPrefix(u, "data:text/html;charset=utf-8,"))
	assert.NotContains(t, u, "#")
	assert.NotContains(t, u, "?")
}
