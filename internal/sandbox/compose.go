// Package sandbox composes self-contained executable documents and relays
// messages between the host and the isolated context that runs them.
package sandbox

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultOrigin is the host origin sandbox messages are posted to when the
// composer is not configured otherwise.
const DefaultOrigin = "http://localhost:1234/"

// Composer assembles executable documents. Origin is the host origin the
// console relay posts messages to.
type Composer struct {
	Origin string
}

// NewComposer creates a composer targeting the given host origin. An empty
// origin falls back to DefaultOrigin.
func NewComposer(origin string) *Composer {
	if origin == "" {
		origin = DefaultOrigin
	}
	return &Composer{Origin: origin}
}

// Compose builds a complete, self-contained HTML document from style,
// markup, script, and resolved package URLs. The console-relay bootstrap is
// installed before any package or user script runs, so user script errors
// are observable on the host side.
//
// Content is spliced literally - the user script must arrive in the
// sandbox byte-for-byte, so no HTML escaping is applied.
func (c *Composer) Compose(css, html, code string, packageURLs []string) string {
	var includes strings.Builder
	for _, u := range packageURLs {
		fmt.Fprintf(&includes, "<script src=%q></script>\n\t\t", u)
	}

	return fmt.Sprintf(documentSkeleton,
		c.Origin, c.Origin,
		includes.String(),
		css,
		html,
		code,
	)
}

// DataURL encodes a composed document for delivery by content: the sandbox
// receives the full document in its address, never a reference into host
// state, so it cannot synchronously reach the host's globals.
func DataURL(doc string) string {
	return "data:text/html;charset=utf-8," + url.PathEscape(doc)
}

// documentSkeleton is the minimal executable-document frame. The first
// script overrides the sandbox's logging primitives to post structured
// {type, msg} messages to the host origin, and answers {type: 'image'}
// requests by capturing the rendered canvas as binary data.
const documentSkeleton = `<!doctype html>
<html lang="en">
<head>
	<script>
		['log', 'warn', 'error'].forEach((type) => {
			window.console[type] = (msg) => {
				parent.postMessage({ msg: String(msg), type }, %q);
			}
		})
		window.onerror = (msg) => {
			parent.postMessage({ msg: String(msg), type: 'error' }, '*');
		}
		window.onmessage = ({data}) => {
			if (data.type === 'image') {
				document.querySelector('canvas').toBlob(async (blob) => {
					const image = await blob.arrayBuffer()
					parent.postMessage(image, %q, [image]);
				})
			}
		}
	</script>
	%s<style>%s</style>
</head>
<body>
	%s
	<script>%s</script>
</body>
</html>
`
