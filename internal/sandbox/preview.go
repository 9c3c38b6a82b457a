package sandbox

import (
	"fmt"
	"net/http"
	"sync"
)

// Preview serves the current composed document to a browser: a host page
// at / that embeds the sandbox iframe by content (data: URL) and forwards
// its postMessage traffic over the relay websocket at /bridge.
//
// The iframe is a separately-addressed execution context with no shared
// memory with the host page, and the document travels by value, so the
// sandbox cannot synchronously reach host state.
type Preview struct {
	relay *Relay

	mu  sync.RWMutex
	doc string
}

// NewPreview creates a preview around the given relay.
func NewPreview(relay *Relay) *Preview {
	return &Preview{relay: relay}
}

// SetDocument swaps in a freshly composed document. Documents are never
// mutated after composition; each render installs a new one.
func (p *Preview) SetDocument(doc string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc = doc
}

// Handler returns the preview mux: host page, raw document, and bridge
// endpoint.
func (p *Preview) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", p.serveHost)
	mux.HandleFunc("/document", p.serveDocument)
	mux.Handle("/bridge", p.relay)
	return mux
}

func (p *Preview) serveDocument(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	doc := p.doc
	p.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, doc)
}

func (p *Preview) serveHost(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	p.mu.RLock()
	doc := p.doc
	p.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, hostPage, DataURL(doc))
}

// hostPage embeds the sandbox iframe and bridges window messages to the
// websocket: structured log events travel as JSON text frames, captured
// images as binary frames.
const hostPage = `<!doctype html>
<html lang="en">
<head><title>atelier preview</title></head>
<body>
	<iframe id="preview" src=%q sandbox="allow-scripts"></iframe>
	<script>
		const ws = new WebSocket('ws://' + location.host + '/bridge');
		const frame = document.getElementById('preview');
		window.onmessage = ({ data }) => {
			if (ws.readyState !== WebSocket.OPEN) return;
			if (data instanceof ArrayBuffer) {
				ws.send(data);
			} else {
				ws.send(JSON.stringify(data));
			}
		};
		ws.onmessage = ({ data }) => {
			frame.contentWindow.postMessage(JSON.parse(data), '*');
		};
	</script>
</body>
</html>
`
