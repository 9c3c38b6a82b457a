package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Relay carries bridge messages over a websocket so an out-of-process
// sandbox host (a browser page embedding the iframe) can reach the Go
// host. One sandbox connection is active at a time; a new connection
// replaces the previous one, matching the single-active-sandbox design.
//
// All inbound messages are decoded on one reader goroutine per connection,
// so bridge intake preserves the connection's arrival order.
type Relay struct {
	bridge   *Bridge
	upgrader websocket.Upgrader

	mu        sync.Mutex
	conn      *websocket.Conn
	sessionID string
}

// NewRelay creates a relay feeding the given bridge.
func NewRelay(bridge *Bridge) *Relay {
	return &Relay{
		bridge: bridge,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1 << 16,
			WriteBufferSize:  1 << 16,
			HandshakeTimeout: 10 * time.Second,
			// The preview server serves the host page itself; same-host
			// upgrades are the only expected callers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and pumps sandbox messages into the
// bridge until the connection closes.
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rl.bridge.Errorf("bridge upgrade failed: %v", err)
		return
	}

	session := uuid.NewString()
	rl.attach(conn, session)
	defer rl.detach(session)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		switch kind {
		case websocket.BinaryMessage:
			// Binary frames are captured-image payloads.
			rl.bridge.Receive(Message{ByteLength: len(data), Data: data})
		case websocket.TextMessage:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				rl.bridge.Errorf("bridge: bad message: %v", err)
				continue
			}
			rl.bridge.Receive(msg)
		}
	}
}

// attach replaces the active connection. The displaced connection is
// closed so its reader loop winds down.
func (rl *Relay) attach(conn *websocket.Conn, session string) {
	rl.mu.Lock()
	prev := rl.conn
	rl.conn = conn
	rl.sessionID = session
	rl.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

// detach clears the active connection if it still belongs to session.
func (rl *Relay) detach(session string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.sessionID != session {
		return // already replaced by a newer sandbox
	}
	if rl.conn != nil {
		rl.conn.Close()
		rl.conn = nil
	}
	rl.sessionID = ""
}

// ErrNoSandbox is returned when a capture is requested with no sandbox
// connected.
var ErrNoSandbox = errors.New("no sandbox connected")

// RequestCapture asks the connected sandbox to capture its rendered
// surface. The resulting image arrives later as a binary bridge message.
func (rl *Relay) RequestCapture() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.conn == nil {
		return ErrNoSandbox
	}
	return rl.conn.WriteJSON(Message{Type: MessageImage})
}

// Close drops the active connection, if any.
func (rl *Relay) Close() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.conn != nil {
		rl.conn.Close()
		rl.conn = nil
		rl.sessionID = ""
	}
}
