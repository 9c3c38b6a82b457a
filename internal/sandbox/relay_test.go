package sandbox

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialRelay(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRelayForwardsTextMessages(t *testing.T) {
	bridge := NewBridge()
	relay := NewRelay(bridge)
	defer relay.Close()

	srv := httptest.NewServer(relay)
	defer srv.Close()

	conn := dialRelay(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"log","msg":"one"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","msg":"two"}`)))

	require.Eventually(t, func() bool {
		return len(bridge.Entries()) == 2
	}, time.Second, 10*time.Millisecond)

	entries := bridge.Entries()
	assert.Equal(t, "log: one", entries[0].Text)
	assert.Equal(t, "error: two", entries[1].Text)
}

func TestRelayForwardsBinaryAsImage(t *testing.T) {
	bridge := NewBridge()
	relay := NewRelay(bridge)
	defer relay.Close()

	srv := httptest.NewServer(relay)
	defer srv.Close()

	conn := dialRelay(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}))

	require.Eventually(t, func() bool {
		_, ok := bridge.Image()
		return ok
	}, time.Second, 10*time.Millisecond)

	img, ok := bridge.Image()
	require.True(t, ok)
	assert.Equal(t, 3, img.ByteLength)
	assert.Equal(t, []byte{1, 2, 3}, img.Data)
	assert.Empty(t, bridge.Entries())
}

func TestRelayBadMessageLogged(t *testing.T) {
	bridge := NewBridge()
	relay := NewRelay(bridge)
	defer relay.Close()

	srv := httptest.NewServer(relay)
	defer srv.Close()

	conn := dialRelay(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	require.Eventually(t, func() bool {
		return len(bridge.Entries()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Contains(t, bridge.Entries()[0].Text, "error: bridge: bad message")
}

func TestRelayRequestCaptureNoSandbox(t *testing.T) {
	relay := NewRelay(NewBridge())
	assert.ErrorIs(t, relay.RequestCapture(), ErrNoSandbox)
}

func TestRelayRequestCapture(t *testing.T) {
	bridge := NewBridge()
	relay := NewRelay(bridge)
	defer relay.Close()

	srv := httptest.NewServer(relay)
	defer srv.Close()

	conn := dialRelay(t, srv)

	// The connection attaches on the server goroutine after the handshake.
	require.Eventually(t, func() bool {
		return relay.RequestCapture() == nil
	}, time.Second, 10*time.Millisecond)

	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageImage, msg.Type)
}
