package sandbox

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeFormatsEntries(t *testing.T) {
	b := NewBridge()

	b.Receive(Message{Type: MessageLog, Msg: "hello"})
	b.Receive(Message{Type: MessageWarn, Msg: "careful"})
	b.Receive(Message{Type: MessageError, Msg: "boom"})

	entries := b.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "log: hello", entries[0].Text)
	assert.Equal(t, "warn: careful", entries[1].Text)
	assert.Equal(t, "error: boom", entries[2].Text)
}

func TestBridgeEvictsBeyondCapacity(t *testing.T) {
	b := NewBridge()

	for i := 0; i < LogCapacity+5; i++ {
		b.Receive(Message{Type: MessageLog, Msg: fmt.Sprintf("line %d", i)})
	}

	entries := b.Entries()
	require.Len(t, entries, LogCapacity)

	// Oldest 5 evicted; remaining entries keep arrival order.
	assert.Equal(t, "log: line 5", entries[0].Text)
	assert.Equal(t, fmt.Sprintf("log: line %d", LogCapacity+4), entries[len(entries)-1].Text)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].Sequence+1, entries[i].Sequence)
	}
}

func TestBridgeImageSlotReplaces(t *testing.T) {
	b := NewBridge()

	_, ok := b.Image()
	assert.False(t, ok)

	b.Receive(Message{ByteLength: 3, Data: []byte{1, 2, 3}})
	b.Receive(Message{ByteLength: 2, Data: []byte{9, 9}})

	img, ok := b.Image()
	require.True(t, ok)
	assert.Equal(t, 2, img.ByteLength)
	assert.Equal(t, []byte{9, 9}, img.Data)

	// Image payloads never enter the console log.
	assert.Empty(t, b.Entries())
}

func TestBridgeUpdatesCoalesce(t *testing.T) {
	b := NewBridge()

	// Many receives with no observer never block.
	for i := 0; i < 10; i++ {
		b.Logf("line %d", i)
	}

	select {
	case <-b.Updates():
	default:
		t.Fatal("expected a pending update signal")
	}

	// Signals coalesce: one drain clears the pending poke.
	select {
	case <-b.Updates():
		t.Fatal("expected signal to coalesce to a single poke")
	default:
	}
}

func TestBridgeHostSideHelpers(t *testing.T) {
	b := NewBridge()

	b.Logf("count %d", 1)
	b.Warnf("watch %s", "out")
	b.Errorf("bad %v", "input")

	entries := b.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "log: count 1", entries[0].Text)
	assert.Equal(t, "warn: watch out", entries[1].Text)
	assert.Equal(t, "error: bad input", entries[2].Text)
}

func TestBridgeEntriesReturnsCopy(t *testing.T) {
	b := NewBridge()
	b.Logf("original")

	entries := b.Entries()
	entries[0].Text = "mutated"

	assert.Equal(t, "log: original", b.Entries()[0].Text)
}
