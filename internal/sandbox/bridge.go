package sandbox

import (
	"fmt"
	"sync"
)

// LogCapacity bounds the host's console log: only the most recent entries
// are retained.
const LogCapacity = 100

// Message types the sandbox posts to the host. MessageImage flows the
// other way: the host asks the sandbox to capture its rendered surface.
const (
	MessageLog   = "log"
	MessageWarn  = "warn"
	MessageError = "error"
	MessageImage = "image"
)

// Message is one structured event on the bridge. A message carrying
// ByteLength is a captured-image payload; anything else is a log line.
type Message struct {
	Type       string `json:"type,omitempty"`
	Msg        string `json:"msg,omitempty"`
	ByteLength int    `json:"byteLength,omitempty"`
	Data       []byte `json:"-"`
}

// LogEntry is one retained console line.
type LogEntry struct {
	Sequence int
	Text     string
}

// Capture is the most recent binary image captured from the sandbox. At
// most one capture is tracked; a new one replaces the prior value.
type Capture struct {
	ByteLength int
	Data       []byte
}

// Bridge receives sandbox events on the host side: a bounded,
// arrival-ordered console log and a single captured-image slot.
//
// A single mutex serializes intake, so concurrent sandbox messages never
// interleave entries out of arrival order. Observers are notified through
// a coalescing signal channel (buffered, size 1): a poke means "new
// entries may be available", not "exactly one arrived".
type Bridge struct {
	mu      sync.Mutex
	entries []LogEntry
	nextSeq int
	image   *Capture
	signal  chan struct{}
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{
		entries: make([]LogEntry, 0, LogCapacity),
		signal:  make(chan struct{}, 1),
	}
}

// Receive ingests one message. Image payloads (ByteLength > 0) replace the
// captured-image slot; everything else appends "type: msg" to the log,
// evicting the oldest entry beyond LogCapacity.
func (b *Bridge) Receive(msg Message) {
	b.mu.Lock()

	if msg.ByteLength > 0 {
		b.image = &Capture{ByteLength: msg.ByteLength, Data: msg.Data}
		b.mu.Unlock()
		b.notify()
		return
	}

	entry := LogEntry{
		Sequence: b.nextSeq,
		Text:     msg.Type + ": " + msg.Msg,
	}
	b.nextSeq++

	b.entries = append(b.entries, entry)
	if len(b.entries) > LogCapacity {
		// Evict oldest. Copy down instead of re-slicing so the backing
		// array does not pin evicted entries.
		copy(b.entries, b.entries[len(b.entries)-LogCapacity:])
		b.entries = b.entries[:LogCapacity]
	}

	b.mu.Unlock()
	b.notify()
}

// notify pokes the observer channel without blocking; pending pokes
// coalesce.
func (b *Bridge) notify() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Updates returns the observer channel. Receive from it in a select to
// learn that the log or image slot changed; the signal is deferred and
// coalescing, but log order itself always reflects arrival order.
func (b *Bridge) Updates() <-chan struct{} {
	return b.signal
}

// Entries returns a copy of the retained log in arrival order.
func (b *Bridge) Entries() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Image returns the current captured image, if any.
func (b *Bridge) Image() (*Capture, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.image == nil {
		return nil, false
	}
	img := *b.image
	return &img, true
}

// Logf formats and appends a host-side log line. Used by operations that
// report outcomes through the existing console channel.
func (b *Bridge) Logf(format string, args ...any) {
	b.Receive(Message{Type: MessageLog, Msg: fmt.Sprintf(format, args...)})
}

// Warnf formats and appends a host-side warning line.
func (b *Bridge) Warnf(format string, args ...any) {
	b.Receive(Message{Type: MessageWarn, Msg: fmt.Sprintf(format, args...)})
}

// Errorf formats and appends a host-side error line.
func (b *Bridge) Errorf(format string, args ...any) {
	b.Receive(Message{Type: MessageError, Msg: fmt.Sprintf(format, args...)})
}
