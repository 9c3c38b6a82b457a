package remote

import (
	"context"
	"encoding/json"
	"sync"
)

// CallRecord captures one call made against a Fake, in arrival order.
type CallRecord struct {
	Method  string
	Args    any
	Deposit string
	View    bool
}

// Fake is an in-memory Caller for tests. Responses are queued per method
// and consumed in FIFO order; a method with no queued response returns its
// fallback, or a RemoteError if none is set.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]json.RawMessage
	fallback  map[string]json.RawMessage
	errs      map[string]error
	calls     []CallRecord
}

// NewFake creates an empty fake caller.
func NewFake() *Fake {
	return &Fake{
		responses: make(map[string][]json.RawMessage),
		fallback:  make(map[string]json.RawMessage),
		errs:      make(map[string]error),
	}
}

// Queue appends a response for method. The value is marshaled to JSON.
func (f *Fake) Queue(method string, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		panic(err) // test setup bug
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method] = append(f.responses[method], data)
}

// Respond sets the fallback response for method, returned whenever the
// queue for that method is empty.
func (f *Fake) Respond(method string, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		panic(err) // test setup bug
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallback[method] = data
}

// Fail makes every call to method return err.
func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method] = err
}

// Calls returns a copy of the recorded calls in arrival order.
func (f *Fake) Calls() []CallRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CallRecord, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many calls were made to method.
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// View implements Caller.
func (f *Fake) View(ctx context.Context, method string, args any) (json.RawMessage, error) {
	return f.dispatch(CallRecord{Method: method, Args: args, View: true})
}

// Call implements Caller.
func (f *Fake) Call(ctx context.Context, method string, args any, deposit string) (json.RawMessage, error) {
	return f.dispatch(CallRecord{Method: method, Args: args, Deposit: deposit})
}

func (f *Fake) dispatch(rec CallRecord) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, rec)

	if err := f.errs[rec.Method]; err != nil {
		return nil, WrapError(rec.Method, err)
	}
	if queued := f.responses[rec.Method]; len(queued) > 0 {
		f.responses[rec.Method] = queued[1:]
		return queued[0], nil
	}
	if data, ok := f.fallback[rec.Method]; ok {
		return data, nil
	}
	return nil, &RemoteError{Method: rec.Method, Err: errNoResponse}
}

var errNoResponse = &noResponseError{}

type noResponseError struct{}

func (*noResponseError) Error() string { return "no response configured" }
