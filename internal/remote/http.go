package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPCaller talks to a contract gateway over HTTP. The gateway owns
// signing and transaction submission; this client only frames calls.
type HTTPCaller struct {
	endpoint   string
	contractID string
	gas        string
	client     *http.Client
}

// NewHTTPCaller creates a caller against the given gateway endpoint.
// A nil client falls back to http.DefaultClient.
func NewHTTPCaller(endpoint, contractID, gas string, client *http.Client) *HTTPCaller {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPCaller{
		endpoint:   endpoint,
		contractID: contractID,
		gas:        gas,
		client:     client,
	}
}

// callRequest is the gateway wire format.
type callRequest struct {
	ContractID string `json:"contract_id"`
	Method     string `json:"method"`
	Args       any    `json:"args"`
	Gas        string `json:"gas,omitempty"`
	Deposit    string `json:"deposit,omitempty"`
	View       bool   `json:"view,omitempty"`
}

// callResponse is the gateway reply: a result or an error message.
type callResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// View implements Caller.
func (c *HTTPCaller) View(ctx context.Context, method string, args any) (json.RawMessage, error) {
	return c.post(ctx, callRequest{
		ContractID: c.contractID,
		Method:     method,
		Args:       args,
		View:       true,
	})
}

// Call implements Caller.
func (c *HTTPCaller) Call(ctx context.Context, method string, args any, deposit string) (json.RawMessage, error) {
	return c.post(ctx, callRequest{
		ContractID: c.contractID,
		Method:     method,
		Args:       args,
		Gas:        c.gas,
		Deposit:    deposit,
	})
}

func (c *HTTPCaller) post(ctx context.Context, call callRequest) (json.RawMessage, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return nil, &RemoteError{Method: call.Method, Err: fmt.Errorf("encode call: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &RemoteError{Method: call.Method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &RemoteError{Method: call.Method, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Method: call.Method, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{
			Method: call.Method,
			Err:    fmt.Errorf("gateway returned %s: %s", resp.Status, data),
		}
	}

	var reply callResponse
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, &RemoteError{Method: call.Method, Err: fmt.Errorf("decode reply: %w", err)}
	}
	if reply.Error != "" {
		return nil, &RemoteError{Method: call.Method, Err: fmt.Errorf("%s", reply.Error)}
	}
	return reply.Result, nil
}
