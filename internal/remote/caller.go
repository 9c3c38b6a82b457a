// Package remote defines the opaque contract-call boundary. The core never
// interprets contract error subtypes - it logs and surfaces RemoteError.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Contract methods the core invokes. The contract's transaction semantics
// beyond these calls are out of scope.
const (
	MethodSeriesData             = "series_data"
	MethodSeriesUpdate           = "series_update"
	MethodSeriesCreate           = "series_create"
	MethodSeriesCreateAndApprove = "series_create_and_approve"
	MethodAddPackage             = "add_package"
	MethodGetPackage             = "get_package"
)

// Caller performs calls against the external contract. Implementations own
// the contract id, gas budget, and transport; the core supplies only the
// method, arguments, and (for mutations) an attached deposit.
type Caller interface {
	// View performs a read-only call and returns the raw result.
	View(ctx context.Context, method string, args any) (json.RawMessage, error)

	// Call performs a state-changing call with an attached deposit and
	// returns the raw result.
	Call(ctx context.Context, method string, args any, deposit string) (json.RawMessage, error)
}

// RemoteError wraps any transport- or contract-level failure. Callers of
// the failing operation are responsible for user-visible reporting.
type RemoteError struct {
	Method string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote call %s: %v", e.Method, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// WrapError attaches the failing method to err, unless err already is a
// RemoteError.
func WrapError(method string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Method: method, Err: err}
}
