package directive

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// ParseError reports a malformed or missing directive section. For @params
// failures it carries the underlying evaluator error so callers can surface
// the real syntax problem instead of silently defaulting.
type ParseError struct {
	Section string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Section, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Section, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// wrapCUEError converts an evaluator error into a ParseError, extracting
// position info when available.
func wrapCUEError(err error) *ParseError {
	pe := &ParseError{
		Section: "params",
		Message: err.Error(),
		Err:     err,
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return pe
	}

	firstErr := errs[0]
	pe.Message = firstErr.Error()
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		pe.Pos = positions[0]
	}
	return pe
}
