package domainerrors

import "errors"

// Code represents a local failure category independent of the wire format.
// Wire-level failures use result.ErrorCode; these codes describe what the
// client itself decided went wrong.
type Code string

const (
	CodeInput       Code = "input"        // rejected before any network call
	CodeTransport   Code = "transport"    // no response obtained
	CodeProtocol    Code = "protocol"     // response did not match the envelope schema
	CodeRejected    Code = "rejected"     // server returned a domain error
	CodeRateLimited Code = "rate_limited" // server returned TOO_MANY_REQUESTS
	CodeStaleFlow   Code = "stale_flow"   // result arrived after the flow moved on
	CodeConfig      Code = "config"
	CodeInternal    Code = "internal_error"
)

// Error wraps a local failure with a stable code.
// Message is user-facing copy when produced by the auth flow.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first domain error in the chain, or
// CodeInternal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
