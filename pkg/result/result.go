// Package result provides the discriminated success/error envelope returned by
// every remote auth operation.
//
// A Result holds exactly one of a payload or an APIError. The zero value holds
// neither and is reported as invalid; construct results with OK or Fail.
package result

import (
	"encoding/json"
	"fmt"
)

// ErrorCode identifies the category of a domain-level failure. The set is
// closed: decoding rejects codes outside it.
type ErrorCode string

const (
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeInternal       ErrorCode = "INTERNAL_SERVER_ERROR"
)

var knownCodes = map[ErrorCode]struct{}{
	CodeValidation:     {},
	CodeUnauthorized:   {},
	CodeForbidden:      {},
	CodeNotFound:       {},
	CodeConflict:       {},
	CodeTooManyRequest: {},
	CodeInternal:       {},
}

// Valid reports whether c belongs to the closed enumeration.
func (c ErrorCode) Valid() bool {
	_, ok := knownCodes[c]
	return ok
}

// Origin records where an APIError was produced. It never crosses the wire.
type Origin int

const (
	// OriginServer marks an error decoded from a well-formed server envelope.
	OriginServer Origin = iota
	// OriginTransport marks a request that obtained no response.
	OriginTransport
	// OriginProtocol marks a response that did not match the envelope schema.
	OriginProtocol
)

func (o Origin) String() string {
	switch o {
	case OriginTransport:
		return "transport"
	case OriginProtocol:
		return "protocol"
	default:
		return "server"
	}
}

// APIError is the error half of a Result.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	origin  Origin
}

// Origin reports where the error was produced.
func (e APIError) Origin() Origin {
	return e.origin
}

func (e APIError) String() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a server-origin error. It panics on a code outside the
// enumeration since that can only be a programming mistake.
func NewError(code ErrorCode, message string) APIError {
	if !code.Valid() {
		panic(fmt.Sprintf("result: unknown error code %q", code))
	}
	return APIError{Code: code, Message: message, origin: OriginServer}
}

// NewTransportError builds the error reported when no response was obtained.
func NewTransportError(message string) APIError {
	return APIError{Code: CodeInternal, Message: message, origin: OriginTransport}
}

// NewProtocolError builds the error reported for an unusable response body.
func NewProtocolError(message string) APIError {
	return APIError{Code: CodeInternal, Message: message, origin: OriginProtocol}
}

// Result is either a success payload of type T or an APIError.
type Result[T any] struct {
	data *T
	err  *APIError
}

// OK wraps a success payload.
func OK[T any](data T) Result[T] {
	return Result[T]{data: &data}
}

// Fail wraps an error.
func Fail[T any](e APIError) Result[T] {
	return Result[T]{err: &e}
}

// IsOK reports whether the result carries a payload.
func (r Result[T]) IsOK() bool {
	return r.data != nil && r.err == nil
}

// Valid reports whether exactly one of payload or error is present.
func (r Result[T]) Valid() bool {
	return (r.data == nil) != (r.err == nil)
}

// Data returns the payload and true on success.
func (r Result[T]) Data() (T, bool) {
	if r.data == nil {
		var zero T
		return zero, false
	}
	return *r.data, true
}

// Err returns the error, or nil on success.
func (r Result[T]) Err() *APIError {
	if r.err == nil {
		return nil
	}
	e := *r.err
	return &e
}

// envelope is the wire form. Exactly one of Data and Error is set.
type envelope[T any] struct {
	OK    bool      `json:"ok"`
	Data  *T        `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// MarshalJSON encodes the result as {ok:true,data} or {ok:false,error}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("result: cannot encode result without exactly one of data or error")
	}
	return json.Marshal(envelope[T]{OK: r.IsOK(), Data: r.data, Error: r.err})
}

// UnmarshalJSON decodes and validates an envelope. See Decode.
func (r *Result[T]) UnmarshalJSON(body []byte) error {
	decoded, err := Decode[T](body)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}
