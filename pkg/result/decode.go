package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"mobileauth/pkg/validation"
)

// ErrMalformed is wrapped by every schema violation reported by Decode.
var ErrMalformed = errors.New("malformed result envelope")

const (
	fieldOK    = "ok"
	fieldData  = "data"
	fieldError = "error"
)

// Decode parses body as a Result envelope carrying a T payload.
//
// The envelope must be an object with only the keys ok, data and error; ok must
// be a boolean; ok:true requires data and forbids error; ok:false requires
// error and forbids data. A counterpart sent as null counts as absent. The
// error code must belong to the closed enumeration and its message must be a
// string, possibly empty. Struct payloads are validated against their
// `validate` tags. Unknown payload fields are ignored.
func Decode[T any](body []byte) (Result[T], error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Result[T]{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if fields == nil {
		return Result[T]{}, fmt.Errorf("%w: body is null", ErrMalformed)
	}
	for key := range fields {
		if key != fieldOK && key != fieldData && key != fieldError {
			return Result[T]{}, fmt.Errorf("%w: unexpected field %q", ErrMalformed, key)
		}
	}

	rawOK, present := fields[fieldOK]
	if !present || isNull(rawOK) {
		return Result[T]{}, fmt.Errorf("%w: missing ok", ErrMalformed)
	}
	var ok bool
	if err := json.Unmarshal(rawOK, &ok); err != nil {
		return Result[T]{}, fmt.Errorf("%w: ok is not a boolean", ErrMalformed)
	}

	rawData, hasData := fields[fieldData]
	rawErr, hasErr := fields[fieldError]
	hasData = hasData && !isNull(rawData)
	hasErr = hasErr && !isNull(rawErr)

	if ok {
		if hasErr {
			return Result[T]{}, fmt.Errorf("%w: ok result carries error", ErrMalformed)
		}
		if !hasData {
			return Result[T]{}, fmt.Errorf("%w: ok result without data", ErrMalformed)
		}
		data, err := decodePayload[T](rawData)
		if err != nil {
			return Result[T]{}, err
		}
		return OK(data), nil
	}

	if hasData {
		return Result[T]{}, fmt.Errorf("%w: error result carries data", ErrMalformed)
	}
	if !hasErr {
		return Result[T]{}, fmt.Errorf("%w: error result without error", ErrMalformed)
	}
	apiErr, err := decodeError(rawErr)
	if err != nil {
		return Result[T]{}, err
	}
	return Fail[T](apiErr), nil
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("%w: data: %v", ErrMalformed, err)
	}
	if isStruct(data) {
		if err := validation.Check(data); err != nil {
			return data, fmt.Errorf("%w: data: %v", ErrMalformed, err)
		}
	}
	return data, nil
}

func decodeError(raw json.RawMessage) (APIError, error) {
	var wire struct {
		Code    *string `json:"code"`
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return APIError{}, fmt.Errorf("%w: error: %v", ErrMalformed, err)
	}
	if wire.Code == nil || !ErrorCode(*wire.Code).Valid() {
		return APIError{}, fmt.Errorf("%w: error code missing or unknown", ErrMalformed)
	}
	if wire.Message == nil {
		return APIError{}, fmt.Errorf("%w: error message missing", ErrMalformed)
	}
	return NewError(ErrorCode(*wire.Code), *wire.Message), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Kind() == reflect.Struct
}
