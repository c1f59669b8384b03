package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "mobileauth/pkg/domain-errors"
	"mobileauth/pkg/result"
)

const (
	msgInvalidBody  = "invalid request body"
	msgBodyTooLarge = "request body too large"
)

// DecodeJSON decodes a JSON request body into the target type.
// On failure it writes a VALIDATION_ERROR envelope and returns nil, false.
//
//	req, ok := httputil.DecodeJSON[models.SendCodeRequest](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		msg := msgInvalidBody
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = msgBodyTooLarge
		}
		WriteErrorCode(w, result.CodeValidation, msg)
		return nil, false
	}
	return &req, true
}

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that support normalization.
type Normalizable interface {
	Normalize()
}

// PrepareRequest normalizes, then validates, a request.
func PrepareRequest(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeAndPrepare combines JSON decoding with PrepareRequest. Preparation
// failures are written as VALIDATION_ERROR envelopes carrying the error text.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}

	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
			"code", string(dErrors.CodeOf(err)),
		)
		WriteErrorCode(w, result.CodeValidation, err.Error())
		return nil, false
	}

	return req, true
}
