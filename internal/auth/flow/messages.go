package flow

import (
	"errors"
	"strings"

	"mobileauth/internal/auth/client"
	dErrors "mobileauth/pkg/domain-errors"
	"mobileauth/pkg/result"
)

// Input validation copy.
const (
	MsgEmailRequired      = "Please enter your email address."
	MsgEmailInvalid       = "Please enter a valid email address."
	MsgVerifyEmailMissing = "Enter the email address that received the code."
	MsgVerifyCodeMissing  = "Enter both your email and the 6-digit code."
)

// Server and transport copy.
const (
	MsgGeneric           = client.GenericMessage
	MsgCodeInvalid       = "The code you entered is invalid or expired."
	MsgVerifyRateLimited = "Too many attempts. Please request a new code in a moment."
	MsgSendRateLimited   = "Too many code requests. Please wait a moment before trying again."
	MsgStaleFlow         = "The sign-in flow changed before the request finished. Please try again."
)

// Success notices.
const (
	NoticeCodeSent = "Verification code sent"
	NoticeSignedIn = "Signed in successfully"
)

// sendCodeMessage picks the copy shown on the send-code screen.
func sendCodeMessage(e *result.APIError) string {
	switch e.Origin() {
	case result.OriginTransport:
		return e.Message
	case result.OriginProtocol:
		return MsgGeneric
	}
	switch e.Code {
	case result.CodeTooManyRequest:
		return MsgSendRateLimited
	case result.CodeInternal:
		return MsgGeneric
	default:
		return messageOrGeneric(e.Message)
	}
}

// verifyCodeMessage picks the copy shown on the verify-code screen.
func verifyCodeMessage(e *result.APIError) string {
	switch e.Origin() {
	case result.OriginTransport:
		return e.Message
	case result.OriginProtocol:
		return MsgGeneric
	}
	switch e.Code {
	case result.CodeUnauthorized:
		return MsgCodeInvalid
	case result.CodeTooManyRequest:
		return MsgVerifyRateLimited
	case result.CodeValidation:
		return messageOrGeneric(e.Message)
	default:
		return MsgGeneric
	}
}

func messageOrGeneric(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return MsgGeneric
	}
	return msg
}

// errorCode classifies an APIError into the local error taxonomy.
func errorCode(e *result.APIError) dErrors.Code {
	switch e.Origin() {
	case result.OriginTransport:
		return dErrors.CodeTransport
	case result.OriginProtocol:
		return dErrors.CodeProtocol
	}
	if e.Code == result.CodeTooManyRequest {
		return dErrors.CodeRateLimited
	}
	return dErrors.CodeRejected
}

// userError builds the error returned to screens for a failed remote call.
func userError(e *result.APIError, message string) error {
	return &dErrors.Error{
		Code:    errorCode(e),
		Message: message,
		Err:     apiError{e: *e},
	}
}

// apiError keeps the wire error reachable through errors.As.
type apiError struct {
	e result.APIError
}

func (a apiError) Error() string { return a.e.String() }

// APIError extracts the wire error behind a flow error, if any.
func APIError(err error) (result.APIError, bool) {
	var ae apiError
	if errors.As(err, &ae) {
		return ae.e, true
	}
	return result.APIError{}, false
}
