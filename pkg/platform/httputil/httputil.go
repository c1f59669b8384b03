package httputil

import (
	"encoding/json"
	"net/http"

	"mobileauth/pkg/result"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, so an encoding error cannot change the response.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteResult writes res as a Result envelope with the status its error code
// maps to, or 200 on success.
func WriteResult[T any](w http.ResponseWriter, res result.Result[T]) {
	status := http.StatusOK
	if e := res.Err(); e != nil {
		status = StatusForCode(e.Code)
	}
	WriteJSON(w, status, res)
}

func WriteOK[T any](w http.ResponseWriter, data T) {
	WriteResult(w, result.OK(data))
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, e result.APIError) {
	WriteResult(w, result.Fail[struct{}](e))
}

// WriteErrorCode is WriteError for a server-side code and message.
func WriteErrorCode(w http.ResponseWriter, code result.ErrorCode, message string) {
	WriteError(w, result.NewError(code, message))
}

// StatusForCode translates envelope error codes to HTTP status codes.
func StatusForCode(code result.ErrorCode) int {
	switch code {
	case result.CodeValidation:
		return http.StatusBadRequest
	case result.CodeUnauthorized:
		return http.StatusUnauthorized
	case result.CodeForbidden:
		return http.StatusForbidden
	case result.CodeNotFound:
		return http.StatusNotFound
	case result.CodeConflict:
		return http.StatusConflict
	case result.CodeTooManyRequest:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
