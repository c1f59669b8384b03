package httputil

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobileauth/pkg/result"
)

type testRequest struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type preparedRequest struct {
	Name       string `json:"name"`
	normalized bool
}

func (r *preparedRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.normalized = true
}

func (r *preparedRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) result.Result[struct{}] {
	t.Helper()
	res, err := result.Decode[struct{}](w.Body.Bytes())
	require.NoError(t, err)
	return res
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	t.Run("successful decode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"test","value":42}`))
		w := httptest.NewRecorder()

		got, ok := DecodeJSON[testRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, got)
		assert.Equal(t, "test", got.Name)
		assert.Equal(t, 42, got.Value)
	})

	t.Run("invalid json writes validation envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid json}`))
		w := httptest.NewRecorder()

		got, ok := DecodeJSON[testRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		res := decodeEnvelope(t, w)
		require.NotNil(t, res.Err())
		assert.Equal(t, result.CodeValidation, res.Err().Code)
		assert.Equal(t, msgInvalidBody, res.Err().Message)
	})

	t.Run("oversized body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 100)+`"}`))
		req.Body = http.MaxBytesReader(w, req.Body, 10)

		_, ok := DecodeJSON[testRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, msgBodyTooLarge, decodeEnvelope(t, w).Err().Message)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	t.Run("normalizes then validates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"  padded  "}`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[preparedRequest](w, req, logger, ctx, "req-1")

		require.True(t, ok)
		assert.Equal(t, "padded", got.Name)
		assert.True(t, got.normalized)
	})

	t.Run("validation failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[preparedRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "name is required", decodeEnvelope(t, w).Err().Message)
	})
}

func TestWriteResult(t *testing.T) {
	tests := []struct {
		code   result.ErrorCode
		status int
	}{
		{result.CodeValidation, http.StatusBadRequest},
		{result.CodeUnauthorized, http.StatusUnauthorized},
		{result.CodeForbidden, http.StatusForbidden},
		{result.CodeNotFound, http.StatusNotFound},
		{result.CodeConflict, http.StatusConflict},
		{result.CodeTooManyRequest, http.StatusTooManyRequests},
		{result.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteErrorCode(w, tt.code, "message")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"ok":false,"error":{"code":"`+string(tt.code)+`","message":"message"}}`, w.Body.String())
		})
	}

	t.Run("ok", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteOK(w, map[string]int{"expiresAt": 5})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"data":{"expiresAt":5}}`, w.Body.String())
	})
}
