package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobileauth/pkg/validation"
)

func TestVerifyCodeRequest_Validate(t *testing.T) {
	valid := func() VerifyCodeRequest {
		return VerifyCodeRequest{Email: "person@example.com", Code: "654321"}
	}

	t.Run("valid request passes validation", func(t *testing.T) {
		assert.NoError(t, validation.Validate(valid()))
	})

	t.Run("code must be six digits", func(t *testing.T) {
		req := valid()
		req.Code = "65432"
		err := validation.Validate(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code must be exactly 6 characters")
	})

	t.Run("email exceeds max length rejected", func(t *testing.T) {
		req := valid()
		req.Email = strings.Repeat("a", 250) + "@example.com"
		err := validation.Validate(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email must be at most 255")
	})

	t.Run("blank email rejected", func(t *testing.T) {
		req := valid()
		req.Email = "   "
		err := validation.Validate(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email must not be blank")
	})
}

func TestVerifyCodeResponse_Validation(t *testing.T) {
	now := time.Now()
	valid := func() VerifyCodeResponse {
		return VerifyCodeResponse{
			User: User{
				ID:        "user-id",
				Email:     "person@example.com",
				IsActive:  true,
				CreatedAt: NewEpochMillis(now.Add(-time.Second)),
				UpdatedAt: NewEpochMillis(now),
			},
			Token: Token{
				Token:     "token",
				IssuedAt:  NewEpochMillis(now),
				ExpiresAt: NewEpochMillis(now.Add(time.Hour)),
			},
		}
	}

	t.Run("complete payload passes", func(t *testing.T) {
		assert.NoError(t, validation.Check(valid()))
	})

	t.Run("nested user id required", func(t *testing.T) {
		resp := valid()
		resp.User.ID = ""
		assert.EqualError(t, validation.Check(resp), "id is required")
	})

	t.Run("token may not expire before issue", func(t *testing.T) {
		resp := valid()
		resp.Token.ExpiresAt = resp.Token.IssuedAt - 1
		assert.EqualError(t, validation.Check(resp), "expires_at must not be before issued_at")
	})

	t.Run("missing token struct rejected", func(t *testing.T) {
		resp := valid()
		resp.Token = Token{}
		assert.Error(t, validation.Check(resp))
	})
}

func TestSessionAndPending(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("epoch millis round trip", func(t *testing.T) {
		m := NewEpochMillis(now)
		assert.True(t, m.Time().Equal(now))
	})

	t.Run("session expiry", func(t *testing.T) {
		s := NewSession(User{Email: "person@example.com"}, Token{ExpiresAt: NewEpochMillis(now)})
		assert.Equal(t, "person@example.com", s.Email())
		assert.False(t, s.Expired(now.Add(-time.Millisecond)))
		assert.True(t, s.Expired(now))
	})

	t.Run("pending without expiry never lapses", func(t *testing.T) {
		p := PendingVerification{Email: "person@example.com"}
		assert.False(t, p.HasExpiry())
		assert.False(t, p.Expired(now.Add(24*time.Hour)))
		assert.Equal(t, "person@example.com", p.Destination())
	})

	t.Run("pending with expiry and mask", func(t *testing.T) {
		p := PendingVerification{Email: "person@example.com", MaskedDestination: "p***@example.com", CodeExpiresAt: now}
		assert.True(t, p.Expired(now))
		assert.False(t, p.Expired(now.Add(-time.Second)))
		assert.Equal(t, "p***@example.com", p.Destination())
	})
}

func TestSendCodeRequest_Prepare(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		req := SendCodeRequest{Email: "  Person@Example.COM "}
		req.Normalize()
		assert.Equal(t, "person@example.com", req.Email)
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects malformed address", func(t *testing.T) {
		req := SendCodeRequest{Email: "not-an-email"}
		assert.EqualError(t, req.Validate(), "email must be a valid email")
	})

	t.Run("rejects blank address", func(t *testing.T) {
		req := SendCodeRequest{Email: "   "}
		assert.EqualError(t, req.Validate(), "email must not be blank")
	})
}

func TestVerifyCodeRequest_Normalize(t *testing.T) {
	req := VerifyCodeRequest{Email: " A@B.co ", Code: " 123456 "}
	req.Normalize()
	assert.Equal(t, "a@b.co", req.Email)
	assert.Equal(t, "123456", req.Code)
	assert.NoError(t, req.Validate())
}
