package testutil

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"mobileauth/internal/auth/models"
	"mobileauth/pkg/result"
)

// TestEmail is the address used by default across fixtures.
const TestEmail = "person@example.com"

// TestUserID is a fixed user id for deterministic assertions.
var TestUserID = uuid.MustParse("11111111-1111-1111-1111-111111111111").String()

// FixedNow is the reference instant fixtures are stamped with.
var FixedNow = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

// UserBuilder provides a fluent interface for building test users.
type UserBuilder struct {
	user models.User
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: models.User{
			ID:        TestUserID,
			Email:     TestEmail,
			IsActive:  true,
			CreatedAt: models.NewEpochMillis(FixedNow.Add(-24 * time.Hour)),
			UpdatedAt: models.NewEpochMillis(FixedNow),
		},
	}
}

func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.user.ID = id
	return b
}

// WithRandomID assigns a fresh uuid.
func (b *UserBuilder) WithRandomID() *UserBuilder {
	b.user.ID = uuid.NewString()
	return b
}

func (b *UserBuilder) WithEmail(address string) *UserBuilder {
	b.user.Email = address
	return b
}

func (b *UserBuilder) Active(active bool) *UserBuilder {
	b.user.IsActive = active
	return b
}

func (b *UserBuilder) Build() models.User {
	return b.user
}

// TokenBuilder provides a fluent interface for building test tokens.
type TokenBuilder struct {
	token models.Token
}

func NewTokenBuilder() *TokenBuilder {
	return &TokenBuilder{
		token: models.Token{
			Token:     "test-token",
			IssuedAt:  models.NewEpochMillis(FixedNow),
			ExpiresAt: models.NewEpochMillis(FixedNow.Add(time.Hour)),
		},
	}
}

func (b *TokenBuilder) WithValue(value string) *TokenBuilder {
	b.token.Token = value
	return b
}

// ExpiringIn sets the expiry relative to the issue time.
func (b *TokenBuilder) ExpiringIn(d time.Duration) *TokenBuilder {
	b.token.ExpiresAt = models.NewEpochMillis(b.token.IssuedAt.Time().Add(d))
	return b
}

func (b *TokenBuilder) Build() models.Token {
	return b.token
}

// NewSession returns a session for TestEmail with default user and token.
func NewSession() models.Session {
	return models.NewSession(NewUserBuilder().Build(), NewTokenBuilder().Build())
}

// SendCodeOK returns a successful send-code result expiring ten minutes
// after FixedNow.
func SendCodeOK(masked string) result.Result[models.SendCodeResponse] {
	return result.OK(models.SendCodeResponse{
		ExpiresAt:         models.NewEpochMillis(FixedNow.Add(10 * time.Minute)),
		MaskedDestination: masked,
	})
}

// VerifyCodeOK returns a successful verify-code result for user.
func VerifyCodeOK(user models.User) result.Result[models.VerifyCodeResponse] {
	return result.OK(models.VerifyCodeResponse{User: user, Token: NewTokenBuilder().Build()})
}

// ServerError returns a failed result with a server-origin error.
func ServerError[T any](code result.ErrorCode, message string) result.Result[T] {
	return result.Fail[T](result.NewError(code, message))
}

// EnvelopeJSON marshals res the way the verification service would.
func EnvelopeJSON[T any](res result.Result[T]) string {
	b, err := json.Marshal(res)
	if err != nil {
		panic(err)
	}
	return string(b)
}
