package models

import "time"

// This file contains pure domain models for the client-side auth core:
// the signed-in session and the pending verification slot.

// EpochMillis is a point in time expressed as milliseconds since the Unix
// epoch, the representation used on the wire.
type EpochMillis int64

// NewEpochMillis converts t to milliseconds since the epoch.
func NewEpochMillis(t time.Time) EpochMillis {
	return EpochMillis(t.UnixMilli())
}

// Time converts m back to a time.Time.
func (m EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

// User is the authenticated identity returned by a successful verification.
type User struct {
	ID        string      `json:"id" validate:"required,notblank"`
	Email     string      `json:"email" validate:"required,notblank"`
	IsActive  bool        `json:"isActive"`
	CreatedAt EpochMillis `json:"createdAt" validate:"required,gt=0"`
	UpdatedAt EpochMillis `json:"updatedAt" validate:"required,gt=0"`
}

// Token is the bearer token issued alongside a user.
type Token struct {
	Token     string      `json:"token" validate:"required,notblank"`
	IssuedAt  EpochMillis `json:"issuedAt" validate:"required,gt=0"`
	ExpiresAt EpochMillis `json:"expiresAt" validate:"required,gtefield=IssuedAt"`
}

// Session is the signed-in identity plus its issued token. It lives only for
// the lifetime of the process.
type Session struct {
	User  User
	Token Token
}

// NewSession pairs a verified user with the token issued for it.
func NewSession(user User, token Token) Session {
	return Session{User: user, Token: token}
}

// Email returns the address the session was established for.
func (s Session) Email() string {
	return s.User.Email
}

// ExpiresAt returns when the bearer token lapses.
func (s Session) ExpiresAt() time.Time {
	return s.Token.ExpiresAt.Time()
}

// Expired reports whether the bearer token has lapsed at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt())
}

// PendingVerification is the single email address awaiting a one-time code.
type PendingVerification struct {
	Email             string
	MaskedDestination string
	// CodeExpiresAt is zero when the issuing response did not report an expiry.
	CodeExpiresAt time.Time
}

// HasExpiry reports whether the code expiry is known.
func (p PendingVerification) HasExpiry() bool {
	return !p.CodeExpiresAt.IsZero()
}

// Expired reports whether the code has lapsed at now. A pending verification
// without a known expiry never reports expired.
func (p PendingVerification) Expired(now time.Time) bool {
	return p.HasExpiry() && !now.Before(p.CodeExpiresAt)
}

// Destination returns the masked hint when present, otherwise the email.
func (p PendingVerification) Destination() string {
	if p.MaskedDestination != "" {
		return p.MaskedDestination
	}
	return p.Email
}
