package models

// This file contains the success payloads carried inside the result envelope.
// Validation tags are enforced when a response is decoded.

// SendCodeResponse is the payload of a successful /auth/send-code call.
type SendCodeResponse struct {
	ExpiresAt         EpochMillis `json:"expiresAt" validate:"required,gt=0"`
	MaskedDestination string      `json:"maskedDestination,omitempty"`
}

// VerifyCodeResponse is the payload of a successful /auth/verify-code call.
type VerifyCodeResponse struct {
	User  User  `json:"user" validate:"required"`
	Token Token `json:"token" validate:"required"`
}

// Session builds the session this response establishes.
func (r VerifyCodeResponse) Session() Session {
	return NewSession(r.User, r.Token)
}
