package models

import (
	"strings"

	"mobileauth/internal/auth/email"
	"mobileauth/pkg/validation"
)

// SendCodeRequest is the body of POST /auth/send-code.
type SendCodeRequest struct {
	Email string `json:"email" validate:"required,notblank,max=255,email"`
}

// Normalize trims and lower-cases the address.
func (r *SendCodeRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
}

func (r *SendCodeRequest) Validate() error {
	return validation.Validate(r)
}

// VerifyCodeRequest is the body of POST /auth/verify-code.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,notblank,max=255"`
	Code  string `json:"code" validate:"required,numeric,len=6"`
}

func (r *VerifyCodeRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
	r.Code = strings.TrimSpace(r.Code)
}

func (r *VerifyCodeRequest) Validate() error {
	return validation.Validate(r)
}
