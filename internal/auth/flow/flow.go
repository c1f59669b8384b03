// Package flow coordinates the sign-in screens: it validates input, calls the
// auth client, applies state transitions on success, and turns failures into
// user-facing errors.
package flow

//go:generate mockgen -source=flow.go -destination=mocks/mocks.go -package=mocks AuthClient

import (
	"context"
	"log/slog"
	"strings"

	"mobileauth/internal/auth/email"
	"mobileauth/internal/auth/models"
	"mobileauth/internal/auth/state"
	"mobileauth/internal/platform/logger"
	dErrors "mobileauth/pkg/domain-errors"
	"mobileauth/pkg/result"
)

// AuthClient performs the two remote auth operations.
type AuthClient interface {
	RequestCode(ctx context.Context, email string) result.Result[models.SendCodeResponse]
	VerifyCode(ctx context.Context, email, code string) result.Result[models.VerifyCodeResponse]
}

// NoticeVariant selects how a success notice is presented.
type NoticeVariant string

const (
	NoticeInfo    NoticeVariant = "info"
	NoticeSuccess NoticeVariant = "success"
)

// Notice is transient confirmation copy shown after a successful step.
type Notice struct {
	Text    string
	Variant NoticeVariant
}

type Option func(*Flow)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// Flow is the screen-level caller of the auth client.
type Flow struct {
	client  AuthClient
	machine *state.Machine
	logger  *slog.Logger
}

// New panics on a nil client or machine.
func New(c AuthClient, m *state.Machine, opts ...Option) *Flow {
	if c == nil || m == nil {
		panic("flow: client and machine are required")
	}
	f := &Flow{
		client:  c,
		machine: m,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SendCode requests a code for address and, on success, moves the machine to
// AwaitingVerification for the normalized address.
func (f *Flow) SendCode(ctx context.Context, address string) (Notice, error) {
	normalized := email.Normalize(address)
	if normalized == "" {
		return Notice{}, dErrors.New(dErrors.CodeInput, MsgEmailRequired)
	}
	if !email.IsValidEmail(normalized) {
		return Notice{}, dErrors.New(dErrors.CodeInput, MsgEmailInvalid)
	}

	gen := f.machine.Generation()
	res := f.client.RequestCode(ctx, normalized)
	data, ok := res.Data()
	if !ok {
		apiErr := res.Err()
		f.logger.InfoContext(ctx, "send code failed",
			"email", email.Mask(normalized),
			"code", string(apiErr.Code),
			"origin", apiErr.Origin().String(),
		)
		return Notice{}, userError(apiErr, sendCodeMessage(apiErr))
	}

	opts := []state.VerificationOption{state.WithMaskedDestination(data.MaskedDestination)}
	if data.ExpiresAt > 0 {
		opts = append(opts, state.WithCodeExpiry(data.ExpiresAt.Time()))
	}
	if err := f.machine.StartEmailVerificationAt(gen, normalized, opts...); err != nil {
		f.logger.InfoContext(ctx, "send code result discarded", "email", email.Mask(normalized))
		return Notice{}, dErrors.Wrap(err, dErrors.CodeStaleFlow, MsgStaleFlow)
	}
	return Notice{Text: NoticeCodeSent, Variant: NoticeInfo}, nil
}

// VerifyCode submits code for address and, on success, installs the session.
// Failures leave the machine untouched.
func (f *Flow) VerifyCode(ctx context.Context, address, code string) (Notice, error) {
	if strings.TrimSpace(address) == "" {
		return Notice{}, dErrors.New(dErrors.CodeInput, MsgVerifyEmailMissing)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return Notice{}, dErrors.New(dErrors.CodeInput, MsgVerifyCodeMissing)
	}
	normalized := email.Normalize(address)

	gen := f.machine.Generation()
	res := f.client.VerifyCode(ctx, normalized, code)
	data, ok := res.Data()
	if !ok {
		apiErr := res.Err()
		f.logger.InfoContext(ctx, "verify code failed",
			"email", email.Mask(normalized),
			"code", string(apiErr.Code),
			"origin", apiErr.Origin().String(),
		)
		return Notice{}, userError(apiErr, verifyCodeMessage(apiErr))
	}

	if err := f.machine.CompleteSignInAt(gen, data.Session()); err != nil {
		f.logger.InfoContext(ctx, "verify code result discarded", "email", email.Mask(normalized))
		return Notice{}, dErrors.Wrap(err, dErrors.CodeStaleFlow, MsgStaleFlow)
	}
	f.logger.InfoContext(ctx, "signed in", "email", email.Mask(normalized), "user_id", data.User.ID)
	return Notice{Text: NoticeSignedIn, Variant: NoticeSuccess}, nil
}

// UseDifferentEmail abandons the pending verification.
func (f *Flow) UseDifferentEmail() {
	f.machine.ResetAuthFlow()
}

func (f *Flow) SignOut() {
	f.machine.ResetAuthFlow()
}

// PendingEmail returns the address awaiting a code, for prefilling the
// verify-code screen.
func (f *Flow) PendingEmail() (string, bool) {
	pending, ok := f.machine.Pending()
	if !ok {
		return "", false
	}
	return pending.Email, true
}
