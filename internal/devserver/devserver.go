// Package devserver is a local verification service speaking the email-code
// wire contract. It keeps all state in memory and is meant for development
// and tests only.
package devserver

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mobileauth/internal/auth/email"
	"mobileauth/internal/auth/models"
	"mobileauth/internal/devserver/metrics"
	"mobileauth/internal/platform/health"
	"mobileauth/internal/platform/logger"
	"mobileauth/internal/platform/middleware"
	dErrors "mobileauth/pkg/domain-errors"
	"mobileauth/pkg/platform/httputil"
	"mobileauth/pkg/result"
)

const (
	PathSendCode   = "/auth/send-code"
	PathVerifyCode = "/auth/verify-code"

	msgDeliveryFailed = "Unable to send the verification code. Please try again."
	msgInternal       = "Something went wrong. Please try again."
)

type Config struct {
	Store      StoreConfig
	SigningKey string
	TokenTTL   time.Duration
	// FixedCode, when set, replaces random codes.
	FixedCode   string
	Environment string
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func WithMailer(m Mailer) Option {
	return func(h *Handler) {
		h.mailer = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// Handler serves the send-code and verify-code endpoints.
type Handler struct {
	cfg     Config
	store   *Store
	tokens  *TokenIssuer
	mailer  Mailer
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(cfg Config, opts ...Option) *Handler {
	h := &Handler{
		cfg:    cfg,
		store:  NewStore(cfg.Store),
		tokens: NewTokenIssuer(cfg.SigningKey, cfg.TokenTTL),
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.mailer == nil {
		h.mailer = NewLogMailer(h.logger)
	}
	return h
}

// Tokens exposes the issuer so callers can validate issued tokens.
func (h *Handler) Tokens() *TokenIssuer {
	return h.tokens
}

func (h *Handler) Register(r chi.Router) {
	r.Post(PathSendCode, h.handleSendCode)
	r.Post(PathVerifyCode, h.handleVerifyCode)
}

// Router mounts the auth endpoints and health probes behind the standard
// middleware chain.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))

	hh := health.New(h.cfg.Environment)
	hh.RegisterCheck("signing_key", func() error {
		if h.cfg.SigningKey == "" {
			return fmt.Errorf("signing key not configured")
		}
		return nil
	})
	hh.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.BodyLimit(middleware.DefaultMaxBodyBytes))
		h.Register(r)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteErrorCode(w, result.CodeNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteErrorCode(w, result.CodeNotFound, "Not found")
	})
	return r
}

func (h *Handler) handleSendCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()
	defer h.observe("send_code", start)

	req, ok := httputil.DecodeAndPrepare[models.SendCodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.rejectSend(result.CodeValidation)
		return
	}

	code, err := h.nextCode()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate code", "error", err, "request_id", requestID)
		httputil.WriteErrorCode(w, result.CodeInternal, msgInternal)
		return
	}

	now := h.now()
	expiresAt, err := h.store.IssueCode(req.Email, code, now)
	if err != nil {
		apiErr := toAPIError(err)
		h.logger.WarnContext(ctx, "send code rejected",
			"email", email.Mask(req.Email),
			"code", string(apiErr.Code),
			"request_id", requestID,
		)
		h.rejectSend(apiErr.Code)
		httputil.WriteError(w, apiErr)
		return
	}

	if err := h.mailer.SendCode(ctx, req.Email, code, expiresAt); err != nil {
		h.logger.ErrorContext(ctx, "failed to deliver code",
			"email", email.Mask(req.Email),
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteErrorCode(w, result.CodeInternal, msgDeliveryFailed)
		return
	}
	if h.metrics != nil {
		h.metrics.IncrementCodesIssued()
		h.metrics.SetPendingCodes(h.store.PendingCount(now))
	}

	httputil.WriteOK(w, models.SendCodeResponse{
		ExpiresAt:         models.NewEpochMillis(expiresAt),
		MaskedDestination: email.Mask(req.Email),
	})
}

func (h *Handler) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()
	defer h.observe("verify_code", start)

	req, ok := httputil.DecodeAndPrepare[models.VerifyCodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.countVerification("invalid_request")
		return
	}

	now := h.now()
	outcome, err := h.store.Verify(req.Email, req.Code, now)
	if err != nil {
		apiErr := toAPIError(err)
		h.logger.WarnContext(ctx, "verification failed",
			"email", email.Mask(req.Email),
			"code", string(apiErr.Code),
			"request_id", requestID,
		)
		switch apiErr.Code {
		case result.CodeTooManyRequest:
			h.countVerification("locked")
			if h.metrics != nil {
				h.metrics.IncrementLockouts()
			}
		case result.CodeUnauthorized:
			h.countVerification("invalid")
		default:
			h.countVerification("error")
		}
		httputil.WriteError(w, apiErr)
		return
	}

	token, err := h.tokens.Issue(outcome.User, now)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token", "error", err, "request_id", requestID)
		httputil.WriteErrorCode(w, result.CodeInternal, msgInternal)
		return
	}

	h.logger.InfoContext(ctx, "user signed in",
		"user_id", outcome.User.ID,
		"email", email.Mask(req.Email),
		"new_user", outcome.Created,
		"device", DeviceLabel(r.UserAgent()),
		"request_id", requestID,
	)
	h.countVerification("ok")
	if h.metrics != nil {
		if outcome.Created {
			h.metrics.IncrementUsersCreated()
		}
		h.metrics.SetPendingCodes(h.store.PendingCount(now))
	}

	httputil.WriteOK(w, models.VerifyCodeResponse{User: outcome.User, Token: token})
}

// nextCode returns the fixed code when configured, otherwise six random digits.
func (h *Handler) nextCode() (string, error) {
	if h.cfg.FixedCode != "" {
		return h.cfg.FixedCode, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// toAPIError maps store failures onto envelope error codes.
func toAPIError(err error) result.APIError {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeRateLimited:
		return result.NewError(result.CodeTooManyRequest, err.Error())
	case dErrors.CodeRejected:
		return result.NewError(result.CodeUnauthorized, err.Error())
	case dErrors.CodeInput:
		return result.NewError(result.CodeValidation, err.Error())
	default:
		return result.NewError(result.CodeInternal, msgInternal)
	}
}

func (h *Handler) observe(endpoint string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveEndpointLatency(endpoint, time.Since(start).Seconds())
	}
}

func (h *Handler) rejectSend(code result.ErrorCode) {
	if h.metrics != nil {
		h.metrics.IncrementSendRejections(string(code))
	}
}

func (h *Handler) countVerification(outcome string) {
	if h.metrics != nil {
		h.metrics.IncrementVerifications(outcome)
	}
}
