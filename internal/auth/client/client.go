// Package client sends the two email-code operations to the verification
// service and normalizes every outcome into a result.Result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mobileauth/internal/auth/email"
	"mobileauth/internal/auth/metrics"
	"mobileauth/internal/auth/models"
	"mobileauth/internal/platform/logger"
	"mobileauth/internal/platform/tracer"
	"mobileauth/pkg/result"
)

// User-facing messages for failures synthesized on the client.
const (
	ConnectivityMessage = "Unable to reach the server. Please check your connection and try again."
	GenericMessage      = "Something went wrong. Please try again."
	EmailRequiredMsg    = "email is required"
)

const (
	DefaultUserAgent = "mobileauth-client/1.0"
	DefaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout applies to the default transport only; it is ignored when
	// HTTPClient is set.
	Timeout    time.Duration
	HTTPClient HTTPDoer
	UserAgent  string
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// Client calls the verification service. It never returns Go errors: every
// outcome, including transport and protocol failures, is a Result.
type Client struct {
	baseURL   string
	userAgent string
	http      HTTPDoer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      selectHTTPClient(cfg),
		logger:    logger.Discard(),
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func selectHTTPClient(cfg Config) HTTPDoer {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	return &http.Client{Timeout: cfg.Timeout}
}

type endpoint struct {
	name string
	path string
	span string
}

var (
	sendCodeEndpoint   = endpoint{name: "send_code", path: "/auth/send-code", span: tracer.SpanRequestCode}
	verifyCodeEndpoint = endpoint{name: "verify_code", path: "/auth/verify-code", span: tracer.SpanVerifyCode}
)

type sendCodeBody struct {
	Email string `json:"email"`
}

type verifyCodeBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RequestCode asks the service to deliver a one-time code to address. The
// address is sent exactly as given.
func (c *Client) RequestCode(ctx context.Context, address string) result.Result[models.SendCodeResponse] {
	if strings.TrimSpace(address) == "" {
		return rejectBlankEmail[models.SendCodeResponse](c, sendCodeEndpoint)
	}
	return call[models.SendCodeResponse](ctx, c, sendCodeEndpoint, address, sendCodeBody{Email: address})
}

// VerifyCode submits a code for address and, on success, returns the user and
// token that make up a session.
func (c *Client) VerifyCode(ctx context.Context, address, code string) result.Result[models.VerifyCodeResponse] {
	if strings.TrimSpace(address) == "" {
		return rejectBlankEmail[models.VerifyCodeResponse](c, verifyCodeEndpoint)
	}
	res := call[models.VerifyCodeResponse](ctx, c, verifyCodeEndpoint, address, verifyCodeBody{Email: address, Code: code})
	if res.IsOK() && c.metrics != nil {
		c.metrics.IncrementSignIns()
	}
	return res
}

func rejectBlankEmail[T any](c *Client, ep endpoint) result.Result[T] {
	c.logger.Warn("auth request rejected before sending",
		"endpoint", ep.name,
		"error", EmailRequiredMsg,
	)
	return result.Fail[T](result.NewError(result.CodeValidation, EmailRequiredMsg))
}

// call performs one POST and decodes the envelope. HTTP status codes are
// recorded but never interpreted: the envelope decides the outcome.
func call[T any](ctx context.Context, c *Client, ep endpoint, address string, body any) result.Result[T] {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, ep.span,
		tracer.String(tracer.AttrEndpoint, ep.path),
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(address)),
	)

	status := 0
	res, cause := send[T](ctx, c, ep, body, &status)

	latency := time.Since(start)
	outcome := "ok"
	if apiErr := res.Err(); apiErr != nil {
		outcome = string(apiErr.Code)
		span.SetAttributes(tracer.String(tracer.AttrErrorOrigin, apiErr.Origin().String()))
		if cause == nil {
			cause = errors.New(apiErr.String())
		}
		c.logger.WarnContext(ctx, "auth request failed",
			"endpoint", ep.name,
			"origin", apiErr.Origin().String(),
			"code", string(apiErr.Code),
			"status", status,
			"email", email.Mask(address),
			"latency_ms", latency.Milliseconds(),
			"error", cause,
		)
		if c.metrics != nil {
			c.metrics.IncrementFailures(ep.name, apiErr.Origin().String())
		}
	} else {
		c.logger.DebugContext(ctx, "auth request succeeded",
			"endpoint", ep.name,
			"status", status,
			"latency_ms", latency.Milliseconds(),
		)
	}
	if c.metrics != nil {
		c.metrics.ObserveRequest(ep.name, outcome, float64(latency.Milliseconds()))
	}
	span.SetAttributes(
		tracer.String(tracer.AttrOutcome, outcome),
		tracer.Int64(tracer.AttrStatusCode, int64(status)),
		tracer.Duration(tracer.AttrLatencyMs, latency),
	)
	if res.IsOK() {
		span.End(nil)
	} else {
		span.End(cause)
	}
	return res
}

// send returns the decoded result plus the local cause of any synthesized
// failure, for logging and tracing only.
func send[T any](ctx context.Context, c *Client, ep endpoint, body any, status *int) (result.Result[T], error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return result.Fail[T](result.NewProtocolError(GenericMessage)), err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ep.path, bytes.NewReader(payload))
	if err != nil {
		return result.Fail[T](result.NewTransportError(ConnectivityMessage)), err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return result.Fail[T](result.NewTransportError(ConnectivityMessage)), err
	}
	defer resp.Body.Close()
	*status = resp.StatusCode

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return result.Fail[T](result.NewTransportError(ConnectivityMessage)), err
	}
	if len(raw) > maxResponseBytes {
		return result.Fail[T](result.NewProtocolError(GenericMessage)), errors.New("response body exceeds limit")
	}

	res, err := result.Decode[T](raw)
	if err != nil {
		return result.Fail[T](result.NewProtocolError(GenericMessage)), err
	}
	return res, nil
}
