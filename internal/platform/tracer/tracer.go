// Package tracer provides a small tracing abstraction for the auth client.
//
// Callers emit spans through the Tracer interface without importing
// OpenTelemetry directly. NoopTracer serves tests and the default client;
// OTelTracer adapts the global (or an injected) OpenTelemetry tracer.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span and returns a context carrying it.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanRequestCode,
	//       tracer.String(tracer.AttrEmailHash, tracer.HashEmail(addr)),
	//   )
	//   defer span.End(nil)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a short SHA-256 digest of an address so spans can be
// correlated without carrying the address itself.
func HashEmail(address string) string {
	if address == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(address))
	return hex.EncodeToString(sum[:8])
}

// Span names emitted by the auth client.
const (
	SpanRequestCode = "auth.request_code"
	SpanVerifyCode  = "auth.verify_code"
)

// Attribute keys emitted by the auth client.
const (
	AttrEmailHash   = "email_hash"
	AttrEndpoint    = "http.route"
	AttrStatusCode  = "http.status_code"
	AttrOutcome     = "auth.outcome"
	AttrErrorOrigin = "auth.error_origin"
	AttrLatencyMs   = "latency_ms"
)
