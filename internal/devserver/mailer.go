package devserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mobileauth/internal/auth/email"
)

// Mailer delivers a verification code to an address.
type Mailer interface {
	SendCode(ctx context.Context, to, code string, expiresAt time.Time) error
}

// LogMailer writes codes to the log instead of sending mail.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendCode(ctx context.Context, to, code string, expiresAt time.Time) error {
	m.logger.InfoContext(ctx, "verification code issued",
		"email", email.Mask(to),
		"code", code,
		"expires_at", expiresAt.UTC().Format(time.RFC3339),
	)
	return nil
}

// CaptureMailer keeps the last code sent to each address.
type CaptureMailer struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
}

func NewCaptureMailer() *CaptureMailer {
	return &CaptureMailer{codes: make(map[string]string)}
}

func (m *CaptureMailer) SendCode(_ context.Context, to, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	m.sent++
	return nil
}

// LastCode returns the most recent code sent to address.
func (m *CaptureMailer) LastCode(address string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[address]
	return code, ok
}

// Sent counts deliveries.
func (m *CaptureMailer) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}
