// Package health serves liveness and readiness probes for the dev server.
package health

import (
	"maps"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"mobileauth/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc returns nil when the named dependency is usable.
type CheckFunc func() error

type Handler struct {
	startTime   time.Time
	environment string
	now         func() time.Time

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		now:         time.Now,
		checks:      make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named readiness check.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type Status struct {
	Status        string            `json:"status"`
	Version       string            `json:"version,omitempty"`
	Environment   string            `json:"environment,omitempty"`
	UptimeSeconds int64             `json:"uptime_seconds,omitempty"`
	Checks        map[string]string `json:"checks,omitempty"`
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, Status{Status: "alive"})
}

// HandleReadiness answers 503 when any registered check fails.
func (h *Handler) HandleReadiness(w http.ResponseWriter, _ *http.Request) {
	checks, healthy := h.runChecks()
	if !healthy {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, Status{Status: "not_ready", Checks: checks})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, Status{Status: "ready", Checks: checks})
}

func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	checks, healthy := h.runChecks()
	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	httputil.WriteJSON(w, http.StatusOK, Status{
		Status:        status,
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(h.now().Sub(h.startTime).Seconds()),
		Checks:        checks,
	})
}

func (h *Handler) runChecks() (map[string]string, bool) {
	h.mu.RLock()
	checks := maps.Clone(h.checks)
	h.mu.RUnlock()

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string, len(checks))
	healthy := true
	for _, name := range names {
		if err := checks[name](); err != nil {
			out[name] = "down: " + err.Error()
			healthy = false
			continue
		}
		out[name] = "up"
	}
	return out, healthy
}
