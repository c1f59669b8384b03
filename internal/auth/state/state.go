// Package state holds the session-scoped authentication state: whether the
// user is signed out, waiting on a code, or signed in.
//
// The Machine never performs I/O and has no failure states. Callers apply a
// transition only after a remote operation succeeds.
package state

import (
	"sync"
	"time"

	"mobileauth/internal/auth/email"
	"mobileauth/internal/auth/models"
	dErrors "mobileauth/pkg/domain-errors"
)

// Status is the coarse auth state derived from the pending and session slots.
type Status int

const (
	Unauthenticated Status = iota
	AwaitingVerification
	Authenticated
)

func (s Status) String() string {
	switch s {
	case AwaitingVerification:
		return "awaiting_verification"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// ErrStaleFlow is returned by the generation-checked transitions when another
// transition happened after the caller captured its generation.
var ErrStaleFlow = dErrors.New(dErrors.CodeStaleFlow, "auth flow changed before the result arrived")

// Snapshot is an immutable view of the machine at one generation.
type Snapshot struct {
	Status     Status
	Pending    *models.PendingVerification
	Session    *models.Session
	Generation uint64
}

func (s Snapshot) IsAuthenticated() bool {
	return s.Session != nil
}

// Observer is called after every transition with the resulting snapshot.
type Observer func(Snapshot)

// VerificationOption carries send-code response details into the pending slot.
type VerificationOption func(*models.PendingVerification)

func WithCodeExpiry(expiresAt time.Time) VerificationOption {
	return func(p *models.PendingVerification) {
		p.CodeExpiresAt = expiresAt
	}
}

func WithMaskedDestination(masked string) VerificationOption {
	return func(p *models.PendingVerification) {
		p.MaskedDestination = masked
	}
}

type Option func(*Machine)

// WithInitialSession starts the machine already signed in.
func WithInitialSession(session models.Session) Option {
	return func(m *Machine) {
		m.session = &session
	}
}

// Machine is safe for concurrent use. At most one of pending and session is
// set at any time.
type Machine struct {
	mu         sync.RWMutex
	pending    *models.PendingVerification
	session    *models.Session
	generation uint64

	observers    map[uint64]Observer
	nextObserver uint64
}

func New(opts ...Option) *Machine {
	m := &Machine{observers: make(map[uint64]Observer)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *Machine) statusLocked() Status {
	switch {
	case m.session != nil:
		return Authenticated
	case m.pending != nil:
		return AwaitingVerification
	default:
		return Unauthenticated
	}
}

// IsAuthenticated reports whether a session is present.
func (m *Machine) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

func (m *Machine) Pending() (models.PendingVerification, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pending == nil {
		return models.PendingVerification{}, false
	}
	return *m.pending, true
}

func (m *Machine) Session() (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return models.Session{}, false
	}
	return *m.session, true
}

// Generation counts transitions applied so far.
func (m *Machine) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{Status: m.statusLocked(), Generation: m.generation}
	if m.pending != nil {
		p := *m.pending
		snap.Pending = &p
	}
	if m.session != nil {
		s := *m.session
		snap.Session = &s
	}
	return snap
}

// StartEmailVerification records address (trimmed and lower-cased) as the
// pending verification and drops any session.
func (m *Machine) StartEmailVerification(address string, opts ...VerificationOption) {
	m.transition(nil, func() {
		m.startLocked(address, opts)
	})
}

// StartEmailVerificationAt is StartEmailVerification guarded by gen. It
// returns ErrStaleFlow and changes nothing if the machine moved past gen.
func (m *Machine) StartEmailVerificationAt(gen uint64, address string, opts ...VerificationOption) error {
	return m.transition(&gen, func() {
		m.startLocked(address, opts)
	})
}

func (m *Machine) startLocked(address string, opts []VerificationOption) {
	pending := models.PendingVerification{Email: email.Normalize(address)}
	for _, opt := range opts {
		opt(&pending)
	}
	m.pending = &pending
	m.session = nil
}

// CompleteSignIn installs session and clears the pending verification.
func (m *Machine) CompleteSignIn(session models.Session) {
	m.transition(nil, func() {
		m.signInLocked(session)
	})
}

// CompleteSignInAt is CompleteSignIn guarded by gen.
func (m *Machine) CompleteSignInAt(gen uint64, session models.Session) error {
	return m.transition(&gen, func() {
		m.signInLocked(session)
	})
}

func (m *Machine) signInLocked(session models.Session) {
	m.session = &session
	m.pending = nil
}

// ResetAuthFlow clears both slots. It serves both "use a different email" and
// sign-out.
func (m *Machine) ResetAuthFlow() {
	m.transition(nil, func() {
		m.pending = nil
		m.session = nil
	})
}

// Subscribe registers fn for transition notifications. Observers run after
// the lock is released, in no particular order.
func (m *Machine) Subscribe(fn Observer) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.mu.Unlock()
		})
	}
}

func (m *Machine) transition(expected *uint64, apply func()) error {
	m.mu.Lock()
	if expected != nil && *expected != m.generation {
		m.mu.Unlock()
		return ErrStaleFlow
	}
	apply()
	m.generation++
	snap := m.snapshotLocked()
	observers := make([]Observer, 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
	return nil
}
