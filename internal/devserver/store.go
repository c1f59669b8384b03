package devserver

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mobileauth/internal/auth/models"
	dErrors "mobileauth/pkg/domain-errors"
	keysync "mobileauth/pkg/platform/sync"
)

var (
	ErrSendLimited = dErrors.New(dErrors.CodeRateLimited, "Too many code requests. Try again later.")
	ErrInvalidCode = dErrors.New(dErrors.CodeRejected, "Code invalid")
	ErrLockedOut   = dErrors.New(dErrors.CodeRateLimited, "Too many failed attempts. Request a new code.")
)

// StoreConfig bounds code issuance and verification.
type StoreConfig struct {
	CodeTTL           time.Duration
	MaxVerifyAttempts int
	MaxSends          int
	SendWindow        time.Duration
	// HashCost is the bcrypt cost for stored codes.
	HashCost int
}

type pendingCode struct {
	hash      []byte
	expiresAt time.Time
	attempts  int
}

// VerifyOutcome describes a successful verification.
type VerifyOutcome struct {
	User    models.User
	Created bool
}

// Store keeps codes, send history and users in memory, keyed by normalized
// email. It is safe for concurrent use. Work for one address is serialized by
// keys; mu only guards the maps, so bcrypt runs outside it.
type Store struct {
	cfg  StoreConfig
	keys *keysync.KeyMutex

	mu    sync.Mutex
	codes map[string]*pendingCode
	sends map[string][]time.Time
	users map[string]models.User
}

func NewStore(cfg StoreConfig) *Store {
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	return &Store{
		cfg:   cfg,
		keys:  keysync.NewKeyMutex(0),
		codes: make(map[string]*pendingCode),
		sends: make(map[string][]time.Time),
		users: make(map[string]models.User),
	}
}

// IssueCode records code for address, replacing any outstanding code, and
// returns its expiry. It returns ErrSendLimited once the address has used its
// sends for the current window.
func (s *Store) IssueCode(address, code string, now time.Time) (time.Time, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cfg.HashCost)
	if err != nil {
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash verification code")
	}

	unlock := s.keys.Lock(address)
	defer unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.sends[address][:0]
	for _, at := range s.sends[address] {
		if now.Sub(at) < s.cfg.SendWindow {
			recent = append(recent, at)
		}
	}
	if len(recent) >= s.cfg.MaxSends {
		s.sends[address] = recent
		return time.Time{}, ErrSendLimited
	}
	s.sends[address] = append(recent, now)

	expiresAt := now.Add(s.cfg.CodeTTL)
	s.codes[address] = &pendingCode{hash: hash, expiresAt: expiresAt}
	return expiresAt, nil
}

// Verify consumes the outstanding code for address when code matches and
// returns the signed-in user, creating it on first sign-in. A wrong code
// counts as an attempt; the attempt that reaches the limit burns the code and
// returns ErrLockedOut.
func (s *Store) Verify(address, code string, now time.Time) (VerifyOutcome, error) {
	unlock := s.keys.Lock(address)
	defer unlock()

	s.mu.Lock()
	pending, ok := s.codes[address]
	if ok && !now.Before(pending.expiresAt) {
		delete(s.codes, address)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return VerifyOutcome{}, ErrInvalidCode
	}

	// pending cannot change underneath us while the key lock is held.
	if err := bcrypt.CompareHashAndPassword(pending.hash, []byte(code)); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		pending.attempts++
		if pending.attempts >= s.cfg.MaxVerifyAttempts {
			delete(s.codes, address)
			return VerifyOutcome{}, ErrLockedOut
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return VerifyOutcome{}, ErrInvalidCode
		}
		return VerifyOutcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "compare verification code")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, address)

	stamp := models.NewEpochMillis(now)
	user, existed := s.users[address]
	if existed {
		user.UpdatedAt = stamp
	} else {
		user = models.User{
			ID:        uuid.NewString(),
			Email:     address,
			IsActive:  true,
			CreatedAt: stamp,
			UpdatedAt: stamp,
		}
	}
	s.users[address] = user
	return VerifyOutcome{User: user, Created: !existed}, nil
}

// PendingCount reports outstanding, unexpired codes.
func (s *Store) PendingCount(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.codes {
		if now.Before(p.expiresAt) {
			n++
		}
	}
	return n
}

// User looks up a user by normalized email.
func (s *Store) User(address string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[address]
	return u, ok
}

