package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "mobileauth/pkg/domain-errors"
	"mobileauth/pkg/testutil"
)

func testStoreConfig() StoreConfig {
	return StoreConfig{
		CodeTTL:           10 * time.Minute,
		MaxVerifyAttempts: 3,
		MaxSends:          2,
		SendWindow:        time.Minute,
		HashCost:          bcrypt.MinCost,
	}
}

func TestStoreIssueAndVerify(t *testing.T) {
	s := NewStore(testStoreConfig())
	now := testutil.FixedNow

	expiresAt, err := s.IssueCode("person@example.com", "123456", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(10*time.Minute), expiresAt)
	assert.Equal(t, 1, s.PendingCount(now))

	out, err := s.Verify("person@example.com", "123456", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, "person@example.com", out.User.Email)
	assert.True(t, out.User.IsActive)
	assert.NotEmpty(t, out.User.ID)
	assert.Zero(t, s.PendingCount(now))

	_, err = s.Verify("person@example.com", "123456", now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrInvalidCode, "code is single use")
}

func TestStoreReturningUserKeepsID(t *testing.T) {
	s := NewStore(testStoreConfig())
	now := testutil.FixedNow

	_, err := s.IssueCode("person@example.com", "111111", now)
	require.NoError(t, err)
	first, err := s.Verify("person@example.com", "111111", now)
	require.NoError(t, err)

	later := now.Add(2 * time.Minute)
	_, err = s.IssueCode("person@example.com", "222222", later)
	require.NoError(t, err)
	second, err := s.Verify("person@example.com", "222222", later)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.User.CreatedAt, second.User.CreatedAt)
	assert.Greater(t, second.User.UpdatedAt, first.User.UpdatedAt)
}

func TestStoreExpiredCode(t *testing.T) {
	s := NewStore(testStoreConfig())
	now := testutil.FixedNow
	_, err := s.IssueCode("person@example.com", "123456", now)
	require.NoError(t, err)

	_, err = s.Verify("person@example.com", "123456", now.Add(10*time.Minute))

	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestStoreLockout(t *testing.T) {
	s := NewStore(testStoreConfig())
	now := testutil.FixedNow
	_, err := s.IssueCode("person@example.com", "123456", now)
	require.NoError(t, err)

	_, err = s.Verify("person@example.com", "000000", now)
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = s.Verify("person@example.com", "000001", now)
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = s.Verify("person@example.com", "000002", now)
	require.Error(t, err)
	assert.Same(t, ErrLockedOut, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRateLimited))

	_, err = s.Verify("person@example.com", "123456", now)
	assert.ErrorIs(t, err, ErrInvalidCode, "burned code cannot be used")
}

func TestStoreNewCodeResetsAttempts(t *testing.T) {
	s := NewStore(testStoreConfig())
	now := testutil.FixedNow
	_, _ = s.IssueCode("person@example.com", "123456", now)
	_, _ = s.Verify("person@example.com", "000000", now)
	_, _ = s.Verify("person@example.com", "000000", now)

	_, err := s.IssueCode("person@example.com", "654321", now.Add(2*time.Minute))
	require.NoError(t, err)
	_, err = s.Verify("person@example.com", "000000", now.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = s.Verify("person@example.com", "654321", now.Add(2*time.Minute))
	assert.NoError(t, err)
}

func TestStoreSendLimit(t *testing.T) {
	s := NewStore(testStoreConfig())
	now := testutil.FixedNow

	_, err := s.IssueCode("person@example.com", "123456", now)
	require.NoError(t, err)
	_, err = s.IssueCode("person@example.com", "123456", now.Add(10*time.Second))
	require.NoError(t, err)
	_, err = s.IssueCode("person@example.com", "123456", now.Add(20*time.Second))
	assert.Same(t, ErrSendLimited, err)

	_, err = s.IssueCode("other@example.com", "123456", now.Add(20*time.Second))
	assert.NoError(t, err, "limit is per address")

	_, err = s.IssueCode("person@example.com", "123456", now.Add(61*time.Second))
	assert.NoError(t, err, "window slides")
}

func TestStoreConcurrentSends(t *testing.T) {
	cfg := testStoreConfig()
	cfg.MaxSends = 5
	s := NewStore(cfg)

	res := testutil.RunConcurrent(20, func(int) error {
		_, err := s.IssueCode("person@example.com", "123456", testutil.FixedNow)
		return err
	})

	assert.Equal(t, int32(5), res.Successes)
	assert.Equal(t, int32(15), res.RateLimited)
	assert.Zero(t, res.Errors)
	assert.Equal(t, int32(20), res.Total())
}
