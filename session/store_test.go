package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/lastseenhq/lastseen/session"
	"github.com/stretchr/testify/require"
)

const (
	testIdleTTL     = 30 * time.Minute
	testAbsoluteTTL = 24 * time.Hour
)

// testClock is a settable clock shared with the store under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*session.Store, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := session.NewStore(testIdleTTL, testAbsoluteTTL, session.WithNowTime(clock.Now))
	return store, clock
}

func TestIssueAndValidate(t *testing.T) {
	store, _ := newTestStore(t)

	credential := store.Issue("Ada")
	require.NotEmpty(t, credential)

	identity, err := store.ValidateAndTouch(credential)
	require.NoError(t, err)
	require.Equal(t, "Ada", identity)
}

func TestCredentialsAreUnique(t *testing.T) {
	store, _ := newTestStore(t)

	seen := make(map[session.Credential]bool)
	for i := 0; i < 100; i++ {
		credential := store.Issue("Ada")
		require.False(t, seen[credential])
		seen[credential] = true
	}
}

func TestUnknownCredential(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ValidateAndTouch("made-up")
	require.ErrorIs(t, err, session.ErrUnknownCredential)
}

func TestIdleExpiry(t *testing.T) {
	store, clock := newTestStore(t)

	credential := store.Issue("Ada")

	clock.Advance(testIdleTTL + time.Second)
	_, err := store.ValidateAndTouch(credential)
	require.ErrorIs(t, err, session.ErrExpired)

	// Once expired the credential is permanently unknown.
	_, err = store.ValidateAndTouch(credential)
	require.ErrorIs(t, err, session.ErrUnknownCredential)
}

func TestIdleWindowSlides(t *testing.T) {
	store, clock := newTestStore(t)

	credential := store.Issue("Ada")

	// Touching within the idle window keeps the session alive well past
	// a single idle TTL.
	for i := 0; i < 5; i++ {
		clock.Advance(testIdleTTL - time.Minute)
		_, err := store.ValidateAndTouch(credential)
		require.NoError(t, err)
	}
}

func TestAbsoluteExpiry(t *testing.T) {
	store, clock := newTestStore(t)

	credential := store.Issue("Ada")

	// Keep the session constantly in use; the absolute TTL still wins.
	step := 10 * time.Minute
	for elapsed := time.Duration(0); elapsed+step <= testAbsoluteTTL; elapsed += step {
		clock.Advance(step)
		_, err := store.ValidateAndTouch(credential)
		require.NoError(t, err)
	}

	clock.Advance(step)
	_, err := store.ValidateAndTouch(credential)
	require.ErrorIs(t, err, session.ErrExpired)
}

func TestValidateAtBoundary(t *testing.T) {
	store, clock := newTestStore(t)

	credential := store.Issue("Ada")

	// Exactly at the idle TTL is still valid; only beyond it expires.
	clock.Advance(testIdleTTL)
	_, err := store.ValidateAndTouch(credential)
	require.NoError(t, err)
}

func TestRevoke(t *testing.T) {
	store, _ := newTestStore(t)

	credential := store.Issue("Ada")
	store.Revoke(credential)

	_, err := store.ValidateAndTouch(credential)
	require.ErrorIs(t, err, session.ErrUnknownCredential)

	// Revoking twice is harmless.
	store.Revoke(credential)
}

func TestSweepReclaimsUntouchedSessions(t *testing.T) {
	store, clock := newTestStore(t)

	expired := store.Issue("Ada")
	clock.Advance(testIdleTTL + time.Second)
	fresh := store.Issue("Grace")

	store.Sweep()

	_, err := store.ValidateAndTouch(expired)
	require.ErrorIs(t, err, session.ErrUnknownCredential)

	identity, err := store.ValidateAndTouch(fresh)
	require.NoError(t, err)
	require.Equal(t, "Grace", identity)
}

func TestConcurrentValidation(t *testing.T) {
	store, _ := newTestStore(t)

	credential := store.Issue("Ada")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				identity, err := store.ValidateAndTouch(credential)
				require.NoError(t, err)
				require.Equal(t, "Ada", identity)
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentValidateAndRevoke(t *testing.T) {
	store, _ := newTestStore(t)

	// Validation racing with revocation must settle on one of the two
	// sentinel errors, never succeed after removal is observed.
	for i := 0; i < 50; i++ {
		credential := store.Issue("Ada")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Revoke(credential)
		}()
		go func() {
			defer wg.Done()
			_, err := store.ValidateAndTouch(credential)
			if err != nil {
				require.ErrorIs(t, err, session.ErrUnknownCredential)
			}
		}()
		wg.Wait()

		_, err := store.ValidateAndTouch(credential)
		require.ErrorIs(t, err, session.ErrUnknownCredential)
	}
}
