// Package session issues and validates the opaque credentials that
// gate the protected endpoints. A credential is valid while it is
// younger than the absolute TTL and has been used within the idle TTL;
// expiry is enforced lazily at validation time.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

var (
	ErrUnknownCredential = errors.New("unknown session credential")
	ErrExpired           = errors.New("session expired")
)

// credentialBytes sizes the credential at 512 bits, making both
// guessing and collision negligible.
const credentialBytes = 64

// Credential is the opaque secret handed to the browser. The token
// itself is the secret; it is compared for exact map-key equality, not
// verified cryptographically.
type Credential string

type entry struct {
	mu         sync.Mutex
	identity   string
	issuedAt   time.Time
	lastUsedAt time.Time
	revoked    bool
}

// Store is the process-wide session table. Entries live in a sync.Map
// so unrelated credentials never contend; the check-then-touch of a
// single credential is serialized by a per-entry mutex.
type Store struct {
	sessions    sync.Map // Credential -> *entry
	idleTTL     time.Duration
	absoluteTTL time.Duration
	nowTime     func() time.Time
}

// StoreOption modifies a Store at construction time.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = now
	}
}

func NewStore(idleTTL, absoluteTTL time.Duration, options ...StoreOption) *Store {
	s := &Store{
		idleTTL:     idleTTL,
		absoluteTTL: absoluteTTL,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Issue mints a fresh credential for identity. This is the only path
// that makes a credential valid.
func (s *Store) Issue(identity string) Credential {
	b := make([]byte, credentialBytes)
	rand.Read(b)
	credential := Credential(base64.RawURLEncoding.EncodeToString(b))

	now := s.nowTime()
	s.sessions.Store(credential, &entry{
		identity:   identity,
		issuedAt:   now,
		lastUsedAt: now,
	})

	return credential
}

// ValidateAndTouch checks a credential and, when valid, slides its idle
// window forward. An expired credential is removed on the spot and is
// permanently unknown afterwards. The expiry check and the touch happen
// under one per-credential lock, so two concurrent calls can never
// disagree about a session's fate.
func (s *Store) ValidateAndTouch(credential Credential) (string, error) {
	v, ok := s.sessions.Load(credential)
	if !ok {
		return "", ErrUnknownCredential
	}
	e := v.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.revoked {
		return "", ErrUnknownCredential
	}

	now := s.nowTime()
	if now.Sub(e.issuedAt) > s.absoluteTTL || now.Sub(e.lastUsedAt) > s.idleTTL {
		e.revoked = true
		s.sessions.Delete(credential)
		return "", ErrExpired
	}

	e.lastUsedAt = now
	return e.identity, nil
}

// Revoke unconditionally removes a credential.
func (s *Store) Revoke(credential Credential) {
	v, ok := s.sessions.LoadAndDelete(credential)
	if !ok {
		return
	}
	e := v.(*entry)
	e.mu.Lock()
	e.revoked = true
	e.mu.Unlock()
}

// Sweep removes every expired session. Lazy expiry already reclaims
// sessions on their next validation; the sweep additionally reclaims
// those that are never presented again.
func (s *Store) Sweep() {
	s.sessions.Range(func(key, value any) bool {
		e := value.(*entry)
		e.mu.Lock()
		now := s.nowTime()
		if !e.revoked && (now.Sub(e.issuedAt) > s.absoluteTTL || now.Sub(e.lastUsedAt) > s.idleTTL) {
			e.revoked = true
			s.sessions.Delete(key)
		}
		e.mu.Unlock()
		return true
	})
}

// RunSweeper sweeps at the given interval until ctx is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
