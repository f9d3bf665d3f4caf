package authflow

import (
	"sync"
	"time"
)

// pendingExchange is one in-flight login attempt: the PKCE verifier
// waiting for its redirect callback, keyed by CSRF state.
type pendingExchange struct {
	verifier  string
	createdAt time.Time
}

// pendingStore holds in-flight exchanges. sync.Map keeps contention on
// the same state only; unrelated logins never serialize.
type pendingStore struct {
	entries sync.Map // state -> pendingExchange
}

func (p *pendingStore) put(state, verifier string, now time.Time) {
	p.entries.Store(state, pendingExchange{verifier: verifier, createdAt: now})
}

// consume removes the exchange for state and returns its verifier. The
// entry is removed on first lookup regardless of outcome, so a verifier
// is retrievable at most once even under retried callbacks. Entries
// older than window count as absent.
func (p *pendingStore) consume(state string, now time.Time, window time.Duration) (string, bool) {
	v, ok := p.entries.LoadAndDelete(state)
	if !ok {
		return "", false
	}
	e := v.(pendingExchange)
	if now.Sub(e.createdAt) > window {
		return "", false
	}
	return e.verifier, true
}

// sweep drops every exchange older than window. Run on each new login,
// it bounds the memory an attacker can pin with unmatched attempts.
func (p *pendingStore) sweep(now time.Time, window time.Duration) {
	p.entries.Range(func(key, value any) bool {
		if now.Sub(value.(pendingExchange).createdAt) > window {
			p.entries.Delete(key)
		}
		return true
	})
}
