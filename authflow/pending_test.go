package authflow

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPendingConsumeOnce(t *testing.T) {
	var store pendingStore
	now := time.Now()
	window := 5 * time.Minute

	store.put("state-1", "verifier-1", now)

	verifier, ok := store.consume("state-1", now.Add(time.Second), window)
	require.True(t, ok)
	require.Equal(t, "verifier-1", verifier)

	_, ok = store.consume("state-1", now.Add(2*time.Second), window)
	require.False(t, ok)
}

func TestPendingConsumeUnknown(t *testing.T) {
	var store pendingStore

	_, ok := store.consume("never-issued", time.Now(), 5*time.Minute)
	require.False(t, ok)
}

func TestPendingExpiredIsAbsent(t *testing.T) {
	var store pendingStore
	now := time.Now()
	window := 5 * time.Minute

	store.put("state-1", "verifier-1", now)

	_, ok := store.consume("state-1", now.Add(window+time.Second), window)
	require.False(t, ok)

	// The expired entry was removed on lookup, not merely hidden.
	_, ok = store.consume("state-1", now, window)
	require.False(t, ok)
}

func TestPendingSweep(t *testing.T) {
	var store pendingStore
	now := time.Now()
	window := 5 * time.Minute

	store.put("old", "verifier-old", now.Add(-window-time.Second))
	store.put("fresh", "verifier-fresh", now)

	store.sweep(now, window)

	_, ok := store.consume("old", now, window)
	require.False(t, ok)

	verifier, ok := store.consume("fresh", now, window)
	require.True(t, ok)
	require.Equal(t, "verifier-fresh", verifier)
}

func TestPendingConcurrentConsumeExactlyOneSuccess(t *testing.T) {
	var store pendingStore
	now := time.Now()
	window := 5 * time.Minute

	const workers = 32

	for round := 0; round < 20; round++ {
		state := fmt.Sprintf("state-%d", round)
		store.put(state, "verifier", now)

		var wg sync.WaitGroup
		successes := make(chan struct{}, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok := store.consume(state, now, window); ok {
					successes <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(successes)

		require.Len(t, successes, 1)
	}
}
