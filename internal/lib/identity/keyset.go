package identity

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// minRefresh bounds how often a key set is fetched, whatever the provider's
// cache headers say and however many unknown kids arrive.
const minRefresh = time.Minute

// fetchKeysFunc loads a provider's signing keys and how long they stay valid.
type fetchKeysFunc[K any] func(ctx context.Context) (map[string]K, time.Duration, error)

// keySet caches signing keys by kid.
//
// Cache hits only take a read lock. Misses are serialized on refreshMu and
// re-check the cache first, so concurrent misses share one fetch. After a
// failed fetch the previous keys keep being served until the next attempt.
type keySet[K any] struct {
	fetch fetchKeysFunc[K]
	now   func() time.Time

	refreshMu sync.Mutex

	mu        sync.RWMutex
	keys      map[string]K
	expires   time.Time
	fetchedAt time.Time
	lastErr   error
}

func newKeySet[K any](fetch func(ctx context.Context) (map[string]K, time.Duration, error), now func() time.Time) *keySet[K] {
	return &keySet[K]{fetch: fetch, now: now}
}

func (s *keySet[K]) lookup(kid string) (key K, found, fresh bool, fetchedAt time.Time, lastErr error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, found = s.keys[kid]
	return key, found, s.now().Before(s.expires), s.fetchedAt, s.lastErr
}

func (s *keySet[K]) get(ctx context.Context, kid string) (K, error) {
	if key, found, fresh, _, _ := s.lookup(kid); found && fresh {
		return key, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	key, found, fresh, fetchedAt, lastErr := s.lookup(kid)
	if found && fresh {
		return key, nil
	}

	now := s.now()
	if !fetchedAt.IsZero() && now.Sub(fetchedAt) < minRefresh {
		switch {
		case found:
			return key, nil
		case lastErr != nil:
			return key, lastErr
		default:
			return key, errors.Errorf("unknown signing key %q", kid)
		}
	}

	keys, ttl, err := s.fetch(ctx)

	s.mu.Lock()
	s.fetchedAt = now
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		if found {
			return key, nil
		}
		return key, err
	}
	s.keys = keys
	s.expires = now.Add(max(ttl, minRefresh))
	s.lastErr = nil
	s.mu.Unlock()

	key, found = keys[kid]
	if !found {
		return key, errors.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}
