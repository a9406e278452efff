// Package mem holds short-lived single-use values: password reset tokens,
// WebAuthn ceremony sessions and the logout denylist.
package mem

import (
	"context"
	"sync"
	"time"
)

type TokenStore interface {
	Set(ctx context.Context, token string, value string, ttl time.Duration) error

	// Consume returns the value for token if not expired and removes it (single-use).
	// Returns "" if missing/expired.
	Consume(ctx context.Context, token string) (string, error)

	Peek(ctx context.Context, token string) (string, bool, error)
}

type entry struct {
	value     string
	expiresAt time.Time
}

// LocalTokens is an in-process TokenStore. State is lost on restart and not shared
// between instances; the server always wires the redis store.
type LocalTokens struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewLocalTokens() *LocalTokens {
	return &LocalTokens{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *LocalTokens) Set(_ context.Context, token string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[token] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *LocalTokens) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[token]
	if !ok {
		return "", nil
	}
	delete(s.data, token)
	if s.now().After(e.expiresAt) {
		return "", nil
	}
	return e.value, nil
}

func (s *LocalTokens) Peek(_ context.Context, token string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[token]
	if !ok || s.now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}
