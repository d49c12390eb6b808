// Package session is an in-memory SessionStore with expiring tokens.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Store keeps sessions in memory. Sessions expire ttl after Login.
type Store struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu       sync.Mutex
	sessions map[string]domain.Session
}

// NewStore creates a Store. A nil clock uses real time.
func NewStore(ttl time.Duration, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{ttl: ttl, clock: clock, sessions: make(map[string]domain.Session)}
}

// Login opens a new session for email.
func (s *Store) Login(_ context.Context, email string) (domain.Session, error) {
	now := s.clock.Now().UTC()
	sess := domain.Session{
		Token:     uuid.NewString(),
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return sess, nil
}

// Lookup returns the live session for token.
func (s *Store) Lookup(_ context.Context, token string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if !s.clock.Now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Logout removes the session for token.
func (s *Store) Logout(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, token)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.Sweep()
		}
	}
}

// Len returns the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
