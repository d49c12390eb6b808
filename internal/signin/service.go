// Package signin validates sign-in submissions and hands valid ones to the
// session store.
package signin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/observability"
)

// Routes the browser is sent to after a successful submission or a logout.
const (
	LandingRoute = "/"
	SignInRoute  = "/signin"
)

// ErrSubmissionInProgress is returned when the same email is submitted again
// before the previous submission has finished.
var ErrSubmissionInProgress = errors.New("sign-in already in progress")

// Outcome is the result of a submission. Session and Redirect are set only
// when the credentials are valid.
type Outcome struct {
	Validation domain.Validation
	Session    domain.Session
	Redirect   string
}

// Service submits credentials to a SessionStore.
type Service struct {
	sessions domain.SessionStore
	logger   *slog.Logger
	metrics  *observability.Metrics
	recorder domain.ActivityRecorder

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService creates a Service. A nil recorder discards activity.
func NewService(sessions domain.SessionStore, logger *slog.Logger, metrics *observability.Metrics, recorder domain.ActivityRecorder) *Service {
	if recorder == nil {
		recorder = domain.DiscardActivity{}
	}
	return &Service{
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
		recorder: recorder,
		inFlight: make(map[string]struct{}),
	}
}

// Validate checks the credentials without side effects.
func (s *Service) Validate(email, password string) domain.Validation {
	return domain.Validate(email, password)
}

// Submit validates creds and, when valid, opens a session for the email.
// Invalid credentials return a nil error and an Outcome with no Redirect.
func (s *Service) Submit(ctx context.Context, creds domain.Credentials, visitorID string) (Outcome, error) {
	v := creds.Validate()
	if !v.Valid {
		s.metrics.SignInAttempts.WithLabelValues("invalid").Inc()
		return Outcome{Validation: v}, nil
	}

	key := strings.ToLower(creds.Email)
	if !s.acquire(key) {
		s.metrics.SignInAttempts.WithLabelValues("duplicate").Inc()
		return Outcome{Validation: v}, ErrSubmissionInProgress
	}
	defer s.release(key)

	sess, err := s.sessions.Login(ctx, creds.Email)
	if err != nil {
		s.metrics.SignInAttempts.WithLabelValues("error").Inc()
		return Outcome{Validation: v}, fmt.Errorf("open session: %w", err)
	}

	s.metrics.SignInAttempts.WithLabelValues("success").Inc()
	s.logger.Info("visitor signed in", "visitor_id", visitorID, "email", creds.Email)
	s.recorder.Record(domain.NewActivityEvent(domain.ActivitySignedIn, visitorID, map[string]string{
		"email": creds.Email,
	}))
	return Outcome{Validation: v, Session: sess, Redirect: LandingRoute}, nil
}

// Logout ends the session identified by token and returns the sign-in route.
// An unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token, visitorID string) (string, error) {
	if token != "" {
		err := s.sessions.Logout(ctx, token)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return "", fmt.Errorf("close session: %w", err)
		}
	}
	s.logger.Info("visitor signed out", "visitor_id", visitorID)
	s.recorder.Record(domain.NewActivityEvent(domain.ActivitySignedOut, visitorID, nil))
	return SignInRoute, nil
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}
