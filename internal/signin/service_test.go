package signin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeSessions struct {
	mu       sync.Mutex
	logins   []string
	logouts  []string
	loginErr error
	entered  chan struct{}
	block    chan struct{}
}

func (f *fakeSessions) Login(ctx context.Context, email string) (domain.Session, error) {
	f.mu.Lock()
	f.logins = append(f.logins, email)
	entered, block, err := f.entered, f.block, f.loginErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.Session{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Token: "tok-" + email, Email: email}, nil
}

func (f *fakeSessions) Lookup(context.Context, string) (domain.Session, error) {
	return domain.Session{}, domain.ErrSessionNotFound
}

func (f *fakeSessions) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts = append(f.logouts, token)
	if token == "unknown" {
		return domain.ErrSessionNotFound
	}
	return nil
}

type recordingRecorder struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (r *recordingRecorder) Record(evt domain.ActivityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func newTestService(sessions domain.SessionStore, rec domain.ActivityRecorder) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(sessions, logger, observability.NewMetricsForTesting(), rec)
}

// --- tests ---

func TestValidate(t *testing.T) {
	s := newTestService(&fakeSessions{}, nil)

	tests := []struct {
		name     string
		email    string
		password string
		want     domain.Validation
	}{
		{"bad email", "bad-email", "123456", domain.Validation{EmailError: true}},
		{"short password", "a@b.com", "12345", domain.Validation{PasswordError: true}},
		{"both invalid", "", "", domain.Validation{EmailError: true, PasswordError: true}},
		{"valid", "a@b.com", "123456", domain.Validation{Valid: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Validate(tt.email, tt.password))
		})
	}
}

func TestSubmit_ValidHandsEmailToSessionAndRedirects(t *testing.T) {
	sessions := &fakeSessions{}
	rec := &recordingRecorder{}
	s := newTestService(sessions, rec)

	out, err := s.Submit(context.Background(), domain.Credentials{Email: "a@b.com", Password: "123456"}, "visitor-1")

	require.NoError(t, err)
	assert.True(t, out.Validation.Valid)
	assert.Equal(t, LandingRoute, out.Redirect)
	assert.Equal(t, "tok-a@b.com", out.Session.Token)
	assert.Equal(t, []string{"a@b.com"}, sessions.logins)
	require.Len(t, rec.events, 1)
	assert.Equal(t, domain.ActivitySignedIn, rec.events[0].Type)
	assert.Equal(t, "visitor-1", rec.events[0].VisitorID)
	assert.NotContains(t, rec.events[0].Attributes, "password")
}

func TestSubmit_InvalidMakesNoSessionCall(t *testing.T) {
	sessions := &fakeSessions{}
	rec := &recordingRecorder{}
	s := newTestService(sessions, rec)

	out, err := s.Submit(context.Background(), domain.Credentials{Email: "bad-email", Password: "123"}, "visitor-1")

	require.NoError(t, err)
	assert.False(t, out.Validation.Valid)
	assert.True(t, out.Validation.EmailError)
	assert.True(t, out.Validation.PasswordError)
	assert.Empty(t, out.Redirect)
	assert.Empty(t, sessions.logins)
	assert.Empty(t, rec.events)
}

func TestSubmit_SessionFailure(t *testing.T) {
	sessions := &fakeSessions{loginErr: errors.New("store offline")}
	s := newTestService(sessions, nil)

	out, err := s.Submit(context.Background(), domain.Credentials{Email: "a@b.com", Password: "123456"}, "visitor-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open session")
	assert.Empty(t, out.Redirect)
}

func TestSubmit_DoubleSubmissionIsRejected(t *testing.T) {
	sessions := &fakeSessions{entered: make(chan struct{}, 1), block: make(chan struct{})}
	s := newTestService(sessions, nil)
	creds := domain.Credentials{Email: "a@b.com", Password: "123456"}

	first := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), creds, "visitor-1")
		first <- err
	}()
	select {
	case <-sessions.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the session store")
	}

	_, err := s.Submit(context.Background(), domain.Credentials{Email: "A@B.com", Password: "123456"}, "visitor-1")
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(sessions.block)
	require.NoError(t, <-first)

	// Once the first finishes the email can be submitted again.
	sessions.mu.Lock()
	sessions.entered, sessions.block = nil, nil
	sessions.mu.Unlock()
	_, err = s.Submit(context.Background(), creds, "visitor-1")
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	sessions := &fakeSessions{}
	rec := &recordingRecorder{}
	s := newTestService(sessions, rec)

	for _, token := range []string{"tok-a@b.com", "unknown", ""} {
		route, err := s.Logout(context.Background(), token, "visitor-1")
		require.NoError(t, err)
		assert.Equal(t, SignInRoute, route)
	}

	assert.Equal(t, []string{"tok-a@b.com", "unknown"}, sessions.logouts)
	require.Len(t, rec.events, 3)
	assert.Equal(t, domain.ActivitySignedOut, rec.events[0].Type)
}
