package domain

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("session not found")

// Session is the signed-in state handed out by a SessionStore.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore is the session collaborator: it receives the email on sign-in
// and provides logout.
type SessionStore interface {
	Login(ctx context.Context, email string) (Session, error)
	Lookup(ctx context.Context, token string) (Session, error)
	Logout(ctx context.Context, token string) error
}
