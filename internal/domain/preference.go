package domain

import (
	"context"
	"errors"
)

// ErrPreferenceNotFound is returned when a visitor has never chosen a theme.
var ErrPreferenceNotFound = errors.New("theme preference not found")

// PreferenceStore is the durable key-value storage for explicit theme
// choices, keyed by visitor ID. Writes are last-write-wins.
type PreferenceStore interface {
	GetTheme(ctx context.Context, visitorID string) (Theme, error)
	PutTheme(ctx context.Context, visitorID string, theme Theme) error
}
