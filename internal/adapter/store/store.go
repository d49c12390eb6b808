// Package store persists explicit theme choices keyed by visitor ID.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/task-trek/internal/domain"
)

// Store is a PreferenceStore with lifecycle hooks for the server.
type Store interface {
	domain.PreferenceStore
	CheckReadiness(ctx context.Context) error
	Close() error
}

// Open returns the store for driver: "sqlite", "postgres" or "memory".
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (Store, error) {
	switch driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite", "postgres":
		return OpenSQL(ctx, driver, dsn, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
