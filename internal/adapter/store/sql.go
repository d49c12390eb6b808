package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const pingTimeout = 5 * time.Second

const schema = `CREATE TABLE IF NOT EXISTS theme_preferences (
	visitor_id TEXT PRIMARY KEY,
	theme      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQL stores preferences in SQLite or Postgres.
type SQL struct {
	db     *sqlx.DB
	logger *slog.Logger

	getQuery string
	putQuery string
}

type preferenceRow struct {
	Theme string `db:"theme"`
}

// OpenSQL connects, verifies the connection and creates the schema.
func OpenSQL(ctx context.Context, driver, dsn string, logger *slog.Logger) (*SQL, error) {
	if driver == "sqlite" {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	switch driver {
	case "sqlite":
		// A single connection serialises writers and keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			logger.Warn("could not enable sqlite WAL mode", "error", err)
		}
	case "postgres":
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.Info("preference store ready", "driver", driver)
	return &SQL{
		db:       db,
		logger:   logger,
		getQuery: db.Rebind(`SELECT theme FROM theme_preferences WHERE visitor_id = ?`),
		putQuery: db.Rebind(`INSERT INTO theme_preferences (visitor_id, theme, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (visitor_id) DO UPDATE SET theme = excluded.theme, updated_at = excluded.updated_at`),
	}, nil
}

func (s *SQL) GetTheme(ctx context.Context, visitorID string) (domain.Theme, error) {
	var row preferenceRow
	if err := s.db.GetContext(ctx, &row, s.getQuery, visitorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrPreferenceNotFound
		}
		return "", fmt.Errorf("get theme: %w", err)
	}

	t, err := domain.ParseTheme(row.Theme)
	if err != nil {
		// Unrecognised values are treated as no choice at all.
		s.logger.Warn("ignoring stored theme", "visitor_id", visitorID, "value", row.Theme)
		return "", domain.ErrPreferenceNotFound
	}
	return t, nil
}

func (s *SQL) PutTheme(ctx context.Context, visitorID string, t domain.Theme) error {
	if _, err := s.db.ExecContext(ctx, s.putQuery, visitorID, string(t), time.Now().UTC()); err != nil {
		return fmt.Errorf("put theme: %w", err)
	}
	return nil
}

// CheckReadiness reports whether the database answers a ping.
func (s *SQL) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("preference store unreachable: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return nil
}
