package activity

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/task-trek/internal/domain"
)

// LogLoader is the sink used when no event broker is configured: every event
// is written to the logger at debug level.
type LogLoader struct {
	Logger *slog.Logger
}

func (l LogLoader) LoadBatch(ctx context.Context, events []domain.ActivityEvent) error {
	for _, evt := range events {
		l.Logger.DebugContext(ctx, "activity",
			"id", evt.ID,
			"type", evt.Type,
			"visitor_id", evt.VisitorID,
			"occurred_at", evt.OccurredAt,
		)
	}
	return nil
}
