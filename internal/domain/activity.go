package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType names a visitor-facing state change.
type ActivityType string

const (
	ActivitySignedIn      ActivityType = "signed_in"
	ActivitySignedOut     ActivityType = "signed_out"
	ActivityThemeChanged  ActivityType = "theme_changed"
	ActivityForecastReady ActivityType = "forecast_ready"
	ActivityForecastError ActivityType = "forecast_error"
)

// ActivityEvent is an append-only record of a visitor action.
type ActivityEvent struct {
	ID         string            `json:"id"`
	Type       ActivityType      `json:"type"`
	VisitorID  string            `json:"visitor_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewActivityEvent stamps a new event with a random ID and the current time.
func NewActivityEvent(kind ActivityType, visitorID string, attrs map[string]string) ActivityEvent {
	return ActivityEvent{
		ID:         uuid.NewString(),
		Type:       kind,
		VisitorID:  visitorID,
		Attributes: attrs,
		OccurredAt: clock.Now().UTC(),
	}
}

// ActivityRecorder accepts events for asynchronous delivery. Record must not
// block the caller.
type ActivityRecorder interface {
	Record(evt ActivityEvent)
}

// DiscardActivity is an ActivityRecorder that drops every event.
type DiscardActivity struct{}

func (DiscardActivity) Record(ActivityEvent) {}
