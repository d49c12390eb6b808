package weather

import (
	"context"
	"errors"

	"github.com/couchcryptid/task-trek/internal/domain"
)

const (
	msgGeneric = "Failed to fetch weather data. Please try again."
	msgTimeout = "The weather service took too long to respond. Please try again."
)

// Message maps a fetch failure to the text shown in the widget.
func Message(err error) string {
	var friendly *domain.FriendlyError
	if errors.As(err, &friendly) && friendly.Message != "" {
		return friendly.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimeout
	}
	return msgGeneric
}
