package weatherapi

import (
	"context"

	"github.com/couchcryptid/task-trek/internal/domain"
)

const msgUnavailable = "The weather service is unavailable right now."

// Disabled stands in for the client when no API key is configured. Every
// query fails with a visitor-facing message.
type Disabled struct{}

func (Disabled) Forecast(context.Context, domain.Query) (domain.Forecast, error) {
	return domain.Forecast{}, &domain.FriendlyError{Code: "SERVICE_UNAVAILABLE", Message: msgUnavailable}
}
