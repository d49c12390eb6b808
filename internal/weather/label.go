package weather

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/task-trek/internal/domain"
)

// LabelForecast sets PlaceLabel for coordinate queries using reverse
// geocoding. A nil geocoder, a place query or a geocoding failure leaves the
// forecast unchanged.
func LabelForecast(ctx context.Context, f domain.Forecast, q domain.Query, geocoder domain.Geocoder, logger *slog.Logger) domain.Forecast {
	if geocoder == nil || !q.IsCoordinates() {
		return f
	}

	result, err := geocoder.ReverseGeocode(ctx, q.Coordinates.Lat, q.Coordinates.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", q.Coordinates.Lat,
			"lon", q.Coordinates.Lon,
			"error", err,
		)
		return f
	}

	switch {
	case result.FormattedAddress != "":
		f.PlaceLabel = result.FormattedAddress
	case result.PlaceName != "":
		f.PlaceLabel = result.PlaceName
	}
	return f
}
