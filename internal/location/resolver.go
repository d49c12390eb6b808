// Package location turns an optional position capability into a weather query.
package location

import (
	"context"
	"log/slog"
	"strings"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/observability"
)

// DefaultPlace is used when no position can be obtained.
const DefaultPlace = "India"

// Resolver produces a coordinate query from a position source, falling back
// to a fixed place name. It makes a single attempt and never retries.
type Resolver struct {
	fallback string
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewResolver creates a Resolver. An empty fallback selects DefaultPlace.
func NewResolver(fallback string, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = DefaultPlace
	}
	return &Resolver{fallback: fallback, logger: logger, metrics: metrics}
}

// Fallback returns the place name used when no position is available.
func (r *Resolver) Fallback() string { return r.fallback }

// Resolve asks src for the current position. A nil src or any error yields
// the fallback place; neither is reported to the caller.
func (r *Resolver) Resolve(ctx context.Context, src domain.PositionSource) domain.Query {
	if src == nil {
		r.logger.Debug("geolocation unavailable, using fallback", "fallback", r.fallback)
		r.metrics.LocationResolutions.WithLabelValues("fallback").Inc()
		return domain.PlaceQuery(r.fallback)
	}

	pos, err := src.CurrentPosition(ctx)
	if err != nil {
		r.logger.Debug("geolocation failed, using fallback", "fallback", r.fallback, "error", err)
		r.metrics.LocationResolutions.WithLabelValues("fallback").Inc()
		return domain.PlaceQuery(r.fallback)
	}

	r.metrics.LocationResolutions.WithLabelValues("position").Inc()
	return domain.CoordinateQuery(pos.Lat, pos.Lon)
}
