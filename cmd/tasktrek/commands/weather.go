package commands

import (
	"log/slog"

	"github.com/couchcryptid/task-trek/internal/adapter/mapbox"
	"github.com/couchcryptid/task-trek/internal/adapter/weatherapi"
	"github.com/couchcryptid/task-trek/internal/config"
	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/location"
	"github.com/couchcryptid/task-trek/internal/observability"
	"github.com/couchcryptid/task-trek/internal/weather"
)

// weatherDeps builds the collaborators shared by every weather workflow.
func weatherDeps(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) weather.Deps {
	var fetcher domain.ForecastFetcher = weatherapi.Disabled{}
	if cfg.WeatherEnabled {
		fetcher = weatherapi.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey, cfg.WeatherForecastDays, cfg.WeatherTimeout, logger)
	} else {
		logger.Warn("weather provider disabled")
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	return weather.Deps{
		Fetcher:  fetcher,
		Resolver: location.NewResolver(cfg.WeatherDefaultLocation, logger, metrics),
		Geocoder: geocoder,
		Logger:   logger,
		Metrics:  metrics,
	}
}
