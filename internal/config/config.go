package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CookieSecure    bool

	// Theme preference storage.
	StoreDriver string
	StoreDSN    string

	// Forecast provider.
	WeatherEnabled         bool
	WeatherAPIURL          string
	WeatherAPIKey          string
	WeatherTimeout         time.Duration
	WeatherForecastDays    int
	WeatherDefaultLocation string

	// Mapbox reverse geocoding for forecast labels.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// IP geolocation used when the browser sends no coordinates.
	IPGeoEnabled bool
	IPGeoURL     string
	IPGeoTimeout time.Duration

	// Activity event sink.
	KafkaEnabled          bool
	KafkaBrokers          []string
	KafkaActivityTopic    string
	ActivityBatchSize     int
	ActivityFlushInterval time.Duration
	ActivityBuffer        int

	SessionTTL     time.Duration
	VisitorIdleTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStore is Load for commands that only touch the preference store. Only
// the store settings are validated.
func LoadStore() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:               sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:               sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:        shutdownTimeout,
		StoreDriver:            strings.ToLower(sharedcfg.EnvOrDefault("STORE_DRIVER", "sqlite")),
		WeatherAPIURL:          strings.TrimRight(sharedcfg.EnvOrDefault("WEATHER_API_URL", "https://api.weatherapi.com/v1"), "/"),
		WeatherAPIKey:          os.Getenv("WEATHER_API_KEY"),
		WeatherDefaultLocation: sharedcfg.EnvOrDefault("WEATHER_DEFAULT_LOCATION", "India"),
		MapboxToken:            os.Getenv("MAPBOX_TOKEN"),
		IPGeoURL:               strings.TrimRight(sharedcfg.EnvOrDefault("IPGEO_URL", "http://ip-api.com"), "/"),
		KafkaBrokers:           sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaActivityTopic:     sharedcfg.EnvOrDefault("KAFKA_ACTIVITY_TOPIC", "tasktrek-activity"),
	}

	cfg.StoreDSN = sharedcfg.EnvOrDefault("STORE_DSN", defaultDSN(cfg.StoreDriver))

	if cfg.CookieSecure, err = parseBool("COOKIE_SECURE", false); err != nil {
		return nil, err
	}
	if cfg.WeatherEnabled, err = parseBool("WEATHER_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.IPGeoEnabled, err = parseBool("IPGEO_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.MapboxEnabled, err = parseBool("MAPBOX_ENABLED", cfg.MapboxToken != ""); err != nil {
		return nil, err
	}

	if cfg.WeatherTimeout, err = parseDuration("WEATHER_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.MapboxTimeout, err = parseDuration("MAPBOX_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.IPGeoTimeout, err = parseDuration("IPGEO_TIMEOUT", "3s"); err != nil {
		return nil, err
	}
	if cfg.ActivityFlushInterval, err = parseDuration("ACTIVITY_FLUSH_INTERVAL", "1s"); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.VisitorIdleTTL, err = parseDuration("VISITOR_IDLE_TTL", "30m"); err != nil {
		return nil, err
	}

	if cfg.WeatherForecastDays, err = parseInt("WEATHER_FORECAST_DAYS", 3, 1, 14); err != nil {
		return nil, err
	}
	if cfg.ActivityBatchSize, err = parseInt("ACTIVITY_BATCH_SIZE", 50, 1, 1000); err != nil {
		return nil, err
	}
	if cfg.ActivityBuffer, err = parseInt("ACTIVITY_BUFFER", 1024, 1, 1<<20); err != nil {
		return nil, err
	}
	cfg.MapboxCacheSize = parseMapboxCacheSize()
	return cfg, nil
}

func (c *Config) validateStore() error {
	switch c.StoreDriver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: want sqlite, postgres or memory", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.StoreDSN == "" {
		return errors.New("STORE_DSN is required when STORE_DRIVER is postgres")
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if c.WeatherEnabled && c.WeatherAPIKey == "" {
		return errors.New("WEATHER_API_KEY is required unless WEATHER_ENABLED is false")
	}
	if strings.TrimSpace(c.WeatherDefaultLocation) == "" {
		return errors.New("WEATHER_DEFAULT_LOCATION must not be blank")
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if c.KafkaEnabled && c.KafkaActivityTopic == "" {
		return errors.New("KAFKA_ACTIVITY_TOPIC is required when KAFKA_ENABLED is true")
	}
	return nil
}

func defaultDSN(driver string) string {
	if driver == "sqlite" {
		return ".data/tasktrek.db"
	}
	return ""
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func parseInt(key string, fallback, lo, hi int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", key, lo, hi)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
