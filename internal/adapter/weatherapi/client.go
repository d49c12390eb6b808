// Package weatherapi fetches daily forecasts from a WeatherAPI-compatible
// forecast endpoint.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Upstream error codes that get a dedicated visitor-facing message.
const (
	codeQueryMissing     = 1003
	codeLocationNotFound = 1006
)

// Client implements domain.ForecastFetcher. Concurrent requests for the same
// query share one upstream call.
type Client struct {
	baseURL    string
	key        string
	days       int
	httpClient *http.Client
	logger     *slog.Logger
	group      singleflight.Group
}

// NewClient creates a forecast client for baseURL (e.g. https://api.weatherapi.com/v1).
func NewClient(baseURL, key string, days int, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		days:       days,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Forecast returns the daily forecast for q. Upstream failures are returned
// as *domain.FriendlyError.
func (c *Client) Forecast(ctx context.Context, q domain.Query) (domain.Forecast, error) {
	key := strings.ToLower(q.String())
	// The shared call must outlive any single caller; each caller still
	// stops waiting when its own ctx ends.
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), q)
	})

	select {
	case <-ctx.Done():
		return domain.Forecast{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Forecast{}, res.Err
		}
		f := res.Val.(domain.Forecast)
		f.Days = append([]domain.ForecastDay(nil), f.Days...)
		return f, nil
	}
}

func (c *Client) fetch(ctx context.Context, q domain.Query) (domain.Forecast, error) {
	params := url.Values{
		"key":    {c.key},
		"q":      {q.String()},
		"days":   {strconv.Itoa(c.days)},
		"aqi":    {"no"},
		"alerts": {"no"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast.json?"+params.Encode(), nil)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return domain.Forecast{}, fmt.Errorf("forecast request: %w", context.DeadlineExceeded)
		}
		return domain.Forecast{}, &domain.FriendlyError{
			Code:    "UPSTREAM_UNREACHABLE",
			Message: "Failed to fetch weather data. Please try again.",
			Cause:   fmt.Errorf("forecast request: %w", err),
		}
	}
	defer resp.Body.Close()

	c.logger.Debug("forecast response", "query", q.String(), "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return domain.Forecast{}, c.decodeError(resp)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Forecast{}, &domain.FriendlyError{
			Code:    "UPSTREAM_INVALID",
			Message: "Failed to fetch weather data. Please try again.",
			Cause:   fmt.Errorf("decode response: %w", err),
		}
	}
	return payload.toDomain(), nil
}

func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	cause := fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)

	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Message == "" {
		return &domain.FriendlyError{Code: "UPSTREAM_ERROR", Message: "Failed to fetch weather data. Please try again.", Cause: cause}
	}

	switch {
	case payload.Error.Code == codeLocationNotFound:
		return &domain.FriendlyError{Code: "LOCATION_NOT_FOUND", Message: payload.Error.Message, Cause: cause}
	case payload.Error.Code == codeQueryMissing:
		return &domain.FriendlyError{Code: "QUERY_MISSING", Message: "Please enter a city name.", Cause: cause}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Key problems are ours, not the visitor's.
		c.logger.Error("weather API rejected credentials", "code", payload.Error.Code, "message", payload.Error.Message)
		return &domain.FriendlyError{Code: "SERVICE_UNAVAILABLE", Message: msgUnavailable, Cause: cause}
	default:
		return &domain.FriendlyError{Code: "UPSTREAM_ERROR", Message: payload.Error.Message, Cause: cause}
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
