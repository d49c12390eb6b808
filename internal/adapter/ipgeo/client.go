// Package ipgeo approximates a visitor's position from their IP address
// using an ip-api.com compatible endpoint.
package ipgeo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
)

// Client looks up IP positions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for baseURL (e.g. http://ip-api.com).
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Source returns a PositionSource for the host part of remoteAddr. Addresses
// that cannot be located publicly yield domain.ErrPositionUnavailable without
// a network call.
func (c *Client) Source(remoteAddr string) domain.PositionSource {
	return domain.PositionFunc(func(ctx context.Context) (domain.Position, error) {
		addr, ok := publicAddr(remoteAddr)
		if !ok {
			return domain.Position{}, fmt.Errorf("address %q: %w", remoteAddr, domain.ErrPositionUnavailable)
		}
		return c.Locate(ctx, addr)
	})
}

// Locate returns the approximate position of addr.
func (c *Client) Locate(ctx context.Context, addr netip.Addr) (domain.Position, error) {
	u := fmt.Sprintf("%s/json/%s?fields=status,message,lat,lon", c.baseURL, addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Position{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Position{}, fmt.Errorf("ip lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Position{}, fmt.Errorf("ip lookup: status %d: %w", resp.StatusCode, domain.ErrPositionUnavailable)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Position{}, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != "success" {
		c.logger.Debug("ip lookup failed", "addr", addr, "message", payload.Message)
		return domain.Position{}, fmt.Errorf("ip lookup: %s: %w", payload.Message, domain.ErrPositionUnavailable)
	}
	return domain.Position{Lat: payload.Lat, Lon: payload.Lon}, nil
}

type lookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func publicAddr(remoteAddr string) (netip.Addr, bool) {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified() || addr.IsMulticast() {
		return netip.Addr{}, false
	}
	return addr, true
}
