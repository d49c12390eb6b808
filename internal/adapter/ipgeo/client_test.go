package ipgeo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSource_PublicAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/49.207.10.1", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("fields"), "lat")
		_, _ = w.Write([]byte(`{"status":"success","lat":12.9,"lon":77.6}`))
	}))
	defer srv.Close()

	pos, err := testClient(srv.URL).Source("49.207.10.1:53124").CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Position{Lat: 12.9, Lon: 77.6}, pos)
}

func TestSource_NonPublicAddressesSkipLookup(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	defer srv.Close()
	c := testClient(srv.URL)

	for _, addr := range []string{"127.0.0.1:8080", "[::1]:8080", "10.1.2.3:1", "192.168.0.10", "not-an-ip", ""} {
		_, err := c.Source(addr).CurrentPosition(context.Background())
		assert.ErrorIs(t, err, domain.ErrPositionUnavailable, addr)
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestSource_LookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Source("8.8.8.8:443").CurrentPosition(context.Background())
	require.ErrorIs(t, err, domain.ErrPositionUnavailable)
	assert.Contains(t, err.Error(), "reserved range")
}

func TestSource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Source("8.8.8.8:443").CurrentPosition(context.Background())
	require.ErrorIs(t, err, domain.ErrPositionUnavailable)
	assert.Contains(t, err.Error(), "429")
}
