package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/location"
	"github.com/couchcryptid/task-trek/internal/observability"
	"github.com/couchcryptid/task-trek/internal/weather"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type memStore struct {
	mu     sync.Mutex
	themes map[string]domain.Theme
}

func (s *memStore) GetTheme(_ context.Context, id string) (domain.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.themes[id]
	if !ok {
		return "", domain.ErrPreferenceNotFound
	}
	return t, nil
}

func (s *memStore) PutTheme(_ context.Context, id string, t domain.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes[id] = t
	return nil
}

type blockingFetcher struct {
	started chan struct{}
}

func (f blockingFetcher) Forecast(ctx context.Context, _ domain.Query) (domain.Forecast, error) {
	close(f.started)
	<-ctx.Done()
	return domain.Forecast{}, ctx.Err()
}

type countingFetcher struct {
	calls atomic.Int32
}

func (f *countingFetcher) Forecast(context.Context, domain.Query) (domain.Forecast, error) {
	f.calls.Add(1)
	return domain.Forecast{}, nil
}

func newTestRegistry(clk clockwork.Clock, fetcher domain.ForecastFetcher) *Registry {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	return NewRegistry(Options{
		Store: &memStore{themes: map[string]domain.Theme{}},
		Weather: weather.Deps{
			Fetcher:  fetcher,
			Resolver: location.NewResolver("", logger, metrics),
			Logger:   logger,
			Metrics:  metrics,
		},
		Logger:  logger,
		Metrics: metrics,
		IdleTTL: 30 * time.Minute,
		Clock:   clk,
	})
}

// --- tests ---

func TestGet_ReusesVisitorAndSubscribes(t *testing.T) {
	r := newTestRegistry(clockwork.NewFakeClock(), nil)

	a := r.Get("v1")
	b := r.Get("v1")
	c := r.Get("v2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 1, a.Scheme.Subscribers())
}

func TestVisitor_FollowsClientHint(t *testing.T) {
	r := newTestRegistry(clockwork.NewFakeClock(), nil)
	v := r.Get("v1")
	ctx := context.Background()

	assert.Equal(t, domain.ThemeLight, v.Theme.Initial(ctx))
	v.Scheme.Observe("dark")
	assert.Equal(t, domain.ThemeDark, v.Theme.Current(ctx))
}

func TestRelease_DropsSubscriptionAndCancelsFetch(t *testing.T) {
	fetcher := blockingFetcher{started: make(chan struct{})}
	r := newTestRegistry(clockwork.NewFakeClock(), fetcher)
	v := r.Get("v1")

	done := make(chan struct{})
	go func() {
		v.Weather.Search(context.Background(), "Paris")
		close(done)
	}()
	<-fetcher.started

	r.Release("v1")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("release did not cancel the in-flight fetch")
	}
	assert.Equal(t, 0, v.Scheme.Subscribers())
	assert.Equal(t, 0, r.Len())

	r.Release("v1") // second release is a no-op
}

func TestSweep_RemovesIdleVisitors(t *testing.T) {
	clk := clockwork.NewFakeClock()
	r := newTestRegistry(clk, nil)

	idle := r.Get("idle")
	clk.Advance(20 * time.Minute)
	r.Get("active")
	clk.Advance(15 * time.Minute)
	r.Get("active")

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 0, idle.Scheme.Subscribers())
}

func TestRun_ClosesOnShutdown(t *testing.T) {
	r := newTestRegistry(clockwork.NewFakeClock(), nil)
	v := r.Get("v1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, v.Scheme.Subscribers())
}

func TestGet_AfterCloseHoldsNoSubscription(t *testing.T) {
	fetcher := &countingFetcher{}
	r := newTestRegistry(clockwork.NewFakeClock(), fetcher)
	r.Close()

	v := r.Get("late")

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, v.Scheme.Subscribers())
	assert.Equal(t, domain.ThemeLight, v.Theme.Current(context.Background()))

	v.Weather.Search(context.Background(), "Paris")
	assert.Zero(t, fetcher.calls.Load())
}

func TestRun_SweepsOnTicker(t *testing.T) {
	clk := clockwork.NewFakeClock()
	r := newTestRegistry(clk, nil)
	r.Get("v1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	require.NoError(t, clk.BlockUntilContext(ctx, 1))
	clk.Advance(45 * time.Minute)

	require.Eventually(t, func() bool { return r.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
