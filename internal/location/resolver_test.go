package location

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/observability"
	"github.com/stretchr/testify/assert"
)

func newTestResolver(fallback string) *Resolver {
	return NewResolver(fallback, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestResolve_Success(t *testing.T) {
	q := newTestResolver("").Resolve(context.Background(), domain.FixedPosition{Lat: 12.9, Lon: 77.6})

	assert.True(t, q.IsCoordinates())
	assert.Equal(t, "12.9,77.6", q.String())
}

func TestResolve_FailureFallsBack(t *testing.T) {
	calls := 0
	src := domain.PositionFunc(func(context.Context) (domain.Position, error) {
		calls++
		return domain.Position{}, domain.ErrPositionUnavailable
	})

	q := newTestResolver("").Resolve(context.Background(), src)

	assert.Equal(t, "India", q.String())
	assert.Equal(t, 1, calls, "must not retry")
}

func TestResolve_UnavailableFallsBack(t *testing.T) {
	q := newTestResolver("Bengaluru").Resolve(context.Background(), nil)
	assert.False(t, q.IsCoordinates())
	assert.Equal(t, "Bengaluru", q.String())
}

func TestResolve_CancelledContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := domain.PositionFunc(func(ctx context.Context) (domain.Position, error) {
		return domain.Position{}, ctx.Err()
	})

	q := newTestResolver("").Resolve(ctx, src)
	assert.Equal(t, "India", q.String())
}

func TestNewResolver_BlankFallback(t *testing.T) {
	assert.Equal(t, DefaultPlace, newTestResolver("   ").Fallback())
}
