// Package weather orchestrates location resolution, the remote forecast query
// and the resulting tri-state widget result for one visitor.
package weather

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/location"
	"github.com/couchcryptid/task-trek/internal/observability"
)

// Deps are the collaborators shared by every visitor's workflow.
type Deps struct {
	Fetcher  domain.ForecastFetcher
	Resolver *location.Resolver
	Geocoder domain.Geocoder // optional
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Recorder domain.ActivityRecorder // optional
}

// Workflow owns one visitor's WeatherResult.
//
// Every action takes a new sequence number and cancels the fetch it
// supersedes; a completion is applied only while its sequence number is
// current. An action for the query already in flight starts nothing.
type Workflow struct {
	visitorID string
	deps      Deps

	mu     sync.Mutex
	seq    uint64
	result domain.WeatherResult
	cancel context.CancelFunc
	closed bool
}

// NewWorkflow creates an idle workflow.
func NewWorkflow(visitorID string, deps Deps) *Workflow {
	if deps.Recorder == nil {
		deps.Recorder = domain.DiscardActivity{}
	}
	return &Workflow{
		visitorID: visitorID,
		deps:      deps,
		result:    domain.WeatherResult{State: domain.ResultIdle},
	}
}

// Result returns a snapshot of the current result.
func (w *Workflow) Result() domain.WeatherResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Search fetches the forecast for a place name. Blank input is ignored.
func (w *Workflow) Search(ctx context.Context, city string) domain.WeatherResult {
	q := domain.PlaceQuery(city)
	if q.IsZero() {
		return w.Result()
	}
	return w.run(ctx, q)
}

// DetectLocation resolves the visitor's position through src and fetches the
// forecast for it, or for the fallback place when src is nil or fails.
func (w *Workflow) DetectLocation(ctx context.Context, src domain.PositionSource) domain.WeatherResult {
	return w.run(ctx, w.deps.Resolver.Resolve(ctx, src))
}

// Close cancels any in-flight fetch. Later actions are ignored.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Workflow) run(ctx context.Context, q domain.Query) domain.WeatherResult {
	seq, fetchCtx, cancel, started := w.begin(ctx, q)
	if !started {
		return w.Result()
	}
	defer cancel()

	start := time.Now()
	forecast, err := w.fetch(fetchCtx, q)
	w.deps.Metrics.ForecastDuration.Observe(time.Since(start).Seconds())

	return w.finish(seq, q, forecast, err)
}

// begin enters the loading state, clearing any prior error or data.
func (w *Workflow) begin(ctx context.Context, q domain.Query) (uint64, context.Context, context.CancelFunc, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, nil, nil, false
	}
	if w.result.Loading() && w.result.Query == q.String() {
		w.deps.Metrics.ForecastDeduplicated.Inc()
		w.deps.Logger.Debug("forecast already in flight", "visitor_id", w.visitorID, "query", q.String(), "seq", w.seq)
		return 0, nil, nil, false
	}
	if w.cancel != nil {
		w.cancel()
	}

	w.seq++
	fetchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.result = domain.WeatherResult{State: domain.ResultLoading, Query: q.String(), Seq: w.seq}
	return w.seq, fetchCtx, cancel, true
}

func (w *Workflow) fetch(ctx context.Context, q domain.Query) (domain.Forecast, error) {
	forecast, err := w.deps.Fetcher.Forecast(ctx, q)
	if err != nil {
		return domain.Forecast{}, err
	}
	return LabelForecast(ctx, forecast, q, w.deps.Geocoder, w.deps.Logger), nil
}

func (w *Workflow) finish(seq uint64, q domain.Query, forecast domain.Forecast, err error) domain.WeatherResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return w.result
	}
	if seq != w.seq {
		w.deps.Metrics.ForecastSuperseded.Inc()
		w.deps.Logger.Debug("dropping superseded forecast", "visitor_id", w.visitorID, "query", q.String(), "seq", seq, "current_seq", w.seq)
		return w.result
	}
	w.cancel = nil

	kind := "place"
	if q.IsCoordinates() {
		kind = "coordinates"
	}

	if err != nil {
		msg := Message(err)
		w.result = domain.WeatherResult{State: domain.ResultError, Query: q.String(), Seq: seq, Error: msg}
		w.deps.Metrics.ForecastRequests.WithLabelValues(kind, "error").Inc()
		w.deps.Logger.Warn("forecast fetch failed", "visitor_id", w.visitorID, "query", q.String(), "seq", seq, "error", err)
		w.deps.Recorder.Record(domain.NewActivityEvent(domain.ActivityForecastError, w.visitorID, map[string]string{
			"query":   q.String(),
			"message": msg,
		}))
		return w.result
	}

	w.result = domain.WeatherResult{State: domain.ResultData, Query: q.String(), Seq: seq, Forecast: &forecast}
	w.deps.Metrics.ForecastRequests.WithLabelValues(kind, "success").Inc()
	w.deps.Recorder.Record(domain.NewActivityEvent(domain.ActivityForecastReady, w.visitorID, map[string]string{
		"query":    q.String(),
		"location": forecast.Location,
	}))
	return w.result
}
