// Package activity buffers visitor activity events and delivers them in
// batches to a sink off the request path.
package activity

import (
	"context"
	"log/slog"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	drainTimeout   = 5 * time.Second
)

// BatchLoader writes multiple activity events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.ActivityEvent) error
}

// Recorder implements domain.ActivityRecorder with a bounded buffer. Run
// moves buffered events to the loader.
type Recorder struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	clock         clockwork.Clock
	events        chan domain.ActivityEvent
	batchSize     int
	flushInterval time.Duration
}

// New creates a Recorder holding up to buffer undelivered events. A nil clock
// uses real time for the flush interval.
func New(loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize, buffer int, flushInterval time.Duration, clock clockwork.Clock) *Recorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Recorder{
		loader:        loader,
		logger:        logger,
		metrics:       metrics,
		clock:         clock,
		events:        make(chan domain.ActivityEvent, buffer),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Record enqueues evt. When the buffer is full the event is dropped.
func (r *Recorder) Record(evt domain.ActivityEvent) {
	select {
	case r.events <- evt:
	default:
		r.metrics.ActivityDropped.Inc()
		r.logger.Warn("activity buffer full, dropping event", "type", evt.Type, "visitor_id", evt.VisitorID)
	}
}

// Run delivers batches until ctx is cancelled, then flushes what is left
// with a single bounded attempt.
func (r *Recorder) Run(ctx context.Context) error {
	r.logger.Info("activity recorder started", "batch_size", r.batchSize, "flush_interval", r.flushInterval)

	ticker := r.clock.NewTicker(r.flushInterval)
	defer ticker.Stop()

	backoff := initialBackoff
	batch := make([]domain.ActivityEvent, 0, r.batchSize)

	for {
		select {
		case <-ctx.Done():
			r.drain(batch)
			r.logger.Info("activity recorder stopped", "reason", ctx.Err())
			return nil
		case evt := <-r.events:
			batch = append(batch, evt)
			if len(batch) < r.batchSize {
				continue
			}
		case <-ticker.Chan():
			if len(batch) == 0 {
				continue
			}
		}

		if !r.deliver(ctx, batch, &backoff) {
			r.drain(batch)
			r.logger.Info("activity recorder stopped", "reason", ctx.Err())
			return nil
		}
		batch = batch[:0]
	}
}

// deliver retries LoadBatch with capped exponential backoff. Returns false if
// ctx ended before the batch was written.
func (r *Recorder) deliver(ctx context.Context, batch []domain.ActivityEvent, backoff *time.Duration) bool {
	for {
		err := r.loader.LoadBatch(ctx, batch)
		if err == nil {
			r.metrics.ActivityPublished.Add(float64(len(batch)))
			*backoff = initialBackoff
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		r.metrics.ActivityPublishErrors.Inc()
		r.logger.Error("activity batch delivery failed", "error", err, "batch_size", len(batch), "retry_in", *backoff)
		if !sharedretry.SleepWithContext(ctx, *backoff) {
			return false
		}
		*backoff = sharedretry.NextBackoff(*backoff, maxBackoff)
	}
}

// drain writes pending plus everything still buffered in one attempt.
func (r *Recorder) drain(pending []domain.ActivityEvent) {
	batch := append([]domain.ActivityEvent(nil), pending...)
	for drained := false; !drained; {
		select {
		case evt := <-r.events:
			batch = append(batch, evt)
		default:
			drained = true
		}
	}
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := r.loader.LoadBatch(ctx, batch); err != nil {
		r.metrics.ActivityPublishErrors.Inc()
		r.metrics.ActivityDropped.Add(float64(len(batch)))
		r.logger.Error("final activity flush failed", "error", err, "batch_size", len(batch))
		return
	}
	r.metrics.ActivityPublished.Add(float64(len(batch)))
}
