// Package app owns the per-visitor application state: the theme controller,
// its OS preference subscription and the weather workflow.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/observability"
	"github.com/couchcryptid/task-trek/internal/theme"
	"github.com/couchcryptid/task-trek/internal/weather"
	"github.com/jonboulle/clockwork"
)

// Visitor is one browser's state. Fields are safe for concurrent use.
type Visitor struct {
	ID      string
	Scheme  *theme.Signal
	Theme   *theme.Controller
	Weather *weather.Workflow

	watch    theme.Subscription
	lastSeen time.Time
}

func (v *Visitor) teardown() {
	v.watch.Release()
	v.Weather.Close()
}

// Options configures a Registry.
type Options struct {
	Store    domain.PreferenceStore
	Weather  weather.Deps
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Recorder domain.ActivityRecorder
	IdleTTL  time.Duration
	Clock    clockwork.Clock // optional
}

// Registry creates visitors on first use and tears them down on release,
// idle expiry or Close.
type Registry struct {
	opts Options

	mu       sync.Mutex
	visitors map[string]*Visitor
	closed   bool
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Recorder == nil {
		opts.Recorder = domain.DiscardActivity{}
	}
	opts.Weather.Recorder = opts.Recorder
	return &Registry{opts: opts, visitors: make(map[string]*Visitor)}
}

// Get returns the visitor for id, creating it and acquiring its OS
// preference subscription if needed. After Close it returns a visitor that is
// already torn down.
func (r *Registry) Get(id string) *Visitor {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.Clock.Now()
	if v, ok := r.visitors[id]; ok {
		v.lastSeen = now
		return v
	}

	scheme := theme.NewSignal()
	ctrl := theme.NewController(id, r.opts.Store, scheme, r.opts.Logger, r.opts.Metrics, r.opts.Recorder)
	v := &Visitor{
		ID:       id,
		Scheme:   scheme,
		Theme:    ctrl,
		Weather:  weather.NewWorkflow(id, r.opts.Weather),
		watch:    ctrl.Watch(),
		lastSeen: now,
	}
	if r.closed {
		// Untracked after Close, so nothing else would release it.
		v.teardown()
		return v
	}
	r.visitors[id] = v
	r.opts.Metrics.ActiveVisitors.Set(float64(len(r.visitors)))
	return v
}

// Release tears down the visitor for id, if any.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	v, ok := r.visitors[id]
	if ok {
		delete(r.visitors, id)
		r.opts.Metrics.ActiveVisitors.Set(float64(len(r.visitors)))
	}
	r.mu.Unlock()

	if ok {
		v.teardown()
		r.opts.Logger.Debug("visitor released", "visitor_id", id)
	}
}

// Sweep tears down visitors idle for longer than the idle TTL and returns
// how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.opts.Clock.Now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	var idle []*Visitor
	for id, v := range r.visitors {
		if v.lastSeen.Before(cutoff) {
			idle = append(idle, v)
			delete(r.visitors, id)
		}
	}
	r.opts.Metrics.ActiveVisitors.Set(float64(len(r.visitors)))
	r.mu.Unlock()

	for _, v := range idle {
		v.teardown()
	}
	if len(idle) > 0 {
		r.opts.Logger.Debug("idle visitors swept", "count", len(idle))
	}
	return len(idle)
}

// Run sweeps idle visitors until ctx is cancelled, then closes the registry.
func (r *Registry) Run(ctx context.Context) error {
	interval := r.opts.IdleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := r.opts.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.Chan():
			r.Sweep()
		}
	}
}

// Close tears down every visitor. Visitors handed out afterwards are not
// tracked.
func (r *Registry) Close() {
	r.mu.Lock()
	visitors := r.visitors
	r.visitors = make(map[string]*Visitor)
	r.closed = true
	r.opts.Metrics.ActiveVisitors.Set(0)
	r.mu.Unlock()

	for _, v := range visitors {
		v.teardown()
	}
}

// Len returns the number of live visitors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}
