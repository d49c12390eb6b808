package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/observability"
)

// storeCheckTimeout bounds the store lookup done from a change notification.
const storeCheckTimeout = 2 * time.Second

// Controller owns one visitor's applied theme.
type Controller struct {
	visitorID string
	store     domain.PreferenceStore
	scheme    SchemeSource
	logger    *slog.Logger
	metrics   *observability.Metrics
	recorder  domain.ActivityRecorder

	mu       sync.Mutex
	current  domain.Theme
	loaded   bool
	explicit bool
}

// NewController creates a Controller. A nil scheme means the OS preference
// is never known; a nil recorder discards activity.
func NewController(visitorID string, store domain.PreferenceStore, scheme SchemeSource, logger *slog.Logger, metrics *observability.Metrics, recorder domain.ActivityRecorder) *Controller {
	if recorder == nil {
		recorder = domain.DiscardActivity{}
	}
	return &Controller{
		visitorID: visitorID,
		store:     store,
		scheme:    scheme,
		logger:    logger,
		metrics:   metrics,
		recorder:  recorder,
		current:   domain.ThemeLight,
	}
}

// Initial derives the theme from the store, then the OS preference, then the
// light default. The OS preference is adopted without being persisted.
func (c *Controller) Initial(ctx context.Context) domain.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current, c.explicit = c.resolve(ctx)
	c.loaded = true
	return c.current
}

// Current returns the applied theme, deriving it on first use.
func (c *Controller) Current(ctx context.Context) domain.Theme {
	c.mu.Lock()
	loaded, current := c.loaded, c.current
	c.mu.Unlock()

	if loaded {
		return current
	}
	return c.Initial(ctx)
}

// Explicit reports whether the applied theme came from a persisted choice.
func (c *Controller) Explicit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.explicit
}

// Set persists t and applies it. From then on OS changes are ignored.
func (c *Controller) Set(ctx context.Context, t domain.Theme) error {
	if _, err := domain.ParseTheme(string(t)); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.PutTheme(ctx, c.visitorID, t); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	c.apply(t, true, "explicit")
	return nil
}

// Toggle flips the applied theme and persists the result.
func (c *Controller) Toggle(ctx context.Context) (domain.Theme, error) {
	next := c.Current(ctx).Toggle()
	if err := c.Set(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// Watch subscribes to OS preference changes. The returned Subscription must
// be released when the visitor is torn down.
func (c *Controller) Watch() Subscription {
	if c.scheme == nil {
		return &subscription{release: func() {}}
	}
	return c.scheme.Subscribe(c.onSystemChange)
}

func (c *Controller) onSystemChange(t domain.Theme) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.explicit {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeCheckTimeout)
	defer cancel()
	stored, err := c.store.GetTheme(ctx, c.visitorID)
	switch {
	case err == nil:
		c.current, c.explicit, c.loaded = stored, true, true
		return
	case !errors.Is(err, domain.ErrPreferenceNotFound):
		c.logger.Warn("theme store lookup failed, applying os preference", "visitor_id", c.visitorID, "error", err)
	}

	c.apply(t, false, "system")
}

// resolve must be called with c.mu held.
func (c *Controller) resolve(ctx context.Context) (domain.Theme, bool) {
	stored, err := c.store.GetTheme(ctx, c.visitorID)
	if err == nil {
		return stored, true
	}
	if !errors.Is(err, domain.ErrPreferenceNotFound) {
		c.logger.Warn("theme store lookup failed", "visitor_id", c.visitorID, "error", err)
	}

	if c.scheme != nil {
		if preferred, ok := c.scheme.Preferred(); ok {
			return preferred, false
		}
	}
	return domain.ThemeLight, false
}

// apply must be called with c.mu held.
func (c *Controller) apply(t domain.Theme, explicit bool, source string) {
	changed := !c.loaded || c.current != t
	c.current = t
	c.loaded = true
	c.explicit = c.explicit || explicit

	if !changed {
		return
	}
	c.metrics.ThemeChanges.WithLabelValues(source).Inc()
	c.logger.Debug("theme applied", "visitor_id", c.visitorID, "theme", t, "source", source)
	c.recorder.Record(domain.NewActivityEvent(domain.ActivityThemeChanged, c.visitorID, map[string]string{
		"theme":  string(t),
		"source": source,
	}))
}
