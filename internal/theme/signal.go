package theme

import (
	"strings"
	"sync"

	"github.com/couchcryptid/task-trek/internal/domain"
)

// ClientHintHeader carries the browser's OS-level color-scheme preference.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// Subscription is a scoped listener registration. Release is idempotent.
type Subscription interface {
	Release()
}

// SchemeSource reports the OS-level color-scheme preference and notifies
// subscribers when it changes.
type SchemeSource interface {
	Preferred() (domain.Theme, bool)
	Subscribe(fn func(domain.Theme)) Subscription
}

// Signal is a SchemeSource fed with observed client hints.
type Signal struct {
	mu          sync.Mutex
	current     domain.Theme
	known       bool
	nextID      int
	subscribers map[int]func(domain.Theme)
}

// NewSignal creates a Signal with no known preference.
func NewSignal() *Signal {
	return &Signal{subscribers: make(map[int]func(domain.Theme))}
}

// Preferred returns the last observed OS preference.
func (s *Signal) Preferred() (domain.Theme, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.known
}

// Observe records a client hint value ("dark", "light", possibly quoted).
// Subscribers are notified synchronously when the preference changes.
// Empty or unknown values leave the signal untouched.
func (s *Signal) Observe(hint string) {
	t, err := domain.ParseTheme(strings.Trim(strings.TrimSpace(hint), `"`))
	if err != nil {
		return
	}

	s.mu.Lock()
	if s.known && s.current == t {
		s.mu.Unlock()
		return
	}
	s.current = t
	s.known = true
	fns := make([]func(domain.Theme), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(t)
	}
}

// Subscribe registers fn for change notifications.
func (s *Signal) Subscribe(fn func(domain.Theme)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return &subscription{release: func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}}
}

// Subscribers returns the number of live subscriptions.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

type subscription struct {
	once    sync.Once
	release func()
}

func (s *subscription) Release() {
	s.once.Do(s.release)
}
