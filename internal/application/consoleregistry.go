package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

// ConsoleRegistry holds one Console per browser session in memory. Consoles
// idle for longer than the TTL are dropped on the next lookup; nothing is
// persisted.
type ConsoleRegistry struct {
	mu         sync.Mutex
	consoles   map[string]*registryEntry
	ttl        time.Duration
	now        func() time.Time
	newConsole func() *Console
}

type registryEntry struct {
	console  *Console
	lastUsed time.Time
}

// NewConsoleRegistry creates a registry. newConsole builds the console for a
// session seen for the first time; nil means NewConsole().
func NewConsoleRegistry(ttl time.Duration, newConsole func() *Console) *ConsoleRegistry {
	if newConsole == nil {
		newConsole = func() *Console { return NewConsole() }
	}
	return &ConsoleRegistry{
		consoles:   make(map[string]*registryEntry),
		ttl:        ttl,
		now:        time.Now,
		newConsole: newConsole,
	}
}

// Get returns the console for sessionID, creating it if needed, and marks it
// as used.
func (r *ConsoleRegistry) Get(sessionID string) *Console {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictLocked(now)

	entry, ok := r.consoles[sessionID]
	if !ok {
		entry = &registryEntry{console: r.newConsole()}
		r.consoles[sessionID] = entry
	}
	entry.lastUsed = now
	return entry.console
}

// Sweep drops idle consoles and returns how many were removed.
func (r *ConsoleRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.consoles)
	r.evictLocked(r.now())
	return before - len(r.consoles)
}

// Start sweeps idle consoles on the given interval so abandoned sessions do
// not wait for the next lookup. Start blocks until the context is canceled.
func (r *ConsoleRegistry) Start(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("console sweeper stopped")
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("idle consoles dropped", "count", n, "live", r.Len())
			}
		}
	}
}

// Len returns the number of live sessions.
func (r *ConsoleRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consoles)
}

func (r *ConsoleRegistry) evictLocked(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, entry := range r.consoles {
		if now.Sub(entry.lastUsed) > r.ttl && entry.console.State() != model.RequestStateLoading {
			delete(r.consoles, id)
		}
	}
}
