package route

import (
	"sync"

	"github.com/handiism/vinyl-vault/internal/session"
)

// SessionSource is the part of session.Store the guard watches.
type SessionSource interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) func()
}

// Guard tracks the current path and re-resolves it on every session change.
type Guard struct {
	src         SessionSource
	unsubscribe func()

	mu       sync.Mutex
	path     string
	decision Decision
	onChange func(Decision)
}

// NewGuard creates a Guard positioned at path.
func NewGuard(src SessionSource, path string) *Guard {
	g := &Guard{src: src}
	g.decision = g.resolve(path, StateOf(src.Snapshot()))
	g.unsubscribe = src.Subscribe(g.sessionChanged)
	return g
}

// OnChange registers fn to receive the decision after every session change.
func (g *Guard) OnChange(fn func(Decision)) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

// Navigate moves to path and returns what to show. Redirects are followed,
// so Path reports the redirect target afterwards.
func (g *Guard) Navigate(path string) Decision {
	state := StateOf(g.src.Snapshot())

	g.mu.Lock()
	defer g.mu.Unlock()
	g.decision = g.resolve(path, state)
	return g.decision
}

// Current returns the last decision.
func (g *Guard) Current() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

// Path returns the current path.
func (g *Guard) Path() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.path
}

// Close stops watching the session.
func (g *Guard) Close() {
	g.unsubscribe()
}

// resolve must be called with mu held, or before the guard is shared.
func (g *Guard) resolve(path string, state AuthState) Decision {
	d := Resolve(path, state)
	g.path = d.Path
	if d.Redirect != "" {
		g.path = d.Redirect
	}
	return d
}

func (g *Guard) sessionChanged(snap session.Snapshot) {
	g.mu.Lock()
	g.decision = g.resolve(g.path, StateOf(snap))
	d, fn := g.decision, g.onChange
	g.mu.Unlock()

	if fn != nil {
		fn(d)
	}
}
