// Package sessions keeps one namespace per conversation and serialises the
// runs made against it.
package sessions

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/reusee/taibox/engines"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/runners"
)

type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	namespace *engines.Namespace
	surface   *runners.TextSurface
	display   string
	lastUsed  time.Time
	closed    bool
}

// Turn is a run result plus what the body drew on the surface.
type Turn struct {
	runners.Result
	Display string
}

func newSession(id string, ns *engines.Namespace, now time.Time) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: now,
		namespace: ns,
		lastUsed:  now,
	}
	s.surface = &runners.TextSurface{
		OnReset: func(text string) {
			// called under s.mu, from inside run
			s.display = text
		},
	}
	return s
}

func (s *Session) run(ctx context.Context, runner *runners.Runner, query string, now func() time.Time) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Turn{}, ErrClosed
	}
	s.display = ""
	ctx = logs.WithSession(ctx, s.ID)
	result := runner.Run(ctx, query, s.namespace, s.surface)
	s.lastUsed = now()
	return Turn{
		Result:  result,
		Display: s.display,
	}, nil
}

// Names lists the snippet-bound names, for hosts that show session state.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.namespace.Locals))
}

// idle reports how long the session has gone unused. A session with a run
// in flight is never idle.
func (s *Session) idle(now time.Time) time.Duration {
	if !s.mu.TryLock() {
		return 0
	}
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

// close waits for an in-flight run.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.namespace = engines.NewNamespace(nil)
}
