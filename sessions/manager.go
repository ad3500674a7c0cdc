package sessions

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/taibox/engines"
	"github.com/reusee/taibox/internal/trust"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/metrics"
	"github.com/reusee/taibox/runners"
	"github.com/reusee/taibox/syncs"
	"go.starlark.net/starlark"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
)

type Manager struct {
	Runner *runners.Runner

	// bound into every session before preludes run
	Globals starlark.StringDict
	// trusted sources run at session creation; what they bind becomes
	// read-only globals of the session
	Preludes []string
	// zero disables sweeping
	Idle time.Duration

	// optional
	Parallel syncs.Semaphore
	Metrics  *metrics.Metrics
	Logger   logs.Logger
	Now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Create builds a session namespace: the shared globals, then whatever the
// preludes bind, all frozen.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	ctx = logs.WithSession(ctx, id)

	globals := maps.Clone(m.Globals)
	if globals == nil {
		globals = make(starlark.StringDict)
	}
	if len(m.Preludes) > 0 {
		scratch := engines.NewNamespace(maps.Clone(globals))
		token := trust.Issue()
		for i, prelude := range m.Preludes {
			if err := m.Runner.Engine.ExecuteTrusted(ctx, token, prelude, scratch); err != nil {
				return nil, fmt.Errorf("prelude %d: %w", i, err)
			}
		}
		maps.Copy(globals, scratch.Locals)
	}
	globals.Freeze()

	session := newSession(id, engines.NewNamespace(globals), m.now())
	m.mu.Lock()
	if m.sessions == nil {
		m.sessions = make(map[string]*Session)
	}
	m.sessions[id] = session
	n := len(m.sessions)
	m.mu.Unlock()

	if m.Metrics != nil {
		m.Metrics.Sessions.Set(float64(n))
	}
	if m.Logger != nil {
		m.Logger.InfoContext(ctx, "session created",
			"globals", len(globals),
		)
	}
	return session, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return session, nil
}

// Run runs query in the session's namespace. Runs on one session are
// serialised; runs on different sessions proceed in parallel up to the
// Parallel bound.
func (m *Manager) Run(ctx context.Context, id string, query string) (Turn, error) {
	session, err := m.Get(id)
	if err != nil {
		return Turn{}, err
	}
	if m.Parallel != nil {
		if err := m.Parallel.AcquireContext(ctx); err != nil {
			return Turn{}, err
		}
		defer m.Parallel.Release()
	}
	return session.run(ctx, m.Runner, query, m.now)
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	session.close()
	if m.Metrics != nil {
		m.Metrics.Sessions.Set(float64(n))
	}
	if m.Logger != nil {
		m.Logger.Info("session closed", "session", id)
	}
	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions unused for longer than Idle and returns how many.
func (m *Manager) Sweep() int {
	if m.Idle <= 0 {
		return 0
	}
	now := m.now()
	m.mu.Lock()
	var expired []string
	for id, session := range m.sessions {
		if session.idle(now) > m.Idle {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()
	closed := 0
	for _, id := range expired {
		if err := m.Close(id); err == nil {
			closed++
		}
	}
	return closed
}

// StartSweeper sweeps every interval until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	if m.Idle <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.Sweep(); n > 0 && m.Logger != nil {
					m.Logger.Info("idle sessions closed", "n", n)
				}
			}
		}
	}()
}
