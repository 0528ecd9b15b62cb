package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-chi-calculator/internal/document"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/render"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "calculator_sessions_active",
	Help: "Calculation sessions currently held in memory",
})

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store keeps sessions in memory, keyed by id. Nothing survives a restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry

	page        *document.Document
	renderer    *render.Renderer
	idleTimeout time.Duration
	now         func() time.Time
}

// NewStore returns a store that builds every session from a clone of page.
func NewStore(page *document.Document, r *render.Renderer, idleTimeout time.Duration) *Store {
	return &Store{
		sessions:    make(map[string]*entry),
		page:        page,
		renderer:    r,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Get returns the session for id and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = st.now()
	return e.session, true
}

// Create starts a new session with a random id.
func (st *Store) Create() (*Session, error) {
	id := uuid.New().String()

	s, err := New(id, st.page.Clone(), st.renderer)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	st.mu.Lock()
	st.sessions[id] = &entry{session: s, lastSeen: st.now()}
	n := len(st.sessions)
	st.mu.Unlock()

	sessionsActive.Set(float64(n))
	return s, nil
}

// GetOrCreate returns the session for id, creating a fresh one when id is
// unknown. created reports which happened.
func (st *Store) GetOrCreate(id string) (s *Session, created bool, err error) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false, nil
		}
	}
	s, err = st.Create()
	return s, err == nil, err
}

// Delete drops a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	sessionsActive.Set(float64(n))
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle for longer than the idle timeout and returns
// how many were removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	removed := 0
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) > st.idleTimeout {
			delete(st.sessions, id)
			removed++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	sessionsActive.Set(float64(n))
	return removed
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := st.Sweep(st.now()); removed > 0 {
				observability.Logger.Info("idle sessions evicted",
					zap.Int("removed", removed),
					zap.Int("remaining", st.Len()),
				)
			}
		}
	}
}
