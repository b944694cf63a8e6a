// Package session keeps one intake per open form. A form session ends when
// the client closes it, when it sits idle past the TTL, or when the store is
// full and it is the least recently used one. In every case the intake is
// closed so its spooled files are released.
package session

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dharsanguruparan/FabIntake/internal/intake"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fabintake_sessions_active",
		Help: "Form sessions currently held in memory.",
	})
	sessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fabintake_sessions_evicted_total",
		Help: "Form sessions closed, expired or evicted.",
	})
)

// Factory builds the intake for a new session.
type Factory func() *intake.Intake

// Store is a bounded, expiring map from session id to intake.
type Store struct {
	lru     *expirable.LRU[string, *intake.Intake]
	factory Factory
	logger  *slog.Logger
}

// NewStore creates a store holding at most capacity sessions, each expiring
// after ttl without access.
func NewStore(capacity int, ttl time.Duration, factory Factory, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{factory: factory, logger: logger}
	s.lru = expirable.NewLRU[string, *intake.Intake](capacity, s.onEvict, ttl)
	return s
}

// onEvict runs for every way a session leaves the LRU, including TTL expiry
// from the janitor goroutine. It is called with the LRU lock held, so it must
// not call back into s.lru.
func (s *Store) onEvict(id string, in *intake.Intake) {
	sessionsActive.Dec()
	sessionsEvictedTotal.Inc()
	in.Close()
	s.logger.Debug("session ended", slog.String("session_id", id))
}

// Open starts a new form session.
func (s *Store) Open() (string, *intake.Intake) {
	id := uuid.NewString()
	in := s.factory()
	s.lru.Add(id, in)
	sessionsActive.Inc()
	s.logger.Debug("session opened", slog.String("session_id", id))
	return id, in
}

// Get returns the intake for id and renews its idle timer.
func (s *Store) Get(id string) (*intake.Intake, bool) {
	in, ok := s.lru.Get(id)
	if !ok {
		return nil, false
	}
	// Re-adding an existing key only refreshes its expiry.
	s.lru.Add(id, in)
	return in, true
}

// Close ends the session id. It reports whether the session existed.
func (s *Store) Close(id string) bool {
	return s.lru.Remove(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.lru.Len()
}

// Purge closes every session. It is called on shutdown.
func (s *Store) Purge() {
	s.lru.Purge()
}
