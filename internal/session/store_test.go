package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/dharsanguruparan/FabIntake/internal/intake"
	"github.com/dharsanguruparan/FabIntake/internal/submission"
)

func newTestStore(capacity int, ttl time.Duration) *Store {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := func() *intake.Intake {
		return intake.New(submission.NewSimulated(0, logger), intake.WithLogger(logger))
	}
	return NewStore(capacity, ttl, factory, logger)
}

func TestStoreOpenGetClose(t *testing.T) {
	s := newTestStore(10, time.Minute)
	id, in := s.Open()
	if id == "" || in == nil {
		t.Fatalf("open returned empty session")
	}
	got, ok := s.Get(id)
	if !ok || got != in {
		t.Fatalf("get(%s) = %v, %v", id, got, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	if !s.Close(id) {
		t.Fatalf("close should report an existing session")
	}
	if s.Close(id) {
		t.Fatalf("second close should report false")
	}
	if _, ok := s.Get(id); ok {
		t.Fatalf("closed session still reachable")
	}
	if err := in.Submit(context.Background()); !errors.Is(err, intake.ErrClosed) {
		t.Fatalf("intake of closed session should be closed, got %v", err)
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s := newTestStore(2, time.Minute)
	first, firstIntake := s.Open()
	second, _ := s.Open()
	// Touch the first session so the second becomes the eviction candidate.
	if _, ok := s.Get(first); !ok {
		t.Fatalf("first session missing")
	}
	third, _ := s.Open()

	if _, ok := s.Get(second); ok {
		t.Fatalf("expected second session to be evicted")
	}
	for _, id := range []string{first, third} {
		if _, ok := s.Get(id); !ok {
			t.Fatalf("session %s should survive", id)
		}
	}
	if _, err := firstIntake.Ingest(nil); err != nil {
		t.Fatalf("surviving intake should stay open: %v", err)
	}
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	s := newTestStore(10, 50*time.Millisecond)
	id, in := s.Open()
	time.Sleep(120 * time.Millisecond)
	if _, ok := s.Get(id); ok {
		t.Fatalf("expected session to expire")
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, err := in.Ingest(nil)
		if errors.Is(err, intake.ErrClosed) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expired intake was never closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStorePurge(t *testing.T) {
	s := newTestStore(10, time.Minute)
	_, a := s.Open()
	_, b := s.Open()
	s.Purge()
	if s.Len() != 0 {
		t.Fatalf("len = %d after purge", s.Len())
	}
	for _, in := range []*intake.Intake{a, b} {
		if _, err := in.Ingest(nil); !errors.Is(err, intake.ErrClosed) {
			t.Fatalf("purged intake should be closed, got %v", err)
		}
	}
}

func activeSessions(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	if err := sessionsActive.Write(&m); err != nil {
		t.Fatalf("read gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestActiveGaugeFollowsExpiry(t *testing.T) {
	before := activeSessions(t)
	s := newTestStore(10, 50*time.Millisecond)
	s.Open()
	s.Open()
	if got := activeSessions(t); got != before+2 {
		t.Fatalf("active = %v after two opens, want %v", got, before+2)
	}

	// No Get or Open happens here; only the expiry janitor can move the gauge.
	deadline := time.Now().Add(2 * time.Second)
	for activeSessions(t) != before {
		if time.Now().After(deadline) {
			t.Fatalf("active = %v long after expiry, want %v", activeSessions(t), before)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestActiveGaugeFollowsCloseAndEviction(t *testing.T) {
	before := activeSessions(t)
	s := newTestStore(1, time.Minute)
	first, _ := s.Open()
	s.Open() // evicts first
	if got := activeSessions(t); got != before+1 {
		t.Fatalf("active = %v after eviction, want %v", got, before+1)
	}
	if s.Close(first) {
		t.Fatalf("evicted session should already be gone")
	}
	s.Purge()
	if got := activeSessions(t); got != before {
		t.Fatalf("active = %v after purge, want %v", got, before)
	}
}
