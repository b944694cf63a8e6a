// Package submission provides implementations of the intake submission
// boundary. The real backend lives elsewhere; Simulated stands in for it.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dharsanguruparan/FabIntake/internal/intake"
)

// ErrSimulatedFailure is returned by Simulated when configured to fail.
var ErrSimulatedFailure = errors.New("simulated backend failure")

// Simulated accepts every batch after a fixed delay. It still encodes the
// multipart body so broken file handles surface as failures.
type Simulated struct {
	delay     time.Duration
	failEvery int64
	calls     atomic.Int64
	logger    *slog.Logger
}

// SimulatedOption customises a Simulated boundary.
type SimulatedOption func(*Simulated)

// FailEvery makes every n-th submission fail. n <= 0 disables failures.
func FailEvery(n int) SimulatedOption {
	return func(s *Simulated) { s.failEvery = int64(n) }
}

// NewSimulated returns a boundary that waits delay before answering.
func NewSimulated(delay time.Duration, logger *slog.Logger, opts ...SimulatedOption) *Simulated {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulated{delay: delay, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit implements intake.Submitter.
func (s *Simulated) Submit(ctx context.Context, p intake.Payload) error {
	n := s.calls.Add(1)
	var body byteCounter
	contentType, err := p.WriteMultipart(&body)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	s.logger.Info("simulated submission received",
		slog.Any("files", p.FileNames()),
		slog.String("device", string(p.Device)),
		slog.String("priority", string(p.Priority)),
		slog.Int64("body_bytes", int64(body)),
		slog.String("content_type", contentType),
	)

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if s.failEvery > 0 && n%s.failEvery == 0 {
		return ErrSimulatedFailure
	}
	return nil
}

type byteCounter int64

func (c *byteCounter) Write(p []byte) (int, error) {
	*c += byteCounter(len(p))
	return len(p), nil
}

// Func adapts a plain function to intake.Submitter.
type Func func(ctx context.Context, p intake.Payload) error

// Submit calls f.
func (f Func) Submit(ctx context.Context, p intake.Payload) error {
	return f(ctx, p)
}
