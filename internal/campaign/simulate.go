package campaign

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jobreach/coldreach/internal/contact"
)

// SimulatedPrefix marks every line produced by a simulation run so the
// output can never be mistaken for real delivery.
const SimulatedPrefix = "[SIMULATED] "

// Simulator fabricates per-contact outcomes when no backend is reachable.
// It performs no network I/O.
type Simulator struct {
	rng         *rand.Rand
	delay       time.Duration
	successRate float64
	logger      *slog.Logger
}

// NewSimulator creates a simulator with a seeded pseudo-random source so
// test suites can assert exact outcome sequences.
func NewSimulator(seed int64, delay time.Duration, successRate float64, logger *slog.Logger) *Simulator {
	if successRate <= 0 || successRate > 1 {
		successRate = 0.95
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Simulator{
		rng:         rand.New(rand.NewSource(seed)),
		delay:       delay,
		successRate: successRate,
		logger:      logger.With("component", "simulator"),
	}
}

// Run walks the contact set in order, waiting the fixed interval and
// drawing an outcome for each contact. It checks ctx at every step, so an
// in-flight simulation can be cancelled between contacts.
func (s *Simulator) Run(ctx context.Context, contacts contact.Set, progress func(Progress)) ([]SendResult, error) {
	s.logger.Warn("no backend reachable; switching to simulation, no real mail will be sent",
		"contacts", len(contacts))

	results := make([]SendResult, 0, len(contacts))
	for i, c := range contacts {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}

		res := SendResult{Contact: c, Delivered: s.rng.Float64() < s.successRate}

		var line string
		if res.Delivered {
			line = fmt.Sprintf("%ssent to %s (%s)", SimulatedPrefix, c.Name, c.Email)
		} else {
			res.ErrorDetail = SimulatedPrefix + "delivery failed"
			line = fmt.Sprintf("%sfailed to send to %s (%s)", SimulatedPrefix, c.Name, c.Email)
		}
		results = append(results, res)

		if progress != nil {
			progress(Progress{Index: i + 1, Total: len(contacts), Result: res, Line: line})
		}
	}

	return results, nil
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
