package campaign

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jobreach/coldreach/internal/contact"
	"github.com/jobreach/coldreach/internal/dispatch"
	"github.com/jobreach/coldreach/internal/metrics"
	"github.com/jobreach/coldreach/internal/transport"
)

// Orchestrator composes the campaign payload into a single submission and
// interprets the aggregate result. Exactly one submission or simulation
// run is in flight at a time; callers invoke Submit once per session.
type Orchestrator struct {
	client   *dispatch.Client
	sim      *Simulator
	warmUp   bool
	progress func(Progress)
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator. warmUp enables the read-only
// health probe before the real submission. progress may be nil.
func NewOrchestrator(client *dispatch.Client, sim *Simulator, warmUp bool, progress func(Progress), logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{
		client:   client,
		sim:      sim,
		warmUp:   warmUp,
		progress: progress,
		logger:   logger.With("component", "orchestrator"),
	}
}

// Submit issues the campaign submission, falling back to the simulation
// when the backend cannot be reached. The simulation path is never taken
// once a transport success has occurred.
func (o *Orchestrator) Submit(ctx context.Context, s State) (*Summary, error) {
	var missing []string
	if s.Credentials == nil {
		missing = append(missing, "credentials")
	}
	if len(s.Resume) == 0 {
		missing = append(missing, "resume")
	}
	if len(s.Contacts) == 0 {
		missing = append(missing, "contacts")
	}
	if len(missing) > 0 {
		return nil, &OrchestrationError{Missing: missing}
	}

	summary := &Summary{
		ID:        uuid.New().String(),
		Total:     len(s.Contacts),
		Sender:    s.SenderEmail,
		StartedAt: time.Now(),
	}

	if o.warmUp {
		if err := o.client.WarmUp(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("warm-up probe failed", "error", err)
			return o.simulate(ctx, s, summary)
		}
	}

	resp, err := o.client.SendEmails(ctx, &dispatch.SendRequest{
		SenderEmail: s.Credentials.Address,
		AppPassword: s.Credentials.AppPassword,
		Subject:     s.Template.Subject,
		Body:        s.Template.Body,
		ResumeName:  s.ResumeName,
		Resume:      s.Resume,
		ContactsCSV: contact.Marshal(s.Contacts),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var terr *transport.Error
		if errors.As(err, &terr) {
			o.logger.Warn("submission failed, falling back to simulation",
				"kind", terr.Kind, "hint", terr.Hint())
			return o.simulate(ctx, s, summary)
		}
		return nil, fmt.Errorf("submit campaign: %w", err)
	}

	return o.finishReal(s, summary, resp), nil
}

// finishReal aligns the per-contact outcome list by position with the
// submitted contact order.
func (o *Orchestrator) finishReal(s State, summary *Summary, resp *dispatch.SendResponse) *Summary {
	summary.Mode = ModeReal
	summary.Results = make([]SendResult, len(s.Contacts))

	for i, c := range s.Contacts {
		res := SendResult{Contact: c}
		switch {
		case i >= len(resp.Results):
			res.ErrorDetail = "no result returned for this contact"
		case resp.Results[i].Success:
			res.Delivered = true
		default:
			res.ErrorDetail = resp.Results[i].Error
			if res.ErrorDetail == "" {
				res.ErrorDetail = "delivery failed"
			}
		}
		summary.Results[i] = res

		var line string
		if res.Delivered {
			line = fmt.Sprintf("sent to %s (%s)", c.Name, c.Email)
		} else {
			line = fmt.Sprintf("failed to send to %s (%s): %s", c.Name, c.Email, res.ErrorDetail)
		}
		if o.progress != nil {
			o.progress(Progress{Index: i + 1, Total: len(s.Contacts), Result: res, Line: line})
		}
	}

	summary.Successful = resp.Successful
	summary.Failed = summary.Total - summary.Successful
	summary.FinishedAt = time.Now()

	o.logger.Info("campaign completed",
		"mode", summary.Mode, "total", summary.Total, "successful", summary.Successful)
	o.record(summary)
	return summary
}

func (o *Orchestrator) simulate(ctx context.Context, s State, summary *Summary) (*Summary, error) {
	results, err := o.sim.Run(ctx, s.Contacts, o.progress)
	if err != nil {
		return nil, err
	}

	summary.Mode = ModeSimulated
	summary.Results = results
	for _, r := range results {
		if r.Delivered {
			summary.Successful++
		}
	}
	summary.Failed = summary.Total - summary.Successful
	summary.FinishedAt = time.Now()

	o.logger.Info("simulation completed",
		"mode", summary.Mode, "total", summary.Total, "successful", summary.Successful)
	o.record(summary)
	return summary, nil
}

func (o *Orchestrator) record(summary *Summary) {
	m := metrics.Get()
	if m == nil {
		return
	}
	m.CampaignsTotal.WithLabelValues(string(summary.Mode)).Inc()
	m.ContactsSentTotal.Add(float64(summary.Successful))
	m.ContactsFailedTotal.Add(float64(summary.Failed))
}
