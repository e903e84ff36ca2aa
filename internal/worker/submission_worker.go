// Package worker processes submissions taken off the AMQP queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"parishfinance/internal/amqp"
	"parishfinance/internal/core"
	"parishfinance/internal/metrics"
	"parishfinance/internal/ports"
)

// SubmissionWorker hands queued submissions to a downstream sink. The
// console keeps no ledger writes, so the sink is the diagnostic log.
type SubmissionWorker struct {
	sink    ports.SubmissionSink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewSubmissionWorker(sink ports.SubmissionSink, m *metrics.Metrics, logger *slog.Logger) *SubmissionWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionWorker{sink: sink, metrics: m, logger: logger}
}

// Handle processes one message. Unknown kinds are dropped with a warning
// and acknowledged; a sink error is returned so the message is requeued.
func (w *SubmissionWorker) Handle(ctx context.Context, msg *amqp.SubmissionMessage) error {
	sub := msg.Submission

	if _, err := core.ParseSubmissionKind(string(sub.Kind)); err != nil {
		w.logger.WarnContext(ctx, "Dropping submission with unknown kind",
			"submission_id", sub.ID.String(),
			"kind", string(sub.Kind))
		w.metrics.Submission("unknown", errors.New("unknown kind"))
		return nil
	}

	if err := w.sink.Deliver(ctx, sub); err != nil {
		w.metrics.Submission(string(sub.Kind), err)
		return fmt.Errorf("deliver submission %s: %w", sub.ID, err)
	}

	w.metrics.Submission(string(sub.Kind), nil)
	w.logger.InfoContext(ctx, "Processed submission",
		"submission_id", sub.ID.String(),
		"kind", string(sub.Kind),
		"submitted_by", sub.SubmittedBy,
		"queued_for", msg.PublishedAt.Sub(sub.SubmittedAt).String())
	return nil
}
