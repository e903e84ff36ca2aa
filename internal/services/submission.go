package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"parishfinance/internal/core"
	applog "parishfinance/internal/log"
	"parishfinance/internal/ports"
)

const (
	maxFieldLength = 2000
	maxFields      = 40
)

// SubmissionService turns form posts into submissions and hands them to a
// sink. Nothing is written to the ledger.
type SubmissionService struct {
	sink   ports.SubmissionSink
	now    func() time.Time
	logger *applog.StructuredLogger
}

func NewSubmissionService(sink ports.SubmissionSink, logger *applog.Logger) *SubmissionService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig(slog.LevelInfo))
	}
	return &SubmissionService{
		sink:   sink,
		now:    time.Now,
		logger: applog.NewStructuredLogger(logger.WithComponent(applog.ComponentSubmission)),
	}
}

// Submit delivers one form post. Only the kind is validated; field values
// are sanitised, not checked.
func (s *SubmissionService) Submit(ctx context.Context, kind core.SubmissionKind, fields map[string]string, by string) (core.Receipt, error) {
	if _, err := core.ParseSubmissionKind(string(kind)); err != nil {
		return core.Receipt{}, err
	}

	sub := core.Submission{
		ID:          uuid.New(),
		Kind:        kind,
		Fields:      SanitizeFields(fields),
		SubmittedBy: by,
		SubmittedAt: s.now().UTC(),
	}

	if err := s.sink.Deliver(ctx, sub); err != nil {
		s.logger.LogError(ctx, "Submission delivery failed", err, applog.ComponentSubmission, applog.OpDeliver,
			applog.NewFields().WithSubmission(sub.ID.String(), string(kind), len(sub.Fields), 0))
		return core.Receipt{}, fmt.Errorf("deliver %s submission: %w", kind, err)
	}

	s.logger.LogSubmissionAccepted(ctx, sub.ID.String(), string(kind), by, len(sub.Fields), sub.AmountCents())
	return core.Receipt{ID: sub.ID, Kind: kind}, nil
}

// SanitizeFields trims values, strips control characters, caps lengths and
// drops empty keys. At most maxFields entries are kept, the first in key order.
func SanitizeFields(in map[string]string) map[string]string {
	out := make(map[string]string, min(len(in), maxFields))
	for _, raw := range slices.Sorted(maps.Keys(in)) {
		if len(out) >= maxFields {
			break
		}
		k := strings.TrimSpace(raw)
		if k == "" {
			continue
		}
		out[k] = sanitizeValue(in[raw])
	}
	return out
}

func sanitizeValue(v string) string {
	v = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(v))
	if len(v) > maxFieldLength {
		v = strings.ToValidUTF8(v[:maxFieldLength], "")
	}
	return v
}

// LogSink writes submissions to the diagnostic log. It is the default sink.
type LogSink struct {
	logger *applog.Logger
}

func NewLogSink(logger *applog.Logger) *LogSink {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig(slog.LevelInfo))
	}
	return &LogSink{logger: logger.WithComponent(applog.ComponentSubmission)}
}

func (s *LogSink) Deliver(ctx context.Context, sub core.Submission) error {
	if sub.ID == uuid.Nil {
		return errors.New("submission has no id")
	}
	keys := slices.Sorted(maps.Keys(sub.Fields))
	s.logger.InfoContext(ctx, "Submission received",
		applog.FieldSubmissionID, sub.ID.String(),
		applog.FieldKind, string(sub.Kind),
		applog.FieldUser, sub.SubmittedBy,
		"fields", strings.Join(keys, ","),
	)
	return nil
}
