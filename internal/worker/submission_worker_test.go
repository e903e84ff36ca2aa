package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parishfinance/internal/amqp"
	"parishfinance/internal/core"
	"parishfinance/internal/metrics"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Deliver(ctx context.Context, s core.Submission) error {
	return m.Called(ctx, s).Error(0)
}

func message(kind core.SubmissionKind) *amqp.SubmissionMessage {
	at := time.Date(2025, 6, 25, 10, 0, 0, 0, time.UTC)
	return &amqp.SubmissionMessage{
		Version: amqp.MessageVersion,
		Submission: core.Submission{
			ID:          uuid.New(),
			Kind:        kind,
			Fields:      map[string]string{"name": "Ann"},
			SubmittedBy: "a@b.com",
			SubmittedAt: at,
		},
		PublishedAt: at.Add(time.Second),
	}
}

func TestSubmissionWorker_DeliversKnownKinds(t *testing.T) {
	sink := new(mockSink)
	w := NewSubmissionWorker(sink, metrics.New(), nil)
	msg := message(core.KindDonor)

	sink.On("Deliver", mock.Anything, msg.Submission).Return(nil).Once()

	require.NoError(t, w.Handle(context.Background(), msg))
	sink.AssertExpectations(t)
}

func TestSubmissionWorker_DropsUnknownKinds(t *testing.T) {
	sink := new(mockSink)
	w := NewSubmissionWorker(sink, nil, nil)

	assert.NoError(t, w.Handle(context.Background(), message("pledge")))
	sink.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestSubmissionWorker_SinkErrorRequeues(t *testing.T) {
	sink := new(mockSink)
	w := NewSubmissionWorker(sink, metrics.New(), nil)
	sink.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	err := w.Handle(context.Background(), message(core.KindExpense))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
