package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"parishfinance/internal/core"
)

// MessageVersion is bumped when the envelope changes incompatibly.
const MessageVersion = 1

// SubmissionMessage is the envelope published for each form submission.
type SubmissionMessage struct {
	Version     int             `json:"version"`
	Submission  core.Submission `json:"submission"`
	PublishedAt time.Time       `json:"published_at"`
}

func NewSubmissionMessage(s core.Submission) *SubmissionMessage {
	return &SubmissionMessage{
		Version:     MessageVersion,
		Submission:  s,
		PublishedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SubmissionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SubmissionMessageFromJSON decodes and checks an envelope. Kinds are not
// checked here; consumers decide what to do with unknown kinds.
func SubmissionMessageFromJSON(data []byte) (*SubmissionMessage, error) {
	var msg SubmissionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Version != MessageVersion {
		return nil, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	if msg.Submission.ID == uuid.Nil {
		return nil, errors.New("message has no submission id")
	}
	return &msg, nil
}
