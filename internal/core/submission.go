package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubmissionKind names the form a submission came from.
type SubmissionKind string

const (
	KindIncome  SubmissionKind = "income"
	KindExpense SubmissionKind = "expense"
	KindDonor   SubmissionKind = "donor"
	KindReport  SubmissionKind = "report"
	KindProfile SubmissionKind = "profile"
	KindUser    SubmissionKind = "user"
)

var ErrUnknownKind = errors.New("unknown submission kind")

var submissionKinds = []SubmissionKind{KindIncome, KindExpense, KindDonor, KindReport, KindProfile, KindUser}

func ParseSubmissionKind(s string) (SubmissionKind, error) {
	for _, k := range submissionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Submission is a form post. It is handed to a sink and never applied to the ledger.
type Submission struct {
	ID          uuid.UUID         `json:"id"`
	Kind        SubmissionKind    `json:"kind"`
	Fields      map[string]string `json:"fields"`
	SubmittedBy string            `json:"submitted_by"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// AmountCents parses the "amount" field when present. It returns 0 when the
// field is missing or malformed; submissions are not validated.
func (s Submission) AmountCents() int64 {
	cents, err := ParseDecimalToCents(s.Fields["amount"])
	if err != nil {
		return 0
	}
	return cents
}

// Receipt acknowledges a delivered submission.
type Receipt struct {
	ID   uuid.UUID
	Kind SubmissionKind
}

// Ref is a short reference suitable for notifications.
func (r Receipt) Ref() string {
	s := r.ID.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
