package http

import (
	"errors"
	"net/http"
	"net/url"

	"parishfinance/internal/core"
	"parishfinance/internal/session"
)

// submissionNouns name each form in notifications.
var submissionNouns = map[core.SubmissionKind]string{
	core.KindIncome:  "Income",
	core.KindExpense: "Expense",
	core.KindDonor:   "Donor",
	core.KindReport:  "Report request",
	core.KindProfile: "Profile update",
	core.KindUser:    "User",
}

const msgUnreadableForm = "The form could not be read."

// handleSubmit accepts a form post of the given kind and hands it to the
// submission service. The ledger is not changed; the page is told to reset
// the form and show a notification.
func (s *Server) handleSubmit(kind core.SubmissionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p := NewRequestBodyParser(r)
		if err := p.Parse(); err != nil {
			resp := BadRequestError(msgUnreadableForm)
			if errors.Is(err, ErrBodyTooLarge) {
				resp = ErrorResponse(http.StatusRequestEntityTooLarge, msgUnreadableForm)
			}
			resp.TriggerErrorNotification(msgUnreadableForm).Write(w)
			return
		}
		if kind == core.KindReport {
			if msg := validateReportRequest(p); msg != "" {
				UnprocessableEntityError(msg).TriggerErrorNotification(msg).Write(w)
				return
			}
		}

		by := session.FromContext(ctx).State.Session.Identity.Email
		receipt, err := s.submissions.Submit(ctx, kind, p.Fields(), by)
		s.metrics.Submission(string(kind), err)
		if err != nil {
			NewHTMXResponse().
				Status(http.StatusBadGateway).
				TriggerErrorNotification(submissionNouns[kind] + " could not be submitted. Please try again.").
				Write(w)
			return
		}

		NewHTMXResponse().
			Status(http.StatusAccepted).
			Header("X-Submission-ID", receipt.ID.String()).
			TriggerFormReset().
			TriggerSuccessNotification(submissionNouns[kind] + " submitted (ref " + receipt.Ref() + ").").
			Write(w)
	}
}

// validateReportRequest checks the window of a report request and returns
// a message for the user when it is unusable.
func validateReportRequest(p *RequestBodyParser) string {
	dr, err := ParseDateRange(url.Values{"start": {p.Get("start")}, "end": {p.Get("end")}})
	switch {
	case err != nil:
		return "Dates must use the YYYY-MM-DD format."
	case !dr.From.IsZero() && !dr.To.IsZero() && dr.From.After(dr.To.Time):
		return "The start date must not be after the end date."
	}
	return ""
}
