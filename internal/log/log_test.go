package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestLogger_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf, ComponentShell)

	l.Info("resolved", FieldView, "dashboard")

	assert.Contains(t, buf.String(), "component=shell")
	assert.Contains(t, buf.String(), "view=dashboard")
	assert.Equal(t, ComponentShell, l.Component())
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	assert.NotNil(t, l)
	assert.Equal(t, "unknown", l.Component())
}

func TestComponentMiddleware_ScopesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := bufferLogger(&buf, ComponentHTTP)

	var got *Logger
	h := ComponentMiddleware(ComponentSession)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithLogger(req.Context(), base)))

	assert.NotNil(t, got)
	assert.Equal(t, ComponentSession, got.Component())
}

func TestStructuredLogger_LogLogin(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(bufferLogger(&buf, ComponentSession))

	sl.LogLogin(context.Background(), "a@b.com", nil)
	assert.Contains(t, buf.String(), "Login succeeded")
	assert.Contains(t, buf.String(), "user=a@b.com")

	buf.Reset()
	sl.LogLogin(context.Background(), "", errors.New("email and password are required"))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.NotContains(t, buf.String(), "user=")
}

func TestStructuredLogger_LogSubmissionAccepted(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(bufferLogger(&buf, ComponentSubmission))

	sl.LogSubmissionAccepted(context.Background(), "1234", "income", "a@b.com", 4, 1500)

	out := buf.String()
	assert.Contains(t, out, "kind=income")
	assert.Contains(t, out, "field_count=4")
	assert.Contains(t, out, "amount_cents=1500")
}

func TestLogFields_WithRoute(t *testing.T) {
	f := NewFields().WithRoute("reports", "")
	_, hasSub := f[FieldSub]
	assert.False(t, hasSub)

	f = NewFields().WithRoute("reports", "quarterly")
	assert.Equal(t, "quarterly", f[FieldSub])
}

func TestLogger_WithComponentReplaces(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf, ComponentApp).With(FieldRequestID, "r-1").WithComponent(ComponentHTTP)

	l.Warn("slow")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "component="))
	assert.Contains(t, out, "component=http")
	assert.Contains(t, out, "request_id=r-1")
}
