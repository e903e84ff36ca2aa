package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// WithLogger returns ctx carrying logger for FromContext.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return wrap(slog.Default(), "unknown")
}

// ComponentMiddleware creates middleware that adds component context to the logger
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).WithComponent(component)
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
		})
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogLogin records a login attempt. Passwords never reach this function.
func (sl *StructuredLogger) LogLogin(ctx context.Context, email string, err error) {
	fields := NewFields().
		WithUser(email).
		WithOperation(OpLogin).
		WithComponent(ComponentSession)

	if err != nil {
		fields[FieldSuccess] = false
		sl.logger.WarnContext(ctx, "Login rejected", fields.WithError(err).ToSlice()...)
		return
	}
	fields[FieldSuccess] = true
	sl.logger.InfoContext(ctx, "Login succeeded", fields.ToSlice()...)
}

// LogSubmissionAccepted logs a form submission handed to the sink.
func (sl *StructuredLogger) LogSubmissionAccepted(ctx context.Context, id, kind, by string, fieldCount int, amountCents int64) {
	fields := NewFields().
		WithSubmission(id, kind, fieldCount, amountCents).
		WithUser(by).
		WithOperation(OpSubmit).
		WithComponent(ComponentSubmission)

	sl.logger.InfoContext(ctx, "Submission accepted", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}