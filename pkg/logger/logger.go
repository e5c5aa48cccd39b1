package logger

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

// RequestIDKey carries the request id through a request context
const RequestIDKey contextKey = "request_id"

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
}

// New creates a new logger instance
func New(level string) *Logger {
	return NewWithOutput(level, os.Stdout)
}

// NewWithOutput creates a logger writing to out
func NewWithOutput(level string, out io.Writer) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	log.SetOutput(out)

	return &Logger{Logger: log}
}

// WithFields creates a new logger entry with the specified fields
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

// WithField creates a new logger entry with a single field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.Logger.WithField(key, value)
}

// WithError creates a new logger entry with an error field
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithError(err)
}

// WithComponent creates a new logger entry with component name field
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// ContextWithRequestID stores a request id on ctx
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFromContext returns the request id stored on ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithContext creates a logger with context-aware fields
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithFields(logrus.Fields{})

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		entry = entry.WithFields(logrus.Fields{
			"trace_id": spanCtx.TraceID().String(),
			"span_id":  spanCtx.SpanID().String(),
		})
	}

	return entry
}

// LedgerTransaction logs the outcome of a ledger operation.
// details must never carry key material.
func (l *Logger) LedgerTransaction(ctx context.Context, operation string, success bool, txID string, durationMs int64, details map[string]interface{}) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"ledger":         true,
		"operation":      operation,
		"success":        success,
		"transaction_id": txID,
		"duration_ms":    durationMs,
	})
	if len(details) > 0 {
		entry = entry.WithField("details", details)
	}

	if success {
		entry.Info("Ledger operation completed")
	} else {
		entry.Error("Ledger operation failed")
	}
}

// MirrorLookup logs the outcome of a mirror node read
func (l *Logger) MirrorLookup(ctx context.Context, url, outcome string, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"mirror":  true,
		"url":     url,
		"outcome": outcome,
	})

	if err != nil {
		entry.WithError(err).Warn("Mirror lookup unavailable")
		return
	}
	entry.Debug("Mirror lookup completed")
}

// HTTPRequest logs HTTP request events
func (l *Logger) HTTPRequest(ctx context.Context, method, path, userAgent, clientIP string, statusCode int, duration int64, details map[string]interface{}) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"http_request": true,
		"method":       method,
		"path":         path,
		"user_agent":   userAgent,
		"client_ip":    clientIP,
		"status_code":  statusCode,
		"duration_ms":  duration,
	})
	if len(details) > 0 {
		entry = entry.WithField("details", details)
	}

	if statusCode >= 400 {
		entry.Warn("HTTP request completed with error")
	} else {
		entry.Info("HTTP request completed")
	}
}
