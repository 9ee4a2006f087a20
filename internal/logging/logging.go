// Package logging wraps logrus with service, trace and user context.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	TraceIDKey contextKey = "trace_id"
	UserIDKey  contextKey = "user_id"
	RoleKey    contextKey = "role"
	RouteKey   contextKey = "route"
)

// Logger is a logrus logger bound to a service name.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a logger. level is a logrus level name (defaults to info) and
// format is "json" or "text".
func New(service, level, format string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(strings.TrimSpace(format), "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	return &Logger{Logger: l, service: service}
}

// NewDefault returns an info-level JSON logger.
func NewDefault(service string) *Logger {
	return New(service, "info", "json")
}

// SetOutput redirects log output; tests use it to capture entries.
func (l *Logger) SetOutput(w io.Writer) {
	l.Logger.SetOutput(w)
}

// Service returns the bound service name.
func (l *Logger) Service() string {
	return l.service
}

// WithContext returns an entry carrying the service name plus any trace ID,
// user ID and route template found in ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{"service": l.service}
	if ctx != nil {
		if traceID := GetTraceID(ctx); traceID != "" {
			fields["trace_id"] = traceID
		}
		if userID := GetUserID(ctx); userID != "" {
			fields["user_id"] = userID
		}
		if route := GetRoute(ctx); route != "" {
			fields["route"] = route
		}
	}
	return l.Logger.WithFields(fields)
}

// Request describes a completed HTTP request.
type Request struct {
	Method   string
	Path     string
	Status   int
	Bytes    int64
	Duration time.Duration
}

// LogRequest records a completed HTTP request at a level chosen by status.
func (l *Logger) LogRequest(ctx context.Context, req Request) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      req.Method,
		"path":        req.Path,
		"status":      req.Status,
		"bytes":       req.Bytes,
		"duration_ms": req.Duration.Milliseconds(),
	})

	switch status := req.Status; {
	case status >= 500:
		entry.Error("HTTP request")
	case status >= 400:
		entry.Warn("HTTP request")
	default:
		entry.Info("HTTP request")
	}
}

// LogSecurityEvent records rate limiting, authentication failures and similar.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, details map[string]interface{}) {
	l.WithContext(ctx).WithFields(logrus.Fields(details)).WithField("security_event", event).Warn("Security event")
}

// NewTraceID returns a random trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// WithRoute stores the matched route template, e.g. "/send/sol".
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, RouteKey, route)
}

func GetRoute(ctx context.Context) string {
	if v, ok := ctx.Value(RouteKey).(string); ok {
		return v
	}
	return ""
}

func GetRole(ctx context.Context) string {
	if v, ok := ctx.Value(RoleKey).(string); ok {
		return v
	}
	return ""
}
