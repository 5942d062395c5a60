// Package attr provides slog attribute helpers shared by every module so log
// keys stay consistent across services, handlers, and workers.
package attr

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type ctxKey string

// CorrelationIDKey is the context key carrying the correlation id of the
// inbound message or job that triggered the current operation.
const CorrelationIDKey ctxKey = "correlation_id"

// WithCorrelationID stores a correlation id on the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// CorrelationIDFrom returns the correlation id stored on ctx, if any.
func CorrelationIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// ExtractCorrelationID returns the correlation id as a log attribute.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationIDFrom(ctx))
}

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

func Int(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

func Int64(key string, value int64) slog.Attr {
	return slog.Int64(key, value)
}

func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

func Time(key string, value time.Time) slog.Attr {
	return slog.Time(key, value)
}

func Duration(key string, value time.Duration) slog.Attr {
	return slog.Duration(key, value)
}

func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Error logs err under the "error" key. A nil error logs as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// CohortID logs a cohort id under the conventional key.
func CohortID(id int64) slog.Attr {
	return slog.Int64("cohort_id", id)
}

// UserID logs a user id under the conventional key.
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// Scope logs any value implementing fmt.Stringer (league scopes) under "scope".
func Scope(s fmt.Stringer) slog.Attr {
	return slog.String("scope", s.String())
}
