// Package logging carries the request id through a context and prefixes log
// lines with it. Output goes through the standard logger configured in main.
package logging

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
)

type ctxKey struct{}

var debug atomic.Bool

// SetDebug enables or disables Debugf output.
func SetDebug(enabled bool) { debug.Store(enabled) }

// DebugEnabled reports whether Debugf writes anything.
func DebugEnabled() bool { return debug.Load() }

// WithRequestID returns a context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored in ctx, or "" if there is none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Printf logs with the request id prefix.
func Printf(ctx context.Context, format string, args ...interface{}) {
	log.Output(2, prefix(ctx)+fmt.Sprintf(format, args...))
}

// Debugf logs like Printf when debug logging is enabled.
func Debugf(ctx context.Context, format string, args ...interface{}) {
	if !debug.Load() {
		return
	}
	log.Output(2, prefix(ctx)+fmt.Sprintf(format, args...))
}

func prefix(ctx context.Context) string {
	if id := RequestID(ctx); id != "" {
		return "[" + id + "] "
	}
	return ""
}
