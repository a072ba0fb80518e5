package kit

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Logging returns a Middleware that logs every call to the named endpoint
// with its duration.
func Logging(logger *slog.Logger, name string) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			start := time.Now()
			res, err := next(ctx, request)
			dur := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "tool call failed",
					"tool", name,
					"duration_ms", dur.Milliseconds(),
					"error", err)
			} else {
				logger.DebugContext(ctx, "tool call ok",
					"tool", name,
					"duration_ms", dur.Milliseconds())
			}
			return res, err
		}
	}
}

// Recovery returns a Middleware that catches panics in downstream endpoints
// and converts them into errors instead of crashing the process.
func Recovery(logger *slog.Logger) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, request any) (res any, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "endpoint panic recovered",
						"panic", r,
						"stack", string(debug.Stack()))
					err = fmt.Errorf("kit: endpoint panicked: %v", r)
				}
			}()
			return next(ctx, request)
		}
	}
}
