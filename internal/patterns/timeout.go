package patterns

import (
	"context"
	"time"
)

// DefaultTimeout is the default timeout for restaurant API requests
const DefaultTimeout = 3 * time.Second

// SlowServiceTimeout is used for analytics, which aggregates on the server
const SlowServiceTimeout = 10 * time.Second

// WithTimeout bounds ctx by duration unless ctx already has an earlier deadline
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= duration {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, duration)
}
