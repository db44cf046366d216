package ports

import (
	"context"
	"io"
	"time"

	"github.com/sophialabs/xraydash/internal/domain/demo"
	"github.com/sophialabs/xraydash/internal/domain/trace"
)

// Clock provides the current time (for testing).
type Clock interface {
	Now() time.Time
}

// Logger provides structured logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// RateLimiter checks whether a request is allowed under rate limits.
type RateLimiter interface {
	// Allow checks if a request identified by key is within the rate limit.
	// rate is tokens per second, burst is the max burst size.
	Allow(ctx context.Context, key string, rate float64, burst int) bool
}

// Gateway is the dashboard's only path to execution data.
type Gateway interface {
	ListExecutions(ctx context.Context) ([]*trace.Execution, error)
	GetExecution(ctx context.Context, id string) (*trace.Execution, error)
	RunDemo(ctx context.Context, req demo.Request) (*demo.Response, error)
	// Health reports whether the backend answers.
	Health(ctx context.Context) error
}

// Renderer renders a named page template.
type Renderer interface {
	Render(w io.Writer, page string, data map[string]any) error
}
