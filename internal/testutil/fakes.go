package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/sophialabs/xraydash/internal/domain/demo"
	"github.com/sophialabs/xraydash/internal/domain/trace"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
)

var _ ports.Logger = (*NoopLogger)(nil)

// NoopLogger discards all log output.
type NoopLogger struct{}

func (l *NoopLogger) Info(string, ...any)  {}
func (l *NoopLogger) Warn(string, ...any)  {}
func (l *NoopLogger) Error(string, ...any) {}
func (l *NoopLogger) Debug(string, ...any) {}

var _ ports.Clock = (*FixedClock)(nil)

// FixedClock returns a fixed time until advanced.
type FixedClock struct {
	mu sync.Mutex
	T  time.Time
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.T
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.T = c.T.Add(d)
}

var _ ports.RateLimiter = (*StubRateLimiter)(nil)

// StubRateLimiter returns a configurable Allow result.
type StubRateLimiter struct {
	AllowAll bool
}

func (r *StubRateLimiter) Allow(context.Context, string, float64, int) bool {
	return r.AllowAll
}

var _ ports.Gateway = (*StubGateway)(nil)

// StubGateway serves canned executions and demo responses.
type StubGateway struct {
	mu         sync.Mutex
	Executions []*trace.Execution
	ListErr    error
	Demo       *demo.Response
	DemoErr    error
	HealthErr  error

	ListCalls int
	Requests  []demo.Request
}

// SetExecutions replaces the listing and clears any list error.
func (g *StubGateway) SetExecutions(execs ...*trace.Execution) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Executions = execs
	g.ListErr = nil
}

// SetListErr makes subsequent list calls fail.
func (g *StubGateway) SetListErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ListErr = err
}

func (g *StubGateway) ListExecutions(context.Context) ([]*trace.Execution, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ListCalls++
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	out := make([]*trace.Execution, len(g.Executions))
	copy(out, g.Executions)
	return out, nil
}

func (g *StubGateway) GetExecution(_ context.Context, id string) (*trace.Execution, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	for _, e := range g.Executions {
		if e.ExecutionID == id {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (g *StubGateway) RunDemo(_ context.Context, req demo.Request) (*demo.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.DemoErr != nil {
		return nil, g.DemoErr
	}
	if g.Demo == nil {
		return &demo.Response{Success: false}, nil
	}
	return g.Demo, nil
}

func (g *StubGateway) Health(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.HealthErr
}
