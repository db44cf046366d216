package wiring

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sophialabs/xraydash/internal/domain/gatewaylog"
	inboundhttp "github.com/sophialabs/xraydash/internal/infrastructure/inbound/http"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/backend"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/clock"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/ratelimit"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/session"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/template"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
	"github.com/sophialabs/xraydash/internal/infrastructure/services"
	"github.com/sophialabs/xraydash/internal/infrastructure/usecases"
	dashboard "github.com/sophialabs/xraydash/ui/dashboard"
)

// Params holds the subset of configuration needed to construct infrastructure components.
type Params struct {
	APIBaseURL string
	StorageDir string // non-empty = read executions from the SDK file store
	// TemplatesDir overrides embedded templates file by file; its static/
	// subdirectory overrides stylesheets.
	TemplatesDir string

	Locale   string
	Location *time.Location

	GatewayTimeout time.Duration
	ListLimit      int
	GatewayLogSize int

	SessionTTL time.Duration
	DemoRate   float64
	DemoBurst  int

	Logger ports.Logger
}

// Container owns the construction and lifecycle of all infrastructure components.
type Container struct {
	logger      ports.Logger
	server      *inboundhttp.Server
	gateway     ports.Gateway
	renderer    *template.Renderer
	sessions    *session.Store
	rateLimiter *ratelimit.SessionLimiter
	calls       *gatewaylog.Log
	closeOnce   sync.Once
}

// New constructs all infrastructure components. Fallible operations (gateway,
// templates) run before goroutine-starting operations (session store, rate
// limiter) to avoid goroutine leaks on early failure.
func New(p Params) (*Container, error) {
	clk := clock.New(p.Location)
	calls := gatewaylog.New(p.GatewayLogSize)

	gateway, err := newGateway(p, clk, calls)
	if err != nil {
		return nil, err
	}

	if p.TemplatesDir != "" {
		if _, err := os.Stat(p.TemplatesDir); err != nil {
			return nil, fmt.Errorf("failed to access templates directory: %w", err)
		}
	}
	renderer := template.NewRenderer(template.NewOverlayFS(dashboard.Templates, p.TemplatesDir), p.Logger)
	if err := renderer.Preload(); err != nil {
		return nil, err
	}
	static := dashboard.Static
	if p.TemplatesDir != "" {
		static = template.NewOverlayFS(dashboard.Static, filepath.Join(p.TemplatesDir, "static"))
	}

	// Start background goroutines only after all fallible ops succeed.
	sessions := session.NewStore(gateway, clk, p.SessionTTL)
	rateLimiter := ratelimit.NewSessionLimiter(p.SessionTTL, clk)

	formatter := services.NewFormatter(p.Locale, p.Location)
	presenter := services.NewPresenter(formatter)

	server := inboundhttp.NewServer(inboundhttp.Deps{
		Sessions: sessions,
		BrowseUC: usecases.NewBrowseUseCase(presenter, p.Logger),
		DemoUC: usecases.NewRunDemoUseCase(presenter, rateLimiter,
			usecases.DemoLimits{Rate: p.DemoRate, Burst: p.DemoBurst}, p.Logger),
		InspectUC: usecases.NewInspectUseCase(gateway, formatter, calls, p.Logger),
		Gateway:   gateway,
		Renderer:  renderer,
		Static:    static,
		Logger:    p.Logger,
	})

	return &Container{
		logger:      p.Logger,
		server:      server,
		gateway:     gateway,
		renderer:    renderer,
		sessions:    sessions,
		rateLimiter: rateLimiter,
		calls:       calls,
	}, nil
}

func newGateway(p Params, clk ports.Clock, calls *gatewaylog.Log) (ports.Gateway, error) {
	if p.StorageDir != "" {
		store, err := filesystem.NewExecutionStore(p.StorageDir, p.ListLimit, p.Logger, clk, calls)
		if err != nil {
			return nil, fmt.Errorf("failed to open execution store: %w", err)
		}
		return store, nil
	}
	if p.APIBaseURL == "" {
		return nil, fmt.Errorf("either an API base URL or a storage directory is required")
	}
	return backend.New(backend.Config{
		BaseURL:   p.APIBaseURL,
		Timeout:   p.GatewayTimeout,
		ListLimit: p.ListLimit,
	}, p.Logger, clk, calls), nil
}

// Close releases resources held by the container. It is idempotent.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		c.sessions.Stop()
		c.rateLimiter.Stop()
	})
}

// Logger returns the logger passed at construction time.
func (c *Container) Logger() ports.Logger {
	return c.logger
}

// Server returns the dashboard HTTP server.
func (c *Container) Server() *inboundhttp.Server {
	return c.server
}

// Gateway returns the execution source: the backend client or the file store.
func (c *Container) Gateway() ports.Gateway {
	return c.gateway
}

// Renderer returns the page renderer.
func (c *Container) Renderer() *template.Renderer {
	return c.renderer
}

// Sessions returns the visitor session store.
func (c *Container) Sessions() *session.Store {
	return c.sessions
}

// RateLimiter returns the per-session demo throttle.
func (c *Container) RateLimiter() *ratelimit.SessionLimiter {
	return c.rateLimiter
}

// Calls returns the gateway call log.
func (c *Container) Calls() *gatewaylog.Log {
	return c.calls
}
