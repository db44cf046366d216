package http

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/session"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
	"github.com/sophialabs/xraydash/internal/infrastructure/usecases"
)

const (
	sessionCookie = "xray_session"
	maxFormSize   = 64 << 10
)

// Server serves the dashboard pages, their form actions and the JSON API.
type Server struct {
	router    *chi.Mux
	sessions  *session.Store
	browseUC  *usecases.BrowseUseCase
	demoUC    *usecases.RunDemoUseCase
	inspectUC *usecases.InspectUseCase
	gateway   ports.Gateway
	renderer  ports.Renderer
	static    fs.FS
	logger    ports.Logger
}

// Deps groups the server's collaborators.
type Deps struct {
	Sessions  *session.Store
	BrowseUC  *usecases.BrowseUseCase
	DemoUC    *usecases.RunDemoUseCase
	InspectUC *usecases.InspectUseCase
	Gateway   ports.Gateway
	Renderer  ports.Renderer
	Static    fs.FS
	Logger    ports.Logger
}

// NewServer creates a server and builds its router.
func NewServer(d Deps) *Server {
	s := &Server{
		sessions:  d.Sessions,
		browseUC:  d.BrowseUC,
		demoUC:    d.DemoUC,
		inspectUC: d.InspectUC,
		gateway:   d.Gateway,
		renderer:  d.Renderer,
		static:    d.Static,
		logger:    d.Logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(s.static)))

	// Execution browser.
	r.Get("/", s.handleBrowser)
	r.Post("/select", s.handleSelect)
	r.Post("/refresh", s.handleRefresh)
	r.Post("/steps/{index}/toggle", s.handleToggleStep)
	r.Post("/filter", s.handleFilter)

	// Demo launcher.
	r.Get("/demo", s.handleDemo)
	r.Post("/demo", s.handleDemoSubmit)
	r.Post("/demo/presets/{index}", s.handleDemoPreset)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/executions", s.handleAPIListExecutions)
		r.Get("/executions/{executionID}", s.handleAPIGetExecution)
		r.Get("/executions/{executionID}/steps/{index}/filters", s.handleAPIFilterOptions)
		r.Get("/executions/{executionID}/steps/{index}/filters/{criterion}", s.handleAPIDrillDown)
		r.Get("/executions/{executionID}/steps/{index}/extract", s.handleAPIExtract)
		r.Get("/gateway/calls", s.handleAPIGatewayCalls)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.gateway.Health(r.Context()); err != nil {
		s.logger.Warn("backend not ready", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// session returns the visitor's session, issuing a cookie for new ones.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess, created := s.sessions.Get(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (s *Server) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, page, map[string]any{"page": data}); err != nil {
		s.logger.Error("page render failed", "page", page, "error", err)
		http.Error(w, "template render error", http.StatusInternalServerError)
	}
}

// redirect finishes a form action with a post-redirect-get.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func browserURL(q, fragment string) string {
	target := "/"
	if q != "" {
		target += "?" + url.Values{"q": {q}}.Encode()
	}
	if fragment != "" {
		target += "#" + fragment
	}
	return target
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to read form", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func stepIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		return 0, errors.New("step index must be a non-negative integer")
	}
	return i, nil
}
