package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sophialabs/xraydash/internal/domain/demo"
	"github.com/sophialabs/xraydash/internal/infrastructure/usecases"
)

func (s *Server) handleBrowser(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	page := s.browseUC.Page(r.Context(), sess.Browser, r.URL.Query().Get("q"), sess.TakeFlash())
	s.render(w, "browser", page)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	sess := s.session(w, r)
	if err := s.browseUC.Select(sess.Browser, r.PostFormValue("execution_id")); err != nil {
		sess.SetFlash("That execution is no longer listed. Refresh to see the latest executions.")
	}
	redirect(w, r, "/")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	// A failed refresh keeps the previous list; the page shows the error.
	_ = s.browseUC.Refresh(r.Context(), sess.Browser)
	redirect(w, r, "/")
}

func (s *Server) handleToggleStep(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	sess := s.session(w, r)
	q := r.PostFormValue("q")

	i, err := stepIndex(r)
	if err == nil {
		err = s.browseUC.ToggleStep(sess.Browser, i)
	}
	if err != nil {
		sess.SetFlash("That step is not part of the selected execution.")
		redirect(w, r, browserURL(q, ""))
		return
	}
	redirect(w, r, browserURL(q, "step-"+strconv.Itoa(i)))
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	sess := s.session(w, r)
	q := r.PostFormValue("q")
	if err := s.browseUC.SetCriterion(sess.Browser, r.PostFormValue("criterion")); err != nil {
		sess.SetFlash("Unknown filter for the selected execution.")
	}
	redirect(w, r, browserURL(q, ""))
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	s.render(w, "demo", s.demoUC.Page(sess.Launcher, sess.TakeFlash()))
}

func (s *Server) handleDemoSubmit(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	sess := s.session(w, r)
	form := demo.Form{
		Title:    r.PostFormValue("title"),
		Price:    r.PostFormValue("price"),
		Rating:   r.PostFormValue("rating"),
		Reviews:  r.PostFormValue("reviews"),
		Category: r.PostFormValue("category"),
	}

	result, err := s.demoUC.Submit(r.Context(), sess.ID, sess.Launcher, form)
	var formErr *demo.FormError
	switch {
	case err == nil:
		if result.Err == nil {
			// The run recorded a new execution.
			sess.Browser.Invalidate()
		}
	case errors.As(err, &formErr):
		// The launcher keeps the field errors.
	case errors.Is(err, usecases.ErrRateLimited), errors.Is(err, demo.ErrSubmissionInFlight):
		sess.SetFlash(err.Error())
	default:
		s.logger.Error("demo submit failed", "error", err)
		sess.SetFlash("Error: " + err.Error())
	}
	redirect(w, r, "/demo")
}

func (s *Server) handleDemoPreset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		i = -1
	}
	if err := s.demoUC.ApplyPreset(sess.Launcher, i); err != nil {
		sess.SetFlash("Unknown sample product.")
	}
	redirect(w, r, "/demo")
}
