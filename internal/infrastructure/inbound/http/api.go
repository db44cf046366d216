package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sophialabs/xraydash/internal/domain/viewer"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/backend"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/query"
	"github.com/sophialabs/xraydash/internal/infrastructure/services"
	"github.com/sophialabs/xraydash/internal/infrastructure/usecases"
)

const defaultCallsLimit = 20

func (s *Server) handleAPIListExecutions(w http.ResponseWriter, r *http.Request) {
	list, err := s.inspectUC.ListExecutions(r.Context())
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, services.Paginate(list, r.URL.Query()))
}

func (s *Server) handleAPIGetExecution(w http.ResponseWriter, r *http.Request) {
	exec, err := s.inspectUC.GetExecution(r.Context(), chi.URLParam(r, "executionID"))
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, exec)
}

func (s *Server) handleAPIFilterOptions(w http.ResponseWriter, r *http.Request) {
	i, err := stepIndex(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_step", err.Error())
		return
	}
	opts, err := s.inspectUC.FilterOptions(r.Context(), chi.URLParam(r, "executionID"), i)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, opts)
}

func (s *Server) handleAPIDrillDown(w http.ResponseWriter, r *http.Request) {
	i, err := stepIndex(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_step", err.Error())
		return
	}
	dd, err := s.inspectUC.DrillDown(r.Context(), chi.URLParam(r, "executionID"), i,
		chi.URLParam(r, "criterion"), r.URL.Query().Get("q"))
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, dd)
}

func (s *Server) handleAPIExtract(w http.ResponseWriter, r *http.Request) {
	i, err := stepIndex(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_step", err.Error())
		return
	}
	path := r.URL.Query().Get("path")
	result, err := s.inspectUC.Extract(r.Context(), chi.URLParam(r, "executionID"), i, path)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{"path": path, "result": result})
}

func (s *Server) handleAPIGatewayCalls(w http.ResponseWriter, r *http.Request) {
	n := defaultCallsLimit
	if v := r.URL.Query().Get("last"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeAPIError(w, http.StatusBadRequest, "invalid_limit", "last must be a positive integer")
			return
		}
		n = parsed
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, s.inspectUC.GatewayCalls(n))
}

// writeAPIError maps domain and gateway errors to HTTP statuses.
func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	var (
		gerr *backend.GatewayError
		qerr *query.Error
		perr *services.PathError
	)
	switch {
	case errors.Is(err, viewer.ErrUnknownExecution), errors.Is(err, viewer.ErrUnknownStep):
		writeAPIError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, viewer.ErrUnknownCriterion):
		writeAPIError(w, http.StatusNotFound, "unknown_criterion", err.Error())
	case errors.Is(err, usecases.ErrNotFilterStep):
		writeAPIError(w, http.StatusUnprocessableEntity, "not_filter_step", err.Error())
	case errors.As(err, &qerr):
		writeAPIError(w, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, services.ErrEmptyPath), errors.As(err, &perr):
		writeAPIError(w, http.StatusBadRequest, "invalid_path", err.Error())
	case errors.As(err, &gerr):
		s.logger.Warn("gateway call failed", "op", gerr.Op, "kind", gerr.Kind, "error", err)
		writeAPIError(w, http.StatusBadGateway, "gateway_error", err.Error())
	default:
		s.logger.Error("api request failed", "error", err)
		writeAPIError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeAPIError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": code, "message": msg})
}
