package server

import (
	"encoding/json"
	"net/http"

	"github.com/sergss/geomark/internal/batch"
	"github.com/sergss/geomark/internal/models"
	"github.com/sergss/geomark/internal/presenter"
	"github.com/sergss/geomark/internal/resolver"
	"github.com/sergss/geomark/internal/settings"
)

// searchRequest is the body of POST /api/search.
type searchRequest struct {
	Addresses string         `json:"addresses"`      // Newline-delimited address list.
	Bias      *models.Bounds `json:"bias,omitempty"` // Optional viewport bias for lookups.
}

// sessionResponse is the body of GET /api/search/session.
type sessionResponse struct {
	Session *batch.Summary     `json:"session,omitempty"`
	View    presenter.Snapshot `json:"view"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.settings.Load()
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to load settings", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	s.writeJSON(w, http.StatusOK, current)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var submitted settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}

	if err := s.settings.Save(submitted); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.log.InfoContext(r.Context(), "Settings saved")
	s.writeJSON(w, http.StatusOK, submitted)
}

func (s *Server) handleStartSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid search payload")
		return
	}

	current, err := s.settings.Load()
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to load settings", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	if current.APIKey == "" {
		s.writeError(w, http.StatusPreconditionFailed, "no API key configured; save settings first")
		return
	}

	policy := current.Policy()
	if err = policy.Validate(); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	provider, err := s.newProvider(current.APIKey)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to create provider", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to create geocoding provider")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && !s.session.Done() {
		s.writeError(w, http.StatusConflict, "a search is already running")
		return
	}

	res := resolver.New(provider, s.providerName, policy, s.log, s.metrics)
	s.session = s.runner.Start(s.baseCtx, req.Addresses, res, req.Bias)

	summary := s.session.Snapshot()
	s.writeJSON(w, http.StatusAccepted, summary)
}

func (s *Server) handleCancelSearch(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil {
		s.writeError(w, http.StatusNotFound, "no search session")
		return
	}

	session.Cancel()
	s.writeJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	resp := sessionResponse{View: s.view.Snapshot()}
	if session != nil {
		summary := session.Snapshot()
		resp.Session = &summary
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	const historyLimit = 20

	records, err := s.history.RecentSessions(r.Context(), historyLimit)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to list session history", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if records == nil {
		records = []models.SessionRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status, body := http.StatusOK, "OK"
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to write reply", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
