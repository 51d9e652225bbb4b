package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"varologs/internal/autocomplete"
	"varologs/internal/covers"
	"varologs/internal/credentials"
	"varologs/internal/logging"
	"varologs/internal/media"
	"varologs/internal/services"
)

type manualEntry struct {
	Title string     `json:"title"`
	Type  media.Type `json:"type"`
}

type attemptSummary struct {
	Model string             `json:"model"`
	Stage autocomplete.Stage `json:"stage"`
}

// exhaustedResponse lets the client fall back to manual entry with the
// user's query prefilled.
type exhaustedResponse struct {
	Error       string           `json:"error"`
	ManualEntry manualEntry      `json:"manual_entry"`
	Attempts    []attemptSummary `json:"attempts"`
}

type aiStatusResponse struct {
	credentials.Status
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

type configureKeyRequest struct {
	APIKey string `json:"apiKey"`
}

func (s *server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	var req autocomplete.Request
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" || strings.TrimSpace(string(req.Type)) == "" {
		s.writeError(w, http.StatusBadRequest, "Query and type are required")
		return
	}
	req.Type = media.Type(strings.ToLower(strings.TrimSpace(string(req.Type))))
	if err := s.validator.Validate(req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	meta, err := s.resolver.Resolve(r.Context(), req)
	var exhausted *autocomplete.ExhaustedCascadeError
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, meta)
	case errors.Is(err, autocomplete.ErrNotConfigured):
		s.writeJSON(w, http.StatusServiceUnavailable, exhaustedResponse{
			Error:       "AI service not configured",
			ManualEntry: manualEntry{Title: req.Query, Type: req.Type},
			Attempts:    []attemptSummary{},
		})
	case errors.As(err, &exhausted):
		resp := exhaustedResponse{
			Error:       exhausted.Error(),
			ManualEntry: manualEntry{Title: req.Query, Type: req.Type},
			Attempts:    make([]attemptSummary, 0, len(exhausted.Attempts)),
		}
		for _, a := range exhausted.Attempts {
			resp.Attempts = append(resp.Attempts, attemptSummary{Model: a.Model, Stage: a.Stage})
		}
		s.writeJSON(w, http.StatusInternalServerError, resp)
	default:
		s.writeServiceError(r.Context(), w, err)
	}
}

func (s *server) handleCover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := strings.TrimSpace(q.Get("title"))
	rawType := strings.TrimSpace(q.Get("type"))
	if title == "" || rawType == "" {
		s.writeError(w, http.StatusBadRequest, "Title and type are required")
		return
	}
	t, err := media.Parse(rawType)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	query := covers.Query{
		Title:   title,
		Type:    t,
		Creator: q.Get("creator"),
	}
	// The client sends an empty or non-numeric year when it has none.
	if year, err := strconv.Atoi(strings.TrimSpace(q.Get("year"))); err == nil && year > 0 {
		query.Year = &year
	}
	s.writeJSON(w, http.StatusOK, s.covers.Find(r.Context(), query))
}

func (s *server) handleAIStatus(w http.ResponseWriter, r *http.Request) {
	status := s.keys.Status()
	if s.metrics != nil {
		s.metrics.SetConfigured(status.Configured)
	}
	s.writeJSON(w, http.StatusOK, aiStatusResponse{
		Status:   status,
		Provider: s.provider,
		Models:   s.models,
	})
}

func (s *server) handleConfigureKey(w http.ResponseWriter, r *http.Request) {
	var req configureKeyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		s.writeError(w, http.StatusBadRequest, "apiKey is required")
		return
	}
	if err := s.keys.Configure(r.Context(), req.APIKey); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, services.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, services.ErrConfiguration):
			status = http.StatusUnprocessableEntity
		}
		logging.WarnWithContext(s.log(r.Context()), "api key rejected", "ai_key_configure_failed",
			logging.Int("status", status),
			logging.Error(err),
			logging.Impact("previous AI client stays active"),
			logging.Hint("verify the key and the settings file permissions"),
		)
		s.writeError(w, status, err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.SetConfigured(true)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": s.keys.Status()})
}
