package handler

import (
	"net/http"

	"family-store/internal/middleware"
	"family-store/internal/model"
	"family-store/internal/service"

	"github.com/rs/zerolog"
)

// ViewHandler handles navigation state and session requests.
type ViewHandler struct {
	view     service.ViewService
	sessions service.SessionService
	logger   zerolog.Logger
}

// NewViewHandler creates a new view handler.
func NewViewHandler(view service.ViewService, sessions service.SessionService, logger zerolog.Logger) *ViewHandler {
	return &ViewHandler{
		view:     view,
		sessions: sessions,
		logger:   logger.With().Str("handler", "view").Logger(),
	}
}

// Get handles GET /api/view requests.
func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.view.Get(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve view", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// ApplyIntent handles POST /api/view/intents requests.
func (h *ViewHandler) ApplyIntent(w http.ResponseWriter, r *http.Request) {
	var req model.ViewIntentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	state, err := h.view.Apply(r.Context(), middleware.SessionID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, "failed to apply intent", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// CreateSession handles POST /api/sessions requests.
func (h *ViewHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sessions.Create(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to create session", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}
