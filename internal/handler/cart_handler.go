package handler

import (
	"net/http"

	"family-store/internal/middleware"
	"family-store/internal/model"
	"family-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests for the caller's session.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Get(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "product ID is required", h.logger)
		return
	}

	cart, err := h.service.Add(r.Context(), middleware.SessionID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, "failed to save cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PATCH /api/cart/items/{id} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateQuantityRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeServiceError(w, err, "failed to save cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{id} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Remove(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "failed to save cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Notification handles GET /api/notification requests.
func (h *CartHandler) Notification(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Notification(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve notification", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, n)
}
