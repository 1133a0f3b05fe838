package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"family-store/internal/middleware"
	"family-store/internal/model"
	"family-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout and receipt download requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Submit handles POST /api/checkout requests. The body may be empty in
// receipt mode.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.Submit(r.Context(), middleware.SessionID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, "failed to submit order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /api/checkout requests.
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve checkout state", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Receipt handles GET /api/receipts/{orderId} requests by sending the PNG
// as an attachment.
func (h *CheckoutHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.Receipt(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve receipt", h.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		h.logger.Warn().Err(err).Str("order_id", file.OrderID).Msg("receipt download interrupted")
	}
}
