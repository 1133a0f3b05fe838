package handler

import (
	"net/http"

	"family-store/internal/model"
	"family-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CatalogHandler handles catalogue HTTP requests.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalogue handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// List handles GET /api/catalog requests. The optional category query
// parameter accepts a display label or an enum key.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Sections handles GET /api/catalog/sections requests.
func (h *CatalogHandler) Sections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.Sections(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to retrieve sections", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sections)
}

// GetByID handles GET /api/catalog/{id} requests.
func (h *CatalogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// AddCustom handles POST /api/catalog/custom requests.
func (h *CatalogHandler) AddCustom(w http.ResponseWriter, r *http.Request) {
	var req model.CustomProductRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	product, err := h.service.AddCustom(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "failed to add custom product", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}
