package router

import (
	"net/http"

	"family-store/internal/handler"
	"family-store/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	View     *handler.ViewHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// metrics may be nil, in which case /metrics is not served.
func New(h Handlers, apiKey string, metrics http.Handler, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(logger))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.Catalog.List)
			r.Get("/sections", h.Catalog.Sections)
			r.Post("/custom", h.Catalog.AddCustom)
			r.Get("/{id}", h.Catalog.GetByID)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Post("/items", h.Cart.AddItem)
			r.Patch("/items/{id}", h.Cart.UpdateItem)
			r.Delete("/items/{id}", h.Cart.RemoveItem)
		})
		r.Get("/notification", h.Cart.Notification)

		r.Get("/checkout", h.Checkout.Status)
		r.Post("/checkout", h.Checkout.Submit)
		r.Get("/receipts/{orderId}", h.Checkout.Receipt)

		r.Get("/view", h.View.Get)
		r.Post("/view/intents", h.View.ApplyIntent)
		r.Post("/sessions", h.View.CreateSession)
	})

	return r
}
