package service

import (
	"context"

	"family-store/internal/model"
	"family-store/internal/session"
	"family-store/internal/view"
)

// Catalog is the product lookup the services depend on.
// It is satisfied by *catalog.Store.
type Catalog interface {
	All() []model.Product
	ByID(id string) (model.Product, bool)
	ByCategory(c model.Category) []model.Product
	Sections() []model.Section
	AddCustom(req *model.CustomProductRequest) (model.Product, error)
}

// Sessions resolves household sessions. It is satisfied by *session.Manager.
type Sessions interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	NewID() string
}

// CatalogService defines operations for browsing the catalogue.
type CatalogService interface {
	// Products returns every product, or the products of one category when
	// category is not empty.
	Products(ctx context.Context, category string) ([]model.Product, error)

	// Sections returns the catalogue grouped by store.
	Sections(ctx context.Context) ([]model.Section, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// AddCustom adds a user-entered product.
	AddCustom(ctx context.Context, req *model.CustomProductRequest) (*model.Product, error)
}

// CartService defines operations on a session's cart.
type CartService interface {
	// Get returns the cart contents.
	Get(ctx context.Context, sessionID string) (*model.CartResponse, error)

	// Add puts a catalogue product in the cart.
	Add(ctx context.Context, sessionID string, req *model.AddToCartRequest) (*model.CartResponse, error)

	// UpdateQuantity adjusts one cart line by delta.
	UpdateQuantity(ctx context.Context, sessionID, productID string, delta int) (*model.CartResponse, error)

	// Remove deletes one cart line.
	Remove(ctx context.Context, sessionID, productID string) (*model.CartResponse, error)

	// Notification returns the add-to-cart acknowledgment.
	Notification(ctx context.Context, sessionID string) (*model.Notification, error)
}

// CheckoutService defines operations for submitting the cart.
type CheckoutService interface {
	// Submit checks out the session's cart.
	Submit(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// Status returns the checkout state and mode.
	Status(ctx context.Context, sessionID string) (*model.CheckoutStatus, error)

	// Receipt returns the receipt image of the session's last order.
	Receipt(ctx context.Context, sessionID, orderID string) (*model.ReceiptFile, error)
}

// ViewService defines operations on the navigation state.
type ViewService interface {
	// Get returns the view state.
	Get(ctx context.Context, sessionID string) (*view.State, error)

	// Apply applies a navigation intent.
	Apply(ctx context.Context, sessionID string, req *model.ViewIntentRequest) (*view.State, error)
}

// SessionService defines operations for creating sessions.
type SessionService interface {
	// Create starts a new, empty session.
	Create(ctx context.Context) (*model.SessionResponse, error)
}
