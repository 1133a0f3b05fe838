package service

import (
	"context"
	"fmt"

	"family-store/internal/model"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	sessions Sessions
	catalog  Catalog
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(sessions Sessions, catalog Catalog, logger zerolog.Logger) CartService {
	return &cartService{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the cart contents.
func (s *cartService) Get(ctx context.Context, sessionID string) (*model.CartResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	resp := sess.Cart()
	return &resp, nil
}

// Add puts a catalogue product in the cart. The product is looked up by ID so
// clients cannot set their own price.
func (s *cartService) Add(ctx context.Context, sessionID string, req *model.AddToCartRequest) (*model.CartResponse, error) {
	if req == nil || req.ProductID == "" {
		return nil, model.ErrProductNotFound
	}

	product, ok := s.catalog.ByID(req.ProductID)
	if !ok {
		s.logger.Warn().Str("product_id", req.ProductID).Msg("add to cart for unknown product")
		return nil, model.ErrProductNotFound
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := sess.AddToCart(ctx, product, req.Quantity); err != nil {
		s.logger.Error().Err(err).
			Str("session_id", sess.ID()).
			Str("product_id", product.ID).
			Msg("failed to save cart after add")
		return nil, err
	}

	resp := sess.Cart()
	return &resp, nil
}

// UpdateQuantity adjusts one cart line by delta.
func (s *cartService) UpdateQuantity(ctx context.Context, sessionID, productID string, delta int) (*model.CartResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := sess.UpdateQuantity(ctx, productID, delta); err != nil {
		s.logger.Error().Err(err).
			Str("session_id", sess.ID()).
			Str("product_id", productID).
			Int("delta", delta).
			Msg("failed to save cart after quantity change")
		return nil, err
	}

	resp := sess.Cart()
	return &resp, nil
}

// Remove deletes one cart line.
func (s *cartService) Remove(ctx context.Context, sessionID, productID string) (*model.CartResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := sess.RemoveFromCart(ctx, productID); err != nil {
		s.logger.Error().Err(err).
			Str("session_id", sess.ID()).
			Str("product_id", productID).
			Msg("failed to save cart after remove")
		return nil, err
	}

	resp := sess.Cart()
	return &resp, nil
}

// Notification returns the add-to-cart acknowledgment.
func (s *cartService) Notification(ctx context.Context, sessionID string) (*model.Notification, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	n := sess.Notification()
	return &n, nil
}
