package service

import (
	"context"
	"fmt"

	"family-store/internal/model"

	"github.com/rs/zerolog"
)

// ReceiptPathPrefix is where rendered receipts are served for download.
const ReceiptPathPrefix = "/api/receipts/"

// checkoutService implements CheckoutService.
type checkoutService struct {
	sessions Sessions
	logger   zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(sessions Sessions, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		sessions: sessions,
		logger:   logger.With().Str("service", "checkout").Logger(),
	}
}

// Submit checks out the session's cart. When a receipt image was rendered the
// response carries its download URL.
func (s *checkoutService) Submit(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if req == nil {
		req = &model.CheckoutRequest{}
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	resp, err := sess.Submit(ctx, *req)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("session_id", sess.ID()).
			Str("mode", string(sess.CheckoutMode())).
			Msg("checkout rejected")
		return nil, err
	}

	if resp.Order != nil {
		if _, err := sess.LastReceipt(resp.Order.ID); err == nil {
			resp.ReceiptURL = ReceiptPathPrefix + resp.Order.ID
		}
	}

	s.logger.Info().
		Str("session_id", sess.ID()).
		Str("state", string(resp.State)).
		Int("total", resp.Total).
		Msg("checkout finished")

	return resp, nil
}

// Status returns the checkout state and mode.
func (s *checkoutService) Status(ctx context.Context, sessionID string) (*model.CheckoutStatus, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &model.CheckoutStatus{
		State: sess.CheckoutState(),
		Mode:  string(sess.CheckoutMode()),
	}, nil
}

// Receipt returns the receipt image of the session's last order.
func (s *checkoutService) Receipt(ctx context.Context, sessionID, orderID string) (*model.ReceiptFile, error) {
	if orderID == "" {
		return nil, model.ErrReceiptNotFound
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	file, err := sess.LastReceipt(orderID)
	if err != nil {
		s.logger.Debug().Str("session_id", sess.ID()).Str("order_id", orderID).Msg("receipt not found")
		return nil, err
	}
	return file, nil
}
