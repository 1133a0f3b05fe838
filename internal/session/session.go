// Package session owns the per-household state: cart, view and checkout.
//
// Every event on a session runs under the session mutex, so events for one
// household are applied one at a time. Checkout shares the mutex and
// releases it while it waits on the network.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"family-store/internal/cart"
	"family-store/internal/checkout"
	"family-store/internal/metrics"
	"family-store/internal/model"
	"family-store/internal/storage"
	"family-store/internal/view"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultID is the session used when a client does not name one.
const DefaultID = "household"

const rehydrateTimeout = 10 * time.Second

// ErrClosed is returned once the manager has shut down.
var ErrClosed = errors.New("session manager closed")

// Session is one household's storefront state.
type Session struct {
	id       string
	mu       sync.Mutex
	cart     *cart.Cart
	view     *view.Controller
	checkout *checkout.Coordinator
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// AddToCart adds quantity units of product.
func (s *Session) AddToCart(ctx context.Context, product model.Product, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Add(ctx, product, quantity)
}

// UpdateQuantity adjusts a cart line by delta.
func (s *Session) UpdateQuantity(ctx context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateQuantity(ctx, id, delta)
}

// RemoveFromCart deletes a cart line.
func (s *Session) RemoveFromCart(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Remove(ctx, id)
}

// Cart returns the cart contents with the badge count and total.
func (s *Session) Cart() model.CartResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CartResponse{
		Items: s.cart.Items(),
		Count: s.cart.Count(),
		Total: s.cart.Total(),
	}
}

// Notification returns the acknowledgment message. It is hidden while the
// cart overlay is open.
func (s *Session) Notification() model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.cart.Notification()
	if !ok || s.view.CartOpen() {
		return model.Notification{}
	}
	return model.Notification{Message: msg, Visible: true}
}

// View returns the view state.
func (s *Session) View() view.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.State()
}

// ApplyIntent applies a navigation intent and returns the new view state.
func (s *Session) ApplyIntent(intent view.Intent, category model.Category) (view.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.view.Apply(intent, category); err != nil {
		return view.State{}, err
	}
	return s.view.State(), nil
}

// Submit checks out the cart.
func (s *Session) Submit(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResponse, error) {
	return s.checkout.Submit(ctx, req)
}

// CheckoutState returns the checkout state.
func (s *Session) CheckoutState() model.CheckoutState {
	return s.checkout.State()
}

// CheckoutMode returns the configured checkout mode.
func (s *Session) CheckoutMode() checkout.Mode {
	return s.checkout.Mode()
}

// LastReceipt returns the last rendered receipt if it belongs to orderID.
func (s *Session) LastReceipt(orderID string) (*model.ReceiptFile, error) {
	return s.checkout.LastReceipt(orderID)
}

// Close cancels the session's timers.
func (s *Session) Close() {
	s.checkout.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Close()
}

// Config holds the settings applied to every new session.
type Config struct {
	Layout          view.Layout
	Checkout        checkout.Config
	NotificationTTL time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithCheckoutOptions passes options to every session's coordinator.
func WithCheckoutOptions(opts ...checkout.Option) Option {
	return func(m *Manager) {
		m.checkoutOpts = append(m.checkoutOpts, opts...)
	}
}

// WithMetrics records cart metrics for every session.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// Manager creates sessions on first use and closes them on shutdown.
type Manager struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	loads        singleflight.Group
	store        storage.SnapshotStore
	cfg          Config
	checkoutOpts []checkout.Option
	metrics      *metrics.Metrics
	closed       bool
	logger       zerolog.Logger
}

// NewManager creates a manager backed by store.
func NewManager(store storage.SnapshotStore, cfg Config, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		cfg:      cfg,
		logger:   logger.With().Str("component", "session-manager").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session for id, creating and rehydrating it on first use.
// An empty id selects DefaultID. A failed rehydrate is returned and nothing is
// cached, so the next request loads the snapshot again.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = DefaultID
	}

	if s, err := m.lookup(id); s != nil || err != nil {
		return s, err
	}

	// Concurrent first requests for one id share a single load, and the
	// manager lock is not held during snapshot I/O.
	v, err, _ := m.loads.Do(id, func() (interface{}, error) {
		if s, err := m.lookup(id); s != nil || err != nil {
			return s, err
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rehydrateTimeout)
		defer cancel()

		s, err := m.newSession(loadCtx, id)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		if m.closed {
			s.Close()
			return nil, ErrClosed
		}
		m.sessions[id] = s

		m.logger.Info().Str("session_id", id).Int("active_sessions", len(m.sessions)).Msg("session started")
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	return m.sessions[id], nil
}

func (m *Manager) newSession(ctx context.Context, id string) (*Session, error) {
	logger := m.logger.With().Str("session_id", id).Logger()

	c, err := cart.New(ctx, storage.CartKey(id), m.store, logger,
		cart.WithNotifier(cart.NewNotifier(m.cfg.NotificationTTL)),
		cart.WithMetrics(m.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start session %s: %w", id, err)
	}

	s := &Session{id: id, cart: c}
	s.view = view.New(m.cfg.Layout)

	opts := append([]checkout.Option{checkout.WithMetrics(m.metrics)}, m.checkoutOpts...)
	s.checkout = checkout.New(&s.mu, s.cart, s.view, m.cfg.Checkout, logger, opts...)
	return s, nil
}

// NewID returns a fresh random session id.
func (m *Manager) NewID() string {
	return uuid.NewString()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every session. Later calls to Get fail with ErrClosed.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.closed = true
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.logger.Info().Int("closed_sessions", len(sessions)).Msg("sessions closed")
}
