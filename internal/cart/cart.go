// Package cart implements the persisted shopping cart.
//
// A Cart is not safe for concurrent use; the owning session serialises access.
// Every effective mutation writes the full snapshot to the SnapshotStore before
// returning, so rapid mutations produce one write each.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"family-store/internal/metrics"
	"family-store/internal/model"
	"family-store/internal/storage"

	"github.com/rs/zerolog"
)

// Cart is an ordered list of cart items, at most one per product id.
type Cart struct {
	key      string
	store    storage.SnapshotStore
	items    []model.CartItem
	notifier *Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// Option configures a Cart.
type Option func(*Cart)

// WithNotifier replaces the default acknowledgment notifier.
func WithNotifier(n *Notifier) Option {
	return func(c *Cart) {
		c.notifier = n
	}
}

// WithMetrics records mutations and snapshot failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cart) {
		c.metrics = m
	}
}

// New creates a cart and rehydrates it from the snapshot stored under key.
// A missing or malformed snapshot yields an empty cart and is only logged.
// Any other load failure is returned so the caller can retry later instead of
// overwriting the stored cart with an empty one.
func New(ctx context.Context, key string, store storage.SnapshotStore, logger zerolog.Logger, opts ...Option) (*Cart, error) {
	c := &Cart{
		key:    key,
		store:  store,
		items:  []model.CartItem{},
		logger: logger.With().Str("component", "cart").Str("key", key).Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = NewNotifier(DefaultNotificationTTL)
	}

	if err := c.rehydrate(ctx); err != nil {
		c.notifier.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cart) rehydrate(ctx context.Context) error {
	data, err := c.store.Load(ctx, c.key)
	if errors.Is(err, storage.ErrNotFound) {
		c.logger.Debug().Msg("no cart snapshot, starting empty")
		return nil
	}
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load cart snapshot")
		return fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	items, err := DecodeSnapshot(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cart snapshot is malformed, starting empty")
		return nil
	}

	c.items = items
	c.logger.Info().Int("item_count", len(items)).Msg("cart rehydrated")
	return nil
}

// Add puts quantity units of product in the cart. An existing line for the
// same product id is incremented; otherwise a new line is appended.
// A non-positive quantity is treated as 1.
func (c *Cart) Add(ctx context.Context, product model.Product, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	if i := c.indexOf(product.ID); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		c.items = append(c.items, model.CartItem{Product: product, Quantity: quantity})
	}

	c.notifier.Show(fmt.Sprintf("已加入 %d 份 %s", quantity, product.Name))
	c.metrics.IncCartMutation("add")

	c.logger.Debug().
		Str("product_id", product.ID).
		Int("quantity", quantity).
		Msg("item added to cart")

	return c.persist(ctx)
}

// UpdateQuantity adjusts a line by delta, never going below 1.
// Unknown ids are ignored.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, delta int) error {
	i := c.indexOf(id)
	if i < 0 {
		return nil
	}

	c.items[i].Quantity = max(1, c.items[i].Quantity+delta)
	c.metrics.IncCartMutation("update")

	return c.persist(ctx)
}

// Remove deletes the line for id. Unknown ids are ignored.
func (c *Cart) Remove(ctx context.Context, id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return nil
	}

	c.items = append(c.items[:i], c.items[i+1:]...)
	c.metrics.IncCartMutation("remove")

	return c.persist(ctx)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	c.items = []model.CartItem{}
	c.metrics.IncCartMutation("clear")

	return c.persist(ctx)
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []model.CartItem {
	out := make([]model.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Count returns the total number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Total returns the sum of price × quantity.
func (c *Cart) Total() int {
	return model.TotalOf(c.items)
}

// Notification returns the current acknowledgment message.
func (c *Cart) Notification() (string, bool) {
	return c.notifier.Current()
}

// Close cancels the pending notification timer.
func (c *Cart) Close() {
	c.notifier.Close()
}

func (c *Cart) indexOf(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) persist(ctx context.Context) error {
	data, err := EncodeSnapshot(c.items)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}

	if err := c.store.Save(ctx, c.key, data); err != nil {
		c.metrics.IncSnapshotFailure()
		c.logger.Error().Err(err).Msg("failed to persist cart snapshot")
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// EncodeSnapshot serialises cart lines as a JSON array.
func EncodeSnapshot(items []model.CartItem) ([]byte, error) {
	if items == nil {
		items = []model.CartItem{}
	}
	return json.Marshal(items)
}

// DecodeSnapshot parses a JSON array of cart lines. Snapshots that break the
// cart invariants (duplicate ids, quantity below 1, negative price, empty id)
// are rejected as a whole.
func DecodeSnapshot(data []byte) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	if items == nil {
		return []model.CartItem{}, nil
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("item %d: product ID is required", i)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("item %d: duplicate product ID %s", i, item.ID)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("item %d: quantity must be at least 1", i)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("item %d: price must not be negative", i)
		}
		seen[item.ID] = struct{}{}
	}
	return items, nil
}
