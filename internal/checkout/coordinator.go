// Package checkout turns a cart into a submitted order.
//
// A Coordinator moves through idle -> submitting -> success | failed. It
// shares its lock with the owning session and releases it while waiting on
// the network or the renderer, so other cart events proceed during a
// submission and a second submit observes the submitting state.
package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"family-store/internal/blessing"
	"family-store/internal/cart"
	"family-store/internal/metrics"
	"family-store/internal/model"
	"family-store/internal/receipt"

	"github.com/rs/zerolog"
)

// Mode selects how an order leaves the store.
type Mode string

const (
	ModeForm    Mode = "form"
	ModeReceipt Mode = "receipt"
)

// ParseMode validates a checkout mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeForm, ModeReceipt:
		return m, nil
	default:
		return "", fmt.Errorf("unknown checkout mode %q", s)
	}
}

// Navigator is told when an order went through.
type Navigator interface {
	CheckoutSucceeded()
}

// ReceiptRenderer draws an order as a PNG.
type ReceiptRenderer interface {
	Render(order *model.Order, blessing string) ([]byte, error)
}

// Config holds the coordinator settings.
type Config struct {
	Mode        Mode
	Location    *time.Location
	RenderDelay time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithFormSubmitter sets the remote form client.
func WithFormSubmitter(f FormSubmitter) Option {
	return func(c *Coordinator) {
		c.form = f
	}
}

// WithBlessings sets the receipt blessing selector.
func WithBlessings(s blessing.Selector) Option {
	return func(c *Coordinator) {
		c.selector = s
	}
}

// WithRenderer sets the receipt renderer.
func WithRenderer(r ReceiptRenderer) Option {
	return func(c *Coordinator) {
		c.renderer = r
	}
}

// WithExporter sets where rendered receipts are stored.
func WithExporter(e receipt.Exporter) Option {
	return func(c *Coordinator) {
		c.exporter = e
	}
}

// WithMetrics records checkout and receipt outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithClock overrides the time source used for order ids and default dates.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// Coordinator runs checkout for one session.
type Coordinator struct {
	lock     sync.Locker
	cart     *cart.Cart
	nav      Navigator
	cfg      Config
	form     FormSubmitter
	selector blessing.Selector
	renderer ReceiptRenderer
	exporter receipt.Exporter
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   zerolog.Logger

	state model.CheckoutState
	last  *model.ReceiptFile

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a coordinator. lock must be the lock that guards c and nav;
// callers must not hold it when calling Submit, State or LastReceipt.
func New(lock sync.Locker, c *cart.Cart, nav Navigator, cfg Config, logger zerolog.Logger, opts ...Option) *Coordinator {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeForm
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	co := &Coordinator{
		lock:   lock,
		cart:   c,
		nav:    nav,
		cfg:    cfg,
		now:    time.Now,
		state:  model.CheckoutIdle,
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "checkout").Str("mode", string(cfg.Mode)).Logger(),
	}
	for _, opt := range opts {
		opt(co)
	}

	if co.form == nil {
		co.form = NewHTTPFormSubmitter(DefaultFormEndpoint, nil, logger)
	}
	if co.selector == nil {
		co.selector = blessing.NewRandomSelector(blessing.DefaultBlessings(), nil)
	}
	return co
}

// Mode returns the configured checkout mode.
func (c *Coordinator) Mode() Mode {
	return c.cfg.Mode
}

// State returns the current checkout state.
func (c *Coordinator) State() model.CheckoutState {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Submit checks out the current cart. An empty cart is a no-op reported as
// idle. A submit while another is in flight fails with
// model.ErrSubmissionInProgress.
func (c *Coordinator) Submit(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResponse, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state == model.CheckoutSubmitting {
		return nil, model.ErrSubmissionInProgress
	}
	if c.cart.IsEmpty() {
		c.logger.Debug().Msg("checkout requested with empty cart")
		return &model.CheckoutResponse{State: model.CheckoutIdle, Mode: string(c.cfg.Mode)}, nil
	}

	if c.cfg.Mode == ModeReceipt {
		return c.submitReceipt(ctx)
	}
	return c.submitForm(ctx, req)
}

func (c *Coordinator) submitForm(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResponse, error) {
	orderer := strings.TrimSpace(req.Orderer)
	if orderer == "" {
		return nil, model.ErrMissingOrderer
	}
	pickupDate, err := NormalizePickupDate(req.PickupDate, c.now(), c.cfg.Location)
	if err != nil {
		return nil, err
	}

	c.state = model.CheckoutSubmitting
	defer c.settle()

	lines, total := BuildLines(c.cart.Items())
	payload := &FormPayload{
		Orderer:    orderer,
		Lines:      lines,
		Total:      total,
		PickupDate: pickupDate,
	}

	// Once sent, a submission runs to completion even if the caller goes away;
	// the endpoint may already hold the order.
	var sendErr error
	c.unlocked(func() {
		sendErr = c.form.Submit(context.WithoutCancel(ctx), payload)
	})
	if sendErr != nil {
		c.state = model.CheckoutFailed
		c.metrics.IncCheckout(string(ModeForm), "failed")
		c.logger.Error().Err(sendErr).Int("total", total).Msg("order submission failed, cart kept")
		return nil, model.ErrSubmissionFailed
	}

	c.complete(ctx)
	c.state = model.CheckoutSuccess
	c.metrics.IncCheckout(string(ModeForm), "success")
	c.logger.Info().
		Str("orderer", orderer).
		Str("pickup_date", pickupDate).
		Int("total", total).
		Msg("order submitted")

	return &model.CheckoutResponse{
		State:      model.CheckoutSuccess,
		Mode:       string(ModeForm),
		Lines:      lines,
		Total:      total,
		PickupDate: pickupDate,
	}, nil
}

func (c *Coordinator) submitReceipt(ctx context.Context) (*model.CheckoutResponse, error) {
	c.state = model.CheckoutSubmitting
	defer c.settle()

	items := c.cart.Items()
	lines, total := BuildLines(items)
	now := c.now()
	order := &model.Order{
		ID:          "ORD-" + strconv.FormatInt(now.UnixMilli(), 10),
		Timestamp:   now.UnixMilli(),
		Items:       items,
		TotalAmount: total,
		Status:      model.OrderStatusCompleted,
	}

	var text string
	c.unlocked(func() {
		text = c.selector.Select(ctx, order)
	})

	// The order is complete from here on; the image is a best-effort extra.
	c.last = nil
	c.complete(ctx)
	c.metrics.IncCheckout(string(ModeReceipt), "success")

	resp := &model.CheckoutResponse{
		State:    model.CheckoutSuccess,
		Mode:     string(ModeReceipt),
		Lines:    lines,
		Total:    total,
		Order:    order,
		Blessing: text,
	}

	var (
		file       *model.ReceiptFile
		location   string
		receiptErr error
	)
	c.unlocked(func() {
		file, location, receiptErr = c.produceReceipt(ctx, order, text)
	})

	if file != nil {
		c.last = file
	}
	if receiptErr != nil {
		resp.ReceiptError = receiptErr.Error()
		c.metrics.IncReceipt("failed")
		c.logger.Error().Err(receiptErr).Str("order_id", order.ID).Msg("receipt generation failed")
	} else {
		c.metrics.IncReceipt("ok")
		c.logger.Info().
			Str("order_id", order.ID).
			Str("location", location).
			Int("total", total).
			Msg("receipt generated")
	}

	c.state = model.CheckoutSuccess
	return resp, nil
}

// produceReceipt waits for the render delay, renders and exports. It returns
// the file whenever rendering succeeded, even if the export failed.
func (c *Coordinator) produceReceipt(ctx context.Context, order *model.Order, text string) (*model.ReceiptFile, string, error) {
	if c.cfg.RenderDelay > 0 {
		timer := time.NewTimer(c.cfg.RenderDelay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, "", fmt.Errorf("receipt render cancelled: %w", ctx.Err())
		case <-c.done:
			return nil, "", fmt.Errorf("receipt render cancelled: session closed")
		}
	}

	if c.renderer == nil {
		return nil, "", fmt.Errorf("receipt renderer not configured")
	}
	data, err := c.renderer.Render(order, text)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render receipt: %w", err)
	}

	file := &model.ReceiptFile{
		OrderID:  order.ID,
		Filename: receipt.Filename(order.ID),
		Data:     data,
	}
	if c.exporter == nil {
		return file, "", nil
	}

	location, err := c.exporter.Export(ctx, file)
	if err != nil {
		return file, "", fmt.Errorf("failed to export receipt: %w", err)
	}
	return file, location, nil
}

// complete clears the cart and moves the view to the success screen.
func (c *Coordinator) complete(ctx context.Context) {
	// The order has left the store; a cancelled request must not keep
	// the cleared cart from being persisted.
	if err := c.cart.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist cleared cart")
	}
	if c.nav != nil {
		c.nav.CheckoutSucceeded()
	}
}

// settle leaves the submitting state on every exit path.
func (c *Coordinator) settle() {
	if c.state == model.CheckoutSubmitting {
		c.state = model.CheckoutFailed
	}
}

// unlocked runs fn with the shared lock released.
func (c *Coordinator) unlocked(fn func()) {
	c.lock.Unlock()
	defer c.lock.Lock()
	fn()
}

// LastReceipt returns the rendered receipt of the most recent order.
func (c *Coordinator) LastReceipt(orderID string) (*model.ReceiptFile, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.last == nil || c.last.OrderID != orderID {
		return nil, model.ErrReceiptNotFound
	}
	return c.last, nil
}

// Close cancels a pending render wait. It is safe to call more than once.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
