// Package view tracks which screen a household is looking at.
//
// A Controller is not safe for concurrent use; the owning session
// serialises access. Intents that do not apply to the current screen are
// ignored.
package view

import (
	"fmt"
	"strings"

	"family-store/internal/model"
)

// Layout selects the screen structure.
type Layout string

const (
	// LayoutMulti moves between a home screen, one screen per store and a
	// success screen, with the cart as an overlay.
	LayoutMulti Layout = "multi"
	// LayoutSingle shows every store section on one catalog screen.
	LayoutSingle Layout = "single"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutMulti, LayoutSingle:
		return l, nil
	default:
		return "", fmt.Errorf("unknown view layout %q", s)
	}
}

// Screen names a top-level screen.
type Screen string

const (
	ScreenHome     Screen = "home"
	ScreenStore    Screen = "store"
	ScreenCheckout Screen = "checkout"
	ScreenSuccess  Screen = "success"
	ScreenCatalog  Screen = "catalog"
)

// Intent is a navigation request from the client.
type Intent string

const (
	IntentSelectStore   Intent = "select_store"
	IntentBackToHome    Intent = "back_to_home"
	IntentOpenCart      Intent = "open_cart"
	IntentCloseCart     Intent = "close_cart"
	IntentBeginCheckout Intent = "begin_checkout"
)

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	switch i {
	case IntentSelectStore, IntentBackToHome, IntentOpenCart, IntentCloseCart, IntentBeginCheckout:
		return true
	}
	return false
}

// State is the observable view state.
type State struct {
	Layout    Layout          `json:"layout"`
	Screen    Screen          `json:"screen"`
	Category  *model.Category `json:"category,omitempty"`
	CartOpen  bool            `json:"cartOpen"`
	Succeeded bool            `json:"succeeded,omitempty"`
}

// Controller is the view state machine.
type Controller struct {
	layout    Layout
	screen    Screen
	previous  Screen
	category  model.Category
	cartOpen  bool
	succeeded bool
}

// New creates a controller on the layout's start screen.
func New(layout Layout) *Controller {
	if layout != LayoutSingle {
		layout = LayoutMulti
	}
	c := &Controller{layout: layout}
	c.screen = c.startScreen()
	return c
}

func (c *Controller) startScreen() Screen {
	if c.layout == LayoutSingle {
		return ScreenCatalog
	}
	return ScreenHome
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	s := State{
		Layout:    c.layout,
		Screen:    c.screen,
		CartOpen:  c.cartOpen,
		Succeeded: c.succeeded,
	}
	if c.category != "" {
		category := c.category
		s.Category = &category
	}
	return s
}

// CartOpen reports whether the cart overlay is showing.
func (c *Controller) CartOpen() bool {
	return c.cartOpen
}

// SelectStore shows one store's products. Non-store categories are ignored.
func (c *Controller) SelectStore(category model.Category) {
	if c.layout == LayoutSingle || !category.IsStore() {
		return
	}
	if c.screen != ScreenHome && c.screen != ScreenStore {
		return
	}
	c.screen = ScreenStore
	c.category = category
}

// BackToHome returns to the store list and closes the overlay.
func (c *Controller) BackToHome() {
	if c.layout == LayoutSingle {
		return
	}
	c.screen = ScreenHome
	c.previous = ""
	c.category = ""
	c.cartOpen = false
}

// OpenCart shows the cart overlay.
func (c *Controller) OpenCart() {
	if c.screen == ScreenSuccess || c.screen == ScreenCheckout {
		return
	}
	c.cartOpen = true
	c.succeeded = false
}

// CloseCart hides the overlay, leaving the checkout screen if needed.
func (c *Controller) CloseCart() {
	c.cartOpen = false
	if c.screen == ScreenCheckout {
		c.screen = c.previous
		c.previous = ""
	}
}

// BeginCheckout turns the open overlay into the checkout screen.
func (c *Controller) BeginCheckout() {
	if c.layout == LayoutSingle || !c.cartOpen {
		return
	}
	c.previous = c.screen
	c.screen = ScreenCheckout
	c.cartOpen = false
}

// CheckoutSucceeded shows the success screen, or in the single layout
// returns to the catalog with the success flag set.
func (c *Controller) CheckoutSucceeded() {
	c.cartOpen = false
	c.previous = ""
	if c.layout == LayoutSingle {
		c.succeeded = true
		return
	}
	c.screen = ScreenSuccess
	c.category = ""
}

// Apply dispatches an intent. category is only read by IntentSelectStore.
// The success screen is reached only through CheckoutSucceeded.
func (c *Controller) Apply(intent Intent, category model.Category) error {
	switch intent {
	case IntentSelectStore:
		c.SelectStore(category)
	case IntentBackToHome:
		c.BackToHome()
	case IntentOpenCart:
		c.OpenCart()
	case IntentCloseCart:
		c.CloseCart()
	case IntentBeginCheckout:
		c.BeginCheckout()
	default:
		return model.ErrInvalidIntent
	}
	return nil
}
