package catalog

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"family-store/internal/model"

	"github.com/rs/zerolog"
)

// Store holds the product catalogue. Seed products never change; custom
// products may be appended at runtime when enabled.
type Store struct {
	mu            sync.RWMutex
	products      []model.Product
	index         map[string]int
	customEnabled bool
	now           func() time.Time
	logger        zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCustomProducts enables AddCustom.
func WithCustomProducts(enabled bool) Option {
	return func(s *Store) {
		s.customEnabled = enabled
	}
}

// WithClock overrides the clock used to derive custom product ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a catalogue from the given seed list. Duplicate ids keep the first entry.
func New(seed []model.Product, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		products: make([]model.Product, 0, len(seed)),
		index:    make(map[string]int, len(seed)),
		now:      time.Now,
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, p := range seed {
		if _, exists := s.index[p.ID]; exists {
			s.logger.Warn().Str("product_id", p.ID).Msg("duplicate product id in seed, skipping")
			continue
		}
		s.index[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}

	s.logger.Info().
		Int("product_count", len(s.products)).
		Bool("custom_enabled", s.customEnabled).
		Msg("catalogue loaded")

	return s
}

// All returns every product in catalogue order.
func (s *Store) All() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

// ByID looks up a single product.
func (s *Store) ByID(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Product{}, false
	}
	return s.products[i], true
}

// ByCategory returns the products of one category in catalogue order.
func (s *Store) ByCategory(c model.Category) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Product{}
	for _, p := range s.products {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Sections groups the catalogue by store category. Every store category is
// present, even when it has no products. Custom-category products get a
// trailing section only when there are any.
func (s *Store) Sections() []model.Section {
	sections := make([]model.Section, 0, len(model.AllCategories()))
	for _, c := range model.StoreCategories() {
		sections = append(sections, model.Section{Category: c, Products: s.ByCategory(c)})
	}
	if custom := s.ByCategory(model.CategoryCustom); len(custom) > 0 {
		sections = append(sections, model.Section{Category: model.CategoryCustom, Products: custom})
	}
	return sections
}

// CustomEnabled reports whether AddCustom is allowed.
func (s *Store) CustomEnabled() bool {
	return s.customEnabled
}

// AddCustom appends a user-entered product to the catalogue.
func (s *Store) AddCustom(req *model.CustomProductRequest) (model.Product, error) {
	if !s.customEnabled {
		return model.Product{}, model.ErrCustomProductsDisabled
	}
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return model.Product{}, model.ErrMissingName
	}
	if req.Price < 0 {
		return model.Product{}, model.ErrInvalidPrice
	}

	category := model.CategoryCustom
	if req.Category != "" {
		c, err := model.ParseCategory(req.Category)
		if err != nil {
			return model.Product{}, model.ErrInvalidCategory
		}
		category = c
	}

	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		imageURL = DefaultCustomImageURL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	id := fmt.Sprintf("custom-%d", ms)
	for n := 2; ; n++ {
		if _, taken := s.index[id]; !taken {
			break
		}
		id = fmt.Sprintf("custom-%d-%d", ms, n)
	}

	p := model.Product{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Category: category,
		ImageURL: imageURL,
	}
	s.index[p.ID] = len(s.products)
	s.products = append(s.products, p)

	s.logger.Info().
		Str("product_id", p.ID).
		Str("category", string(p.Category)).
		Int("price", p.Price).
		Msg("custom product added")

	return p, nil
}
