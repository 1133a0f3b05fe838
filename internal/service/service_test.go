package service

import (
	"context"
	"testing"
	"time"

	"family-store/internal/checkout"
	"family-store/internal/model"
	"family-store/internal/session"
	"family-store/internal/storage"
	"family-store/internal/view"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

var (
	egg  = model.Product{ID: "h1", Name: "茶葉蛋", Price: 9, Category: model.CategoryHiLife}
	cola = model.Product{ID: "f1", Name: "可樂（小瓶）", Price: 35, Category: model.CategoryFamilyMart}
)

// MockCatalog is a mock implementation of Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) All() []model.Product {
	args := m.Called()
	return args.Get(0).([]model.Product)
}

func (m *MockCatalog) ByID(id string) (model.Product, bool) {
	args := m.Called(id)
	return args.Get(0).(model.Product), args.Bool(1)
}

func (m *MockCatalog) ByCategory(c model.Category) []model.Product {
	args := m.Called(c)
	return args.Get(0).([]model.Product)
}

func (m *MockCatalog) Sections() []model.Section {
	args := m.Called()
	return args.Get(0).([]model.Section)
}

func (m *MockCatalog) AddCustom(req *model.CustomProductRequest) (model.Product, error) {
	args := m.Called(req)
	return args.Get(0).(model.Product), args.Error(1)
}

// MockFormSubmitter is a mock implementation of checkout.FormSubmitter.
type MockFormSubmitter struct {
	mock.Mock
}

func (m *MockFormSubmitter) Submit(ctx context.Context, payload *checkout.FormPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type pngRenderer struct{}

func (pngRenderer) Render(*model.Order, string) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

func newTestSessions(t *testing.T, store storage.SnapshotStore, mode checkout.Mode, opts ...checkout.Option) *session.Manager {
	t.Helper()
	cfg := session.Config{
		Layout:          view.LayoutMulti,
		NotificationTTL: time.Minute,
		Checkout: checkout.Config{
			Mode:     mode,
			Location: time.UTC,
		},
	}
	m := session.NewManager(store, cfg, zerolog.Nop(), session.WithCheckoutOptions(opts...))
	t.Cleanup(m.CloseAll)
	return m
}
