package service

import (
	"context"
	"testing"

	"family-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Products(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	tests := []struct {
		name        string
		category    string
		setupMock   func(m *MockCatalog)
		expected    []model.Product
		expectedErr error
	}{
		{
			name:     "All products",
			category: "",
			setupMock: func(m *MockCatalog) {
				m.On("All").Return([]model.Product{egg, cola})
			},
			expected: []model.Product{egg, cola},
		},
		{
			name:     "Filter by display label",
			category: string(model.CategoryHiLife),
			setupMock: func(m *MockCatalog) {
				m.On("ByCategory", model.CategoryHiLife).Return([]model.Product{egg})
			},
			expected: []model.Product{egg},
		},
		{
			name:     "Filter by enum key",
			category: "FAMILY_MART",
			setupMock: func(m *MockCatalog) {
				m.On("ByCategory", model.CategoryFamilyMart).Return([]model.Product{cola})
			},
			expected: []model.Product{cola},
		},
		{
			name:        "Unknown category",
			category:    "7-ELEVEN",
			setupMock:   func(m *MockCatalog) {},
			expectedErr: model.ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCatalog := new(MockCatalog)
			tt.setupMock(mockCatalog)

			service := NewCatalogService(mockCatalog, logger)
			products, err := service.Products(ctx, tt.category)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, products)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, products)
			}

			mockCatalog.AssertExpectations(t)
		})
	}
}

func TestCatalogService_Sections(t *testing.T) {
	mockCatalog := new(MockCatalog)
	sections := []model.Section{{Category: model.CategoryHiLife, Products: []model.Product{egg}}}
	mockCatalog.On("Sections").Return(sections)

	service := NewCatalogService(mockCatalog, zerolog.Nop())
	got, err := service.Sections(context.Background())

	require.NoError(t, err)
	assert.Equal(t, sections, got)
	mockCatalog.AssertExpectations(t)
}

func TestCatalogService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	tests := []struct {
		name        string
		productID   string
		setupMock   func(m *MockCatalog)
		expectedErr error
	}{
		{
			name:      "Success",
			productID: "h1",
			setupMock: func(m *MockCatalog) {
				m.On("ByID", "h1").Return(egg, true)
			},
		},
		{
			name:      "Product not found",
			productID: "zz",
			setupMock: func(m *MockCatalog) {
				m.On("ByID", "zz").Return(model.Product{}, false)
			},
			expectedErr: model.ErrProductNotFound,
		},
		{
			name:        "Empty product ID",
			productID:   "",
			setupMock:   func(m *MockCatalog) {},
			expectedErr: model.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCatalog := new(MockCatalog)
			tt.setupMock(mockCatalog)

			service := NewCatalogService(mockCatalog, logger)
			product, err := service.GetByID(ctx, tt.productID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, product)
			} else {
				require.NoError(t, err)
				require.NotNil(t, product)
				assert.Equal(t, egg, *product)
			}

			mockCatalog.AssertExpectations(t)
		})
	}
}

func TestCatalogService_AddCustom(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	req := &model.CustomProductRequest{Name: "豆漿", Price: 25}
	created := model.Product{ID: "custom-1", Name: "豆漿", Price: 25, Category: model.CategoryCustom}

	t.Run("Success", func(t *testing.T) {
		mockCatalog := new(MockCatalog)
		mockCatalog.On("AddCustom", req).Return(created, nil)

		service := NewCatalogService(mockCatalog, logger)
		product, err := service.AddCustom(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, created, *product)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("Disabled", func(t *testing.T) {
		mockCatalog := new(MockCatalog)
		mockCatalog.On("AddCustom", req).Return(model.Product{}, model.ErrCustomProductsDisabled)

		service := NewCatalogService(mockCatalog, logger)
		product, err := service.AddCustom(ctx, req)

		assert.ErrorIs(t, err, model.ErrCustomProductsDisabled)
		assert.Nil(t, product)
		mockCatalog.AssertExpectations(t)
	})
}
