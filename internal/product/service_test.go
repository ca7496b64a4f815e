package product_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vasiliy-maslov/product-order-service/internal/product"
)

type mockProductRepository struct {
	createFunc         func(ctx context.Context, p *product.Product) (primitive.ObjectID, error)
	getByIDFunc        func(ctx context.Context, id primitive.ObjectID) (*product.Product, error)
	existsByNameFunc   func(ctx context.Context, name string) (bool, error)
	decrementStockFunc func(ctx context.Context, id primitive.ObjectID, quantity int) error
	listFunc           func(ctx context.Context, filter product.ListFilter, page, limit int) ([]product.Product, int64, error)
}

func (m *mockProductRepository) Create(ctx context.Context, p *product.Product) (primitive.ObjectID, error) {
	return m.createFunc(ctx, p)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*product.Product, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return m.existsByNameFunc(ctx, name)
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	return m.decrementStockFunc(ctx, id, quantity)
}

func (m *mockProductRepository) List(ctx context.Context, filter product.ListFilter, page, limit int) ([]product.Product, int64, error) {
	return m.listFunc(ctx, filter, page, limit)
}

func TestProductService_CreateProduct(t *testing.T) {
	tests := []struct {
		name             string
		input            *product.Product
		existsByNameFunc func(ctx context.Context, name string) (bool, error)
		createFunc       func(ctx context.Context, p *product.Product) (primitive.ObjectID, error)
		wantErr          bool
		wantErrIs        error
	}{
		{
			name:  "successful_creation",
			input: &product.Product{Name: "Widget", Description: "A widget", Price: 10.00, StockQuantity: 5},
			existsByNameFunc: func(ctx context.Context, name string) (bool, error) {
				return false, nil
			},
			createFunc: func(ctx context.Context, p *product.Product) (primitive.ObjectID, error) {
				return primitive.NewObjectID(), nil
			},
		},
		{
			name:  "duplicate_name",
			input: &product.Product{Name: "Widget", Description: "A widget", Price: 10.00, StockQuantity: 5},
			existsByNameFunc: func(ctx context.Context, name string) (bool, error) {
				return true, nil
			},
			createFunc: func(ctx context.Context, p *product.Product) (primitive.ObjectID, error) {
				t.Fatal("create must not be called for a duplicate name")
				return primitive.NilObjectID, nil
			},
			wantErr:   true,
			wantErrIs: product.ErrProductExists,
		},
		{
			name:  "repository_error",
			input: &product.Product{Name: "Widget", Description: "A widget", Price: 10.00, StockQuantity: 5},
			existsByNameFunc: func(ctx context.Context, name string) (bool, error) {
				return false, nil
			},
			createFunc: func(ctx context.Context, p *product.Product) (primitive.ObjectID, error) {
				return primitive.NilObjectID, errors.New("insert failed")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockProductRepository{
				existsByNameFunc: tt.existsByNameFunc,
				createFunc:       tt.createFunc,
			}
			svc := product.NewService(mockRepo)

			id, err := svc.CreateProduct(context.Background(), tt.input)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					assert.True(t, errors.Is(err, tt.wantErrIs))
				}
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, primitive.NilObjectID, id)
				assert.True(t, tt.input.IsActive)
			}
		})
	}
}

func TestProductService_CreateProduct_RoundsPrice(t *testing.T) {
	var saved *product.Product
	mockRepo := &mockProductRepository{
		existsByNameFunc: func(ctx context.Context, name string) (bool, error) { return false, nil },
		createFunc: func(ctx context.Context, p *product.Product) (primitive.ObjectID, error) {
			saved = p
			return primitive.NewObjectID(), nil
		},
	}
	svc := product.NewService(mockRepo)

	_, err := svc.CreateProduct(context.Background(), &product.Product{
		Name:        "Widget",
		Description: "A widget",
		Price:       10.996,
	})

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.InDelta(t, 11.00, saved.Price, 1e-9)
}

func TestProductService_GetProductByID(t *testing.T) {
	productID := primitive.NewObjectID()

	tests := []struct {
		name        string
		getByIDFunc func(ctx context.Context, id primitive.ObjectID) (*product.Product, error)
		wantErrIs   error
	}{
		{
			name: "active_product_found",
			getByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*product.Product, error) {
				return &product.Product{ID: productID, Name: "Widget", IsActive: true}, nil
			},
		},
		{
			name: "missing_product",
			getByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*product.Product, error) {
				return nil, product.ErrProductNotFound
			},
			wantErrIs: product.ErrProductNotFound,
		},
		{
			name: "inactive_product_treated_as_missing",
			getByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*product.Product, error) {
				return &product.Product{ID: productID, Name: "Widget", IsActive: false}, nil
			},
			wantErrIs: product.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockProductRepository{getByIDFunc: tt.getByIDFunc}
			svc := product.NewService(mockRepo)

			p, err := svc.GetProductByID(context.Background(), productID)
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErrIs))
			} else {
				require.NoError(t, err)
				assert.Equal(t, productID, p.ID)
			}
		})
	}
}

func TestProduct_InStock(t *testing.T) {
	p := &product.Product{StockQuantity: 3}

	assert.True(t, p.InStock(1))
	assert.True(t, p.InStock(3))
	assert.False(t, p.InStock(4))
}
