// Package catalog contains the product catalog application services.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/catalog"
	"github.com/omnistock/backend/internal/domain/shared"
)

// ProductService handles product catalog use cases
type ProductService struct {
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(products catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		products: products,
		logger:   logger,
	}
}

// Create creates a new product. SKUs are unique; a duplicate is rejected
// before hitting the database constraint so the caller gets a clean error.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	unitsPerPackage := req.UnitsPerPackage
	if unitsPerPackage == 0 {
		unitsPerPackage = 1
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, unitsPerPackage, req.UnitCost)
	if err != nil {
		return nil, err
	}

	exists, err := s.products.ExistsBySKU(ctx, product.SKU)
	if err != nil {
		return nil, fmt.Errorf("checking SKU uniqueness: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_SKU", "A product with this SKU already exists")
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("saving product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)

	response := ToProductResponse(product)
	return &response, nil
}

// Update changes a product's mutable attributes using optimistic locking
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unitsPerPackage := req.UnitsPerPackage
	if unitsPerPackage == 0 {
		unitsPerPackage = product.UnitsPerPackage
	}

	if err := product.Update(req.Name, unitsPerPackage, req.UnitCost); err != nil {
		return nil, err
	}

	if err := s.products.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)

	response := ToProductResponse(product)
	return &response, nil
}

// BindChannel stores a marketplace-side identifier on the product
func (s *ProductService) BindChannel(ctx context.Context, id uuid.UUID, req BindChannelRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	channelCode := strings.ToUpper(strings.TrimSpace(req.Channel))
	if err := product.SetChannelID(channelCode, req.ItemID); err != nil {
		return nil, err
	}

	if err := s.products.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Channel identifier bound",
		zap.String("product_id", product.ID.String()),
		zap.String("channel", channelCode),
		zap.String("item_id", req.ItemID),
	)

	response := ToProductResponse(product)
	return &response, nil
}

// Get returns a product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetBySKU returns a product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.products.FindBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns a page of products matching the request
func (s *ProductService) List(ctx context.Context, req ListProductsRequest) (*shared.Paginated[ProductResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search

	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}

	result := shared.NewPaginated(responses, total, filter.Page, filter.Limit())
	return &result, nil
}

// Delete removes a product. The movement log keeps its rows; history
// outlives the catalog entry.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	s.logger.Info("Product deleted",
		zap.String("product_id", id.String()),
		zap.String("sku", product.SKU),
	)
	return nil
}
