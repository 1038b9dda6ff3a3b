package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gadgetstore/internal/apperr"
	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"

	"go.uber.org/zap"
)

// NewArrivalsLimit caps the new arrivals listing.
const NewArrivalsLimit = 8

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
	now  func() time.Time
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
		now:  time.Now,
	}
}

type CreateProductInput struct {
	Name         string
	Description  string
	Price        float64
	Category     models.Category
	ImageURL     string
	IsNewArrival bool
}

// UpdateProductInput holds the fields to change; nil fields are left as is.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Price        *float64
	Category     *models.Category
	ImageURL     *string
	IsNewArrival *bool
}

// CreateProduct adds an active product to the catalog. Names must be unique;
// the category defaults to Accessories.
func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Product name is required")
	}
	if in.Price < 0 {
		return nil, apperr.Validation("Price must not be negative")
	}
	category := in.Category
	if category == "" {
		category = models.CategoryAccessories
	}
	if !category.Valid() {
		return nil, apperr.Validation("Invalid category")
	}

	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:         name,
		Description:  in.Description,
		Price:        in.Price,
		Category:     category,
		IsActive:     true,
		IsNewArrival: in.IsNewArrival,
		ImageURL:     in.ImageURL,
		CreatedOn:    s.now(),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("Product already exists")
		}
		return nil, apperr.Internal(err, "create product")
	}
	return product, nil
}

// GetAllProducts retrieves every product, archived ones included.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.findNonEmpty(ctx, repositories.ProductFilter{}, "No products found")
}

func (s *ProductService) GetActiveProducts(ctx context.Context) ([]models.Product, error) {
	return s.findNonEmpty(ctx, repositories.ProductFilter{ActiveOnly: true}, "No active products found")
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, apperr.Internal(err, "get product")
	}
	return product, nil
}

// UpdateProduct applies the non-nil fields of in to the product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("Product name is required")
		}
		if name != product.Name {
			if err := s.ensureNameFree(ctx, name, product.ID); err != nil {
				return nil, err
			}
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperr.Validation("Price must not be negative")
		}
		product.Price = *in.Price
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, apperr.Validation("Invalid category")
		}
		product.Category = *in.Category
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if in.IsNewArrival != nil {
		product.IsNewArrival = *in.IsNewArrival
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ArchiveProduct hides a product from the storefront. changed is false when
// the product was already archived.
func (s *ProductService) ArchiveProduct(ctx context.Context, id string) (*models.Product, bool, error) {
	return s.setActive(ctx, id, false)
}

// ActivateProduct is the inverse of ArchiveProduct.
func (s *ProductService) ActivateProduct(ctx context.Context, id string) (*models.Product, bool, error) {
	return s.setActive(ctx, id, true)
}

// SearchByName returns the active products whose name contains name,
// ignoring case. The match is literal.
func (s *ProductService) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(http.StatusBadRequest, "MISSING_PRODUCT_NAME", "Product name is required")
	}
	products, err := s.repo.Find(ctx, repositories.ProductFilter{ActiveOnly: true, NameContains: name})
	if err != nil {
		return nil, apperr.Internal(err, "search products by name")
	}
	return nonNil(products), nil
}

// SearchByPrice returns active products priced within [min, max]. A nil
// bound is open: min defaults to 0 and max to unbounded.
func (s *ProductService) SearchByPrice(ctx context.Context, minPrice, maxPrice *float64) ([]models.Product, error) {
	lo := 0.0
	if minPrice != nil {
		lo = *minPrice
	}
	if lo < 0 || (maxPrice != nil && *maxPrice < 0) {
		return nil, apperr.Validation("Prices must not be negative")
	}
	if maxPrice != nil && lo > *maxPrice {
		return nil, apperr.Validation("minPrice must not exceed maxPrice")
	}
	return s.findNonEmpty(ctx, repositories.ProductFilter{
		ActiveOnly: true,
		MinPrice:   &lo,
		MaxPrice:   maxPrice,
	}, "No products found within the price range")
}

// GetByCategory returns the active products of category.
func (s *ProductService) GetByCategory(ctx context.Context, category string) ([]models.Product, error) {
	c := models.Category(category)
	if !c.Valid() {
		return nil, apperr.New(http.StatusBadRequest, "INVALID_CATEGORY", "Invalid category")
	}
	products, err := s.repo.Find(ctx, repositories.ProductFilter{ActiveOnly: true, Category: c})
	if err != nil {
		return nil, apperr.Internal(err, "list products by category")
	}
	return nonNil(products), nil
}

// GetNewArrivals returns up to NewArrivalsLimit active new arrivals, newest
// first. Lookup failures are logged and yield an empty list.
func (s *ProductService) GetNewArrivals(ctx context.Context) []models.Product {
	products, err := s.repo.Find(ctx, repositories.ProductFilter{
		ActiveOnly:     true,
		NewArrivalOnly: true,
		NewestFirst:    true,
		Limit:          NewArrivalsLimit,
	})
	if err != nil {
		zap.L().Error("failed to list new arrivals", zap.Error(err))
		return []models.Product{}
	}
	return nonNil(products)
}

func (s *ProductService) setActive(ctx context.Context, id string, active bool) (*models.Product, bool, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if product.IsActive == active {
		return product, false, nil
	}
	product.IsActive = active
	if err := s.save(ctx, product); err != nil {
		return nil, false, err
	}
	return product, true, nil
}

func (s *ProductService) save(ctx context.Context, product *models.Product) error {
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return apperr.Internal(err, "update product")
	}
	return nil
}

// ensureNameFree fails with Conflict if another product than exceptID
// already uses name.
func (s *ProductService) ensureNameFree(ctx context.Context, name, exceptID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != exceptID:
		return apperr.Conflict("Product already exists")
	case err == nil, errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return apperr.Internal(err, "check product name")
	}
}

func (s *ProductService) findNonEmpty(ctx context.Context, filter repositories.ProductFilter, emptyMsg string) ([]models.Product, error) {
	products, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err, "list products")
	}
	if len(products) == 0 {
		return nil, apperr.NotFound(emptyMsg)
	}
	return products, nil
}

func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
