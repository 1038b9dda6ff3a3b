package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gadgetstore/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

func (r *MemoryProductRepository) Find(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(filter.NameContains)
	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		switch {
		case filter.ActiveOnly && !p.IsActive,
			filter.NewArrivalOnly && !p.IsNewArrival,
			needle != "" && !strings.Contains(strings.ToLower(p.Name), needle),
			filter.MinPrice != nil && p.Price < *filter.MinPrice,
			filter.MaxPrice != nil && p.Price > *filter.MaxPrice,
			filter.Category != "" && p.Category != filter.Category:
			continue
		}
		productList = append(productList, p)
	}

	sort.SliceStable(productList, func(i, j int) bool {
		if filter.NewestFirst {
			return productList[i].CreatedOn.After(productList[j].CreatedOn)
		}
		return productList[i].CreatedOn.Before(productList[j].CreatedOn)
	})
	if filter.Limit > 0 && len(productList) > filter.Limit {
		productList = productList[:filter.Limit]
	}
	return productList, nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (r *MemoryProductRepository) GetByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []models.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *MemoryProductRepository) GetByName(_ context.Context, name string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, exists := r.products[product.ID]; exists {
		return ErrDuplicate
	}
	r.products[product.ID] = *product
	return nil
}

func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return ErrNotFound
	}
	r.products[product.ID] = *product
	return nil
}
