package repositories

import (
	"context"

	"gadgetstore/internal/models"
)

// ProductFilter narrows a product query. Zero values mean "no constraint".
type ProductFilter struct {
	ActiveOnly     bool            `json:"activeOnly,omitempty"`
	NewArrivalOnly bool            `json:"newArrivalOnly,omitempty"`
	NameContains   string          `json:"nameContains,omitempty"`
	MinPrice       *float64        `json:"minPrice,omitempty"`
	MaxPrice       *float64        `json:"maxPrice,omitempty"`
	Category       models.Category `json:"category,omitempty"`
	NewestFirst    bool            `json:"newestFirst,omitempty"`
	Limit          int             `json:"limit,omitempty"`
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Find(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	GetByName(ctx context.Context, name string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
}
