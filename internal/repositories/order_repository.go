package repositories

import (
	"context"

	"gadgetstore/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// PlaceOrder inserts order and empties cart in a single unit of work.
	// The cart reset is conditioned on cart.Version; if the cart changed
	// since it was read, nothing is written and ErrVersionConflict is
	// returned. On success cart reflects the emptied state.
	PlaceOrder(ctx context.Context, order *models.Order, cart *models.Cart) error
	GetByUserID(ctx context.Context, userID string) ([]models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
}
