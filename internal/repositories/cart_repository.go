package repositories

import (
	"context"

	"gadgetstore/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByUserID returns the cart owned by userID. Items is never nil.
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	// Save persists cart. A cart without an ID is inserted at version 1.
	// Otherwise the write only succeeds when the stored version still equals
	// cart.Version, after which cart.Version is advanced. A lost race
	// returns ErrVersionConflict.
	Save(ctx context.Context, cart *models.Cart) error
}
