package repositories

import (
	"context"
	"sync"
	"time"

	"gadgetstore/internal/models"

	"github.com/google/uuid"
)

// MemoryCartRepository is an in-memory implementation of CartRepository.
// It shares its lock with MemoryOrderRepository so that checkout can update
// both atomically.
type MemoryCartRepository struct {
	store *memoryStore
}

// memoryStore holds carts keyed by user id.
type memoryStore struct {
	mu     sync.Mutex
	carts  map[string]models.Cart
	orders []models.Order
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: make(map[string]models.Cart)}
}

// NewMemoryCartRepository creates a cart store. Pass it to
// NewMemoryOrderRepository to share state with orders.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{store: newMemoryStore()}
}

func (r *MemoryCartRepository) GetByUserID(_ context.Context, userID string) (*models.Cart, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cart, ok := r.store.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCart(cart), nil
}

func (r *MemoryCartRepository) Save(_ context.Context, cart *models.Cart) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	stored, exists := r.store.carts[cart.UserID]
	if cart.ID == "" {
		if exists {
			return ErrVersionConflict
		}
		cart.ID = uuid.New().String()
		cart.Version = 1
		cart.CreatedAt = now
	} else {
		if !exists || stored.ID != cart.ID {
			return ErrNotFound
		}
		if stored.Version != cart.Version {
			return ErrVersionConflict
		}
		cart.Version++
	}
	cart.UpdatedAt = now
	r.store.carts[cart.UserID] = *cloneCart(*cart)
	return nil
}

func cloneCart(c models.Cart) *models.Cart {
	items := make([]models.CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return &c
}
