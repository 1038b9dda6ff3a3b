package repositories

import (
	"context"
	"time"

	"gadgetstore/internal/models"

	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository
// backed by the same store as a MemoryCartRepository.
type MemoryOrderRepository struct {
	store *memoryStore
}

func NewMemoryOrderRepository(carts *MemoryCartRepository) *MemoryOrderRepository {
	return &MemoryOrderRepository{store: carts.store}
}

func (r *MemoryOrderRepository) PlaceOrder(_ context.Context, order *models.Order, cart *models.Cart) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.carts[cart.UserID]
	if !ok || stored.ID != cart.ID {
		return ErrNotFound
	}
	if stored.Version != cart.Version {
		return ErrVersionConflict
	}

	order.ID = uuid.New().String()
	r.store.orders = append(r.store.orders, cloneOrder(*order))

	cart.Clear()
	cart.Version++
	cart.UpdatedAt = time.Now()
	r.store.carts[cart.UserID] = *cloneCart(*cart)
	return nil
}

func (r *MemoryOrderRepository) GetByUserID(_ context.Context, userID string) ([]models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var orders []models.Order
	for _, o := range r.store.orders {
		if o.UserID == userID {
			orders = append(orders, cloneOrder(o))
		}
	}
	return orders, nil
}

func (r *MemoryOrderRepository) GetAll(_ context.Context) ([]models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	orders := make([]models.Order, 0, len(r.store.orders))
	for _, o := range r.store.orders {
		orders = append(orders, cloneOrder(o))
	}
	return orders, nil
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.ProductsOrdered))
	copy(items, o.ProductsOrdered)
	o.ProductsOrdered = items
	return o
}
