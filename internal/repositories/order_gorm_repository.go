package repositories

import (
	"context"
	"fmt"
	"time"

	"gadgetstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) PlaceOrder(ctx context.Context, order *models.Order, cart *models.Cart) error {
	now := time.Now()
	record := *order
	record.ID = uuid.New().String()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := casCart(tx, cart.ID, cart.Version, 0, now); err != nil {
			return err
		}
		return replaceCartItems(tx, cart.ID, nil)
	})
	if err != nil {
		return err
	}

	*order = record
	cart.Clear()
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

func (r *GORMOrderRepository) GetByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *GORMOrderRepository) find(query *gorm.DB) ([]models.Order, error) {
	var orders []models.Order
	err := query.
		Preload("ProductsOrdered", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("ordered_on ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}
