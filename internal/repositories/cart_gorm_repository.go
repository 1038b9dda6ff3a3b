package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gadgetstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository. Lines are
// stored in their own table and rewritten on every save.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (r *GORMCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		return r.insert(ctx, cart)
	}

	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := casCart(tx, cart.ID, cart.Version, cart.TotalPrice, now); err != nil {
			return err
		}
		return replaceCartItems(tx, cart.ID, cart.Items)
	})
	if err != nil {
		return err
	}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

func (r *GORMCartRepository) insert(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	record := *cart
	record.ID = uuid.New().String()
	record.Version = 1
	record.CreatedAt, record.UpdatedAt = now, now
	record.Items = detachCartItems(record.Items)

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		// another request created this user's cart first
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrVersionConflict
		}
		return fmt.Errorf("failed to create cart: %w", err)
	}
	cart.ID = record.ID
	cart.Version = record.Version
	cart.CreatedAt, cart.UpdatedAt = now, now
	return nil
}

// casCart bumps the cart row from version to version+1 and writes total.
func casCart(tx *gorm.DB, id string, version int, total float64, now time.Time) error {
	res := tx.Model(&models.Cart{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"total_price": total,
			"version":     version + 1,
			"updated_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update cart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func replaceCartItems(tx *gorm.DB, cartID string, items []models.CartItem) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	rows := detachCartItems(items)
	for i := range rows {
		rows[i].CartID = cartID
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to write cart items: %w", err)
	}
	return nil
}

// detachCartItems copies items without their row ids so they insert fresh.
func detachCartItems(items []models.CartItem) []models.CartItem {
	rows := make([]models.CartItem, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].ID = 0
	}
	return rows
}
