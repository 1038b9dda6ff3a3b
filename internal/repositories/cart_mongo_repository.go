package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gadgetstore/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCartRepository stores one document per cart in the "carts"
// collection, which carries a unique index on userId.
type MongoCartRepository struct {
	coll *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{coll: db.Collection("carts")}
}

func (r *MongoCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (r *MongoCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	if cart.ID == "" {
		record := *cart
		record.ID = uuid.New().String()
		record.Version = 1
		record.CreatedAt, record.UpdatedAt = now, now
		if _, err := r.coll.InsertOne(ctx, record); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		*cart = record
		return nil
	}

	if err := casCartDocument(ctx, r.coll, cart.ID, cart.Version, cart.Items, cart.TotalPrice, now); err != nil {
		return err
	}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

func casCartDocument(ctx context.Context, coll *mongo.Collection, id string, version int, items []models.CartItem, total float64, now time.Time) error {
	if items == nil {
		items = []models.CartItem{}
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, "version": version},
		bson.M{"$set": bson.M{
			"cartItems":  items,
			"totalPrice": total,
			"version":    version + 1,
			"updatedAt":  now,
		}})
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}
