package repositories

import (
	"context"
	"fmt"
	"time"

	"gadgetstore/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrderRepository stores orders in the "orders" collection. Checkout
// runs inside a session transaction, which needs a replica set.
type MongoOrderRepository struct {
	client *mongo.Client
	orders *mongo.Collection
	carts  *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		client: db.Client(),
		orders: db.Collection("orders"),
		carts:  db.Collection("carts"),
	}
}

func (r *MongoOrderRepository) PlaceOrder(ctx context.Context, order *models.Order, cart *models.Cart) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	now := time.Now()
	record := *order
	record.ID = uuid.New().String()

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.orders.InsertOne(sc, record); err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		return nil, casCartDocument(sc, r.carts, cart.ID, cart.Version, nil, 0, now)
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

func (r *MongoOrderRepository) GetByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrderRepository) find(ctx context.Context, query bson.M) ([]models.Order, error) {
	cur, err := r.orders.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "orderedOn", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}
