// Package database opens the configured storage backends.
package database

import (
	"context"
	"time"

	"gadgetstore/internal/config"
	"gadgetstore/internal/logger"
	"gadgetstore/internal/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenGORM connects to the relational database named by cfg.Driver and
// migrates the schema.
func OpenGORM(cfg config.DatabaseConfig, log *zap.Logger, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, errors.Errorf("driver %q is not relational", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(log, debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table used by the API.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	return errors.Wrap(err, "failed to auto-migrate database")
}

// OpenMongo connects to MongoDB, verifies the connection and ensures the
// unique indexes the repositories rely on. Checkout needs multi-document
// transactions, so a standalone server is reported with a warning.
func OpenMongo(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "failed to ping mongo")
	}

	db := client.Database(cfg.MongoDatabase)
	if err := EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	ok, err := SupportsTransactions(ctx, db)
	switch {
	case err != nil:
		log.Warn("could not determine MongoDB topology", zap.Error(err))
	case !ok:
		log.Warn("MongoDB is not a replica set member, checkout will fail until it runs as one",
			zap.String("database", cfg.MongoDatabase))
	}
	return client, db, nil
}

// SupportsTransactions reports whether the deployment behind db can run
// multi-document transactions, i.e. it is a replica set member or a mongos.
func SupportsTransactions(ctx context.Context, db *mongo.Database) (bool, error) {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := db.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return false, errors.Wrap(err, "run hello")
	}
	return hello.SetName != "" || hello.Msg == "isdbgrid", nil
}

// EnsureMongoIndexes creates the unique and lookup indexes of every collection.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		"carts": {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"products": {
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdOn", Value: -1}}},
		},
		"orders": {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return errors.Wrapf(err, "failed to create indexes on %s", coll)
		}
	}
	return nil
}
