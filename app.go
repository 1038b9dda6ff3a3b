package main

import (
	"context"
	"encoding/json"
	"time"

	"gadgetstore/internal/config"
	"gadgetstore/internal/database"
	"gadgetstore/internal/handlers"
	"gadgetstore/internal/jobs"
	"gadgetstore/internal/mailer"
	"gadgetstore/internal/middleware"
	"gadgetstore/internal/repositories"
	"gadgetstore/internal/services"
	"gadgetstore/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	// requests may carry a full-size image plus multipart framing
	minBodyLimit = 8 << 20

	passwordResetQueue = "gadgetstore.password_reset_mailer"
	orderEventsQueue   = "gadgetstore.order_events"
)

// App is the assembled API server with the resources it owns.
type App struct {
	Fiber *fiber.App

	cfg     *config.Config
	log     *zap.Logger
	sched   *jobs.Scheduler
	mq      *rabbitmq.Client
	ping    func(ctx context.Context) error
	closers []func() error
}

type stores struct {
	products repositories.ProductRepository
	users    repositories.UserRepository
	carts    repositories.CartRepository
	orders   repositories.OrderRepository
}

// NewApp connects the configured backing services and builds the HTTP app.
// Redis and RabbitMQ are optional: an empty address disables them and an
// unreachable one is logged and skipped.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	st, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}
	st.products = a.withProductCache(ctx, st.products)

	var events services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, domain events disabled", zap.Error(err))
		} else {
			a.mq = mq
			events = mq
			a.closers = append(a.closers, mq.Close)
		}
	}

	a.sched, err = jobs.New(st.users, cfg.Jobs.PurgeSchedule, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	authService := services.NewAuthService(st.users, events, services.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		TokenTTL:      cfg.JWT.TTL,
		ResetURLBase:  cfg.Reset.URLBase,
		ResetTokenTTL: cfg.Reset.TokenTTL,
	})
	media := services.NewMediaService(cfg.Media.Root, cfg.Media.MaxBytes)
	validate := handlers.NewValidator()

	bodyLimit := int(cfg.Media.MaxBytes) * 2
	if bodyLimit < minBodyLimit {
		bodyLimit = minBodyLimit
	}
	app := fiber.New(fiber.Config{
		AppName:      "gadgetstore",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    bodyLimit,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.App.CORSOrigins}))

	app.Get("/health", a.handleHealth)
	app.Static("/images", cfg.Media.Root)

	auth := middleware.AuthRequired(authService)
	handlers.NewProductHandler(services.NewProductService(st.products), media, validate).RegisterRoutes(app, auth)
	handlers.NewUserHandler(authService, services.NewUserService(st.users), media, validate).RegisterRoutes(app, auth)
	handlers.NewCartHandler(services.NewCartService(st.carts, st.products), validate).RegisterRoutes(app, auth)
	handlers.NewOrderHandler(services.NewOrderService(st.orders, st.carts, st.products, st.users, events)).RegisterRoutes(app, auth)

	a.Fiber = app
	return a, nil
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	dbCfg := a.cfg.Database
	if dbCfg.Driver == config.DriverMongo {
		client, db, err := database.OpenMongo(ctx, dbCfg, a.log)
		if err != nil {
			return stores{}, err
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		a.ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		a.log.Info("connected to MongoDB", zap.String("database", dbCfg.MongoDatabase))
		return stores{
			products: repositories.NewMongoProductRepository(db),
			users:    repositories.NewMongoUserRepository(db),
			carts:    repositories.NewMongoCartRepository(db),
			orders:   repositories.NewMongoOrderRepository(db),
		}, nil
	}

	db, err := database.OpenGORM(dbCfg, a.log, a.cfg.Log.Level == "debug")
	if err != nil {
		return stores{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return stores{}, errors.Wrap(err, "get sql handle")
	}
	if dbCfg.Driver == config.DriverSQLite {
		// sqlite serializes writers; one connection keeps transactions from
		// failing with SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	}
	a.closers = append(a.closers, sqlDB.Close)
	a.ping = sqlDB.PingContext
	a.log.Info("connected to database", zap.String("driver", dbCfg.Driver))
	return stores{
		products: repositories.NewGORMProductRepository(db),
		users:    repositories.NewGORMUserRepository(db),
		carts:    repositories.NewGORMCartRepository(db),
		orders:   repositories.NewGORMOrderRepository(db),
	}, nil
}

func (a *App) withProductCache(ctx context.Context, inner repositories.ProductRepository) repositories.ProductRepository {
	rc := a.cfg.Redis
	if rc.Addr == "" {
		return inner
	}
	rdb := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		a.log.Warn("Redis unavailable, product cache disabled", zap.String("addr", rc.Addr), zap.Error(err))
		_ = rdb.Close()
		return inner
	}
	a.closers = append(a.closers, rdb.Close)
	a.log.Info("product cache enabled", zap.String("addr", rc.Addr), zap.Duration("ttl", rc.CacheTTL))
	return repositories.NewCachingProductRepository(rdb, rc.CacheTTL, inner, "products")
}

// StartBackground starts the scheduler and, when RabbitMQ is connected,
// the event consumers.
func (a *App) StartBackground() error {
	a.sched.Start()
	if a.mq == nil {
		return nil
	}

	if a.cfg.SMTP.Host != "" {
		m := mailer.New(a.cfg.SMTP, a.log)
		err := a.mq.Consume(passwordResetQueue, services.EventPasswordResetRequested, func(msg amqp.Delivery) error {
			return m.HandlePasswordReset(msg.Body)
		})
		if err != nil {
			return errors.Wrap(err, "start password reset consumer")
		}
	} else {
		a.log.Warn("SMTP_HOST not set, password reset emails will not be sent")
	}

	err := a.mq.Consume(orderEventsQueue, services.EventOrderCreated, func(msg amqp.Delivery) error {
		var evt services.OrderCreatedEvent
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			return errors.Wrap(err, "decode order event")
		}
		a.log.Info("order created",
			zap.String("order_id", evt.OrderID),
			zap.String("user_id", evt.UserID),
			zap.Int("items", evt.Items),
			zap.Float64("total", evt.TotalPrice))
		return nil
	})
	return errors.Wrap(err, "start order events consumer")
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	dbState := "up"
	status := fiber.StatusOK
	if a.ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := a.ping(ctx); err != nil {
			a.log.Warn("health check: database ping failed", zap.Error(err))
			dbState = "down"
			status = fiber.StatusServiceUnavailable
		}
	}
	health := "healthy"
	if status != fiber.StatusOK {
		health = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   health,
		"time":     time.Now().Format(time.RFC3339),
		"database": dbState,
		"events":   a.mq != nil,
	})
}

// Close stops background work and releases connections in reverse order
// of acquisition.
func (a *App) Close() error {
	if a.sched != nil {
		a.sched.Stop()
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
