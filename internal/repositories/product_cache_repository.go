package repositories

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gadgetstore/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachingProductRepository decorates a ProductRepository with Redis caching
// of catalog reads. Any write drops every cached entry of the namespace.
// A nil client disables caching entirely.
type CachingProductRepository struct {
	inner     ProductRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingProductRepository wraps inner. If ttl is not positive it defaults
// to 5 minutes; an empty namespace defaults to "products".
func NewCachingProductRepository(rdb *redis.Client, ttl time.Duration, inner ProductRepository, namespace string) *CachingProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "products"
	}
	return &CachingProductRepository{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

func (c *CachingProductRepository) Find(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, filter)
	}
	key := c.findKey(filter)

	var cached []models.Product
	if c.load(ctx, key, &cached) {
		return cached, nil
	}
	products, err := c.inner.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, products)
	return products, nil
}

func (c *CachingProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if c.rdb == nil {
		return c.inner.GetByID(ctx, id)
	}
	key := c.idKey(id)

	var cached models.Product
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}
	product, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, product)
	return product, nil
}

func (c *CachingProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	return c.inner.GetByIDs(ctx, ids)
}

func (c *CachingProductRepository) GetByName(ctx context.Context, name string) (*models.Product, error) {
	return c.inner.GetByName(ctx, name)
}

func (c *CachingProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.inner.Create(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachingProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := c.inner.Update(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// load decodes the entry at key into dst. Corrupted entries are removed.
func (c *CachingProductRepository) load(ctx context.Context, key string, dst interface{}) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *CachingProductRepository) store(ctx context.Context, key string, value interface{}) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		zap.L().Warn("product cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate deletes every key of the namespace using SCAN.
func (c *CachingProductRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.namespace+":*", 200).Result()
		if err != nil {
			zap.L().Warn("product cache invalidation failed", zap.Error(err))
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				zap.L().Warn("product cache invalidation failed", zap.Error(err))
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

func (c *CachingProductRepository) findKey(filter ProductFilter) string {
	b, _ := json.Marshal(filter)
	sum := sha1.Sum(b)
	return fmt.Sprintf("%s:find:%s", c.namespace, hex.EncodeToString(sum[:]))
}

func (c *CachingProductRepository) idKey(id string) string {
	return fmt.Sprintf("%s:id:%s", c.namespace, id)
}
