package repositories_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"gadgetstore/internal/config"
	"gadgetstore/internal/database"
	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenGORM(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + name + "?mode=memory&cache=shared",
	}, zap.NewNop(), false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedProduct(t *testing.T, repo repositories.ProductRepository, name string, price float64, active bool, createdOn time.Time) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:      name,
		Price:     price,
		Category:  models.CategoryAccessories,
		IsActive:  active,
		CreatedOn: createdOn,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestGORMProductRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seedProduct(t, repo, "Smartphone X", 500, true, base)
	seedProduct(t, repo, "Phone Case 100%", 15, true, base.Add(time.Hour))
	seedProduct(t, repo, "Old Phone", 50, false, base.Add(2*time.Hour))
	seedProduct(t, repo, "Laptop", 1200, true, base.Add(3*time.Hour))

	t.Run("name contains is case-insensitive and active only", func(t *testing.T) {
		got, err := repo.Find(ctx, repositories.ProductFilter{ActiveOnly: true, NameContains: "PHONE"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Smartphone X", got[0].Name)
		assert.Equal(t, "Phone Case 100%", got[1].Name)
	})

	t.Run("wildcards match literally", func(t *testing.T) {
		got, err := repo.Find(ctx, repositories.ProductFilter{NameContains: "100%"})
		require.NoError(t, err)
		require.Len(t, got, 1)

		got, err = repo.Find(ctx, repositories.ProductFilter{NameContains: "%"})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("inclusive price bounds", func(t *testing.T) {
		lo, hi := 15.0, 500.0
		got, err := repo.Find(ctx, repositories.ProductFilter{ActiveOnly: true, MinPrice: &lo, MaxPrice: &hi})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("newest first with limit", func(t *testing.T) {
		got, err := repo.Find(ctx, repositories.ProductFilter{NewestFirst: true, Limit: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Laptop", got[0].Name)
		assert.Equal(t, "Old Phone", got[1].Name)
	})
}

func TestGORMProductRepository_UpdateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	p := seedProduct(t, repo, "Headphones", 80, true, time.Now())

	p.IsActive = false
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	byName, err := repo.GetByName(ctx, "Headphones")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Update(ctx, &models.Product{ID: "missing", Name: "ghost"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	count, err := repo.Find(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, count, 1)
}

func TestGORMUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@example.com", Password: "hash"}))
	err := repo.Create(ctx, &models.User{Email: "a@example.com", Password: "hash"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestGORMUserRepository_ResetTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	token := "tok"
	expires := time.Now().Add(time.Hour)
	user := &models.User{Email: "b@example.com", Password: "old"}
	require.NoError(t, repo.Create(ctx, user))
	user.ResetPasswordToken = &token
	user.ResetPasswordExpires = &expires
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.GetByResetToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, repo.ConsumeResetToken(ctx, user.ID, "tok", "new"))
	assert.ErrorIs(t, repo.ConsumeResetToken(ctx, user.ID, "tok", "newer"), repositories.ErrNotFound)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Password)
	assert.Nil(t, got.ResetPasswordToken)
	assert.Nil(t, got.ResetPasswordExpires)
}

func TestGORMUserRepository_ClearExpiredResetTokens(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))
	now := time.Now()

	expired, live := "expired", "live"
	past, future := now.Add(-time.Minute), now.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, &models.User{Email: "c@example.com", ResetPasswordToken: &expired, ResetPasswordExpires: &past}))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "d@example.com", ResetPasswordToken: &live, ResetPasswordExpires: &future}))

	n, err := repo.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.GetByResetToken(ctx, "expired")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByResetToken(ctx, "live")
	assert.NoError(t, err)
}

func TestGORMCartRepository_OptimisticSave(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMCartRepository(newTestDB(t))

	cart := models.NewCart("user-1")
	cart.Merge(models.CartItem{ProductID: "p1", ProductName: "Mouse", Quantity: 2, Price: 10, Subtotal: 20})
	require.NoError(t, repo.Save(ctx, cart))
	assert.Equal(t, 1, cart.Version)

	stale, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, stale.Items, 1)

	cart.Merge(models.CartItem{ProductID: "p2", ProductName: "Pad", Quantity: 1, Price: 5, Subtotal: 5})
	require.NoError(t, repo.Save(ctx, cart))
	assert.Equal(t, 2, cart.Version)

	stale.Clear()
	assert.ErrorIs(t, repo.Save(ctx, stale), repositories.ErrVersionConflict)

	got, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, 25.0, got.TotalPrice)
	assert.Equal(t, 2, got.Version)

	second := models.NewCart("user-1")
	assert.ErrorIs(t, repo.Save(ctx, second), repositories.ErrVersionConflict)
}

func TestGORMCartRepository_EmptyCartHasNonNilItems(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMCartRepository(newTestDB(t))

	require.NoError(t, repo.Save(ctx, models.NewCart("user-2")))
	got, err := repo.GetByUserID(ctx, "user-2")
	require.NoError(t, err)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)

	_, err = repo.GetByUserID(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMOrderRepository_PlaceOrderResetsCart(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	carts := repositories.NewGORMCartRepository(db)
	orders := repositories.NewGORMOrderRepository(db)

	cart := models.NewCart("user-1")
	cart.Merge(models.CartItem{ProductID: "p1", Quantity: 2, Price: 10, Subtotal: 20})
	require.NoError(t, carts.Save(ctx, cart))

	order := models.NewOrderFromCart(cart, time.Now())
	require.NoError(t, orders.PlaceOrder(ctx, order, cart))
	assert.NotEmpty(t, order.ID)
	assert.Empty(t, cart.Items)

	stored, err := carts.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
	assert.Zero(t, stored.TotalPrice)
	assert.Equal(t, cart.Version, stored.Version)

	got, err := orders.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 20.0, got[0].TotalPrice)
	require.Len(t, got[0].ProductsOrdered, 1)
	assert.Equal(t, 2, got[0].ProductsOrdered[0].Quantity)
}

func TestGORMOrderRepository_StaleCartRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	carts := repositories.NewGORMCartRepository(db)
	orders := repositories.NewGORMOrderRepository(db)

	cart := models.NewCart("user-1")
	cart.Merge(models.CartItem{ProductID: "p1", Quantity: 1, Price: 10, Subtotal: 10})
	require.NoError(t, carts.Save(ctx, cart))

	stale, err := carts.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	cart.Merge(models.CartItem{ProductID: "p1", Quantity: 1, Price: 10, Subtotal: 10})
	require.NoError(t, carts.Save(ctx, cart))

	err = orders.PlaceOrder(ctx, models.NewOrderFromCart(stale, time.Now()), stale)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)

	all, err := orders.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	stored, err := carts.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, stored.TotalPrice)
}
