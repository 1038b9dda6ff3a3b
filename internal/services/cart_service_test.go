package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"
	"gadgetstore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var shopper = services.Identity{UserID: "user-1"}

func newCartService() (*services.CartService, *MockCartRepository, *MockProductRepository) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	return services.NewCartService(carts, products), carts, products
}

func cartWith(lines ...models.CartItem) *models.Cart {
	cart := models.NewCart("user-1")
	cart.ID = "cart-1"
	cart.Version = 3
	for _, l := range lines {
		cart.Merge(l)
	}
	return cart
}

func TestCartService_AddToCartMergesCumulatively(t *testing.T) {
	ctx := context.Background()
	service, carts, products := newCartService()

	existing := cartWith(models.CartItem{ProductID: "A", ProductName: "Mouse", Quantity: 2, Price: 10, Subtotal: 20})
	products.On("GetByIDs", ctx, []string{"A"}).Return([]models.Product{{ID: "A", Name: "Mouse", Price: 10}}, nil).Once()
	carts.On("GetByUserID", ctx, "user-1").Return(existing, nil).Once()
	carts.On("Save", ctx, existing).Return(nil).Once()

	cart, err := service.AddToCart(ctx, shopper, []services.CartItemInput{{ProductID: "A", Quantity: 3}})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 50.0, cart.Items[0].Subtotal)
	assert.Equal(t, 50.0, cart.TotalPrice)
	carts.AssertExpectations(t)
}

func TestCartService_AddToCartCreatesCartAndUsesCatalogPrice(t *testing.T) {
	ctx := context.Background()
	service, carts, products := newCartService()

	products.On("GetByIDs", ctx, []string{"A", "ghost"}).Return([]models.Product{{ID: "A", Name: "Mouse", Price: 19.99}}, nil).Once()
	carts.On("GetByUserID", ctx, "user-1").Return(nil, repositories.ErrNotFound).Once()
	carts.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

	cart, err := service.AddToCart(ctx, shopper, []services.CartItemInput{
		{ProductID: "A", Quantity: 2},
		{ProductID: "ghost", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Mouse", cart.Items[0].ProductName)
	assert.Equal(t, 19.99, cart.Items[0].Price)
	assert.Equal(t, 39.98, cart.TotalPrice)
	assert.Equal(t, "user-1", cart.UserID)
}

func TestCartService_AddToCartRejections(t *testing.T) {
	ctx := context.Background()

	service, _, _ := newCartService()
	_, err := service.AddToCart(ctx, services.Identity{UserID: "admin", IsAdmin: true}, []services.CartItemInput{{ProductID: "A", Quantity: 1}})
	assertStatus(t, err, http.StatusForbidden)

	_, err = service.AddToCart(ctx, shopper, nil)
	assertStatus(t, err, http.StatusBadRequest)

	_, err = service.AddToCart(ctx, shopper, []services.CartItemInput{{ProductID: "A", Quantity: 0}})
	assertStatus(t, err, http.StatusBadRequest)

	service, _, products := newCartService()
	products.On("GetByIDs", ctx, []string{"ghost"}).Return([]models.Product{}, nil).Once()
	_, err = service.AddToCart(ctx, shopper, []services.CartItemInput{{ProductID: "ghost", Quantity: 1}})
	assertStatus(t, err, http.StatusNotFound)
}

func TestCartService_AddToCartVersionConflict(t *testing.T) {
	ctx := context.Background()
	service, carts, products := newCartService()

	products.On("GetByIDs", ctx, []string{"A"}).Return([]models.Product{{ID: "A", Price: 1}}, nil).Once()
	carts.On("GetByUserID", ctx, "user-1").Return(cartWith(), nil).Once()
	carts.On("Save", ctx, mock.Anything).Return(repositories.ErrVersionConflict).Once()

	_, err := service.AddToCart(ctx, shopper, []services.CartItemInput{{ProductID: "A", Quantity: 1}})
	assertStatus(t, err, http.StatusConflict)
}

func TestCartService_UpdateCartQuantity(t *testing.T) {
	ctx := context.Background()
	service, carts, products := newCartService()

	cart := cartWith(
		models.CartItem{ProductID: "A", Quantity: 2, Price: 10, Subtotal: 20},
		models.CartItem{ProductID: "B", Quantity: 1, Price: 5, Subtotal: 5},
	)
	carts.On("GetByUserID", ctx, "user-1").Return(cart, nil)
	products.On("GetByID", ctx, "A").Return(&models.Product{ID: "A", Price: 12}, nil).Once()
	products.On("GetByID", ctx, "B").Return(nil, repositories.ErrNotFound).Once()
	carts.On("Save", ctx, cart).Return(nil).Once()

	updated, err := service.UpdateCartQuantity(ctx, shopper, "A", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Items[0].Quantity)
	assert.Equal(t, 48.0, updated.Items[0].Subtotal)
	assert.Equal(t, 53.0, updated.TotalPrice)

	_, err = service.UpdateCartQuantity(ctx, shopper, "A", 0)
	assertStatus(t, err, http.StatusBadRequest)
	_, err = service.UpdateCartQuantity(ctx, shopper, "Z", 1)
	assertStatus(t, err, http.StatusNotFound)
	_, err = service.UpdateCartQuantity(ctx, shopper, "B", 1)
	assertStatus(t, err, http.StatusNotFound)
}

func TestCartService_RemoveFromCartRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	service, carts, _ := newCartService()

	cart := cartWith(
		models.CartItem{ProductID: "A", Quantity: 2, Price: 10, Subtotal: 20},
		models.CartItem{ProductID: "B", Quantity: 1, Price: 5, Subtotal: 5},
	)
	cart.TotalPrice = 1000
	carts.On("GetByUserID", ctx, "user-1").Return(cart, nil)
	carts.On("Save", ctx, cart).Return(nil).Once()

	updated, err := service.RemoveFromCart(ctx, shopper, "A")
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.TotalPrice)

	_, err = service.RemoveFromCart(ctx, shopper, "A")
	assertStatus(t, err, http.StatusNotFound)

	_, err = service.RemoveFromCart(ctx, services.Identity{UserID: "x", IsAdmin: true}, "B")
	assertStatus(t, err, http.StatusForbidden)
}

func TestCartService_ClearAndGet(t *testing.T) {
	ctx := context.Background()
	service, carts, _ := newCartService()

	cart := cartWith(models.CartItem{ProductID: "A", Quantity: 1, Price: 10, Subtotal: 10})
	carts.On("GetByUserID", ctx, "user-1").Return(cart, nil)
	carts.On("GetByUserID", ctx, "user-2").Return(nil, repositories.ErrNotFound)
	carts.On("GetByUserID", ctx, "user-3").Return(nil, errors.New("boom"))
	carts.On("Save", ctx, cart).Return(nil)

	cleared, err := service.ClearCart(ctx, shopper)
	require.NoError(t, err)
	assert.Empty(t, cleared.Items)
	assert.Zero(t, cleared.TotalPrice)

	_, err = service.ClearCart(ctx, shopper)
	assert.NoError(t, err)

	_, err = service.ClearCart(ctx, services.Identity{UserID: "user-2"})
	assertStatus(t, err, http.StatusNotFound)

	_, err = service.GetCart(ctx, services.Identity{UserID: "user-2"})
	assertStatus(t, err, http.StatusNotFound)

	_, err = service.GetCart(ctx, services.Identity{UserID: "user-3"})
	assertStatus(t, err, http.StatusInternalServerError)
}
