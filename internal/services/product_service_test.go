package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gadgetstore/internal/apperr"
	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"
	"gadgetstore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperr.StatusOf(err), err.Error())
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults category and activates", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := services.NewProductService(mockRepo)

		mockRepo.On("GetByName", ctx, "Mouse").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		product, err := service.CreateProduct(ctx, services.CreateProductInput{Name: " Mouse ", Price: 25})
		require.NoError(t, err)
		assert.Equal(t, "Mouse", product.Name)
		assert.Equal(t, models.CategoryAccessories, product.Category)
		assert.True(t, product.IsActive)
		assert.False(t, product.IsNewArrival)
		assert.False(t, product.CreatedOn.IsZero())
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := services.NewProductService(mockRepo)

		mockRepo.On("GetByName", ctx, "Mouse").Return(&models.Product{ID: "p1", Name: "Mouse"}, nil).Once()

		_, err := service.CreateProduct(ctx, services.CreateProductInput{Name: "Mouse", Price: 25})
		assertStatus(t, err, http.StatusConflict)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid category", func(t *testing.T) {
		service := services.NewProductService(new(MockProductRepository))
		_, err := service.CreateProduct(ctx, services.CreateProductInput{Name: "Mouse", Category: "Toys"})
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := services.NewProductService(mockRepo)
		mockRepo.On("GetByName", ctx, "Mouse").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		_, err := service.CreateProduct(ctx, services.CreateProductInput{Name: "Mouse"})
		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestProductService_GetActiveProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: 10.0, IsActive: true},
		{ID: "2", Name: "Product B", Price: 20.0, IsActive: true},
	}
	mockRepo.On("Find", ctx, repositories.ProductFilter{ActiveOnly: true}).Return(expectedProducts, nil).Once()

	products, err := service.GetActiveProducts(ctx)
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)

	mockRepo.On("Find", ctx, repositories.ProductFilter{ActiveOnly: true}).Return([]models.Product{}, nil).Once()
	_, err = service.GetActiveProducts(ctx)
	assertStatus(t, err, http.StatusNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ArchiveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetByID", ctx, "p1").Return(&models.Product{ID: "p1", IsActive: true}, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *models.Product) bool { return !p.IsActive })).Return(nil).Once()

	product, changed, err := service.ArchiveProduct(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, product.IsActive)

	mockRepo.On("GetByID", ctx, "p1").Return(&models.Product{ID: "p1", IsActive: false}, nil).Once()
	product, changed, err = service.ArchiveProduct(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, product.IsActive)

	mockRepo.On("GetByID", ctx, "nope").Return(nil, repositories.ErrNotFound).Once()
	_, _, err = service.ActivateProduct(ctx, "nope")
	assertStatus(t, err, http.StatusNotFound)

	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProductPartial(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetByID", ctx, "p1").Return(&models.Product{ID: "p1", Name: "Mouse", Price: 10, Category: models.CategoryAudio}, nil).Once()
	mockRepo.On("Update", ctx, mock.Anything).Return(nil).Once()

	price := 12.5
	newArrival := true
	product, err := service.UpdateProduct(ctx, "p1", services.UpdateProductInput{Price: &price, IsNewArrival: &newArrival})
	require.NoError(t, err)
	assert.Equal(t, "Mouse", product.Name)
	assert.Equal(t, 12.5, product.Price)
	assert.Equal(t, models.CategoryAudio, product.Category)
	assert.True(t, product.IsNewArrival)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SearchByPrice(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	zero := 0.0
	mockRepo.On("Find", ctx, repositories.ProductFilter{ActiveOnly: true, MinPrice: &zero}).
		Return([]models.Product{{ID: "1"}}, nil).Once()
	products, err := service.SearchByPrice(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	lo, hi := 50.0, 10.0
	_, err = service.SearchByPrice(ctx, &lo, &hi)
	assertStatus(t, err, http.StatusBadRequest)

	neg := -1.0
	_, err = service.SearchByPrice(ctx, &neg, nil)
	assertStatus(t, err, http.StatusBadRequest)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SearchByName(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	_, err := service.SearchByName(ctx, "   ")
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "MISSING_PRODUCT_NAME", appErr.Code())

	mockRepo.On("Find", ctx, repositories.ProductFilter{ActiveOnly: true, NameContains: "phone"}).Return(nil, nil).Once()
	products, err := service.SearchByName(ctx, "phone")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProductService_GetByCategory(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	_, err := service.GetByCategory(ctx, "Toys")
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_CATEGORY", appErr.Code())

	mockRepo.On("Find", ctx, repositories.ProductFilter{ActiveOnly: true, Category: models.CategoryGaming}).
		Return([]models.Product{{ID: "g1"}}, nil).Once()
	products, err := service.GetByCategory(ctx, "Gaming")
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestProductService_GetNewArrivalsDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	filter := repositories.ProductFilter{ActiveOnly: true, NewArrivalOnly: true, NewestFirst: true, Limit: services.NewArrivalsLimit}
	mockRepo.On("Find", ctx, filter).Return(nil, errors.New("timeout")).Once()

	products := service.GetNewArrivals(ctx)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}
