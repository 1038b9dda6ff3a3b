package services_test

import (
	"context"
	"net/http"
	"testing"

	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"
	"gadgetstore/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_EmailExists(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	mockRepo.On("GetByEmail", ctx, "a@example.com").Return(&models.User{ID: "u1"}, nil).Once()
	mockRepo.On("GetByEmail", ctx, "b@example.com").Return(nil, repositories.ErrNotFound).Once()

	exists, err := service.EmailExists(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = service.EmailExists(ctx, "b@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = service.EmailExists(ctx, "invalid")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestUserService_SetAsAdmin(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	_, err := service.SetAsAdmin(ctx, "not-a-uuid")
	assertStatus(t, err, http.StatusBadRequest)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)

	missing := uuid.NewString()
	mockRepo.On("GetByID", ctx, missing).Return(nil, repositories.ErrNotFound).Once()
	_, err = service.SetAsAdmin(ctx, missing)
	assertStatus(t, err, http.StatusNotFound)

	id := uuid.NewString()
	mockRepo.On("GetByID", ctx, id).Return(&models.User{ID: id}, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool { return u.IsAdmin })).Return(nil).Once()
	user, err := service.SetAsAdmin(ctx, id)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetAllUsersRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	_, err := service.GetAllUsers(ctx, services.Identity{UserID: "u1"})
	assertStatus(t, err, http.StatusForbidden)

	mockRepo.On("GetAll", ctx).Return([]models.User{{ID: "u1"}, {ID: "u2"}}, nil).Once()
	users, err := service.GetAllUsers(ctx, services.Identity{UserID: "admin", IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserService_UpdateProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)
	caller := services.Identity{UserID: "u1"}

	user := &models.User{ID: "u1", FirstName: "Ada", LastName: "L", MobileNo: "09170000000", Password: "old"}
	mockRepo.On("GetByID", ctx, "u1").Return(user, nil)
	mockRepo.On("Update", ctx, user).Return(nil)

	first := "Augusta"
	updated, err := service.UpdateProfile(ctx, caller, services.UpdateProfileInput{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "L", updated.LastName)

	bad := "123"
	_, err = service.UpdateProfile(ctx, caller, services.UpdateProfileInput{MobileNo: &bad})
	assertStatus(t, err, http.StatusBadRequest)

	require.NoError(t, service.UpdatePassword(ctx, caller, "longenough"))
	assert.NotEqual(t, "old", user.Password)

	assertStatus(t, service.UpdatePassword(ctx, caller, "short"), http.StatusBadRequest)
}
