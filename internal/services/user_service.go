package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gadgetstore/internal/apperr"
	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"

	"github.com/google/uuid"
)

// UserService handles account management of signed-in users and admins.
type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfileInput holds the profile fields to change; nil fields are kept.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	MobileNo  *string
}

// EmailExists reports whether an account is registered under email.
func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	if !strings.Contains(email, "@") {
		return false, apperr.Validation("Invalid email format")
	}
	_, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, apperr.Internal(err, "check email")
	}
}

// GetProfile returns the caller's own account.
func (s *UserService) GetProfile(ctx context.Context, caller Identity) (*models.User, error) {
	return s.load(ctx, caller.UserID)
}

func (s *UserService) UpdatePassword(ctx context.Context, caller Identity, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperr.Validation("Password must be at least 8 characters long")
	}
	user, err := s.load(ctx, caller.UserID)
	if err != nil {
		return err
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.save(ctx, user)
}

func (s *UserService) UpdateProfile(ctx context.Context, caller Identity, in UpdateProfileInput) (*models.User, error) {
	if in.MobileNo != nil && len(*in.MobileNo) != mobileNoLength {
		return nil, apperr.Validation("Mobile number is invalid")
	}
	user, err := s.load(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.MobileNo != nil {
		user.MobileNo = *in.MobileNo
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetAsAdmin grants admin rights to the user with id. Malformed ids are
// rejected before any lookup.
func (s *UserService) SetAsAdmin(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.New(http.StatusBadRequest, "INVALID_ID", "Failed in Find: malformed user id")
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("User not Found")
		}
		return nil, apperr.Internal(err, "load user")
	}
	if user.IsAdmin {
		return user, nil
	}
	user.IsAdmin = true
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetAllUsers lists every account. Only admins may call it.
func (s *UserService) GetAllUsers(ctx context.Context, caller Identity) ([]models.User, error) {
	if !caller.IsAdmin {
		return nil, apperr.Forbidden("Access forbidden. Admin only.")
	}
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list users")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// SetProfileImage records imageURL as the caller's profile picture.
func (s *UserService) SetProfileImage(ctx context.Context, caller Identity, imageURL string) (*models.User, error) {
	user, err := s.load(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	user.ProfileImage = imageURL
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) load(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err, "load user")
	}
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *models.User) error {
	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return apperr.NotFound("User not found")
		case errors.Is(err, repositories.ErrDuplicate):
			return apperr.Conflict("Email already registered")
		}
		return apperr.Internal(err, "update user")
	}
	return nil
}
