package repositories

import (
	"context"
	"time"

	"gadgetstore/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	GetByResetToken(ctx context.Context, digest string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	// ConsumeResetToken sets the password hash and clears the reset token
	// pair in one write, only if the user still holds digest.
	ConsumeResetToken(ctx context.Context, userID, digest, passwordHash string) error
	// ClearExpiredResetTokens clears reset tokens that expired at or before now.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
