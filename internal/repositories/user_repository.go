package repositories

import (
	"context"
	"time"

	"storedir/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByResetToken returns the user holding token if it expires after now.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// AddHeart and RemoveHeart are single conditional updates returning the updated user.
	AddHeart(ctx context.Context, userID, storeID string) (*models.User, error)
	RemoveHeart(ctx context.Context, userID, storeID string) (*models.User, error)
	DeleteAll(ctx context.Context) error
}
