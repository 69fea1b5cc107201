package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storedir/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(user.Email)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translateGORMError(err))
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByResetToken retrieves the user holding an unexpired reset token.
func (r *GORMUserRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("empty reset token: %w", ErrNotFound)
	}
	return r.first(ctx, "reset_password_token = ? AND reset_password_expires > ?", token, now)
}

// Update writes profile, credential and reset fields. Zero values are written too.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	res := r.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Omit(clause.Associations).
		Select("name", "email", "password_hash", "reset_password_token", "reset_password_expires", "updated_at").
		Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, translateGORMError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found for update: %w", user.ID, ErrNotFound)
	}
	return nil
}

// AddHeart inserts the heart row unless it already exists.
func (r *GORMUserRepository) AddHeart(ctx context.Context, userID, storeID string) (*models.User, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Heart{UserID: userID, StoreID: storeID}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to heart store %s: %w", storeID, err)
	}
	return r.GetByID(ctx, userID)
}

// RemoveHeart deletes the heart row if present.
func (r *GORMUserRepository) RemoveHeart(ctx context.Context, userID, storeID string) (*models.User, error) {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Delete(&models.Heart{}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to unheart store %s: %w", storeID, err)
	}
	return r.GetByID(ctx, userID)
}

// DeleteAll removes every user and heart row.
func (r *GORMUserRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Heart{}).Error; err != nil {
			return fmt.Errorf("failed to delete hearts: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("failed to delete users: %w", err)
		}
		return nil
	})
}

func (r *GORMUserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("HeartRows", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where(query, args...).
		First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("user lookup (%s): %w", query, translateGORMError(err))
	}
	user.Hearts = make([]string, len(user.HeartRows))
	for i, h := range user.HeartRows {
		user.Hearts[i] = h.StoreID
	}
	return &user, nil
}
