package repositories

import (
	"context"
	"fmt"

	"storedir/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// Create creates a new review in the database.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", translateGORMError(err))
	}
	return nil
}

// ListByStore returns a store's reviews with authors, newest first.
func (r *GORMReviewRepository) ListByStore(ctx context.Context, storeID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).Preload("Author").
		Where("store_id = ?", storeID).
		Order("created DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for store %s: %w", storeID, err)
	}
	return reviews, nil
}

// DeleteAll removes every review.
func (r *GORMReviewRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Review{}).Error; err != nil {
		return fmt.Errorf("failed to delete reviews: %w", err)
	}
	return nil
}
