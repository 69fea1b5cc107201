package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storedir/internal/models"
	"storedir/internal/repositories"
)

// ReviewService handles store reviews.
type ReviewService struct {
	reviews repositories.ReviewRepository
	stores  repositories.StoreRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, stores repositories.StoreRepository) *ReviewService {
	return &ReviewService{reviews: reviews, stores: stores}
}

// AddReview records author's review of the store and returns the store it belongs to.
func (s *ReviewService) AddReview(ctx context.Context, author *models.User, storeID, text string, rating int) (*models.Store, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	review := &models.Review{
		StoreID:  store.ID,
		AuthorID: author.ID,
		Text:     strings.TrimSpace(text),
		Rating:   rating,
		Created:  time.Now().UTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to add review to store %s: %w", storeID, err)
	}
	return store, nil
}
