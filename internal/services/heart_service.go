package services

import (
	"context"
	"fmt"

	"storedir/internal/models"
	"storedir/internal/repositories"
)

// HeartService toggles stores in a user's hearts.
type HeartService struct {
	users  repositories.UserRepository
	stores repositories.StoreRepository
}

// NewHeartService creates a new HeartService.
func NewHeartService(users repositories.UserRepository, stores repositories.StoreRepository) *HeartService {
	return &HeartService{users: users, stores: stores}
}

// Toggle removes storeID from the user's hearts if present and adds it otherwise.
// The decision uses the hearts held by user, so concurrent toggles are last-write-wins.
func (s *HeartService) Toggle(ctx context.Context, user *models.User, storeID string) (*models.User, error) {
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, err
	}

	var (
		updated *models.User
		err     error
	)
	if user.HasHeart(storeID) {
		updated, err = s.users.RemoveHeart(ctx, user.ID, storeID)
	} else {
		updated, err = s.users.AddHeart(ctx, user.ID, storeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle heart on store %s: %w", storeID, err)
	}
	return updated, nil
}
