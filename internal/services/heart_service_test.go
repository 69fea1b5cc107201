package services_test

import (
	"context"
	"testing"

	"storedir/internal/models"
	"storedir/internal/repositories"
	"storedir/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHeartService_ToggleRoundTrip(t *testing.T) {
	users := new(MockUserRepository)
	stores := new(MockStoreRepository)
	service := services.NewHeartService(users, stores)
	ctx := context.Background()

	original := &models.User{ID: "user-1", Hearts: []string{"other"}}
	hearted := &models.User{ID: "user-1", Hearts: []string{"other", "store-1"}}
	restored := &models.User{ID: "user-1", Hearts: []string{"other"}}

	stores.On("GetByID", ctx, "store-1").Return(&models.Store{ID: "store-1"}, nil).Twice()
	users.On("AddHeart", ctx, "user-1", "store-1").Return(hearted, nil).Once()
	users.On("RemoveHeart", ctx, "user-1", "store-1").Return(restored, nil).Once()

	updated, err := service.Toggle(ctx, original, "store-1")
	require.NoError(t, err)
	assert.True(t, updated.HasHeart("store-1"))

	updated, err = service.Toggle(ctx, updated, "store-1")
	require.NoError(t, err)
	assert.Equal(t, original.Hearts, updated.Hearts)

	users.AssertExpectations(t)
	stores.AssertExpectations(t)
}

func TestHeartService_ToggleUnknownStore(t *testing.T) {
	users := new(MockUserRepository)
	stores := new(MockStoreRepository)
	service := services.NewHeartService(users, stores)
	ctx := context.Background()

	stores.On("GetByID", ctx, "missing").Return(nil, repositories.ErrNotFound).Once()
	_, err := service.Toggle(ctx, &models.User{ID: "user-1"}, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	users.AssertNotCalled(t, "AddHeart", mock.Anything, mock.Anything, mock.Anything)
}
