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

func TestReviewService_AddReview(t *testing.T) {
	reviews := new(MockReviewRepository)
	stores := new(MockStoreRepository)
	service := services.NewReviewService(reviews, stores)
	ctx := context.Background()

	stores.On("GetByID", ctx, "store-1").Return(&models.Store{ID: "store-1", Slug: "cafe-retro"}, nil).Once()
	reviews.On("Create", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.StoreID == "store-1" && r.AuthorID == "user-1" && r.Text == "Lovely" && r.Rating == 4 && !r.Created.IsZero()
	})).Return(nil).Once()

	store, err := service.AddReview(ctx, &models.User{ID: "user-1"}, "store-1", " Lovely ", 4)
	require.NoError(t, err)
	assert.Equal(t, "cafe-retro", store.Slug)
	reviews.AssertExpectations(t)

	stores.On("GetByID", ctx, "missing").Return(nil, repositories.ErrNotFound).Once()
	_, err = service.AddReview(ctx, &models.User{ID: "user-1"}, "missing", "x", 3)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
