package services_test

import (
	"context"
	"time"

	"storedir/internal/mailer"
	"storedir/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStoreRepository is a mock implementation of repositories.StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) Create(ctx context.Context, store *models.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) Update(ctx context.Context, store *models.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) CountSlugMatches(ctx context.Context, base string) (int, error) {
	args := m.Called(ctx, base)
	return args.Int(0), args.Error(1)
}

func (m *MockStoreRepository) List(ctx context.Context, skip, limit int) ([]models.Store, error) {
	args := m.Called(ctx, skip, limit)
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoreRepository) ListByTag(ctx context.Context, tag string) ([]models.Store, error) {
	args := m.Called(ctx, tag)
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Store, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.TagCount), args.Error(1)
}

func (m *MockStoreRepository) TopStores(ctx context.Context, minReviews, limit int) ([]models.TopStore, error) {
	args := m.Called(ctx, minReviews, limit)
	return args.Get(0).([]models.TopStore), args.Error(1)
}

func (m *MockStoreRepository) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]models.SearchResult), args.Error(1)
}

func (m *MockStoreRepository) Near(ctx context.Context, lng, lat, maxMeters float64, limit int) ([]models.MapStore, error) {
	args := m.Called(ctx, lng, lat, maxMeters, limit)
	return args.Get(0).([]models.MapStore), args.Error(1)
}

func (m *MockStoreRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) AddHeart(ctx context.Context, userID, storeID string) (*models.User, error) {
	args := m.Called(ctx, userID, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) RemoveHeart(ctx context.Context, userID, storeID string) (*models.User, error) {
	args := m.Called(ctx, userID, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockReviewRepository is a mock implementation of repositories.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) ListByStore(ctx context.Context, storeID string) ([]models.Review, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMailer is a mock implementation of mailer.Sender
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
