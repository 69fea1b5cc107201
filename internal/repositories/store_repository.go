package repositories

import (
	"context"
	"errors"

	"storedir/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// StoreRepository defines the interface for store data access.
type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	Update(ctx context.Context, store *models.Store) error
	GetByID(ctx context.Context, id string) (*models.Store, error)
	// GetBySlug returns the store with its author and reviews loaded.
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)
	// CountSlugMatches counts stores whose slug is base or base-N, ignoring case.
	CountSlugMatches(ctx context.Context, base string) (int, error)
	List(ctx context.Context, skip, limit int) ([]models.Store, error)
	Count(ctx context.Context) (int64, error)
	// ListByTag returns the stores carrying tag, or every tagged store if tag is empty.
	ListByTag(ctx context.Context, tag string) ([]models.Store, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Store, error)
	TagCounts(ctx context.Context) ([]models.TagCount, error)
	TopStores(ctx context.Context, minReviews, limit int) ([]models.TopStore, error)
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
	Near(ctx context.Context, lng, lat, maxMeters float64, limit int) ([]models.MapStore, error)
	DeleteAll(ctx context.Context) error
}

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByStore(ctx context.Context, storeID string) ([]models.Review, error)
	DeleteAll(ctx context.Context) error
}
