package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storedir/internal/models"
	"storedir/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	searchLimit     = 5
	nearLimit       = 10
	nearMaxMeters   = 10000
	topStoreReviews = 2
	topStoreLimit   = 10
)

// StoreInput carries the editable fields of a store form.
type StoreInput struct {
	Name        string
	Description string
	Tags        []string
	Address     string
	Lng         float64
	Lat         float64
	// Photo is the stored upload name; empty keeps the current photo.
	Photo string
}

// StoreService handles business logic for store listings.
type StoreService struct {
	stores repositories.StoreRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewStoreService creates a new StoreService.
func NewStoreService(stores repositories.StoreRepository, logger *zap.Logger) *StoreService {
	return &StoreService{
		stores: stores,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateStore saves a new store authored by author.
func (s *StoreService) CreateStore(ctx context.Context, author *models.User, in StoreInput) (*models.Store, error) {
	store := &models.Store{
		AuthorID: author.ID,
		Created:  s.now(),
	}
	in.apply(store)

	slug, err := assignSlug(ctx, s.stores, store.Name)
	if err != nil {
		return nil, err
	}
	store.Slug = slug

	if err := s.stores.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	s.logger.Info("store created", zap.String("store_id", store.ID), zap.String("slug", store.Slug))
	return store, nil
}

// GetStoreForEdit loads a store that user is allowed to edit.
func (s *StoreService) GetStoreForEdit(ctx context.Context, id string, user *models.User) (*models.Store, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ConfirmOwner(store, user); err != nil {
		return nil, err
	}
	return store, nil
}

// UpdateStore applies in to the store after checking ownership.
// The slug only changes when the name does.
func (s *StoreService) UpdateStore(ctx context.Context, id string, user *models.User, in StoreInput) (*models.Store, error) {
	store, err := s.GetStoreForEdit(ctx, id, user)
	if err != nil {
		return nil, err
	}

	previousName := store.Name
	in.apply(store)
	if store.Name != previousName {
		slug, err := assignSlug(ctx, s.stores, store.Name)
		if err != nil {
			return nil, err
		}
		store.Slug = slug
	}

	if err := s.stores.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to update store %s: %w", id, err)
	}
	return store, nil
}

// GetStoreBySlug returns a store with its author and reviews.
func (s *StoreService) GetStoreBySlug(ctx context.Context, slug string) (*models.Store, error) {
	return s.stores.GetBySlug(ctx, slug)
}

// StoresByTag returns the tag histogram together with the stores carrying tag.
// An empty tag selects every tagged store.
func (s *StoreService) StoresByTag(ctx context.Context, tag string) ([]models.TagCount, []models.Store, error) {
	var (
		tags   []models.TagCount
		stores []models.Store
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = s.stores.TagCounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = s.stores.ListByTag(gctx, tag)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load tag %q: %w", tag, err)
	}
	return tags, stores, nil
}

// Search returns the best text matches for query.
func (s *StoreService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []models.SearchResult{}, nil
	}
	return s.stores.Search(ctx, query, searchLimit)
}

// Near returns the stores within 10km of the point, closest first.
func (s *StoreService) Near(ctx context.Context, lng, lat float64) ([]models.MapStore, error) {
	return s.stores.Near(ctx, lng, lat, nearMaxMeters, nearLimit)
}

// TopStores returns the best rated stores having at least two reviews.
func (s *StoreService) TopStores(ctx context.Context) ([]models.TopStore, error) {
	return s.stores.TopStores(ctx, topStoreReviews, topStoreLimit)
}

// HeartedStores returns the stores user has hearted.
func (s *StoreService) HeartedStores(ctx context.Context, user *models.User) ([]models.Store, error) {
	if len(user.Hearts) == 0 {
		return []models.Store{}, nil
	}
	return s.stores.ListByIDs(ctx, user.Hearts)
}

func (in StoreInput) apply(store *models.Store) {
	store.Name = strings.TrimSpace(in.Name)
	store.Description = strings.TrimSpace(in.Description)
	store.Tags = in.Tags
	store.Location = models.Location{
		Type:        models.PointType,
		Coordinates: []float64{in.Lng, in.Lat},
		Address:     strings.TrimSpace(in.Address),
	}
	if in.Photo != "" {
		store.Photo = in.Photo
	}
}
