package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"storedir/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// storeColumns are the columns written by Update.
var storeColumns = []string{
	"name", "slug", "description", "photo",
	"location_type", "location_coordinates", "location_address", "location_lng", "location_lat",
}

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{
		db: db,
	}
}

// Create inserts a store and its tag rows in one transaction.
func (r *GORMStoreRepository) Create(ctx context.Context, store *models.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	prepareStoreRow(store)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(store).Error; err != nil {
			return err
		}
		return replaceTags(tx, store)
	})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", translateGORMError(err))
	}
	return nil
}

// Update writes the mutable store fields and replaces its tags.
func (r *GORMStoreRepository) Update(ctx context.Context, store *models.Store) error {
	prepareStoreRow(store)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Store{ID: store.ID}).Omit(clause.Associations).Select(storeColumns).Updates(store)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return replaceTags(tx, store)
	})
	if err != nil {
		return fmt.Errorf("failed to update store %s: %w", store.ID, translateGORMError(err))
	}
	return nil
}

// GetByID retrieves a single store by its ID.
func (r *GORMStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Preload("TagRows").First(&store, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("store with ID %s: %w", id, translateGORMError(err))
	}
	fillTags(&store)
	return &store, nil
}

// GetBySlug retrieves a store by slug with its author and reviews, newest review first.
func (r *GORMStoreRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Preload("TagRows").
		Preload("Author").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created DESC") }).
		Preload("Reviews.Author").
		First(&store, "slug = ?", slug).Error
	if err != nil {
		return nil, fmt.Errorf("store with slug %s: %w", slug, translateGORMError(err))
	}
	fillTags(&store)
	return &store, nil
}

// CountSlugMatches prefilters candidates in SQL and applies the exact pattern in Go.
func (r *GORMStoreRepository) CountSlugMatches(ctx context.Context, base string) (int, error) {
	lower := strings.ToLower(base)
	var slugs []string
	err := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("LOWER(slug) = ? OR LOWER(slug) LIKE ?", lower, lower+"-%").
		Pluck("slug", &slugs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count slugs like %s: %w", base, err)
	}
	return countSlugMatches(base, slugs), nil
}

// List returns a window of stores, newest first.
func (r *GORMStoreRepository) List(ctx context.Context, skip, limit int) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).Preload("TagRows").
		Order("created DESC").Offset(skip).Limit(limit).
		Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	fillAllTags(stores)
	return stores, nil
}

// Count returns the number of stores.
func (r *GORMStoreRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Store{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count stores: %w", err)
	}
	return n, nil
}

// ListByTag returns stores carrying tag, or all tagged stores when tag is empty.
func (r *GORMStoreRepository) ListByTag(ctx context.Context, tag string) ([]models.Store, error) {
	sub := r.db.Model(&models.StoreTag{}).Select("store_id")
	if tag != "" {
		sub = sub.Where("tag = ?", tag)
	}

	var stores []models.Store
	err := r.db.WithContext(ctx).Preload("TagRows").
		Where("id IN (?)", sub).
		Order("created DESC").
		Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stores tagged %q: %w", tag, err)
	}
	fillAllTags(stores)
	return stores, nil
}

// ListByIDs returns the stores with the given IDs, newest first.
func (r *GORMStoreRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Store, error) {
	if len(ids) == 0 {
		return []models.Store{}, nil
	}
	var stores []models.Store
	err := r.db.WithContext(ctx).Preload("TagRows").
		Where("id IN ?", ids).
		Order("created DESC").
		Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stores by ID: %w", err)
	}
	fillAllTags(stores)
	return stores, nil
}

// TagCounts returns the tag histogram, most used first.
func (r *GORMStoreRepository) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	var counts []models.TagCount
	err := r.db.WithContext(ctx).Model(&models.StoreTag{}).
		Select("tag, COUNT(*) AS count").
		Group("tag").
		Order("count DESC, tag ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	return counts, nil
}

// TopStores ranks stores with at least minReviews reviews by mean rating.
func (r *GORMStoreRepository) TopStores(ctx context.Context, minReviews, limit int) ([]models.TopStore, error) {
	var top []models.TopStore
	err := r.db.WithContext(ctx).Model(&models.Store{}).
		Select("stores.id, stores.name, stores.slug, stores.photo, " +
			"COUNT(reviews.id) AS review_count, CAST(AVG(reviews.rating) AS FLOAT) AS average_rating").
		Joins("JOIN reviews ON reviews.store_id = stores.id").
		Group("stores.id, stores.name, stores.slug, stores.photo").
		Having("COUNT(reviews.id) >= ?", minReviews).
		Order("average_rating DESC").
		Limit(limit).
		Scan(&top).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank stores: %w", err)
	}
	return top, nil
}

// Search ranks stores against a free-text query over name and description.
func (r *GORMStoreRepository) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return []models.SearchResult{}, nil
	}
	if r.db.Dialector.Name() == "postgres" {
		return r.searchFullText(ctx, query, limit)
	}

	db := r.db.WithContext(ctx).Preload("TagRows")
	conds := make([]string, 0, len(terms))
	args := make([]interface{}, 0, 2*len(terms))
	for _, t := range terms {
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, "%"+t+"%", "%"+t+"%")
	}

	var candidates []models.Store
	if err := db.Where(strings.Join(conds, " OR "), args...).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to search stores: %w", err)
	}
	fillAllTags(candidates)

	results := make([]models.SearchResult, 0, len(candidates))
	for _, s := range candidates {
		if score := textScore(terms, s.Name, s.Description); score > 0 {
			results = append(results, models.SearchResult{Store: s, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

const tsDocument = "to_tsvector('english', coalesce(name, '') || ' ' || coalesce(description, ''))"

func (r *GORMStoreRepository) searchFullText(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	var hits []struct {
		ID    string
		Score float64
	}
	err := r.db.WithContext(ctx).Model(&models.Store{}).
		Select("id, ts_rank("+tsDocument+", plainto_tsquery('english', ?)) AS score", query).
		Where(tsDocument+" @@ plainto_tsquery('english', ?)", query).
		Order("score DESC").
		Limit(limit).
		Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search stores: %w", err)
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	stores, err := r.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Store, len(stores))
	for _, s := range stores {
		byID[s.ID] = s
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		if s, ok := byID[h.ID]; ok {
			results = append(results, models.SearchResult{Store: s, Score: h.Score})
		}
	}
	return results, nil
}

// Near returns stores within maxMeters of the point, closest first.
func (r *GORMStoreRepository) Near(ctx context.Context, lng, lat, maxMeters float64, limit int) ([]models.MapStore, error) {
	minLng, maxLng, minLat, maxLat := boundingBox(lng, lat, maxMeters)

	var candidates []models.Store
	err := r.db.WithContext(ctx).
		Where("location_lat BETWEEN ? AND ? AND location_lng BETWEEN ? AND ?", minLat, maxLat, minLng, maxLng).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stores near %f,%f: %w", lng, lat, err)
	}

	type hit struct {
		store    models.Store
		distance float64
	}
	hits := make([]hit, 0, len(candidates))
	for _, s := range candidates {
		sLng, sLat, ok := s.Location.Point()
		if !ok {
			continue
		}
		if d := haversine(lng, lat, sLng, sLat); d <= maxMeters {
			hits = append(hits, hit{store: s, distance: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]models.MapStore, len(hits))
	for i, h := range hits {
		out[i] = toMapStore(h.store)
	}
	return out, nil
}

// DeleteAll removes every store and tag row.
func (r *GORMStoreRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.StoreTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete store tags: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.Store{}).Error; err != nil {
			return fmt.Errorf("failed to delete stores: %w", err)
		}
		return nil
	})
}

func prepareStoreRow(store *models.Store) {
	store.Tags = uniqueTags(store.Tags)
	if store.Location.Type == "" {
		store.Location.Type = models.PointType
	}
	if lng, lat, ok := store.Location.Point(); ok {
		store.Location.Lng, store.Location.Lat = lng, lat
	}
}

func replaceTags(tx *gorm.DB, store *models.Store) error {
	if err := tx.Where("store_id = ?", store.ID).Delete(&models.StoreTag{}).Error; err != nil {
		return err
	}
	if len(store.Tags) == 0 {
		return nil
	}
	rows := make([]models.StoreTag, len(store.Tags))
	for i, t := range store.Tags {
		rows[i] = models.StoreTag{StoreID: store.ID, Tag: t}
	}
	return tx.Create(&rows).Error
}

func fillTags(store *models.Store) {
	tags := make([]string, len(store.TagRows))
	for i, row := range store.TagRows {
		tags[i] = row.Tag
	}
	store.Tags = uniqueTags(tags)
}

func fillAllTags(stores []models.Store) {
	for i := range stores {
		fillTags(&stores[i])
	}
}

func toMapStore(s models.Store) models.MapStore {
	return models.MapStore{
		Slug:        s.Slug,
		Name:        s.Name,
		Description: s.Description,
		Location:    s.Location,
		Photo:       s.Photo,
	}
}

func translateGORMError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
