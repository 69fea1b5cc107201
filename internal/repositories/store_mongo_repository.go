package repositories

import (
	"context"
	"fmt"

	"storedir/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStoreRepository is a MongoDB implementation of StoreRepository.
type MongoStoreRepository struct {
	stores  *mongo.Collection
	users   *MongoUserRepository
	reviews *MongoReviewRepository
}

// NewMongoStoreRepository creates a new instance of MongoStoreRepository.
func NewMongoStoreRepository(db *mongo.Database) *MongoStoreRepository {
	return &MongoStoreRepository{
		stores:  db.Collection(storesCollection),
		users:   NewMongoUserRepository(db),
		reviews: NewMongoReviewRepository(db),
	}
}

// Create inserts a store document.
func (r *MongoStoreRepository) Create(ctx context.Context, store *models.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	prepareStoreDocument(store)
	if _, err := r.stores.InsertOne(ctx, store); err != nil {
		return fmt.Errorf("failed to create store: %w", translateMongoError(err))
	}
	return nil
}

// Update sets the mutable store fields.
func (r *MongoStoreRepository) Update(ctx context.Context, store *models.Store) error {
	prepareStoreDocument(store)
	res, err := r.stores.UpdateByID(ctx, store.ID, bson.M{"$set": bson.M{
		"name":        store.Name,
		"slug":        store.Slug,
		"description": store.Description,
		"tags":        store.Tags,
		"location":    store.Location,
		"photo":       store.Photo,
	}})
	if err != nil {
		return fmt.Errorf("failed to update store %s: %w", store.ID, translateMongoError(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("store with ID %s not found for update: %w", store.ID, ErrNotFound)
	}
	return nil
}

// GetByID retrieves a single store by its ID.
func (r *MongoStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	var store models.Store
	if err := r.stores.FindOne(ctx, bson.M{"_id": id}).Decode(&store); err != nil {
		return nil, fmt.Errorf("store with ID %s: %w", id, translateMongoError(err))
	}
	return &store, nil
}

// GetBySlug retrieves a store by slug and loads its author and reviews explicitly.
func (r *MongoStoreRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	if err := r.stores.FindOne(ctx, bson.M{"slug": slug}).Decode(&store); err != nil {
		return nil, fmt.Errorf("store with slug %s: %w", slug, translateMongoError(err))
	}

	author, err := r.users.GetByID(ctx, store.AuthorID)
	if err == nil {
		store.Author = author
	}
	reviews, err := r.reviews.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	store.Reviews = reviews
	return &store, nil
}

// CountSlugMatches counts stores whose slug matches base or base-N.
func (r *MongoStoreRepository) CountSlugMatches(ctx context.Context, base string) (int, error) {
	n, err := r.stores.CountDocuments(ctx, slugFilter(base))
	if err != nil {
		return 0, fmt.Errorf("failed to count slugs like %s: %w", base, err)
	}
	return int(n), nil
}

// List returns a window of stores, newest first.
func (r *MongoStoreRepository) List(ctx context.Context, skip, limit int) ([]models.Store, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

// Count returns the number of stores.
func (r *MongoStoreRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.stores.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count stores: %w", err)
	}
	return n, nil
}

// ListByTag returns stores carrying tag, or all tagged stores when tag is empty.
func (r *MongoStoreRepository) ListByTag(ctx context.Context, tag string) ([]models.Store, error) {
	return r.find(ctx, tagFilter(tag), options.Find().SetSort(bson.D{{Key: "created", Value: -1}}))
}

// ListByIDs returns the stores with the given IDs, newest first.
func (r *MongoStoreRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Store, error) {
	if len(ids) == 0 {
		return []models.Store{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "created", Value: -1}}))
}

// TagCounts runs the tag histogram aggregation.
func (r *MongoStoreRepository) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	cursor, err := r.stores.Aggregate(ctx, tagsPipeline())
	if err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	counts := []models.TagCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode tag counts: %w", err)
	}
	return counts, nil
}

// TopStores runs the review lookup and ranking aggregation.
func (r *MongoStoreRepository) TopStores(ctx context.Context, minReviews, limit int) ([]models.TopStore, error) {
	cursor, err := r.stores.Aggregate(ctx, topStoresPipeline(minReviews, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to rank stores: %w", err)
	}
	top := []models.TopStore{}
	if err := cursor.All(ctx, &top); err != nil {
		return nil, fmt.Errorf("failed to decode top stores: %w", err)
	}
	return top, nil
}

// Search queries the text index and sorts by its relevance score.
func (r *MongoStoreRepository) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if len(searchTerms(query)) == 0 {
		return []models.SearchResult{}, nil
	}
	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.M{"score": score}).
		SetLimit(int64(limit))

	cursor, err := r.stores.Find(ctx, bson.M{"$text": bson.M{"$search": query}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search stores: %w", err)
	}
	results := []models.SearchResult{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return results, nil
}

// Near returns stores within maxMeters of the point, closest first.
func (r *MongoStoreRepository) Near(ctx context.Context, lng, lat, maxMeters float64, limit int) ([]models.MapStore, error) {
	opts := options.Find().SetProjection(mapProjection).SetLimit(int64(limit))
	cursor, err := r.stores.Find(ctx, nearFilter(lng, lat, maxMeters), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stores near %f,%f: %w", lng, lat, err)
	}
	stores := []models.MapStore{}
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, fmt.Errorf("failed to decode nearby stores: %w", err)
	}
	return stores, nil
}

// DeleteAll removes every store document.
func (r *MongoStoreRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.stores.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete stores: %w", err)
	}
	return nil
}

func (r *MongoStoreRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Store, error) {
	cursor, err := r.stores.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stores: %w", err)
	}
	stores := []models.Store{}
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, fmt.Errorf("failed to decode stores: %w", err)
	}
	return stores, nil
}

func prepareStoreDocument(store *models.Store) {
	store.Tags = uniqueTags(store.Tags)
	if store.Location.Type == "" {
		store.Location.Type = models.PointType
	}
}
