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

// MongoReviewRepository is a MongoDB implementation of ReviewRepository.
type MongoReviewRepository struct {
	reviews *mongo.Collection
	users   *MongoUserRepository
}

// NewMongoReviewRepository creates a new instance of MongoReviewRepository.
func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{
		reviews: db.Collection(reviewsCollection),
		users:   NewMongoUserRepository(db),
	}
}

// Create inserts a review document.
func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if _, err := r.reviews.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("failed to create review: %w", translateMongoError(err))
	}
	return nil
}

// ListByStore returns a store's reviews with authors, newest first.
func (r *MongoReviewRepository) ListByStore(ctx context.Context, storeID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	cursor, err := r.reviews.Find(ctx, bson.M{"store": storeID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for store %s: %w", storeID, err)
	}
	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	ids := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.AuthorID)
	}
	authors, err := r.users.findMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		reviews[i].Author = authors[reviews[i].AuthorID]
	}
	return reviews, nil
}

// DeleteAll removes every review document.
func (r *MongoReviewRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.reviews.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete reviews: %w", err)
	}
	return nil
}
