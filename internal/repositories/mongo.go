package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	storesCollection  = "stores"
	usersCollection   = "users"
	reviewsCollection = "reviews"
)

// ConnectMongo connects to MongoDB and verifies the connection.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(database), nil
}

// EnsureMongoIndexes creates the text, geo and uniqueness indexes the queries rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		storesCollection: {
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "slug", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "store", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func translateMongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func slugFilter(base string) bson.M {
	return bson.M{"slug": primitive.Regex{Pattern: slugPattern(base), Options: "i"}}
}

func tagFilter(tag string) bson.M {
	if tag == "" {
		return bson.M{"tags.0": bson.M{"$exists": true}}
	}
	return bson.M{"tags": tag}
}

func tagsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

func topStoresPipeline(minReviews, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: reviewsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "store"},
			{Key: "as", Value: "reviews"},
		}}},
	}
	if minReviews > 0 {
		// reviews.N exists only when the array holds at least N+1 elements.
		field := fmt.Sprintf("reviews.%d", minReviews-1)
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: field, Value: bson.D{{Key: "$exists", Value: true}}},
		}}})
	}
	return append(pipeline,
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "photo", Value: "$$ROOT.photo"},
			{Key: "name", Value: "$$ROOT.name"},
			{Key: "slug", Value: "$$ROOT.slug"},
			{Key: "reviewCount", Value: bson.D{{Key: "$size", Value: "$reviews"}}},
			{Key: "averageRating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "averageRating", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	)
}

func nearFilter(lng, lat, maxMeters float64) bson.M {
	return bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": maxMeters,
			},
		},
	}
}

var mapProjection = bson.M{"slug": 1, "name": 1, "description": 1, "location": 1, "photo": 1}
