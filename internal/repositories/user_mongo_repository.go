package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storedir/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: db.Collection(usersCollection)}
}

// Create inserts a user document.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(user.Email)
	if user.Hearts == nil {
		user.Hearts = []string{}
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", translateMongoError(err))
	}
	return nil
}

// GetByEmail retrieves a user by email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// GetByID retrieves a user by ID.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByResetToken retrieves the user holding an unexpired reset token.
func (r *MongoUserRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("empty reset token: %w", ErrNotFound)
	}
	return r.findOne(ctx, bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": bson.M{"$gt": now},
	})
}

// Update writes profile and credential fields; empty reset fields are unset.
func (r *MongoUserRepository) Update(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = time.Now().UTC()

	set := bson.M{
		"name":         user.Name,
		"email":        user.Email,
		"passwordHash": user.PasswordHash,
		"updatedAt":    user.UpdatedAt,
	}
	update := bson.M{}
	if user.ResetPasswordToken == "" || user.ResetPasswordExpires == nil {
		update["$unset"] = bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""}
	} else {
		set["resetPasswordToken"] = user.ResetPasswordToken
		set["resetPasswordExpires"] = *user.ResetPasswordExpires
	}
	update["$set"] = set

	res, err := r.users.UpdateByID(ctx, user.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, translateMongoError(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user with ID %s not found for update: %w", user.ID, ErrNotFound)
	}
	return nil
}

// AddHeart adds storeID to the hearts set with $addToSet.
func (r *MongoUserRepository) AddHeart(ctx context.Context, userID, storeID string) (*models.User, error) {
	return r.updateHearts(ctx, userID, bson.M{"$addToSet": bson.M{"hearts": storeID}})
}

// RemoveHeart removes storeID from the hearts set with $pull.
func (r *MongoUserRepository) RemoveHeart(ctx context.Context, userID, storeID string) (*models.User, error) {
	return r.updateHearts(ctx, userID, bson.M{"$pull": bson.M{"hearts": storeID}})
}

// DeleteAll removes every user document.
func (r *MongoUserRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.users.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) updateHearts(ctx context.Context, userID string, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to update hearts of user %s: %w", userID, translateMongoError(err))
	}
	return &user, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, fmt.Errorf("user lookup: %w", translateMongoError(err))
	}
	return &user, nil
}

func (r *MongoUserRepository) findMany(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}
