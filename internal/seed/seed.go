// Package seed loads sample users, stores and reviews from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"storedir/internal/models"
	"storedir/internal/repositories"
	"storedir/internal/services"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the layout of a seed file.
type File struct {
	Users   []User   `yaml:"users"`
	Stores  []Store  `yaml:"stores"`
	Reviews []Review `yaml:"reviews"`
}

// User is a seeded account with a plain text password.
type User struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Store is a seeded store. Author is the email of a seeded user and
// Coordinates are [lng, lat].
type Store struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Tags        []string  `yaml:"tags"`
	Address     string    `yaml:"address"`
	Coordinates []float64 `yaml:"coordinates"`
	Author      string    `yaml:"author"`
}

// Review is a seeded review. Store is a store name, Author a user email.
type Review struct {
	Store  string `yaml:"store"`
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
	Rating int    `yaml:"rating"`
}

// Result counts what a run created.
type Result struct {
	Users   int
	Stores  int
	Reviews int
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	var file File
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := file.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return &file, nil
}

func (f *File) validate() error {
	var errs []error
	emails := map[string]bool{}
	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" {
			errs = append(errs, fmt.Errorf("users[%d]: email and password are required", i))
		}
		emails[strings.ToLower(u.Email)] = true
	}
	names := map[string]bool{}
	for i, s := range f.Stores {
		if s.Name == "" || s.Address == "" {
			errs = append(errs, fmt.Errorf("stores[%d]: name and address are required", i))
		}
		if len(s.Coordinates) != 2 {
			errs = append(errs, fmt.Errorf("stores[%d] %q: coordinates must be [lng, lat]", i, s.Name))
		}
		if !emails[strings.ToLower(s.Author)] {
			errs = append(errs, fmt.Errorf("stores[%d] %q: unknown author %q", i, s.Name, s.Author))
		}
		names[s.Name] = true
	}
	for i, r := range f.Reviews {
		if !names[r.Store] {
			errs = append(errs, fmt.Errorf("reviews[%d]: unknown store %q", i, r.Store))
		}
		if !emails[strings.ToLower(r.Author)] {
			errs = append(errs, fmt.Errorf("reviews[%d]: unknown author %q", i, r.Author))
		}
		if r.Rating < 1 || r.Rating > 5 {
			errs = append(errs, fmt.Errorf("reviews[%d]: rating %d is not between 1 and 5", i, r.Rating))
		}
	}
	return errors.Join(errs...)
}

// Seeder writes seed files through the repositories.
type Seeder struct {
	stores  repositories.StoreRepository
	users   repositories.UserRepository
	reviews repositories.ReviewRepository

	storeService  *services.StoreService
	reviewService *services.ReviewService
	logger        *zap.Logger
}

// New creates a Seeder.
func New(stores repositories.StoreRepository, users repositories.UserRepository, reviews repositories.ReviewRepository, logger *zap.Logger) *Seeder {
	return &Seeder{
		stores:        stores,
		users:         users,
		reviews:       reviews,
		storeService:  services.NewStoreService(stores, logger),
		reviewService: services.NewReviewService(reviews, stores),
		logger:        logger,
	}
}

// Reset deletes every review, store and user.
func (s *Seeder) Reset(ctx context.Context) error {
	if err := s.reviews.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete reviews: %w", err)
	}
	if err := s.stores.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete stores: %w", err)
	}
	if err := s.users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	s.logger.Info("deleted all data")
	return nil
}

// Run creates the users, then the stores with their slugs, then the reviews.
func (s *Seeder) Run(ctx context.Context, file *File) (*Result, error) {
	res := &Result{}

	users := make(map[string]*models.User, len(file.Users))
	for _, u := range file.Users {
		hash, err := services.HashPassword(u.Password)
		if err != nil {
			return res, err
		}
		user := &models.User{
			Name:         u.Name,
			Email:        strings.ToLower(strings.TrimSpace(u.Email)),
			PasswordHash: hash,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return res, fmt.Errorf("failed to create user %s: %w", user.Email, err)
		}
		users[user.Email] = user
		res.Users++
	}

	stores := make(map[string]*models.Store, len(file.Stores))
	for _, st := range file.Stores {
		store, err := s.storeService.CreateStore(ctx, users[strings.ToLower(st.Author)], services.StoreInput{
			Name:        st.Name,
			Description: st.Description,
			Tags:        st.Tags,
			Address:     st.Address,
			Lng:         st.Coordinates[0],
			Lat:         st.Coordinates[1],
		})
		if err != nil {
			return res, err
		}
		stores[st.Name] = store
		res.Stores++
	}

	for _, r := range file.Reviews {
		author := users[strings.ToLower(r.Author)]
		if _, err := s.reviewService.AddReview(ctx, author, stores[r.Store].ID, r.Text, r.Rating); err != nil {
			return res, err
		}
		res.Reviews++
	}

	s.logger.Info("seeded data",
		zap.Int("users", res.Users),
		zap.Int("stores", res.Stores),
		zap.Int("reviews", res.Reviews),
	)
	return res, nil
}
