package app

import (
	"context"
	"fmt"

	"storedir/internal/config"
	"storedir/internal/repositories"
	"storedir/pkg/redisstore"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// Backend holds the repositories of the configured database.
type Backend struct {
	Stores  repositories.StoreRepository
	Users   repositories.UserRepository
	Reviews repositories.ReviewRepository

	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

// OpenBackend connects to the database selected by cfg.DBDriver.
func OpenBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Backend, error) {
	if cfg.DBDriver == "mongo" {
		db, err := repositories.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		log.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
		return &Backend{
			Stores:  repositories.NewMongoStoreRepository(db),
			Users:   repositories.NewMongoUserRepository(db),
			Reviews: repositories.NewMongoReviewRepository(db),
			migrate: func(ctx context.Context) error {
				return repositories.EnsureMongoIndexes(ctx, db)
			},
			close: func(ctx context.Context) error {
				return db.Client().Disconnect(ctx)
			},
		}, nil
	}

	level := logger.Warn
	if cfg.IsDevelopment() {
		level = logger.Info
	}
	db, err := repositories.OpenGORM(cfg.DBDriver, cfg.DatabaseDSN, level)
	if err != nil {
		return nil, err
	}
	log.Info("connected to database", zap.String("driver", cfg.DBDriver))
	return &Backend{
		Stores:  repositories.NewGORMStoreRepository(db),
		Users:   repositories.NewGORMUserRepository(db),
		Reviews: repositories.NewGORMReviewRepository(db),
		migrate: func(context.Context) error {
			return repositories.MigrateGORM(db)
		},
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

// Migrate creates the tables or indexes the repositories rely on.
func (b *Backend) Migrate(ctx context.Context) error {
	if err := b.migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (b *Backend) Close(ctx context.Context) error {
	return b.close(ctx)
}

// OpenSessionStorage connects the Redis session storage, or returns nil to keep
// sessions in memory when REDIS_URL is empty.
func OpenSessionStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (fiber.Storage, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	storage, err := redisstore.New(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	log.Info("sessions stored in Redis")
	return storage, nil
}
