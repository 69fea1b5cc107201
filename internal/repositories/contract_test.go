package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"storedir/internal/models"
	"storedir/internal/repositories"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm/logger"
)

// runContract exercises the behavior every backend must share.
func runContract(t *testing.T, stores repositories.StoreRepository, users repositories.UserRepository, reviews repositories.ReviewRepository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	author := &models.User{Name: "Wes", Email: "wes@example.com"}
	require.NoError(t, users.Create(ctx, author))
	err := users.Create(ctx, &models.User{Name: "Other", Email: "wes@example.com"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	newStore := func(name, slug string, lng, lat float64, tags ...string) *models.Store {
		s := &models.Store{
			Name:        name,
			Slug:        slug,
			Description: name + " downtown",
			Tags:        tags,
			Created:     now,
			Location:    models.Location{Type: models.PointType, Coordinates: []float64{lng, lat}, Address: "1 Main St"},
			AuthorID:    author.ID,
		}
		require.NoError(t, stores.Create(ctx, s))
		return s
	}
	retro := newStore("Cafe Retro", "cafe-retro", -79.8632, 43.2557, "Wifi", "Open Late")
	retro2 := newStore("Cafe Retro", "cafe-retro-2", -79.8690, 43.2590, "Wifi")
	newStore("Tea House", "tea-house", -73.6000, 45.5230)

	t.Run("slugs", func(t *testing.T) {
		n, err := stores.CountSlugMatches(ctx, "cafe-retro")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = stores.CountSlugMatches(ctx, "tea")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("get by slug", func(t *testing.T) {
		got, err := stores.GetBySlug(ctx, "cafe-retro")
		require.NoError(t, err)
		assert.Equal(t, retro.ID, got.ID)
		require.NotNil(t, got.Author)
		assert.Equal(t, "Wes", got.Author.Name)

		_, err = stores.GetBySlug(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("tags", func(t *testing.T) {
		tagged, err := stores.ListByTag(ctx, "")
		require.NoError(t, err)
		assert.Len(t, tagged, 2)

		late, err := stores.ListByTag(ctx, "Open Late")
		require.NoError(t, err)
		require.Len(t, late, 1)
		assert.Equal(t, retro.ID, late[0].ID)

		counts, err := stores.TagCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.TagCount{{Tag: "Wifi", Count: 2}, {Tag: "Open Late", Count: 1}}, counts)
	})

	t.Run("near", func(t *testing.T) {
		near, err := stores.Near(ctx, -79.87, 43.26, 10000, 10)
		require.NoError(t, err)
		require.Len(t, near, 2)
		for _, s := range near {
			assert.Equal(t, "Cafe Retro", s.Name)
		}
	})

	t.Run("search", func(t *testing.T) {
		results, err := stores.Search(ctx, "tea", 5)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "Tea House", results[0].Name)
	})

	t.Run("top stores", func(t *testing.T) {
		for _, r := range []struct {
			store  *models.Store
			rating int
		}{{retro, 5}, {retro, 4}, {retro2, 5}} {
			require.NoError(t, reviews.Create(ctx, &models.Review{
				StoreID: r.store.ID, AuthorID: author.ID, Text: "ok", Rating: r.rating, Created: now,
			}))
		}
		top, err := stores.TopStores(ctx, 2, 10)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, retro.ID, top[0].ID)
		assert.Equal(t, 2, top[0].ReviewCount)
		assert.InDelta(t, 4.5, top[0].AverageRating, 0.001)
	})

	t.Run("hearts", func(t *testing.T) {
		u, err := users.AddHeart(ctx, author.ID, retro.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{retro.ID}, u.Hearts)
		u, err = users.AddHeart(ctx, author.ID, retro.ID)
		require.NoError(t, err)
		assert.Len(t, u.Hearts, 1)

		hearted, err := stores.ListByIDs(ctx, u.Hearts)
		require.NoError(t, err)
		assert.Len(t, hearted, 1)

		u, err = users.RemoveHeart(ctx, author.ID, retro.ID)
		require.NoError(t, err)
		assert.Empty(t, u.Hearts)
	})

	t.Run("reset token", func(t *testing.T) {
		expires := now.Add(time.Hour)
		author.ResetPasswordToken = "abc123"
		author.ResetPasswordExpires = &expires
		require.NoError(t, users.Update(ctx, author))

		got, err := users.GetByResetToken(ctx, "abc123", now)
		require.NoError(t, err)
		assert.Equal(t, author.ID, got.ID)

		_, err = users.GetByResetToken(ctx, "abc123", now.Add(2*time.Hour))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("delete all", func(t *testing.T) {
		require.NoError(t, reviews.DeleteAll(ctx))
		require.NoError(t, stores.DeleteAll(ctx))
		require.NoError(t, users.DeleteAll(ctx))
		n, err := stores.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestContract_SQLite(t *testing.T) {
	db := openTestDB(t)
	runContract(t,
		repositories.NewGORMStoreRepository(db),
		repositories.NewGORMUserRepository(db),
		repositories.NewGORMReviewRepository(db),
	)
}

func TestContract_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storedir"),
		tcpostgres.WithUsername("storedir"),
		tcpostgres.WithPassword("storedir"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	tc.CleanupContainer(t, container)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := repositories.OpenGORM("postgres", dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, repositories.MigrateGORM(db))
	runContract(t,
		repositories.NewGORMStoreRepository(db),
		repositories.NewGORMUserRepository(db),
		repositories.NewGORMReviewRepository(db),
	)
}

func TestContract_Mongo(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	db, err := repositories.ConnectMongo(ctx, uri, "storedir_test_"+ulid.Make().String())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})
	require.NoError(t, repositories.EnsureMongoIndexes(ctx, db))

	runContract(t,
		repositories.NewMongoStoreRepository(db),
		repositories.NewMongoUserRepository(db),
		repositories.NewMongoReviewRepository(db),
	)
}
