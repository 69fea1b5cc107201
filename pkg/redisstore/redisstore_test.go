package redisstore_test

import (
	"context"
	"testing"
	"time"

	"storedir/pkg/redisstore"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var _ fiber.Storage = (*redisstore.Storage)(nil)

func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	tc.CleanupContainer(t, container)
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return uri
}

func TestStorage_Redis(t *testing.T) {
	uri := setupRedis(t)
	store, err := redisstore.New(context.Background(), uri)
	require.NoError(t, err)
	defer store.Close()

	val, err := store.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, store.Set("abc", []byte(`{"flashes":"x"}`), time.Minute))
	val, err = store.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, `{"flashes":"x"}`, string(val))

	require.NoError(t, store.Delete("abc"))
	val, err = store.Get("abc")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, store.Set("one", []byte("1"), 0))
	require.NoError(t, store.Set("two", []byte("2"), 0))
	require.NoError(t, store.Reset())
	val, err = store.Get("one")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestStorage_KeysArePrefixed(t *testing.T) {
	uri := setupRedis(t)
	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "unrelated", "keep", 0).Err())
	store := redisstore.NewWithClient(client, "test:")
	require.NoError(t, store.Set("k", []byte("v"), 0))
	require.NoError(t, store.Reset())

	got, err := client.Get(context.Background(), "unrelated").Result()
	require.NoError(t, err)
	assert.Equal(t, "keep", got)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := redisstore.New(context.Background(), "not-a-url://")
	assert.Error(t, err)
}
