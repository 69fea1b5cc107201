package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"storedir/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	for _, name := range []string{"serve", "migrate", "seed"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, seedCmd.Flags().Lookup("file"))
	assert.NotNil(t, seedCmd.Flags().Lookup("reset"))
}

func TestMigrateAndSeed(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "storedir.db")
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "test_jwt_secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", dsn)
	t.Setenv("LOG_LEVEL", "error")

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated sqlite database")

	out, err = execute(t, "seed", "--file", "data/sample.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 3 users, 7 stores, 8 reviews")

	// A second run only succeeds after a reset.
	_, err = execute(t, "seed", "--file", "data/sample.yaml")
	assert.Error(t, err)
	_, err = execute(t, "seed", "--file", "data/sample.yaml", "--reset")
	require.NoError(t, err)

	db, err := repositories.OpenGORM("sqlite", dsn, gormlogger.Silent)
	require.NoError(t, err)
	count, err := repositories.NewGORMStoreRepository(db).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestConfigErrors(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	_, err = execute(t, "migrate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
