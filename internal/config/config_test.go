package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storedir/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.IsDevelopment())
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", ":9000")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storedir.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_ENV: production\nJWT_SECRET: s3cret\nUPLOAD_DIR: /srv/uploads\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "/srv/uploads", cfg.UploadDir)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		_, err := config.Load(viper.New())
		assert.ErrorContains(t, err, "unsupported DB_DRIVER")
	})
	t.Run("secret outside development", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := config.Load(viper.New())
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
}
