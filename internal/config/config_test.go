package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadThresholds(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		th, err := LoadThresholds(writeFile(t, "speedDeviationRatio: 0.25\n"))
		require.NoError(t, err)
		assert.Equal(t, 0.25, th.SpeedDeviationRatio)
		assert.Equal(t, 0.5, th.FuelDeviationRatio)
		assert.Equal(t, 5*time.Minute, th.GroupWindow)
	})

	t.Run("duration window", func(t *testing.T) {
		th, err := LoadThresholds(writeFile(t, "groupWindow: 90s\n"))
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, th.GroupWindow)
	})

	t.Run("negative ratio rejected", func(t *testing.T) {
		_, err := LoadThresholds(writeFile(t, "fuelDeviationRatio: -1\n"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadThresholds(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("STORE_DRIVER", "")
		t.Setenv("IMPORT_WORKERS", "")
		t.Setenv("REQUIRE_AUTH", "")
		t.Setenv("RATE_LIMIT", "")
		t.Setenv("RATE_WINDOW", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Port)
		assert.Equal(t, DriverSQLite, cfg.StoreDriver)
		assert.Equal(t, 4, cfg.ImportWorkers)
		assert.Equal(t, DefaultThresholds(), cfg.Thresholds)
	})

	t.Run("bare port gets a colon", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Port)
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("POSTGRES_DSN", "")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("non-positive rate window rejected", func(t *testing.T) {
		for _, window := range []string{"0s", "-1m"} {
			t.Setenv("RATE_LIMIT", "120")
			t.Setenv("RATE_WINDOW", window)
			_, err := Load()
			require.Error(t, err, window)
		}
	})

	t.Run("rate window ignored when limiting is off", func(t *testing.T) {
		t.Setenv("RATE_LIMIT", "0")
		t.Setenv("RATE_WINDOW", "0s")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.RateLimit)
	})

	t.Run("auth requires a private secret", func(t *testing.T) {
		t.Setenv("REQUIRE_AUTH", "true")
		for _, secret := range []string{"", DefaultJWTSecret} {
			t.Setenv("JWT_SECRET", secret)
			_, err := Load()
			require.Error(t, err, secret)
		}

		t.Setenv("JWT_SECRET", "s3cret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.RequireAuth)
	})

	t.Run("default secret allowed without auth", func(t *testing.T) {
		t.Setenv("REQUIRE_AUTH", "false")
		t.Setenv("JWT_SECRET", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mysql")
		_, err := Load()
		require.Error(t, err)
	})
}
