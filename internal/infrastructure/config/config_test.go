package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:   AppConfig{Env: "development"},
		Cache: CacheConfig{Backend: "memory"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("minimal development config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Env = "production"
		assert.Error(t, cfg.Validate())

		cfg.JWT.Secret = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("enabled channel without credentials fails hard", func(t *testing.T) {
		cfg := validConfig()
		cfg.Channels.Falabella.Enabled = true
		assert.Error(t, cfg.Validate())

		cfg.Channels.Falabella.UserID = "seller@example.com"
		cfg.Channels.Falabella.APIKey = "key"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("enabled storage without bucket fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.Storage.Enabled = true
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown cache backend fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache.Backend = "memcached"
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "pw", DBName: "omnistock", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=omnistock sslmode=disable", cfg.DSN())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "omnistock", cfg.App.Name)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "https://sellercenter-api.falabella.com", cfg.Channels.Falabella.BaseURL)
	assert.Equal(t, "ProductUpdate", cfg.Channels.Falabella.UpdateAction)
	assert.Equal(t, "https://api.mercadolibre.com", cfg.Channels.MercadoLibre.BaseURL)
	assert.False(t, cfg.Channels.Ripley.Enabled)
}
