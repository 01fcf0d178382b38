package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is built once at startup
// and passed explicitly to every component; nothing reads the environment
// after Load returns.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Channels ChannelsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodySize  int64
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig selects the idempotency store backend
type CacheConfig struct {
	Backend string        // "redis" or "memory"
	TTL     time.Duration // How long processed notification IDs are remembered
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// JWTConfig holds JWT settings for dashboard sessions
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// StorageConfig holds S3-compatible object storage settings for CSV exports
type StorageConfig struct {
	Enabled           bool
	Endpoint          string // Empty for AWS S3, set for MinIO/RustFS etc.
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// ChannelsConfig holds one credential block per marketplace
type ChannelsConfig struct {
	Falabella    FalabellaConfig
	MercadoLibre MercadoLibreConfig
	Ripley       RipleyConfig
	WooCommerce  WooCommerceConfig
}

// FalabellaConfig holds Falabella seller-center API credentials.
// UpdateAction is the stock-update action name; it is configuration because
// the accepted value must be confirmed against the live API documentation.
type FalabellaConfig struct {
	Enabled        bool
	BaseURL        string
	UserID         string
	APIKey         string
	UpdateAction   string
	TimeoutSeconds int
}

// MercadoLibreConfig holds MercadoLibre API credentials
type MercadoLibreConfig struct {
	Enabled        bool
	BaseURL        string
	ClientID       string
	ClientSecret   string
	SellerID       string
	TimeoutSeconds int
}

// RipleyConfig holds Ripley (Mirakl) API credentials
type RipleyConfig struct {
	Enabled        bool
	BaseURL        string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	TimeoutSeconds int
}

// WooCommerceConfig holds WooCommerce storefront credentials
type WooCommerceConfig struct {
	Enabled        bool
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	TimeoutSeconds int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with OMNI_ prefix (e.g., OMNI_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("OMNI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
			MaxBodySize:  v.GetInt64("http.max_body_size"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Backend: v.GetString("cache.backend"),
			TTL:     v.GetDuration("cache.ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Channels: ChannelsConfig{
			Falabella: FalabellaConfig{
				Enabled:        v.GetBool("channels.falabella.enabled"),
				BaseURL:        v.GetString("channels.falabella.base_url"),
				UserID:         v.GetString("channels.falabella.user_id"),
				APIKey:         v.GetString("channels.falabella.api_key"),
				UpdateAction:   v.GetString("channels.falabella.update_action"),
				TimeoutSeconds: v.GetInt("channels.falabella.timeout_seconds"),
			},
			MercadoLibre: MercadoLibreConfig{
				Enabled:        v.GetBool("channels.mercadolibre.enabled"),
				BaseURL:        v.GetString("channels.mercadolibre.base_url"),
				ClientID:       v.GetString("channels.mercadolibre.client_id"),
				ClientSecret:   v.GetString("channels.mercadolibre.client_secret"),
				SellerID:       v.GetString("channels.mercadolibre.seller_id"),
				TimeoutSeconds: v.GetInt("channels.mercadolibre.timeout_seconds"),
			},
			Ripley: RipleyConfig{
				Enabled:        v.GetBool("channels.ripley.enabled"),
				BaseURL:        v.GetString("channels.ripley.base_url"),
				TokenURL:       v.GetString("channels.ripley.token_url"),
				ClientID:       v.GetString("channels.ripley.client_id"),
				ClientSecret:   v.GetString("channels.ripley.client_secret"),
				TimeoutSeconds: v.GetInt("channels.ripley.timeout_seconds"),
			},
			WooCommerce: WooCommerceConfig{
				Enabled:        v.GetBool("channels.woocommerce.enabled"),
				BaseURL:        v.GetString("channels.woocommerce.base_url"),
				ConsumerKey:    v.GetString("channels.woocommerce.consumer_key"),
				ConsumerSecret: v.GetString("channels.woocommerce.consumer_secret"),
				TimeoutSeconds: v.GetInt("channels.woocommerce.timeout_seconds"),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets built-in default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "omnistock")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.max_body_size", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "omnistock")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.conn_max_idle_time", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("jwt.expiration", "12h")
	v.SetDefault("jwt.issuer", "omnistock")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.presign_expiration", "1h")

	v.SetDefault("channels.falabella.base_url", "https://sellercenter-api.falabella.com")
	v.SetDefault("channels.falabella.update_action", "ProductUpdate")
	v.SetDefault("channels.falabella.timeout_seconds", 30)

	v.SetDefault("channels.mercadolibre.base_url", "https://api.mercadolibre.com")
	v.SetDefault("channels.mercadolibre.timeout_seconds", 30)

	v.SetDefault("channels.ripley.timeout_seconds", 30)
	v.SetDefault("channels.woocommerce.timeout_seconds", 30)
}

// Validate checks that required settings are present; it fails hard when an
// enabled channel is missing credentials so misconfiguration surfaces at
// startup, not mid-sync.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" && c.App.Env == "production" {
		return fmt.Errorf("config: jwt.secret is required in production")
	}

	ch := &c.Channels
	if ch.Falabella.Enabled {
		if ch.Falabella.UserID == "" || ch.Falabella.APIKey == "" {
			return fmt.Errorf("config: channels.falabella requires user_id and api_key")
		}
	}
	if ch.MercadoLibre.Enabled {
		if ch.MercadoLibre.ClientID == "" || ch.MercadoLibre.ClientSecret == "" {
			return fmt.Errorf("config: channels.mercadolibre requires client_id and client_secret")
		}
	}
	if ch.Ripley.Enabled {
		if ch.Ripley.BaseURL == "" || ch.Ripley.ClientID == "" || ch.Ripley.ClientSecret == "" {
			return fmt.Errorf("config: channels.ripley requires base_url, client_id and client_secret")
		}
	}
	if ch.WooCommerce.Enabled {
		if ch.WooCommerce.BaseURL == "" || ch.WooCommerce.ConsumerKey == "" || ch.WooCommerce.ConsumerSecret == "" {
			return fmt.Errorf("config: channels.woocommerce requires base_url, consumer_key and consumer_secret")
		}
	}

	if c.Storage.Enabled {
		if c.Storage.Bucket == "" || c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("config: storage requires bucket, access_key and secret_key")
		}
	}

	if c.Cache.Backend != "redis" && c.Cache.Backend != "memory" {
		return fmt.Errorf("config: cache.backend must be \"redis\" or \"memory\", got %q", c.Cache.Backend)
	}

	return nil
}
