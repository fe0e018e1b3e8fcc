package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Blog      BlogConfig
	Store     StoreConfig
	Postgres  PostgresConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	LogLevel  string
	// AllowInsecureToken accepts unsigned tokens when no verifier can be built (integration only).
	AllowInsecureToken bool
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type BlogConfig struct {
	PageSize int
}

type StoreConfig struct {
	Driver string
}

type PostgresConfig struct {
	DSN      string
	MaxConns int32
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KeycloakConfig struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Addr is the Redis address, empty when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 15)
	v.SetDefault("BLOG_PAGE_SIZE", 5)
	v.SetDefault("STORE_DRIVER", DriverMemory)
	v.SetDefault("POSTGRES_MAX_CONNS", 10)
	v.SetDefault("MONGODB_DATABASE", "blog")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 60)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout:    time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
			ShutdownTimeout: time.Duration(v.GetInt("SERVER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Blog: BlogConfig{
			PageSize: v.GetInt("BLOG_PAGE_SIZE"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		},
		Postgres: PostgresConfig{
			DSN:      v.GetString("POSTGRES_DSN"),
			MaxConns: v.GetInt32("POSTGRES_MAX_CONNS"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Keycloak: KeycloakConfig{
			URL:          v.GetString("KEYCLOAK_URL"),
			Realm:        v.GetString("KEYCLOAK_REALM"),
			ClientID:     v.GetString("KEYCLOAK_CLIENT_ID"),
			ClientSecret: v.GetString("KEYCLOAK_CLIENT_SECRET"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("JWT_SECRET"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		LogLevel:           v.GetString("LOG_LEVEL"),
		AllowInsecureToken: v.GetBool("ALLOW_INSECURE_TOKEN"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Blog.PageSize < 1 {
		return fmt.Errorf("BLOG_PAGE_SIZE must be >= 1, got %d", c.Blog.PageSize)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for store driver %q", c.Store.Driver)
		}
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for store driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want memory, postgres or mongo)", c.Store.Driver)
	}
	return nil
}
