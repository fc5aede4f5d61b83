package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	Port      string `env:"PORT,      default=3000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	StaticDir string `env:"STATIC_DIR"`
	// CORSOrigins is a comma separated list.
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	Auth  AuthConfig
	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
	Email EmailConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET, required"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,      default=24h"`
	ResetCodeTTL time.Duration `env:"RESET_CODE_TTL, default=1h"`
	BcryptCost   int           `env:"BCRYPT_COST,    default=10"`
}

type StoreConfig struct {
	Driver       string `env:"STORE_DRIVER,      default=postgres"`
	DatabaseURL  string `env:"DATABASE_URL,      default=postgres://localhost:5432/auth?sslmode=disable"`
	SQLitePath   string `env:"SQLITE_PATH,       default=data/auth.db"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_service"`
}

// RedisConfig is optional: an empty Addr disables the stats cache.
type RedisConfig struct {
	Addr          string        `env:"REDIS_ADDR"`
	Password      string        `env:"REDIS_PASSWORD"`
	DB            int           `env:"REDIS_DB,        default=0"`
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL, default=30s"`
}

// EmailConfig is optional: an empty Host logs notifications instead of sending them.
type EmailConfig struct {
	Host    string `env:"EMAIL_HOST"`
	Port    int    `env:"EMAIL_PORT,   default=587"`
	User    string `env:"EMAIL_USER"`
	Pass    string `env:"EMAIL_PASS"`
	From    string `env:"EMAIL_FROM"`
	Workers int    `env:"MAIL_WORKERS, default=4"`
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DB are required for the mongo driver")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want postgres, sqlite or mongo)", c.Store.Driver)
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.ResetCodeTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL and RESET_CODE_TTL must be positive")
	}
	return nil
}
