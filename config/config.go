package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var ErrMissingSecret = errors.New("ACCESS_TOKEN_SECRET is not set")

type Config struct {
	Port    string
	GinMode string
	Auth    AuthConfig
	Payment PaymentConfig
	DB      DBConfig
	// LegacyOpenPromotion leaves PATCH /users/admin/:id without the admin
	// guard. Only for compatibility testing against older clients.
	LegacyOpenPromotion bool
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type PaymentConfig struct {
	SecretKey string
	Currency  string
}

type DBConfig struct {
	Driver   string
	Mongo    MongoConfig
	Postgres PostgresConfig
}

type MongoConfig struct {
	User         string
	Password     string
	Cluster      string
	Database     string
	URI          string
	Transactions bool
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

const localMongoURI = "mongodb://localhost:27017"

// ConnectionURI builds the SRV connection string unless an explicit MONGO_URI
// is set. Without a cluster it falls back to a local mongod.
func (m MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	if m.Cluster == "" {
		return localMongoURI
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority", m.User, m.Password, m.Cluster)
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("TOKEN_TTL", "72h")
	v.SetDefault("PAYMENT_CURRENCY", "usd")
	v.SetDefault("DB_DRIVER", DriverMongo)
	v.SetDefault("DB_NAME", "restaurant")
	v.SetDefault("MONGO_TRANSACTIONS", false)
	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", 5432)
	v.SetDefault("PG_USER", "postgres")
	v.SetDefault("PG_DATABASE", "restaurant")
	v.SetDefault("PG_SSLMODE", "disable")
	v.SetDefault("LEGACY_OPEN_PROMOTION", false)
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	driver := strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER")))
	switch driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	return &Config{
		Port:    v.GetString("PORT"),
		GinMode: v.GetString("GIN_MODE"),
		Auth: AuthConfig{
			Secret:   v.GetString("ACCESS_TOKEN_SECRET"),
			TokenTTL: v.GetDuration("TOKEN_TTL"),
		},
		Payment: PaymentConfig{
			SecretKey: v.GetString("PAYMENT_SECRET_KEY"),
			Currency:  strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
		},
		DB: DBConfig{
			Driver: driver,
			Mongo: MongoConfig{
				User:         v.GetString("DB_USER"),
				Password:     v.GetString("DB_PASS"),
				Cluster:      v.GetString("DB_CLUSTER"),
				Database:     v.GetString("DB_NAME"),
				URI:          v.GetString("MONGO_URI"),
				Transactions: v.GetBool("MONGO_TRANSACTIONS"),
			},
			Postgres: PostgresConfig{
				Host:     v.GetString("PG_HOST"),
				Port:     v.GetInt("PG_PORT"),
				User:     v.GetString("PG_USER"),
				Password: v.GetString("PG_PASSWORD"),
				Database: v.GetString("PG_DATABASE"),
				SSLMode:  v.GetString("PG_SSLMODE"),
			},
		},
		LegacyOpenPromotion: v.GetBool("LEGACY_OPEN_PROMOTION"),
	}, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return ErrMissingSecret
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
