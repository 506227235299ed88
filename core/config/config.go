package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Valkey      ValkeyConfig
	ObjectStore ObjectStoreConfig
	Cache       CacheConfig
	Quota       QuotaConfig
	Security    SecurityConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasePath           string
	BodyLimit          int
	CorsAllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB Name for Postgres
}

type ValkeyConfig struct {
	Enabled   bool
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type ObjectStoreConfig struct {
	Driver    string // "minio" or "memory"
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// CacheConfig carries the default lifetime of every cache namespace.
type CacheConfig struct {
	UserTTL         time.Duration
	SubscriptionTTL time.Duration
	SettingsTTL     time.Duration
	FilesTTL        time.Duration
	// SweepInterval enables the background purge of expired entries. Zero keeps
	// expiry purely lazy.
	SweepInterval time.Duration
}

type QuotaConfig struct {
	SerializeUploads bool
	// LockTTL bounds how long a crashed holder blocks a user's uploads and how
	// long a waiter queues. A live holder keeps extending its lock, so a slow
	// write does not lose it.
	LockTTL time.Duration
}

type SecurityConfig struct {
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
}

var defaults = map[string]any{
	"APP_PORT":                 "3000",
	"APP_DEBUG":                false,
	"APP_ENV":                  "development",
	"APP_BASE_PATH":            "",
	"APP_BODY_LIMIT":           110 * 1024 * 1024,
	"APP_CORS_ALLOWED_ORIGINS": "http://localhost:3000,http://localhost:5173",

	"DB_DRIVER":   "sqlite",
	"DB_HOST":     "localhost",
	"DB_PORT":     5432,
	"DB_USER":     "postgres",
	"DB_PASSWORD": "",
	"DB_NAME":     "storages/app.db",

	"VALKEY_ENABLED":    false,
	"VALKEY_ADDRESS":    "localhost:6379",
	"VALKEY_PASSWORD":   "",
	"VALKEY_DB":         0,
	"VALKEY_KEY_PREFIX": "azstorage:",

	"OBJECT_STORE_DRIVER": "minio",
	"S3_ENDPOINT":         "localhost:9000",
	"S3_REGION":           "us-east-1",
	"S3_BUCKET":           "user-files",
	"S3_ACCESS_KEY":       "",
	"S3_SECRET_KEY":       "",
	"S3_USE_SSL":          false,
	"S3_PATH_STYLE":       true,

	"CACHE_TTL_USER":         300,
	"CACHE_TTL_SUBSCRIPTION": 600,
	"CACHE_TTL_SETTINGS":     1800,
	"CACHE_TTL_FILES":        120,
	"CACHE_SWEEP_INTERVAL":   "0s",

	"QUOTA_SERIALIZE_UPLOADS": true,
	"QUOTA_LOCK_TTL":          "30s",

	"APP_JWT_SECRET": "changeme_please_change_me_in_prod_12345",
	"APP_JWT_ISSUER": "az-storage",
	"APP_TOKEN_TTL":  "24h",
}

// LoadConfig loads configuration from Environment Variables (and a local .env
// file when present) on top of the built-in defaults.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Version:            "v1.0.0",
			Port:               v.GetString("APP_PORT"),
			Debug:              v.GetBool("APP_DEBUG"),
			Environment:        v.GetString("APP_ENV"),
			BasePath:           v.GetString("APP_BASE_PATH"),
			BodyLimit:          v.GetInt("APP_BODY_LIMIT"),
			CorsAllowedOrigins: splitList(v.GetString("APP_CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		Valkey: ValkeyConfig{
			Enabled:   v.GetBool("VALKEY_ENABLED"),
			Address:   v.GetString("VALKEY_ADDRESS"),
			Password:  v.GetString("VALKEY_PASSWORD"),
			DB:        v.GetInt("VALKEY_DB"),
			KeyPrefix: v.GetString("VALKEY_KEY_PREFIX"),
		},
		ObjectStore: ObjectStoreConfig{
			Driver:    strings.ToLower(v.GetString("OBJECT_STORE_DRIVER")),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			Region:    v.GetString("S3_REGION"),
			Bucket:    v.GetString("S3_BUCKET"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
			PathStyle: v.GetBool("S3_PATH_STYLE"),
		},
		Cache: CacheConfig{
			UserTTL:         seconds(v.GetInt("CACHE_TTL_USER")),
			SubscriptionTTL: seconds(v.GetInt("CACHE_TTL_SUBSCRIPTION")),
			SettingsTTL:     seconds(v.GetInt("CACHE_TTL_SETTINGS")),
			FilesTTL:        seconds(v.GetInt("CACHE_TTL_FILES")),
			SweepInterval:   v.GetDuration("CACHE_SWEEP_INTERVAL"),
		},
		Quota: QuotaConfig{
			SerializeUploads: v.GetBool("QUOTA_SERIALIZE_UPLOADS"),
			LockTTL:          v.GetDuration("QUOTA_LOCK_TTL"),
		},
		Security: SecurityConfig{
			JWTSecret: v.GetString("APP_JWT_SECRET"),
			JWTIssuer: v.GetString("APP_JWT_ISSUER"),
			TokenTTL:  v.GetDuration("APP_TOKEN_TTL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch c.ObjectStore.Driver {
	case "minio", "memory":
	default:
		return fmt.Errorf("unsupported object store driver: %s", c.ObjectStore.Driver)
	}
	for name, ttl := range map[string]time.Duration{
		"CACHE_TTL_USER":         c.Cache.UserTTL,
		"CACHE_TTL_SUBSCRIPTION": c.Cache.SubscriptionTTL,
		"CACHE_TTL_SETTINGS":     c.Cache.SettingsTTL,
		"CACHE_TTL_FILES":        c.Cache.FilesTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Quota.LockTTL < time.Millisecond {
		return fmt.Errorf("QUOTA_LOCK_TTL must be at least 1ms")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("APP_JWT_SECRET is required")
	}
	return nil
}
