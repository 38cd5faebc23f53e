package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"estately/models"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendREST   = "rest"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string   `mapstructure:"APP_PORT"`
	Env               string   `mapstructure:"ENV"`
	JWTSecret         string   `mapstructure:"JWT_SECRET"`
	LogLevel          string   `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int      `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowOrigins  []string `mapstructure:"CORS_ALLOW_ORIGINS"`

	// Record store.
	StoreBackend  string        `mapstructure:"STORE_BACKEND"`
	StoreBaseURL  string        `mapstructure:"STORE_BASE_URL"`
	StoreTimeout  time.Duration `mapstructure:"STORE_TIMEOUT"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`

	// Redis configuration.
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB     int           `mapstructure:"REDIS_QUEUE_DB"`
	PropertyCacheTTL time.Duration `mapstructure:"PROPERTY_CACHE_TTL"`

	// Notifications.
	NotifyAsync             bool `mapstructure:"NOTIFY_ASYNC"`
	NotifyWorkerConcurrency int  `mapstructure:"NOTIFY_WORKER_CONCURRENCY"`

	// Booking list page sizes.
	models.PageSizes `mapstructure:",squash"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("CORS_ALLOW_ORIGINS", []string{"*"})

	v.SetDefault("STORE_BACKEND", BackendREST)
	v.SetDefault("STORE_BASE_URL", "http://localhost:3001")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "estately")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("PROPERTY_CACHE_TTL", "10m")

	v.SetDefault("NOTIFY_ASYNC", false)
	v.SetDefault("NOTIFY_WORKER_CONCURRENCY", 10)

	v.SetDefault("PAGE_SIZE_OWNER", 5)
	v.SetDefault("PAGE_SIZE_BUYER", 6)
	v.SetDefault("PAGE_SIZE_ADMIN", 6)
}

// Load reads config.yaml from "." or "./config" when present, then the
// environment, on top of the defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendREST:
		if c.StoreBaseURL == "" {
			return errors.New("STORE_BASE_URL is required for the rest store")
		}
	case BackendMongo:
		if c.DatabaseURL == "" || c.MongoDatabase == "" {
			return errors.New("DATABASE_URL and MONGO_DATABASE are required for the mongo store")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.Env == "production" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	return nil
}

// LoadConfig loads AppConfig and exits when it is invalid.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
