package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Store    StoreConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Form     FormConfig
	Gemini   GeminiConfig
	Blessing BlessingConfig
	Receipt  ReceiptConfig
	S3       S3Config
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
// An empty APIKey leaves the API open.
type AuthConfig struct {
	APIKey string
}

// StoreConfig holds storefront behaviour.
type StoreConfig struct {
	CheckoutMode    string // "form" or "receipt"
	ViewLayout      string // "multi" or "single"
	CustomProducts  bool
	NotificationTTL time.Duration
	Timezone        string
}

// StorageConfig selects where cart snapshots live.
type StorageConfig struct {
	Driver  string // "file", "postgres" or "redis"
	DataDir string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// RedisConfig holds the Redis connection URL.
type RedisConfig struct {
	URL string
}

// FormConfig holds the remote order form endpoint.
type FormConfig struct {
	Endpoint string
}

// GeminiConfig holds the blessing generator settings.
// An empty APIKey disables generation.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// BlessingConfig lists extra gzipped blessing files.
type BlessingConfig struct {
	Files []string
}

// ReceiptConfig holds receipt rendering and export settings.
type ReceiptConfig struct {
	Dir         string
	FontPath    string
	RenderDelay time.Duration
}

// S3Config holds AWS S3 configuration for blessing files and receipts.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "family-store/")
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Store: StoreConfig{
			CheckoutMode:    getEnv("CHECKOUT_MODE", "form"),
			ViewLayout:      getEnv("VIEW_LAYOUT", "multi"),
			CustomProducts:  getEnvAsBool("CUSTOM_PRODUCTS_ENABLED", false),
			NotificationTTL: getEnvAsDuration("NOTIFICATION_TTL", 2*time.Second),
			Timezone:        getEnv("TIMEZONE", "Asia/Taipei"),
		},
		Storage: StorageConfig{
			Driver:  getEnv("STORAGE_DRIVER", "file"),
			DataDir: getEnv("DATA_DIR", "data/carts"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "familystore"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 1),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Form: FormConfig{
			Endpoint: getEnv("FORM_ENDPOINT", "https://docs.google.com/forms/d/e/1FAIpQLScC_1XAtjya1Lpq9KoxpQZh-Tpy-95emW1vWt98_0mS6p0H0g/formResponse"),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		},
		Blessing: BlessingConfig{
			Files: getEnvAsSlice("BLESSING_FILES", nil),
		},
		Receipt: ReceiptConfig{
			Dir:         getEnv("RECEIPT_DIR", ""),
			FontPath:    getEnv("RECEIPT_FONT_PATH", ""),
			RenderDelay: getEnvAsDuration("RECEIPT_RENDER_DELAY", 500*time.Millisecond),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "ap-northeast-1"),
			Prefix:  getEnv("S3_PREFIX", "family-store/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Store.CheckoutMode != "form" && c.Store.CheckoutMode != "receipt" {
		return fmt.Errorf("invalid checkout mode: %s (must be form or receipt)", c.Store.CheckoutMode)
	}

	if c.Store.ViewLayout != "multi" && c.Store.ViewLayout != "single" {
		return fmt.Errorf("invalid view layout: %s (must be multi or single)", c.Store.ViewLayout)
	}

	if c.Store.NotificationTTL <= 0 {
		return fmt.Errorf("notification TTL must be positive")
	}

	if _, err := c.Store.Location(); err != nil {
		return fmt.Errorf("invalid timezone: %s", c.Store.Timezone)
	}

	switch c.Storage.Driver {
	case "file":
		if c.Storage.DataDir == "" {
			return fmt.Errorf("data directory is required for the file storage driver")
		}
	case "postgres":
		if err := c.Database.validate(); err != nil {
			return err
		}
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("redis URL is required for the redis storage driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be file, postgres, or redis)", c.Storage.Driver)
	}

	if c.Store.CheckoutMode == "form" && c.Form.Endpoint == "" {
		return fmt.Errorf("form endpoint is required for form checkout")
	}

	if c.Receipt.RenderDelay < 0 {
		return fmt.Errorf("receipt render delay must not be negative")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Location returns the configured time zone.
func (c *StoreConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration (e.g. "2s") or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable, dropping empty entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
