// Package config handles loading and validation of application configuration
// from environment variables and potentially configuration files.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	// Validation constants
	minJWTLength = 32
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	FrontendURL    string      `mapstructure:"FRONTEND_URL" yaml:"frontend_url"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"MAX_IDLE_CONNS" yaml:"max_idle_conns"`
	ConnMaxLife  string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// connection URL suitable for golang-migrate and
// other URL-based database tools.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// SupabaseConfig holds credentials for the hosted Supabase project that owns
// auth and (in hosted mode) the document tables.
type SupabaseConfig struct {
	URL        string `mapstructure:"URL" yaml:"url"`
	AnonKey    string `mapstructure:"ANON_KEY" yaml:"anon_key"`
	ServiceKey string `mapstructure:"SERVICE_KEY" yaml:"service_key"`
	JWTSecret  string `mapstructure:"JWT_SECRET" yaml:"jwt_secret"`
	JWKSURL    string `mapstructure:"JWKS_URL" yaml:"jwks_url"`
	// UseDataStore selects the Supabase PostgREST document/proof stores
	// instead of the direct Postgres stores.
	UseDataStore bool `mapstructure:"USE_DATA_STORE" yaml:"use_data_store"`
}

// ExtractionConfig holds the endpoint of the hosted AI extraction service.
type ExtractionConfig struct {
	APIUrl         string `mapstructure:"API_URL" yaml:"api_url"`
	APIKey         string `mapstructure:"API_KEY" yaml:"api_key"`
	CallbackURL    string `mapstructure:"CALLBACK_URL" yaml:"callback_url"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// StorageConfig holds S3-compatible object storage settings (Cloudflare R2).
type StorageConfig struct {
	AccountID       string `mapstructure:"ACCOUNT_ID" yaml:"account_id"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	AccessKeySecret string `mapstructure:"ACCESS_KEY_SECRET" yaml:"access_key_secret"`
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	// MaxUploadBytes caps document upload size (default 15 MiB).
	MaxUploadBytes int64 `mapstructure:"MAX_UPLOAD_BYTES" yaml:"max_upload_bytes"`
}

// EmailConfig holds configuration for sending emails via Resend.
type EmailConfig struct {
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
	// Enabled toggles tier-change notification emails.
	Enabled bool `mapstructure:"ENABLED" yaml:"enabled"`
}

// ScoringConfig tunes the credibility service around the engine. The engine
// itself is pure; these knobs only affect caching and event fan-out.
type ScoringConfig struct {
	// CacheTTLSeconds is how long a computed score snapshot stays valid in
	// Redis before a fresh computation is forced.
	CacheTTLSeconds int `mapstructure:"CACHE_TTL_SECONDS" yaml:"cache_ttl_seconds"`
	// RecalculateDebounceSeconds suppresses recomputation storms during
	// bulk uploads.
	RecalculateDebounceSeconds int `mapstructure:"RECALCULATE_DEBOUNCE_SECONDS" yaml:"recalculate_debounce_seconds"`
}

// EventServiceConfig holds configuration for the Redis-based event service.
type EventServiceConfig struct {
	PublishTimeoutSeconds   int `mapstructure:"PUBLISH_TIMEOUT_SECONDS" yaml:"publish_timeout_seconds"`
	SubscribeTimeoutSeconds int `mapstructure:"SUBSCRIBE_TIMEOUT_SECONDS" yaml:"subscribe_timeout_seconds"`
	EventBufferSize         int `mapstructure:"EVENT_BUFFER_SIZE" yaml:"event_buffer_size"`
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Maximum document uploads per window per business
	UploadsPerWindow int `mapstructure:"UPLOADS_PER_WINDOW" yaml:"uploads_per_window"`
	WindowSeconds    int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server       ServerConfig       `mapstructure:"SERVER" yaml:"server"`
	Database     DatabaseConfig     `mapstructure:"DATABASE" yaml:"database"`
	Redis        RedisConfig        `mapstructure:"REDIS" yaml:"redis"`
	Supabase     SupabaseConfig     `mapstructure:"SUPABASE" yaml:"supabase"`
	Extraction   ExtractionConfig   `mapstructure:"EXTRACTION" yaml:"extraction"`
	Storage      StorageConfig      `mapstructure:"STORAGE" yaml:"storage"`
	Email        EmailConfig        `mapstructure:"EMAIL" yaml:"email"`
	Scoring      ScoringConfig      `mapstructure:"SCORING" yaml:"scoring"`
	EventService EventServiceConfig `mapstructure:"EVENT_SERVICE" yaml:"event_service"`
	RateLimit    RateLimitConfig    `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
}

// IsDevelopment returns true if the application is running in development.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "vyaparsathi_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("DATABASE.MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("SUPABASE.USE_DATA_STORE", false)
	v.SetDefault("EXTRACTION.TIMEOUT_SECONDS", 30)
	v.SetDefault("STORAGE.MAX_UPLOAD_BYTES", int64(15<<20))
	v.SetDefault("EMAIL.ENABLED", false)
	v.SetDefault("SCORING.CACHE_TTL_SECONDS", 300)
	v.SetDefault("SCORING.RECALCULATE_DEBOUNCE_SECONDS", 10)
	v.SetDefault("EVENT_SERVICE.PUBLISH_TIMEOUT_SECONDS", 5)
	v.SetDefault("EVENT_SERVICE.SUBSCRIBE_TIMEOUT_SECONDS", 10)
	v.SetDefault("EVENT_SERVICE.EVENT_BUFFER_SIZE", 100)
	v.SetDefault("RATE_LIMIT.UPLOADS_PER_WINDOW", 30)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.FRONTEND_URL", "FRONTEND_URL"},
		// Database config
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		// Redis config
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		// Supabase
		{"SUPABASE.URL", "SUPABASE_URL"},
		{"SUPABASE.ANON_KEY", "SUPABASE_ANON_KEY"},
		{"SUPABASE.SERVICE_KEY", "SUPABASE_SERVICE_KEY"},
		{"SUPABASE.JWT_SECRET", "SUPABASE_JWT_SECRET"},
		{"SUPABASE.JWKS_URL", "SUPABASE_JWKS_URL"},
		{"SUPABASE.USE_DATA_STORE", "SUPABASE_USE_DATA_STORE"},
		// Extraction service
		{"EXTRACTION.API_URL", "EXTRACTION_API_URL"},
		{"EXTRACTION.API_KEY", "EXTRACTION_API_KEY"},
		{"EXTRACTION.CALLBACK_URL", "EXTRACTION_CALLBACK_URL"},
		{"EXTRACTION.TIMEOUT_SECONDS", "EXTRACTION_TIMEOUT_SECONDS"},
		// Storage
		{"STORAGE.ACCOUNT_ID", "STORAGE_ACCOUNT_ID"},
		{"STORAGE.ACCESS_KEY_ID", "STORAGE_ACCESS_KEY_ID"},
		{"STORAGE.ACCESS_KEY_SECRET", "STORAGE_ACCESS_KEY_SECRET"},
		{"STORAGE.BUCKET", "STORAGE_BUCKET"},
		{"STORAGE.MAX_UPLOAD_BYTES", "STORAGE_MAX_UPLOAD_BYTES"},
		// Email config
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		{"EMAIL.ENABLED", "EMAIL_ENABLED"},
		// Scoring config
		{"SCORING.CACHE_TTL_SECONDS", "SCORING_CACHE_TTL_SECONDS"},
		{"SCORING.RECALCULATE_DEBOUNCE_SECONDS", "SCORING_RECALCULATE_DEBOUNCE_SECONDS"},
		// Event service config
		{"EVENT_SERVICE.PUBLISH_TIMEOUT_SECONDS", "EVENT_SERVICE_PUBLISH_TIMEOUT_SECONDS"},
		{"EVENT_SERVICE.SUBSCRIBE_TIMEOUT_SECONDS", "EVENT_SERVICE_SUBSCRIBE_TIMEOUT_SECONDS"},
		{"EVENT_SERVICE.EVENT_BUFFER_SIZE", "EVENT_SERVICE_EVENT_BUFFER_SIZE"},
		// Rate limit config
		{"RATE_LIMIT.UPLOADS_PER_WINDOW", "RATE_LIMIT_UPLOADS_PER_WINDOW"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"db_host", v.GetString("DATABASE.HOST"),
		"supabase_data_store", v.GetBool("SUPABASE.USE_DATA_STORE"),
		"scoring_cache_ttl", v.GetInt("SCORING.CACHE_TTL_SECONDS"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Database.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if err := validateSupabaseConfig(&cfg.Supabase); err != nil {
		return err
	}

	if cfg.Extraction.APIUrl != "" {
		if _, err := url.ParseRequestURI(cfg.Extraction.APIUrl); err != nil {
			return fmt.Errorf("invalid extraction API URL: %w", err)
		}
	}
	if cfg.Extraction.TimeoutSeconds <= 0 {
		return fmt.Errorf("extraction timeout must be positive")
	}

	if cfg.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage max upload bytes must be positive")
	}

	if cfg.Email.Enabled {
		if cfg.Email.FromAddress == "" {
			return fmt.Errorf("email from address is required when email is enabled")
		}
		if cfg.Email.ResendAPIKey == "" {
			log.Warn("Resend API key not set, auto-disabling tier notification emails")
			cfg.Email.Enabled = false
		}
	}

	if cfg.Scoring.CacheTTLSeconds <= 0 {
		return fmt.Errorf("scoring cache TTL must be positive")
	}
	if cfg.Scoring.RecalculateDebounceSeconds < 0 {
		return fmt.Errorf("scoring recalculate debounce must not be negative")
	}

	if cfg.EventService.PublishTimeoutSeconds <= 0 {
		return fmt.Errorf("event service publish timeout must be positive")
	}
	if cfg.EventService.SubscribeTimeoutSeconds <= 0 {
		return fmt.Errorf("event service subscribe timeout must be positive")
	}
	if cfg.EventService.EventBufferSize <= 0 {
		return fmt.Errorf("event service buffer size must be positive")
	}

	if cfg.RateLimit.UploadsPerWindow <= 0 {
		return fmt.Errorf("rate limit uploads per window must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	return nil
}

// validateSupabaseConfig checks the Supabase project settings.
func validateSupabaseConfig(sb *SupabaseConfig) error {
	if sb.URL == "" {
		return fmt.Errorf("supabase URL is required")
	}
	if sb.AnonKey == "" {
		return fmt.Errorf("supabase anon key is required")
	}
	if sb.JWTSecret == "" && sb.JWKSURL == "" {
		return fmt.Errorf("either supabase JWT secret or JWKS URL is required")
	}
	if sb.JWTSecret != "" && len(sb.JWTSecret) < minJWTLength {
		return fmt.Errorf("supabase JWT secret must be at least %d characters long", minJWTLength)
	}
	if sb.UseDataStore && sb.ServiceKey == "" {
		return fmt.Errorf("supabase service key is required when the Supabase data store is enabled")
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
