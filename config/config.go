// Package config handles loading and validation of application configuration
// from environment variables and an optional .env file.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/cabpool/cabpool-backend/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment is the deployment environment the API runs in.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"
	DriverSQLite   = "sqlite"
)

const (
	defaultMaxBodyBytes = 10 << 20
	minServiceKeyLength = 32
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// MaxBodyBytes caps every request body.
	MaxBodyBytes int64 `mapstructure:"MAX_BODY_BYTES" yaml:"max_body_bytes"`
	// TrustedProxies lists proxy CIDRs whose X-Forwarded-For is honoured. Empty trusts none.
	TrustedProxies         []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
	ReadTimeoutSeconds     int      `mapstructure:"READ_TIMEOUT_SECONDS" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `mapstructure:"WRITE_TIMEOUT_SECONDS" yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int      `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `mapstructure:"DRIVER" yaml:"driver"`
	// RunMigrations applies embedded migrations at startup for the postgres driver.
	RunMigrations bool `mapstructure:"RUN_MIGRATIONS" yaml:"run_migrations"`
}

// DatabaseConfig holds PostgreSQL connection details.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
}

// URL returns a postgres:// connection URL usable by pgx and golang-migrate.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{sslmode}}.Encode(),
	}
	return u.String()
}

// SupabaseConfig holds the managed database API endpoint and keys.
type SupabaseConfig struct {
	URL        string `mapstructure:"URL" yaml:"url"`
	AnonKey    string `mapstructure:"ANON_KEY" yaml:"anon_key"`
	ServiceKey string `mapstructure:"SERVICE_KEY" yaml:"service_key"`
}

// Key returns the service key when present, otherwise the anon key.
func (c *SupabaseConfig) Key() string {
	if c.ServiceKey != "" {
		return c.ServiceKey
	}
	return c.AnonKey
}

// SQLiteConfig holds the local database file location.
type SQLiteConfig struct {
	Path string `mapstructure:"PATH" yaml:"path"`
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
}

// RateLimitConfig configures the per-IP limit on form submissions.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"ENABLED" yaml:"enabled"`
	RequestsPerWindow int  `mapstructure:"REQUESTS_PER_WINDOW" yaml:"requests_per_window"`
	WindowSeconds     int  `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// EmailConfig configures the registration confirmation email.
type EmailConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
}

// FeedbackConfig bounds the public feedback listing.
type FeedbackConfig struct {
	DefaultLimit int `mapstructure:"DEFAULT_LIMIT" yaml:"default_limit"`
	MaxLimit     int `mapstructure:"MAX_LIMIT" yaml:"max_limit"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER" yaml:"server"`
	Store     StoreConfig     `mapstructure:"STORE" yaml:"store"`
	Database  DatabaseConfig  `mapstructure:"DATABASE" yaml:"database"`
	Supabase  SupabaseConfig  `mapstructure:"SUPABASE" yaml:"supabase"`
	SQLite    SQLiteConfig    `mapstructure:"SQLITE" yaml:"sqlite"`
	Redis     RedisConfig     `mapstructure:"REDIS" yaml:"redis"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	Email     EmailConfig     `mapstructure:"EMAIL" yaml:"email"`
	Feedback  FeedbackConfig  `mapstructure:"FEEDBACK" yaml:"feedback"`
}

// IsProduction returns true if the application is running in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds config keys to environment variables. Format: {configKey, envVar}.
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig reads .env (if present) and the environment, applies defaults,
// unmarshals into Config and validates the result.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "5000")
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.MAX_BODY_BYTES", defaultMaxBodyBytes)
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.READ_TIMEOUT_SECONDS", 15)
	v.SetDefault("SERVER.WRITE_TIMEOUT_SECONDS", 15)
	v.SetDefault("SERVER.SHUTDOWN_TIMEOUT_SECONDS", 15)
	v.SetDefault("STORE.DRIVER", DriverPostgres)
	v.SetDefault("STORE.RUN_MIGRATIONS", true)
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "cabpool")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 5)
	v.SetDefault("SQLITE.PATH", "cabpool.db")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("RATE_LIMIT.ENABLED", false)
	v.SetDefault("RATE_LIMIT.REQUESTS_PER_WINDOW", 20)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("EMAIL.ENABLED", false)
	v.SetDefault("EMAIL.FROM_NAME", "CabPool")
	v.SetDefault("FEEDBACK.DEFAULT_LIMIT", 10)
	v.SetDefault("FEEDBACK.MAX_LIMIT", 100)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		{"SERVER.MAX_BODY_BYTES", "MAX_BODY_BYTES"},
		{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
		{"STORE.DRIVER", "STORE_DRIVER"},
		{"STORE.RUN_MIGRATIONS", "STORE_RUN_MIGRATIONS"},
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"DATABASE.MAX_CONNECTIONS", "DB_MAX_CONNECTIONS"},
		{"SUPABASE.URL", "SUPABASE_URL"},
		{"SUPABASE.ANON_KEY", "SUPABASE_ANON_KEY"},
		{"SUPABASE.SERVICE_KEY", "SUPABASE_SERVICE_KEY"},
		{"SQLITE.PATH", "SQLITE_PATH"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"RATE_LIMIT.ENABLED", "RATE_LIMIT_ENABLED"},
		{"RATE_LIMIT.REQUESTS_PER_WINDOW", "RATE_LIMIT_REQUESTS_PER_WINDOW"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
		{"EMAIL.ENABLED", "EMAIL_ENABLED"},
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		{"FEEDBACK.DEFAULT_LIMIT", "FEEDBACK_DEFAULT_LIMIT"},
		{"FEEDBACK.MAX_LIMIT", "FEEDBACK_MAX_LIMIT"},
	}
	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = DefaultAllowedOrigins(cfg.Server.Environment)
	}

	if err := validateConfig(&cfg, log); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"store_driver", cfg.Store.Driver,
		"allowed_origins", cfg.Server.AllowedOrigins,
		"rate_limit_enabled", cfg.RateLimit.Enabled,
		"email_enabled", cfg.Email.Enabled,
	)
	return &cfg, nil
}

// validateConfig checks the loaded values and normalizes the ones that can be fixed up.
func validateConfig(cfg *Config, log *zap.SugaredLogger) error {
	switch cfg.Server.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", cfg.Server.Environment)
	}
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}
	if err := validateOrigins(cfg.Server.Environment, cfg.Server.AllowedOrigins); err != nil {
		return err
	}

	switch cfg.Store.Driver {
	case DriverPostgres:
		if cfg.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if cfg.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if cfg.Database.Name == "" {
			return fmt.Errorf("database name is required")
		}
		if cfg.Database.Password == "" {
			log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
		}
	case DriverSupabase:
		if cfg.Supabase.URL == "" {
			return fmt.Errorf("supabase URL is required")
		}
		if _, err := url.ParseRequestURI(cfg.Supabase.URL); err != nil {
			return fmt.Errorf("invalid supabase URL: %w", err)
		}
		if cfg.Supabase.Key() == "" {
			return fmt.Errorf("supabase service key or anon key is required")
		}
		if cfg.Supabase.ServiceKey != "" && len(cfg.Supabase.ServiceKey) < minServiceKeyLength {
			return fmt.Errorf("supabase service key must be at least %d characters long", minServiceKeyLength)
		}
	case DriverSQLite:
		if cfg.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
		if cfg.Server.Environment == EnvProduction {
			log.Warn("SQLite store selected in production; data lives on the local disk only")
		}
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.RateLimit.Enabled {
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis address is required when rate limiting is enabled")
		}
		if cfg.RateLimit.RequestsPerWindow <= 0 {
			return fmt.Errorf("rate limit requests per window must be positive")
		}
		if cfg.RateLimit.WindowSeconds <= 0 {
			return fmt.Errorf("rate limit window seconds must be positive")
		}
	}

	if cfg.Email.Enabled {
		if cfg.Email.ResendAPIKey == "" {
			log.Warn("Resend API key not set, disabling registration emails")
			cfg.Email.Enabled = false
		} else if cfg.Email.FromAddress == "" {
			return fmt.Errorf("email from address is required when emails are enabled")
		}
	}

	if cfg.Feedback.DefaultLimit <= 0 {
		return fmt.Errorf("feedback default limit must be positive")
	}
	if cfg.Feedback.MaxLimit < cfg.Feedback.DefaultLimit {
		return fmt.Errorf("feedback max limit must be at least the default limit")
	}
	return nil
}

func validateOrigins(env Environment, origins []string) error {
	if len(origins) == 0 {
		return fmt.Errorf("allowed origins must be configured for the %s environment", env)
	}
	if containsWildcard(origins) {
		if env == EnvProduction {
			return fmt.Errorf("wildcard allowed origin is not permitted in production")
		}
		return nil
	}
	for _, origin := range origins {
		if _, err := url.ParseRequestURI(origin); err != nil {
			return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
		}
	}
	return nil
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
