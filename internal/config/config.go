// Package config loads and validates application configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tigerfoodies/gofoodies/internal/logger"
)

const (
	// envPrefix is the prefix for environment variable overrides.
	envPrefix = "GOFOODIES"

	// DefaultServerAddress is the default HTTP listen address.
	DefaultServerAddress = ":8080"
	// DefaultJobInterval is the default interval between job runs.
	DefaultJobInterval = 60 * time.Second
	// DefaultCardTTL is how long a card stays active after posting.
	DefaultCardTTL = 3 * time.Hour
)

// Common errors returned by the config package.
var (
	// ErrMissingDatabase is returned when database settings are incomplete.
	ErrMissingDatabase = errors.New("database configuration is incomplete")
	// ErrMissingListservCredentials is returned when a feed URL is set
	// without credentials.
	ErrMissingListservCredentials = errors.New("listserv URL set without username/password")
)

// Config is the root configuration for the service.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Listserv ListservConfig `mapstructure:"listserv"`
	CAS      CASConfig      `mapstructure:"cas"`
	Mail     MailConfig     `mapstructure:"mail"`
	Logger   logger.Config  `mapstructure:"logger"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	// SystemAccount owns cards imported from the listserv feed.
	SystemAccount string `mapstructure:"system_account"`
	// JobInterval is the interval between scheduled job runs.
	JobInterval time.Duration `mapstructure:"job_interval"`
	// CardTTL is the time-to-live applied to new cards.
	CardTTL time.Duration `mapstructure:"card_ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// ListservConfig holds external feed settings. The same URL serves both the
// login form and the RSS document.
type ListservConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Enabled reports whether feed ingestion is configured.
func (c ListservConfig) Enabled() bool {
	return c.URL != ""
}

// CASConfig holds single-sign-on settings.
type CASConfig struct {
	// BaseURL is the CAS server root, e.g. https://fed.princeton.edu/cas/
	BaseURL string `mapstructure:"base_url"`
	// TokenSecret signs session tokens issued after ticket validation.
	TokenSecret string `mapstructure:"token_secret"`
}

// MailConfig holds feedback email settings.
type MailConfig struct {
	// APIKey is the SendGrid API key.
	APIKey string `mapstructure:"api_key"`
	// From is the sender address for feedback mail.
	From string `mapstructure:"from"`
	// To is the service account address feedback is delivered to.
	To string `mapstructure:"to"`
}

// Load reads configuration from config.yml (when present) and the
// environment. Environment variables use the GOFOODIES_ prefix with
// underscores, e.g. GOFOODIES_DATABASE_HOST.
func Load() (*Config, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values for all settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.system_account", "cs-tigerfoodies")
	v.SetDefault("app.job_interval", DefaultJobInterval)
	v.SetDefault("app.card_ttl", DefaultCardTTL)

	v.SetDefault("server.address", DefaultServerAddress)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "tigerfoodies")
	v.SetDefault("database.sslmode", "disable")

	// Empty defaults register the keys so environment overrides are seen.
	v.SetDefault("listserv.url", "")
	v.SetDefault("listserv.username", "")
	v.SetDefault("listserv.password", "")

	v.SetDefault("cas.base_url", "https://fed.princeton.edu/cas/")
	v.SetDefault("cas.token_secret", "")

	v.SetDefault("mail.api_key", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.Port == "" || c.Database.DBName == "" {
		return ErrMissingDatabase
	}
	if c.Listserv.Enabled() && (c.Listserv.Username == "" || c.Listserv.Password == "") {
		return ErrMissingListservCredentials
	}
	return nil
}
