package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Market      MarketConfig    `toml:"market"`
	Yahoo       YahooConfig     `toml:"yahoo"`
	EODHD       EODHDConfig     `toml:"eodhd"`
	Auth        AuthConfig      `toml:"auth"`
	Mail        MailConfig      `toml:"mail"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port    int    `toml:"port"`
	Host    string `toml:"host"`
	BaseURL string `toml:"base_url"` // External URL used in verification and reset links
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
	InMemory       bool   `toml:"in_memory"`        // Run without touching disk (tests, demos)
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// Market providers
const (
	ProviderYahoo = "yahoo"
	ProviderEODHD = "eodhd"
)

// MarketConfig controls symbol resolution and currency presentation
type MarketConfig struct {
	Provider      string   `toml:"provider"`       // "yahoo" (default) or "eodhd"
	LocalCurrency string   `toml:"local_currency"` // Currency rendered with USD side conversion
	FXPair        string   `toml:"fx_pair"`        // Instrument quoting local currency per 1 USD
	Suffixes      []string `toml:"suffixes"`       // Ordered exchange suffixes tried for bare symbols
	Timeout       string   `toml:"timeout"`        // Per-request upstream timeout
	RateLimit     int      `toml:"rate_limit"`     // Upstream requests per second
	ChartRange    string   `toml:"chart_range"`    // Dashboard price chart range (default: "6mo")
}

type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	ChartURL  string `toml:"chart_url"`
	UserAgent string `toml:"user_agent"`
}

type EODHDConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

type AuthConfig struct {
	CookieName    string `toml:"cookie_name"`
	SessionTTL    string `toml:"session_ttl"`     // e.g. "24h"
	ResetTokenTTL string `toml:"reset_token_ttl"` // e.g. "1h"
	AdminUsername string `toml:"admin_username"`
	AdminEmail    string `toml:"admin_email"`
	AdminPassword string `toml:"admin_password"` // Empty disables admin bootstrap
}

type MailConfig struct {
	DevMode  bool   `toml:"dev_mode"` // Log mail instead of delivering it
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	FromName string `toml:"from_name"`
	UseTLS   bool   `toml:"use_tls"`
}

type SchedulerConfig struct {
	CleanupSchedule string `toml:"cleanup_schedule"` // Cron expression for session/token housekeeping
}

// DefaultSuffixes is the exchange suffix search order used when none is configured.
// Indonesia, India NSE/BSE, Canada TSX/TSXV, UK, Singapore, Australia, Hong Kong, Japan,
// Korea KOSPI/KOSDAQ, Shanghai, Shenzhen, Taiwan, New Zealand, Mexico.
func DefaultSuffixes() []string {
	return []string{
		".JK", ".NS", ".BO", ".TO", ".V", ".L", ".SI", ".AX", ".HK",
		".T", ".KS", ".KQ", ".SS", ".SZ", ".TW", ".NZ", ".MX",
	}
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:    8085,
			Host:    "localhost",
			BaseURL: "",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/fundscope",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Market: MarketConfig{
			Provider:      ProviderYahoo,
			LocalCurrency: "IDR",
			FXPair:        "USDIDR=X",
			Suffixes:      DefaultSuffixes(),
			Timeout:       "30s",
			RateLimit:     5,
			ChartRange:    "6mo",
		},
		Yahoo: YahooConfig{
			BaseURL:   "https://query2.finance.yahoo.com",
			ChartURL:  "https://query1.finance.yahoo.com",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		EODHD: EODHDConfig{
			BaseURL: "https://eodhd.com/api",
		},
		Auth: AuthConfig{
			CookieName:    "fundscope_session",
			SessionTTL:    "24h",
			ResetTokenTTL: "1h",
			AdminUsername: "admin",
			AdminEmail:    "admin@example.com",
		},
		Mail: MailConfig{
			DevMode:  true,
			Port:     587,
			FromName: "Fundscope",
			UseTLS:   true,
		},
		Scheduler: SchedulerConfig{
			CleanupSchedule: "*/15 * * * *",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FUNDSCOPE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("FUNDSCOPE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FUNDSCOPE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if baseURL := os.Getenv("FUNDSCOPE_BASE_URL"); baseURL != "" {
		config.Server.BaseURL = baseURL
	}

	// Storage configuration
	if badgerPath := os.Getenv("FUNDSCOPE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("FUNDSCOPE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("FUNDSCOPE_LOG_OUTPUT"); output != "" {
		if outputs := splitList(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Market configuration
	if provider := os.Getenv("FUNDSCOPE_MARKET_PROVIDER"); provider != "" {
		config.Market.Provider = strings.ToLower(provider)
	}
	if currency := os.Getenv("FUNDSCOPE_LOCAL_CURRENCY"); currency != "" {
		config.Market.LocalCurrency = strings.ToUpper(currency)
	}
	if pair := os.Getenv("FUNDSCOPE_FX_PAIR"); pair != "" {
		config.Market.FXPair = pair
	}
	if suffixes := os.Getenv("FUNDSCOPE_SUFFIXES"); suffixes != "" {
		if list := splitList(suffixes); len(list) > 0 {
			config.Market.Suffixes = list
		}
	}

	// Provider credentials
	if apiKey := os.Getenv("FUNDSCOPE_EODHD_API_KEY"); apiKey != "" {
		config.EODHD.APIKey = apiKey
	} else if apiKey := os.Getenv("EODHD_API_KEY"); apiKey != "" {
		config.EODHD.APIKey = apiKey
	}

	// Auth configuration
	if password := os.Getenv("FUNDSCOPE_ADMIN_PASSWORD"); password != "" {
		config.Auth.AdminPassword = password
	}

	// Mail configuration
	if devMode := os.Getenv("FUNDSCOPE_MAIL_DEV_MODE"); devMode != "" {
		if d, err := strconv.ParseBool(devMode); err == nil {
			config.Mail.DevMode = d
		}
	}
	if host := os.Getenv("FUNDSCOPE_SMTP_HOST"); host != "" {
		config.Mail.Host = host
	}
	if username := os.Getenv("FUNDSCOPE_SMTP_USERNAME"); username != "" {
		config.Mail.Username = username
	}
	if password := os.Getenv("FUNDSCOPE_SMTP_PASSWORD"); password != "" {
		config.Mail.Password = password
	}
	if from := os.Getenv("FUNDSCOPE_SMTP_FROM"); from != "" {
		config.Mail.From = from
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that cannot be defaulted at use time
func (c *Config) Validate() error {
	switch c.Market.Provider {
	case ProviderYahoo, ProviderEODHD:
	default:
		return fmt.Errorf("unknown market provider %q (expected %q or %q)", c.Market.Provider, ProviderYahoo, ProviderEODHD)
	}

	if c.Market.Provider == ProviderEODHD && c.EODHD.APIKey == "" {
		return fmt.Errorf("eodhd provider requires [eodhd] api_key or FUNDSCOPE_EODHD_API_KEY")
	}

	for _, sfx := range c.Market.Suffixes {
		if !strings.HasPrefix(sfx, ".") || len(sfx) < 2 {
			return fmt.Errorf("invalid exchange suffix %q: must start with '.'", sfx)
		}
	}

	for name, value := range map[string]string{
		"market.timeout":       c.Market.Timeout,
		"auth.session_ttl":     c.Auth.SessionTTL,
		"auth.reset_token_ttl": c.Auth.ResetTokenTTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	if c.Scheduler.CleanupSchedule != "" {
		if err := ValidateSchedule(c.Scheduler.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid scheduler.cleanup_schedule: %w", err)
		}
	}

	return nil
}

// ValidateSchedule validates a standard five-field cron expression
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// MarketTimeout returns the parsed upstream timeout
func (c *Config) MarketTimeout() time.Duration {
	d, err := time.ParseDuration(c.Market.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SessionTTL returns the parsed session lifetime
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// ResetTokenTTL returns the parsed password reset token lifetime
func (c *Config) ResetTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.ResetTokenTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// PublicBaseURL returns the base URL used in outbound links
func (c *Config) PublicBaseURL() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// splitList splits a comma-separated environment value, dropping empty entries
func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
