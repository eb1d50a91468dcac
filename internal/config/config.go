// =============================================================================
// CRM Contact Importer - Configuration Module
// =============================================================================
//
// This module is responsible for loading the importer configuration. Values
// are layered, later sources winning:
//
//   1. Built-in defaults (see Default)
//   2. The optional YAML file (importer.yaml or --config)
//   3. A .env file, loaded into the process environment when present
//   4. Environment variables (TWENTY_API_URL, TWENTY_API_TOKEN, IMPORTER_*)
//   5. Command-line flags (applied by the cmd package)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultBaseURL       = "http://localhost:8080"
	DefaultTimeout       = 10 * time.Second
	DefaultHealthTimeout = 5 * time.Second
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultConfigFile    = "importer.yaml"
	DefaultEnvFile       = ".env"
)

// ErrMissingBaseURL is returned when the CRM base URL resolves to an empty value.
var ErrMissingBaseURL = errors.New("TWENTY_API_URL environment variable not set")

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the complete importer configuration.
type Config struct {
	// API contains the CRM connection settings.
	API APIConfig `yaml:"api"`

	// CSV contains settings for reading the input file.
	CSV CSVSettings `yaml:"csv"`

	// Columns maps the logical contact fields to the input file headers.
	Columns ColumnConfig `yaml:"columns"`

	// Phone controls optional phone number normalisation.
	Phone PhoneConfig `yaml:"phone"`

	// Logging controls the diagnostic log written to stderr.
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds the CRM endpoint settings.
type APIConfig struct {
	// BaseURL is the CRM root URL. GraphQL is served at {BaseURL}/graphql
	// and the health check at {BaseURL}/healthz.
	BaseURL string `yaml:"base_url"`

	// Token is the API token sent as a bearer token. When empty the
	// Authorization header is omitted.
	Token string `yaml:"token"`

	// Timeout is the fixed per-request timeout for mutations.
	Timeout time.Duration `yaml:"timeout"`

	// HealthTimeout is the timeout for the preflight health check.
	HealthTimeout time.Duration `yaml:"health_timeout"`

	// RateLimit paces outbound mutations, e.g. "5/sec". Empty disables pacing.
	RateLimit string `yaml:"rate_limit"`
}

// CSVSettings contains settings for parsing the input file.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), "|" (pipe), "tab", "semicolon"
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Sheet is the worksheet to read when the input is an .xlsx workbook.
	// Default: the first sheet.
	Sheet string `yaml:"sheet"`
}

// ColumnConfig names the input columns the importer reads.
type ColumnConfig struct {
	Company     string `yaml:"company"`
	Website     string `yaml:"website"`
	Size        string `yaml:"size"`
	Industry    string `yaml:"industry"`
	Email       string `yaml:"email"`
	Phone       string `yaml:"phone"`
	WhatsApp    string `yaml:"whatsapp"`
	ContactName string `yaml:"contact_name"`
}

// PhoneConfig controls phone normalisation.
type PhoneConfig struct {
	// DefaultRegion is the ISO 3166-1 region used to parse national numbers
	// (e.g. "CO"). Empty disables normalisation and phones are sent as-is.
	DefaultRegion string `yaml:"default_region"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level: "debug", "info", "warn", "error". Default: "warn".
	Level string `yaml:"level"`

	// Format: "text" or "json". Default: "text".
	Format string `yaml:"format"`
}

// RateLimit is a parsed "<requests>/<interval>" pacing rule.
type RateLimit struct {
	Requests int
	Interval time.Duration
}

// Enabled reports whether the rule actually limits anything.
func (r RateLimit) Enabled() bool {
	return r.Requests > 0 && r.Interval > 0
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       DefaultBaseURL,
			Timeout:       DefaultTimeout,
			HealthTimeout: DefaultHealthTimeout,
		},
		CSV:     CSVSettings{Delimiter: ","},
		Columns: DefaultColumns(),
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// DefaultColumns returns the column headers recognised out of the box.
func DefaultColumns() ColumnConfig {
	return ColumnConfig{
		Company:     "Company",
		Website:     "Website",
		Size:        "Size",
		Industry:    "Industry",
		Email:       "Email",
		Phone:       "Phone",
		WhatsApp:    "WhatsApp",
		ContactName: "Contact Name",
	}
}

// Load builds the configuration from the YAML file at configPath and the
// process environment.
//
// PARAMETERS:
//   - configPath: path to the YAML file. An empty path skips the file.
//   - required: when false a missing file is not an error, so the default
//     importer.yaml may be absent.
//
// RETURNS:
//   - The merged configuration. Validate has not been called yet; flags
//     may still change it.
func Load(configPath string, required bool) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := loadFile(cfg, configPath, required); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// LoadEnvFile loads a .env file into the process environment. Variables that
// are already set are not overridden. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// loadFile overlays the YAML file onto cfg.
func loadFile(cfg *Config, configPath string, required bool) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys missing from the file keep their default values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnv overlays environment variables. TWENTY_API_URL is honoured even
// when set to an empty string, which Validate then rejects.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("TWENTY_API_URL"); ok {
		cfg.API.BaseURL = strings.TrimSpace(v)
	}
	if v := getEnv("TWENTY_API_TOKEN", ""); v != "" {
		cfg.API.Token = v
	} else if v := getEnv("TWENTY_API_KEY", ""); v != "" {
		cfg.API.Token = v
	}
	if v := getEnv("IMPORTER_TIMEOUT", ""); v != "" {
		cfg.API.Timeout = parseDuration(v, cfg.API.Timeout)
	}
	cfg.API.RateLimit = getEnv("IMPORTER_RATE_LIMIT", cfg.API.RateLimit)
	cfg.Phone.DefaultRegion = getEnv("IMPORTER_PHONE_REGION", cfg.Phone.DefaultRegion)
	cfg.Logging.Level = getEnv("IMPORTER_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("IMPORTER_LOG_FORMAT", cfg.Logging.Format)
}

// applyDefaults fills in values a YAML file may have blanked out.
// BaseURL is deliberately left alone.
func applyDefaults(cfg *Config) {
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = DefaultTimeout
	}
	if cfg.API.HealthTimeout <= 0 {
		cfg.API.HealthTimeout = DefaultHealthTimeout
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	defaults := DefaultColumns()
	fillColumn(&cfg.Columns.Company, defaults.Company)
	fillColumn(&cfg.Columns.Website, defaults.Website)
	fillColumn(&cfg.Columns.Size, defaults.Size)
	fillColumn(&cfg.Columns.Industry, defaults.Industry)
	fillColumn(&cfg.Columns.Email, defaults.Email)
	fillColumn(&cfg.Columns.Phone, defaults.Phone)
	fillColumn(&cfg.Columns.WhatsApp, defaults.WhatsApp)
	fillColumn(&cfg.Columns.ContactName, defaults.ContactName)

	cfg.Phone.DefaultRegion = strings.ToUpper(strings.TrimSpace(cfg.Phone.DefaultRegion))
}

func fillColumn(dst *string, fallback string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = fallback
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the settings that must hold before any remote call.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return ErrMissingBaseURL
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid TWENTY_API_URL %q: expected an http(s) URL", c.API.BaseURL)
	}

	if _, err := c.ParsedRateLimit(); err != nil {
		return fmt.Errorf("invalid rate limit: %w", err)
	}

	return nil
}

// ParsedRateLimit parses API.RateLimit. An empty value or "off" yields a
// disabled limit.
func (c *Config) ParsedRateLimit() (RateLimit, error) {
	return parseRateLimit(c.API.RateLimit)
}

func parseRateLimit(value string) (RateLimit, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "off", "none", "0":
		return RateLimit{}, nil
	}

	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimit{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimit{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimit{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimit{Requests: requests, Interval: interval}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(input))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
