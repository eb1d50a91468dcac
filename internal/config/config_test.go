package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"TWENTY_API_URL",
	"TWENTY_API_TOKEN",
	"TWENTY_API_KEY",
	"IMPORTER_TIMEOUT",
	"IMPORTER_RATE_LIMIT",
	"IMPORTER_PHONE_REGION",
	"IMPORTER_LOG_LEVEL",
	"IMPORTER_LOG_FORMAT",
}

// clearEnv unsets every variable the loader reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "" {
		t.Fatalf("expected empty token, got %q", cfg.API.Token)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", cfg.API.Timeout)
	}
	if cfg.Columns.ContactName != "Contact Name" || cfg.Columns.WhatsApp != "WhatsApp" {
		t.Fatalf("unexpected default columns: %+v", cfg.Columns)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWENTY_API_URL", "https://crm.example.com")
	t.Setenv("TWENTY_API_TOKEN", "secret")
	t.Setenv("IMPORTER_TIMEOUT", "3s")
	t.Setenv("IMPORTER_RATE_LIMIT", "10/min")
	t.Setenv("IMPORTER_PHONE_REGION", "co")

	cfg, err := Load("", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://crm.example.com" || cfg.API.Token != "secret" {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.API.Timeout)
	}
	if cfg.Phone.DefaultRegion != "CO" {
		t.Fatalf("expected region CO, got %q", cfg.Phone.DefaultRegion)
	}
	rl, err := cfg.ParsedRateLimit()
	if err != nil {
		t.Fatalf("unexpected rate limit error: %v", err)
	}
	if rl.Requests != 10 || rl.Interval != time.Minute {
		t.Fatalf("unexpected rate limit: %+v", rl)
	}
}

func TestLoadTokenFallsBackToAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWENTY_API_KEY", "key-from-ts-tooling")

	cfg, err := Load("", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Token != "key-from-ts-tooling" {
		t.Fatalf("expected TWENTY_API_KEY fallback, got %q", cfg.API.Token)
	}
}

func TestEmptyBaseURLIsMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWENTY_API_URL", "")

	cfg, err := Load("", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("expected ErrMissingBaseURL, got %v", err)
	}
}

func TestValidateRejectsBadURL(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "localhost:8080"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for url without scheme")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "importer.yaml")
	content := `
api:
  base_url: http://crm.internal:3000
  timeout: 20s
csv:
  delimiter: ";"
columns:
  company: Empresa
  email: Correo
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://crm.internal:3000" {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 20*time.Second {
		t.Fatalf("expected 20s timeout, got %s", cfg.API.Timeout)
	}
	if cfg.CSV.Delimiter != ";" {
		t.Fatalf("expected ';' delimiter, got %q", cfg.CSV.Delimiter)
	}
	if cfg.Columns.Company != "Empresa" || cfg.Columns.Email != "Correo" {
		t.Fatalf("unexpected columns: %+v", cfg.Columns)
	}
	// Unmapped columns keep their defaults.
	if cfg.Columns.Website != "Website" {
		t.Fatalf("expected default website column, got %q", cfg.Columns.Website)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "importer.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: http://from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TWENTY_API_URL", "http://from-env")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://from-env" {
		t.Fatalf("expected env to win, got %q", cfg.API.BaseURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	if _, err := Load(missing, false); err != nil {
		t.Fatalf("optional missing file should be ignored: %v", err)
	}
	if _, err := Load(missing, true); err == nil {
		t.Fatalf("expected error for required missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("api: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TWENTY_API_TOKEN=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load("", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Token != "from-dotenv" {
		t.Fatalf("expected token from .env, got %q", cfg.API.Token)
	}

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func TestParseRateLimit(t *testing.T) {
	cases := []struct {
		input    string
		want     RateLimit
		wantErr  bool
		disabled bool
	}{
		{input: "5/sec", want: RateLimit{Requests: 5, Interval: time.Second}},
		{input: "120/min", want: RateLimit{Requests: 120, Interval: time.Minute}},
		{input: "", disabled: true},
		{input: "off", disabled: true},
		{input: "bad-format", wantErr: true},
		{input: "0/min", wantErr: true},
		{input: "5/day", wantErr: true},
	}
	for _, c := range cases {
		got, err := parseRateLimit(c.input)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseRateLimit(%q): expected error", c.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRateLimit(%q): unexpected error %v", c.input, err)
			continue
		}
		if c.disabled {
			if got.Enabled() {
				t.Errorf("parseRateLimit(%q) should be disabled, got %+v", c.input, got)
			}
			continue
		}
		if got != c.want {
			t.Errorf("parseRateLimit(%q) = %+v, want %+v", c.input, got, c.want)
		}
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("IMPORTER_TEST_FOO", "")
	os.Unsetenv("IMPORTER_TEST_FOO")
	if val := getEnv("IMPORTER_TEST_FOO", "fallback"); val != "fallback" {
		t.Fatalf("expected fallback, got %s", val)
	}
	t.Setenv("IMPORTER_TEST_FOO", "value")
	if val := getEnv("IMPORTER_TEST_FOO", "fallback"); val != "value" {
		t.Fatalf("expected env value, got %s", val)
	}
}

func TestLoadExampleFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join("..", "..", "importer.example.yaml"), true)
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("example config should validate: %v", err)
	}
	if cfg.API.HealthTimeout != DefaultHealthTimeout || cfg.Columns.ContactName != "Contact Name" {
		t.Fatalf("unexpected example config: %+v", cfg)
	}
}
