package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jllopis/surveyshell/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Bootstrap.Element != "app-header" {
		t.Errorf("expected default element app-header, got %s", cfg.Bootstrap.Element)
	}
	if cfg.Bootstrap.SettleTimeout != 2*time.Second {
		t.Errorf("expected settle timeout 2s, got %s", cfg.Bootstrap.SettleTimeout)
	}
	if cfg.Includes.Exclude != "node_modules" {
		t.Errorf("expected exclude node_modules, got %s", cfg.Includes.Exclude)
	}
	if len(cfg.Includes.Extensions) != 2 || cfg.Includes.Extensions[0] != ".html" {
		t.Errorf("unexpected extensions %v", cfg.Includes.Extensions)
	}
	if cfg.Settings.Store != "memory" {
		t.Errorf("expected memory store, got %s", cfg.Settings.Store)
	}
	if cfg.URLs.Bases["production"] == "" {
		t.Errorf("expected a production base url")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SURVEYSHELL_INCLUDES_FORMAT", "json")
	t.Setenv("SURVEYSHELL_BOOTSTRAP_SETTLE_TIMEOUT", "150ms")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Includes.Format != "json" {
		t.Errorf("expected format json from env, got %s", cfg.Includes.Format)
	}
	if cfg.Bootstrap.SettleTimeout != 150*time.Millisecond {
		t.Errorf("expected settle timeout from env, got %s", cfg.Bootstrap.SettleTimeout)
	}
}

func TestLoadEnvURLBases(t *testing.T) {
	t.Setenv("SURVEYSHELL_URLS_BASES_STAGING", "https://qa.example.com")
	t.Setenv("SURVEYSHELL_URLS_BASES_PREVIEW", "https://preview.example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.URLs.Bases["staging"]; got != "https://qa.example.com" {
		t.Errorf("staging base = %q, want env override", got)
	}
	if got := cfg.URLs.Bases["preview"]; got != "https://preview.example.com" {
		t.Errorf("preview base = %q, want env entry", got)
	}
	if cfg.URLs.Bases["production"] == "" {
		t.Error("env entries must not drop the default bases")
	}
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"SURVEYSHELL_LOG_LEVEL":               "log.level",
		"SURVEYSHELL_TELEMETRY_OTLP_ENDPOINT": "telemetry.otlp_endpoint",
		"SURVEYSHELL_SETTINGS":                "settings",
		"SURVEYSHELL_URLS_BASES_STAGING":      "urls.bases.staging",
		"SURVEYSHELL_URLS_ENVIRONMENT":        "urls.environment",
		"SURVEYSHELL_URLS_BASES":              "urls.bases",
	}
	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surveyshell.yaml")
	writeFile(t, path, `
log:
  level: debug
includes:
  exclude: vendor
  extensions: [".html"]
settings:
  store: sqlite
  dsn: /tmp/settings.db
urls:
  bases:
    staging: https://stage.example.org
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug, got %s", cfg.Log.Level)
	}
	if cfg.Includes.Exclude != "vendor" || len(cfg.Includes.Extensions) != 1 {
		t.Errorf("unexpected includes %+v", cfg.Includes)
	}
	if cfg.Settings.Store != "sqlite" || cfg.Settings.DSN != "/tmp/settings.db" {
		t.Errorf("unexpected settings %+v", cfg.Settings)
	}
	if cfg.URLs.Bases["staging"] != "https://stage.example.org" {
		t.Errorf("expected staging override, got %s", cfg.URLs.Bases["staging"])
	}
	if cfg.URLs.Bases["local"] == "" {
		t.Errorf("default bases should survive a partial override")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestLoadWithProfile(t *testing.T) {
	tmpDir := t.TempDir()
	basePath := filepath.Join(tmpDir, "config.yaml")
	writeFile(t, basePath, `
log:
  level: info
includes:
  format: text
`)
	writeFile(t, filepath.Join(tmpDir, "config.dev.yaml"), `
log:
  level: debug
`)

	tests := []struct {
		profile   string
		wantLevel string
	}{
		{profile: "", wantLevel: "info"},
		{profile: "dev", wantLevel: "debug"},
		{profile: "prod", wantLevel: "info"},
	}
	for _, tc := range tests {
		t.Run("profile="+tc.profile, func(t *testing.T) {
			cfg, err := LoadWithProfile(basePath, tc.profile)
			if err != nil {
				t.Fatalf("LoadWithProfile failed: %v", err)
			}
			if cfg.Log.Level != tc.wantLevel {
				t.Errorf("level: got %s, want %s", cfg.Log.Level, tc.wantLevel)
			}
			if cfg.Includes.Format != "text" {
				t.Errorf("base values should be kept, got format %s", cfg.Includes.Format)
			}
		})
	}
}

func TestProfileConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	devPath := filepath.Join(tmpDir, "config.dev.yaml")
	writeFile(t, devPath, "log: {}\n")
	basePath := filepath.Join(tmpDir, "config.yaml")

	tests := []struct {
		name     string
		base     string
		profile  string
		wantPath string
	}{
		{"existing profile", basePath, "dev", devPath},
		{"nonexistent profile", basePath, "prod", ""},
		{"empty profile", basePath, "", ""},
		{"empty base", "", "dev", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := profileConfigPath(tc.base, tc.profile); got != tc.wantPath {
				t.Errorf("profileConfigPath(%q, %q) = %q, want %q", tc.base, tc.profile, got, tc.wantPath)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sqlite without dsn", func(c *Config) { c.Settings.Store = "sqlite" }},
		{"unknown store", func(c *Config) { c.Settings.Store = "redis" }},
		{"unknown format", func(c *Config) { c.Includes.Format = "xml" }},
		{"unknown exporter", func(c *Config) { c.Telemetry.Exporter = "zipkin" }},
		{"zero timeout", func(c *Config) { c.Bootstrap.SettleTimeout = 0 }},
		{"no element", func(c *Config) { c.Bootstrap.Element = "" }},
		{"bad element name", func(c *Config) { c.Bootstrap.Element = "Header" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.HasCode(err, errors.CodeInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}
