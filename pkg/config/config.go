// Package config loads shell configuration from defaults, a YAML file,
// SURVEYSHELL_ environment variables and --set overrides, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jllopis/surveyshell/pkg/elements"
	"github.com/jllopis/surveyshell/pkg/errors"
)

// EnvPrefix is the prefix for environment overrides.
// SURVEYSHELL_INCLUDES_FORMAT maps to includes.format.
const EnvPrefix = "SURVEYSHELL_"

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Bootstrap BootstrapConfig `koanf:"bootstrap"`
	Includes  IncludesConfig  `koanf:"includes"`
	Settings  SettingsConfig  `koanf:"settings"`
	URLs      URLConfig       `koanf:"urls"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter           string `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint       string `koanf:"otlp_endpoint"`
	OTLPInsecure       bool   `koanf:"otlp_insecure"`
	OTLPTimeoutSeconds int    `koanf:"otlp_timeout_seconds"`
}

// BootstrapConfig tunes the initialization chain.
type BootstrapConfig struct {
	// Element is the registration confirmed after the chain loads.
	Element string `koanf:"element"`
	// SettleTimeout bounds the wait for that registration.
	SettleTimeout time.Duration `koanf:"settle_timeout"`
}

// IncludesConfig drives the include-order validator.
type IncludesConfig struct {
	Exclude       string        `koanf:"exclude"`
	Extensions    []string      `koanf:"extensions"`
	Marker        string        `koanf:"marker"`
	Format        string        `koanf:"format"`         // text, json, yaml
	WatchInterval time.Duration `koanf:"watch_interval"` // config file polling
	// Debounce is the quiet period after corpus changes before watch-includes
	// rechecks.
	Debounce time.Duration `koanf:"debounce"`
}

type SettingsConfig struct {
	Store string `koanf:"store"` // memory, sqlite
	DSN   string `koanf:"dsn"`
}

type URLConfig struct {
	Environment string            `koanf:"environment"` // local, staging, production; empty detects
	Bases       map[string]string `koanf:"bases"`
}

func setDefaults(k *koanf.Koanf) {
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("telemetry.exporter", "none")
	k.Set("telemetry.otlp_timeout_seconds", 10)

	k.Set("bootstrap.element", "app-header")
	k.Set("bootstrap.settle_timeout", "2s")

	k.Set("includes.exclude", "node_modules")
	k.Set("includes.extensions", []string{".html", ".htm"})
	k.Set("includes.marker", "<app-header")
	k.Set("includes.format", "text")
	k.Set("includes.watch_interval", "1s")
	k.Set("includes.debounce", "100ms")

	k.Set("settings.store", "memory")

	k.Set("urls.bases.local", "http://localhost:8080")
	k.Set("urls.bases.staging", "https://staging.surveys.example.com")
	k.Set("urls.bases.production", "https://surveys.example.com")
}

// Load reads defaults, the file at path (when non-empty) and the environment.
func Load(path string) (*Config, error) {
	return LoadWithProfile(path, "")
}

// LoadWithProfile is Load plus an optional profile file next to path
// (config.yaml + "dev" reads config.dev.yaml on top of config.yaml).
func LoadWithProfile(path, profile string) (*Config, error) {
	k, err := newKoanf(path, profile)
	if err != nil {
		return nil, err
	}
	return unmarshal(k)
}

// LoadWithCLI understands --config, --profile and repeated --set key=value
// arguments. --set wins over every other source.
func LoadWithCLI(args []string) (*Config, error) {
	opts, err := parseCLIOverrides(args)
	if err != nil {
		return nil, err
	}
	k, err := newKoanf(opts.path, opts.profile)
	if err != nil {
		return nil, err
	}
	for _, kv := range opts.sets {
		if err := k.Set(kv.key, kv.value); err != nil {
			return nil, errors.New(errors.CodeInvalidInput, "invalid --set override", err).
				WithContext("key", kv.key)
		}
	}
	return unmarshal(k)
}

func newKoanf(path, profile string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	setDefaults(k)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.New(errors.CodeInvalidInput, "failed to load config file", err).
				WithContext("path", path)
		}
		if p := profileConfigPath(path, profile); p != "" {
			if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
				return nil, errors.New(errors.CodeInvalidInput, "failed to load profile config", err).
					WithContext("path", p)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	return k, nil
}

// nestedMaps lists keys whose children are map entries rather than fields.
// SURVEYSHELL_URLS_BASES_STAGING maps to urls.bases.staging.
var nestedMaps = map[string]bool{
	"urls.bases": true,
}

// envKey maps SURVEYSHELL_SECTION_SOME_KEY to section.some_key, descending
// one more level for the keys in nestedMaps.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, found := strings.Cut(s, "_")
	if !found {
		return section
	}
	for prefix := range nestedMaps {
		field := strings.TrimPrefix(prefix, section+".")
		if field == prefix {
			continue
		}
		if entry, ok := strings.CutPrefix(key, field+"_"); ok && entry != "" {
			return prefix + "." + entry
		}
	}
	return section + "." + key
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "failed to decode config", err)
	}
	return &cfg, nil
}

// profileConfigPath returns the profile file next to base, or "" when it
// does not exist.
func profileConfigPath(base, profile string) string {
	if base == "" || profile == "" {
		return ""
	}
	ext := filepath.Ext(base)
	candidate := strings.TrimSuffix(base, ext) + "." + profile + ext
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

type override struct {
	key   string
	value any
}

type cliOptions struct {
	path    string
	profile string
	sets    []override
}

func parseCLIOverrides(args []string) (cliOptions, error) {
	var opts cliOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, inline, hasInline := strings.Cut(arg, "=")
		if !strings.HasPrefix(name, "--") {
			continue
		}
		value := inline
		if !hasInline {
			switch name {
			case "--config", "--profile", "--set":
				if i+1 >= len(args) {
					return opts, errors.New(errors.CodeInvalidInput, fmt.Sprintf("%s requires a value", name), nil)
				}
				i++
				value = args[i]
			}
		}
		switch name {
		case "--config":
			opts.path = value
		case "--profile":
			opts.profile = value
		case "--set":
			kv, err := parseSet(value)
			if err != nil {
				return opts, err
			}
			opts.sets = append(opts.sets, kv)
		}
	}
	return opts, nil
}

func parseSet(raw string) (override, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return override{}, errors.New(errors.CodeInvalidInput, "--set expects key=value", nil).
			WithContext("value", raw)
	}
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "{") || strings.HasPrefix(value, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			return override{key: key, value: decoded}, nil
		}
	}
	return override{key: key, value: value}, nil
}

// Validate checks the values other packages cannot recover from.
func (c *Config) Validate() error {
	switch c.Settings.Store {
	case "memory":
	case "sqlite":
		if c.Settings.DSN == "" {
			return errors.New(errors.CodeInvalidInput, "settings.dsn is required for the sqlite store", nil)
		}
	default:
		return errors.New(errors.CodeInvalidInput, "unknown settings.store", nil).
			WithContext("store", c.Settings.Store)
	}
	switch c.Includes.Format {
	case "text", "json", "yaml":
	default:
		return errors.New(errors.CodeInvalidInput, "unknown includes.format", nil).
			WithContext("format", c.Includes.Format)
	}
	switch c.Telemetry.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return errors.New(errors.CodeInvalidInput, "unknown telemetry.exporter", nil).
			WithContext("exporter", c.Telemetry.Exporter)
	}
	if c.Bootstrap.SettleTimeout <= 0 {
		return errors.New(errors.CodeInvalidInput, "bootstrap.settle_timeout must be positive", nil)
	}
	if c.Bootstrap.Element == "" {
		return errors.New(errors.CodeInvalidInput, "bootstrap.element is required", nil)
	}
	if err := elements.ValidName(c.Bootstrap.Element); err != nil {
		return errors.New(errors.CodeInvalidInput, "invalid bootstrap.element", err).
			WithContext("element", c.Bootstrap.Element)
	}
	return nil
}
