package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// sections are the top-level keys environment variables may override
var sections = []string{"app", "log", "webclient", "api", "observability"}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration files
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// YAML files are optional
	if err := loadOptionalFile(k, "config.yaml"); err != nil {
		return nil, err
	}
	if appEnv := k.String("app.env"); appEnv != "" {
		if err := loadOptionalFile(k, fmt.Sprintf("config.%s.yaml", appEnv)); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{TransformFunc: envKey}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return build(k)
}

// LoadFromBytes loads defaults overlaid with the given YAML document.
// Environment variables are not consulted.
func LoadFromBytes(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return build(k)
}

func build(k *koanf.Koanf) (*Config, error) {
	if err := applyFlatOptions(k); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Store the Koanf instance for flexible access
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	err := k.Load(file.Provider(path), yaml.Parser())
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// envKey maps WEBCLIENT_RETRY_MAXATTEMPTS to webclient.retry.maxattempts and
// skips variables outside the known sections.
func envKey(key, value string) (string, any) {
	key = strings.ReplaceAll(strings.ToLower(key), "_", ".")
	section, _, _ := strings.Cut(key, ".")
	if !slices.Contains(sections, section) {
		return "", nil
	}
	return key, value
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":    "webclient",
		"app.version": "dev",
		"app.env":     EnvDevelopment,

		"log.level":             "info",
		"log.pretty":            false,
		"log.output.file":       "",
		"log.output.maxsizemb":  100,
		"log.output.maxbackups": 3,
		"log.output.maxagedays": 28,
		"log.output.compress":   false,

		"webclient.retry.maxattempts":         3,
		"webclient.retry.initialbackoff":      "2s",
		"webclient.retry.maxbackoff":          "30s",
		"webclient.retry.jitter":              0.1,
		"webclient.timeout.connect":           "60s",
		"webclient.timeout.response":          "120s",
		"webclient.timeout.read":              "120s",
		"webclient.timeout.write":             "60s",
		"webclient.maxinmemoryresponsesizemb": 2,
		"webclient.keepalive":                 true,
		"webclient.nodelay":                   true,
		"webclient.ratelimit.rps":             0,
		"webclient.ratelimit.burst":           0,
		"webclient.logpayloads":               false,
		"webclient.payloadpreviewbytes":       1024,

		"api.jsonplaceholder.baseurl": "https://jsonplaceholder.typicode.com",
		"api.example.baseurl":         "https://api.example.com",

		"observability.metrics.enabled":           false,
		"observability.metrics.exporter.endpoint": "stdout",
		"observability.metrics.exporter.protocol": "http",
		"observability.metrics.interval":          "60s",
		"observability.tracing.enabled":           false,
		"observability.tracing.exporter.endpoint": "stdout",
		"observability.tracing.exporter.protocol": "http",
		"observability.tracing.samplerate":        1.0,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
