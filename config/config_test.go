package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMaxAttemptsEnv = "WEBCLIENT_RETRY_MAXATTEMPTS"
	testPlaceholderURL = "https://jsonplaceholder.typicode.com"
)

// inTempDir runs the test from an empty directory so no stray config files load
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadWithDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "webclient", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Empty(t, cfg.Log.Output.File)
	assert.Equal(t, 100, cfg.Log.Output.MaxSizeMB)

	wc := cfg.WebClient
	assert.Equal(t, 3, wc.RetryPolicy.MaxAttempts)
	assert.Equal(t, 2*time.Second, wc.RetryPolicy.InitialBackoff)
	assert.Equal(t, 30*time.Second, wc.RetryPolicy.MaxBackoff)
	assert.InDelta(t, 0.1, wc.RetryPolicy.Jitter, 1e-9)
	assert.Equal(t, 60*time.Second, wc.Timeout.Connect)
	assert.Equal(t, 120*time.Second, wc.Timeout.Response)
	assert.Equal(t, 120*time.Second, wc.Timeout.Read)
	assert.Equal(t, 60*time.Second, wc.Timeout.Write)
	assert.Equal(t, 2, wc.MaxInMemoryResponseSizeMB)
	assert.True(t, wc.KeepAlive)
	assert.True(t, wc.NoDelay)
	assert.Zero(t, wc.RateLimit.RPS)
	assert.False(t, wc.LogPayloads)

	assert.Equal(t, testPlaceholderURL, cfg.API.JSONPlaceholder.BaseURL)
	assert.Equal(t, "https://api.example.com", cfg.API.Example.BaseURL)
	assert.False(t, cfg.Observability.Metrics.Enabled)
}

func TestLoadFromYAMLFiles(t *testing.T) {
	dir := inTempDir(t)
	writeFile(t, dir, "config.yaml", `
app:
  env: staging
webclient:
  retry:
    maxattempts: 5
    initialbackoff: 500ms
  timeout:
    response: 10s
`)
	writeFile(t, dir, "config.staging.yaml", `
webclient:
  retry:
    maxbackoff: 4s
log:
  level: debug
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.App.Env)
	assert.Equal(t, 5, cfg.WebClient.RetryPolicy.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.WebClient.RetryPolicy.InitialBackoff)
	assert.Equal(t, 4*time.Second, cfg.WebClient.RetryPolicy.MaxBackoff)
	assert.Equal(t, 10*time.Second, cfg.WebClient.Timeout.Response)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvironmentOverridesFiles(t *testing.T) {
	dir := inTempDir(t)
	writeFile(t, dir, "config.yaml", "webclient:\n  retry:\n    maxattempts: 5\n")
	t.Setenv(testMaxAttemptsEnv, "7")
	t.Setenv("WEBCLIENT_KEEPALIVE", "false")
	t.Setenv("API_JSONPLACEHOLDER_BASEURL", "http://localhost:9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.WebClient.RetryPolicy.MaxAttempts)
	assert.False(t, cfg.WebClient.KeepAlive)
	assert.Equal(t, "http://localhost:9999", cfg.API.JSONPlaceholder.BaseURL)
}

func TestLoadIgnoresUnrelatedEnvironment(t *testing.T) {
	inTempDir(t)
	t.Setenv("UNRELATED_SETTING", "x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Exists("unrelated.setting"))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	inTempDir(t)
	t.Setenv(testMaxAttemptsEnv, "0")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "webclient.retry.maxattempts", cfgErr.Field)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := inTempDir(t)
	writeFile(t, dir, "config.yaml", "webclient: [unclosed")

	_, err := Load()
	assert.ErrorContains(t, err, "config.yaml")
}

func TestLoadFromBytes(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
webclient:
  maxinmemoryresponsesizemb: 8
  ratelimit:
    rps: 5
    burst: 2
observability:
  metrics:
    enabled: true
`))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.WebClient.MaxInMemoryResponseSizeMB)
	assert.InDelta(t, 5.0, cfg.WebClient.RateLimit.RPS, 1e-9)
	assert.Equal(t, 2, cfg.WebClient.RateLimit.Burst)
	assert.True(t, cfg.Observability.Metrics.Enabled)
	assert.Equal(t, 3, cfg.WebClient.RetryPolicy.MaxAttempts, "defaults still apply")

	_, err = LoadFromBytes([]byte("log: {level: loud}"))
	assert.ErrorContains(t, err, "log.level")
}

func TestAccessors(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
custom:
  feature: enabled
  limit: 42
  flag: true
  window: 250ms
`))
	require.NoError(t, err)

	assert.Equal(t, "enabled", cfg.GetString("custom.feature"))
	assert.Equal(t, "fallback", cfg.GetString("custom.missing", "fallback"))
	assert.Equal(t, 42, cfg.GetInt("custom.limit"))
	assert.Equal(t, 7, cfg.GetInt("custom.missing", 7))
	assert.True(t, cfg.GetBool("custom.flag"))
	assert.False(t, cfg.GetBool("custom.missing"))
	assert.Equal(t, 250*time.Millisecond, cfg.GetDuration("custom.window"))
	assert.Equal(t, 2*time.Second, cfg.GetDuration("webclient.retry.initialbackoff"))
	assert.True(t, cfg.Exists("custom.limit"))

	value, err := cfg.GetRequiredString("custom.feature")
	require.NoError(t, err)
	assert.Equal(t, "enabled", value)

	_, err = cfg.GetRequiredString("custom.missing")
	assert.ErrorContains(t, err, "custom.missing")

	var custom struct {
		Feature string `koanf:"feature"`
		Limit   int    `koanf:"limit"`
	}
	require.NoError(t, cfg.Unmarshal("custom", &custom))
	assert.Equal(t, 42, custom.Limit)
}

func TestAccessorsOnNilConfig(t *testing.T) {
	var cfg *Config

	assert.Equal(t, "x", cfg.GetString("any", "x"))
	assert.Zero(t, cfg.GetInt("any"))
	assert.False(t, cfg.Exists("any"))
	assert.Error(t, cfg.Unmarshal("", &struct{}{}))
}
