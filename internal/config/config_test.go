package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 0, cfg.API.TimeoutSecs)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout())
	assert.Equal(t, "pt-BR", cfg.Render.Locale)
	assert.True(t, cfg.Render.Color)
	assert.Empty(t, cfg.Notify.WebhookURL)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.InDelta(t, 20, cfg.Server.RequestsPerSecond, 0.001)
	assert.Equal(t, 40, cfg.Server.Burst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Pricing.Anthropic)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
api:
  base_url: https://deeds.example.com
  timeout_secs: 45
render:
  locale: en-US
log:
  level: debug
  format: console
pricing:
  anthropic:
    claude-sonnet-4-20250514:
      input: 3.0
      output: 15.0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://deeds.example.com", cfg.API.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout())
	assert.Equal(t, "en-US", cfg.Render.Locale)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	require.Contains(t, cfg.Pricing.Anthropic, "claude-sonnet-4-20250514")
	assert.InDelta(t, 15.0, cfg.Pricing.Anthropic["claude-sonnet-4-20250514"].Output, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, 8090, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
api:
  base_url: https://deeds.example.com
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DEED_API_BASE_URL", "http://10.0.0.5:8000")
	t.Setenv("DEED_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "http://10.0.0.5:8000", cfg.API.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("DEED_SERVER_PORT", "3000")
	t.Setenv("DEED_NOTIFY_WEBHOOK_URL", "https://hooks.example.com/deed")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "https://hooks.example.com/deed", cfg.Notify.WebhookURL)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: [unterminated"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.Render.Locale = "pt-BR"
	cfg.Server.Port = 8090
	return cfg
}

func TestValidateAnalyze_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("analyze"))
	assert.NoError(t, validDefaults().Validate("calculate"))
	assert.NoError(t, validDefaults().Validate("render"))
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidateAnalyze_BadAPI(t *testing.T) {
	cfg := validDefaults()
	cfg.API.BaseURL = ""
	cfg.API.TimeoutSecs = -1

	err := cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url is required")
	assert.Contains(t, err.Error(), "api.timeout_secs must be >= 0")

	cfg.API.BaseURL = "localhost"
	cfg.API.TimeoutSecs = 0
	err = cfg.Validate("calculate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url must be an absolute URL")
}

func TestValidateAnalyze_BadWebhook(t *testing.T) {
	cfg := validDefaults()
	cfg.Notify.WebhookURL = "not a url"

	err := cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify.webhook_url")
}

func TestValidateRender_IgnoresAPI(t *testing.T) {
	cfg := validDefaults()
	cfg.API.BaseURL = ""

	assert.NoError(t, cfg.Validate("render"))
}

func TestValidate_BadLocale(t *testing.T) {
	cfg := validDefaults()
	cfg.Render.Locale = "!!"

	err := cfg.Validate("render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.locale")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_RateLimit(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.RequestsPerSecond = 5
	cfg.Server.Burst = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.burst must be >= 1")

	cfg.Server.RequestsPerSecond = -1
	err = cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.requests_per_second must be >= 0")

	cfg.Server.RequestsPerSecond = 0
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidate_NegativePricing(t *testing.T) {
	cfg := validDefaults()
	cfg.Pricing.Anthropic = map[string]ModelPricing{"claude-x": {Input: -1}}

	err := cfg.Validate("analyze")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pricing.anthropic.claude-x must be >= 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
