package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/deed-cli/internal/locale"
)

// Config holds the full application configuration.
type Config struct {
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Notify  NotifyConfig  `yaml:"notify" mapstructure:"notify"`
	Pricing PricingConfig `yaml:"pricing" mapstructure:"pricing"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// APIConfig points at the analysis and calculation service.
type APIConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// TimeoutSecs bounds each request; 0 leaves requests unbounded.
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RenderConfig configures report presentation.
type RenderConfig struct {
	Locale string `yaml:"locale" mapstructure:"locale"`
	Color  bool   `yaml:"color" mapstructure:"color"`
}

// NotifyConfig configures where notifications are delivered besides the
// terminal.
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// PricingConfig holds per-model token pricing.
type PricingConfig struct {
	Anthropic map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// ServerConfig configures the local preview server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
	// RequestsPerSecond caps the request rate across all clients; 0 disables
	// the limit.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout_secs", 0)
	v.SetDefault("render.locale", "pt-BR")
	v.SetDefault("render.color", true)
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.requests_per_second", 20)
	v.SetDefault("server.burst", 40)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Timeout returns the per-request bound; 0 means none.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Validate checks that the settings a command mode depends on are usable.
// Supported modes: "analyze", "calculate", "render", "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	if _, err := locale.New(c.Render.Locale); err != nil {
		errs = append(errs, fmt.Sprintf("render.locale %q is not a valid language tag", c.Render.Locale))
	}

	switch mode {
	case "analyze", "calculate":
		errs = append(errs, c.validateAPI()...)
		if c.Notify.WebhookURL != "" {
			if u, err := url.Parse(c.Notify.WebhookURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, "notify.webhook_url must be an absolute URL")
			}
		}
	case "render":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RequestsPerSecond < 0 {
			errs = append(errs, "server.requests_per_second must be >= 0")
		}
		if c.Server.RequestsPerSecond > 0 && c.Server.Burst < 1 {
			errs = append(errs, "server.burst must be >= 1 when rate limiting")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	for model, p := range c.Pricing.Anthropic {
		if p.Input < 0 || p.Output < 0 {
			errs = append(errs, fmt.Sprintf("pricing.anthropic.%s must be >= 0", model))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateAPI() []string {
	var errs []string
	if c.API.BaseURL == "" {
		errs = append(errs, "api.base_url is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "api.base_url must be an absolute URL")
	}
	if c.API.TimeoutSecs < 0 {
		errs = append(errs, "api.timeout_secs must be >= 0")
	}
	return errs
}
