package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// GeminiConfig configures the lesson generation backend.
type GeminiConfig struct {
	APIKey          string  `yaml:"api_key" envconfig:"GEMINI_API_KEY"`
	Model           string  `yaml:"model" envconfig:"GEMINI_MODEL"`
	TimeoutSeconds  int     `yaml:"timeout_seconds" envconfig:"GEMINI_TIMEOUT_SECONDS"`
	MaxOutputTokens int     `yaml:"max_output_tokens" envconfig:"GEMINI_MAX_OUTPUT_TOKENS"`
	Temperature     float64 `yaml:"temperature" envconfig:"GEMINI_TEMPERATURE"`
}

// Timeout returns the bound for a single generation call.
func (g GeminiConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// StatusConfig configures the HTTP status and metrics server.
type StatusConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"STATUS_ENABLED"`
	Listen  string `yaml:"listen" envconfig:"STATUS_LISTEN"`
	Port    int    `yaml:"port" envconfig:"STATUS_PORT"`
}

// CatalogConfig points at an optional course catalog override file.
type CatalogConfig struct {
	CoursesFile string `yaml:"courses_file" envconfig:"CATALOG_COURSES_FILE"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// Config aggregates the full bot configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Status   StatusConfig   `yaml:"status"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Gemini.MaxOutputTokens <= 0 {
		cfg.Gemini.MaxOutputTokens = 300
	}
	if cfg.Gemini.Temperature < 0 || cfg.Gemini.Temperature > 2 {
		return fmt.Errorf("gemini.temperature must be within [0, 2]")
	}
	if cfg.Gemini.Temperature == 0 {
		cfg.Gemini.Temperature = 0.8
	}

	if cfg.Status.Enabled {
		if strings.TrimSpace(cfg.Status.Listen) == "" {
			cfg.Status.Listen = "0.0.0.0"
		}
		if cfg.Status.Port <= 0 {
			cfg.Status.Port = 8080
		}
	}

	return nil
}
