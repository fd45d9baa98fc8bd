// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.pocketexpert/config.yaml)
//  3. Default values
//
// Security: the Gemini API key is read from GEMINI_API_KEY only and is
// never written to the config file or logged; MarshalJSON masks it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates GEMINI_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates a model identifier is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidDataDir indicates the data directory is unusable.
	ErrInvalidDataDir = errors.New("invalid data directory")

	// ErrInvalidContextCount indicates the memory context count is out of range.
	ErrInvalidContextCount = errors.New("invalid context memory count")

	// ErrInvalidAddr indicates the HTTP listen address is empty.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidRate indicates the outbound request rate is out of range.
	ErrInvalidRate = errors.New("invalid requests per minute")
)

const (
	// DefaultFlashModel is the fast, low-latency chat tier.
	DefaultFlashModel = "gemini-2.5-flash"

	// DefaultProModel is the deep-thinking chat tier.
	DefaultProModel = "gemini-2.5-pro"

	// DefaultImageModel is the image generation model.
	DefaultImageModel = "imagen-4.0-generate-001"

	// DefaultContextMemoryCount is how many recent memories are injected
	// into the system instruction of a chat request.
	DefaultContextMemoryCount = 5

	// MaxContextMemoryCount bounds the injected context to keep the
	// system instruction small.
	MaxContextMemoryCount = 50
)

// Config stores application configuration.
// SENSITIVE: APIKey is masked in MarshalJSON; keep it that way when
// adding fields.
type Config struct {
	// Gemini API access. Read from GEMINI_API_KEY only.
	APIKey string `mapstructure:"-" json:"api_key"`

	// Model tiers. Flash doubles as the vision model for image analysis.
	FlashModel string `mapstructure:"flash_model" json:"flash_model"`
	ProModel   string `mapstructure:"pro_model" json:"pro_model"`
	ImageModel string `mapstructure:"image_model" json:"image_model"`

	// Storage locations. DatabaseFile and LegacyFile are joined onto
	// DataDir when relative.
	DataDir      string `mapstructure:"data_dir" json:"data_dir"`
	DatabaseFile string `mapstructure:"database_file" json:"database_file"`
	LegacyFile   string `mapstructure:"legacy_file" json:"legacy_file"`

	// HTTP server.
	HTTPAddr string `mapstructure:"http_addr" json:"http_addr"`

	// Assistant behaviour.
	ContextMemoryCount int `mapstructure:"context_memory_count" json:"context_memory_count"`
	RequestsPerMinute  int `mapstructure:"requests_per_minute" json:"requests_per_minute"`

	// Logging.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > config file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".pocketexpert")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v, configDir)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	cfg.APIKey = os.Getenv("GEMINI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("flash_model", DefaultFlashModel)
	v.SetDefault("pro_model", DefaultProModel)
	v.SetDefault("image_model", DefaultImageModel)

	v.SetDefault("data_dir", configDir)
	v.SetDefault("database_file", "pocketexpert.db")
	v.SetDefault("legacy_file", "legacy.json")

	v.SetDefault("http_addr", "127.0.0.1:8790")

	v.SetDefault("context_memory_count", DefaultContextMemoryCount)
	v.SetDefault("requests_per_minute", 30)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment overrides explicitly.
// GEMINI_API_KEY is read directly in Load, not through viper, so it can
// never leak into a written config file.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("flash_model", "POCKETEXPERT_FLASH_MODEL")
	mustBind("pro_model", "POCKETEXPERT_PRO_MODEL")
	mustBind("image_model", "POCKETEXPERT_IMAGE_MODEL")
	mustBind("data_dir", "POCKETEXPERT_DATA_DIR")
	mustBind("http_addr", "POCKETEXPERT_ADDR")
	mustBind("log_level", "POCKETEXPERT_LOG_LEVEL")
}

// DatabasePath returns the absolute path of the SQLite database file.
func (c *Config) DatabasePath() string {
	return c.resolve(c.DatabaseFile)
}

// LegacyPath returns the absolute path of the legacy flat-storage file.
func (c *Config) LegacyPath() string {
	return c.resolve(c.LegacyFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// MarshalJSON masks the API key so a dumped config never contains it.
func (c *Config) MarshalJSON() ([]byte, error) {
	type alias Config
	masked := alias(*c)
	if masked.APIKey != "" {
		masked.APIKey = maskedValue
	}
	return json.Marshal(masked)
}
