// Package config loads studio configuration from .larch/config.yaml
// with environment variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all larchstudio configuration.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// GatewayConfig configures the Gemini gateway.
type GatewayConfig struct {
	APIKey        string        `yaml:"api_key"`
	PromptModel   string        `yaml:"prompt_model"`   // prompt generation
	ImageModel    string        `yaml:"image_model"`    // visualization and edits
	TemplateModel string        `yaml:"template_model"` // random templates
	AspectRatio   string        `yaml:"aspect_ratio"`   // default render aspect ratio
	Timeout       time.Duration `yaml:"timeout"`
}

// StorageConfig configures the persistence adapter.
type StorageConfig struct {
	Path string `yaml:"path"` // SQLite database file
}

// ServerConfig configures the HTTP proxy.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	LogFile string `yaml:"log_file"` // rotated access/error log, empty = stderr only
}

// LoggingConfig configures the categorized debug logger.
type LoggingConfig struct {
	DebugMode bool   `yaml:"debug_mode"`
	Level     string `yaml:"level"`
}

// Default returns the baseline configuration rooted at workspace.
func Default(workspace string) Config {
	return Config{
		Gateway: GatewayConfig{
			PromptModel:   "gemini-3-pro-preview",
			ImageModel:    "gemini-2.5-flash-image",
			TemplateModel: "gemini-3-flash-preview",
			AspectRatio:   "16:9",
			Timeout:       2 * time.Minute,
		},
		Storage: StorageConfig{
			Path: filepath.Join(workspace, ".larch", "studio.db"),
		},
		Server: ServerConfig{
			Addr: ":3001",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads .larch/config.yaml under workspace, falling back to
// defaults when the file does not exist, then applies env overrides.
func Load(workspace string) (Config, error) {
	cfg := Default(workspace)

	path := filepath.Join(workspace, ".larch", "config.yaml")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnvOverrides(&cfg)
	fillDefaults(&cfg, workspace)
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values, so the
// API key never has to live in the yaml.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GENAI_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	} else if v := os.Getenv("API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("LARCH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// fillDefaults restores required values a sparse yaml file left empty.
func fillDefaults(cfg *Config, workspace string) {
	def := Default(workspace)
	if cfg.Gateway.PromptModel == "" {
		cfg.Gateway.PromptModel = def.Gateway.PromptModel
	}
	if cfg.Gateway.ImageModel == "" {
		cfg.Gateway.ImageModel = def.Gateway.ImageModel
	}
	if cfg.Gateway.TemplateModel == "" {
		cfg.Gateway.TemplateModel = def.Gateway.TemplateModel
	}
	if cfg.Gateway.AspectRatio == "" {
		cfg.Gateway.AspectRatio = def.Gateway.AspectRatio
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = def.Gateway.Timeout
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = def.Storage.Path
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}
