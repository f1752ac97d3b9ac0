// Package config loads labinv settings from an optional YAML file, an
// optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultFile is read when LABINV_CONFIG is not set.
const DefaultFile = "labinv.yaml"

// Vision backends.
const (
	VisionNone   = "none"
	VisionClaude = "claude"
	VisionOllama = "ollama"
)

// Config holds all settings. Environment variables override YAML values.
// Secrets only come from the environment.
type Config struct {
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR" env-default:"127.0.0.1:8080"`
	DBPath     string `yaml:"db_path" env:"DB_PATH" env-default:"labinv.db"`
	PhotoPath  string `yaml:"photo_local_path" env:"PHOTO_LOCAL_PATH" env-default:"fridge_photos"`
	MaxPhotoMB int64  `yaml:"max_photo_mb" env:"MAX_PHOTO_MB" env-default:"16"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFile    string `yaml:"log_file" env:"LOG_FILE" env-default:""`

	VisionBackend string `yaml:"vision_backend" env:"VISION_BACKEND" env-default:"none"`
	ClaudeAPIKey  string `yaml:"-" env:"CLAUDE_API_KEY"`
	ClaudeModel   string `yaml:"claude_model" env:"CLAUDE_MODEL" env-default:"claude-sonnet-4-5"`
	OllamaHost    string `yaml:"ollama_host" env:"OLLAMA_HOST" env-default:"http://localhost:11434"`
	OllamaModel   string `yaml:"ollama_model" env:"OLLAMA_MODEL" env-default:"llava"`
}

// Load reads .env (when present) into the environment, then path (when
// present), then environment overrides. An empty path means LABINV_CONFIG or
// DefaultFile.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("LABINV_CONFIG")
	}
	if path == "" {
		path = DefaultFile
	}

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MaxPhotoBytes is the upload limit in bytes.
func (c *Config) MaxPhotoBytes() int64 {
	return c.MaxPhotoMB << 20
}

func (c *Config) validate() error {
	switch c.VisionBackend {
	case VisionNone, VisionOllama:
	case VisionClaude:
		if c.ClaudeAPIKey == "" {
			return errors.New("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
		}
	default:
		return fmt.Errorf("unknown VISION_BACKEND %q", c.VisionBackend)
	}
	if c.MaxPhotoMB <= 0 {
		return fmt.Errorf("max_photo_mb must be positive, got %d", c.MaxPhotoMB)
	}
	return nil
}
