package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Upstream struct {
	APIKey      string        `yaml:"-" env:"OPENAI_API_KEY"`
	APIKeyParam string        `yaml:"api_key_param" env:"OPENAI_API_KEY_PARAM"`
	BaseURL     string        `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
	Model       string        `yaml:"model" env:"OPENAI_MODEL" env-default:"openai/gpt-3.5-turbo"`
	Referer     string        `yaml:"referer" env:"APP_REFERER" env-default:"https://worldtriplink.com"`
	Title       string        `yaml:"title" env:"APP_TITLE" env-default:"WTL Tourism"`
	Timeout     time.Duration `yaml:"timeout" env:"UPSTREAM_TIMEOUT" env-default:"30s"`
}

type Relay struct {
	ListenAddr         string `yaml:"listen_addr" env:"LISTEN_ADDR" env-default:":8080"`
	MaxContextMessages int    `yaml:"max_context_messages" env:"MAX_CONTEXT_MESSAGES" env-default:"0"`
}

type Widget struct {
	RelayURL string        `yaml:"relay_url" env:"RELAY_URL" env-default:"http://localhost:8080/api/chat"`
	Timeout  time.Duration `yaml:"timeout" env:"RELAY_TIMEOUT" env-default:"0s"`
}

type Config struct {
	Upstream Upstream `yaml:"upstream"`
	Relay    Relay    `yaml:"relay"`
	Widget   Widget   `yaml:"widget"`
}

// Load reads an optional .env file, then the YAML file at path when given,
// then the environment. Environment values win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if strings.TrimSpace(path) != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		return errors.New("config: upstream base url must not be empty")
	}
	if strings.TrimSpace(c.Upstream.Model) == "" {
		return errors.New("config: upstream model must not be empty")
	}
	if c.Relay.MaxContextMessages < 0 {
		return errors.New("config: max context messages must not be negative")
	}
	return nil
}

// HasCredential reports whether an API key source is configured.
func (u Upstream) HasCredential() bool {
	return strings.TrimSpace(u.APIKey) != "" || strings.TrimSpace(u.APIKeyParam) != ""
}
