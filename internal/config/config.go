package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Providers   map[string]ProviderConfig `json:"providers"`
	Redis       RedisConfig               `json:"redis"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
	// Driver selects the client used for the provider. Gemini supports
	// "chat" (native chat sessions, default) and "eino".
	Driver string `json:"driver"`
}

type BasicConfig struct {
	ServerAddress      string `json:"server_address"`
	LogLevel           string `json:"log_level"`
	DefaultProvider    string `json:"default_provider"`
	SessionIdleMinutes int    `json:"session_idle_minutes"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

const (
	DefaultServerAddress      = ":8090"
	DefaultProvider           = "gemini"
	DefaultGeminiModel        = "gemini-2.0-flash"
	DefaultOpenAIModel        = "gpt-4o-mini"
	DefaultClaudeModel        = "claude-3-5-haiku-latest"
	DefaultSessionIdleMinutes = 30
)

// env var holding the API key per provider, used when the file leaves it empty
var apiKeyEnv = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"openai": "OPENAI_API_KEY",
	"claude": "ANTHROPIC_API_KEY",
}

var defaultModels = map[string]string{
	"gemini": DefaultGeminiModel,
	"openai": DefaultOpenAIModel,
	"claude": DefaultClaudeModel,
}

// Load reads configuration from the provided path (defaults to config.json).
// A missing file is not an error: defaults and environment variables apply.
// A .env file in the working directory is loaded first when present.
// A non-empty provider replaces basic_config.default_provider before validation.
func Load(path, provider string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}
	if path == "" {
		path = os.Getenv("MODELCHAT_CONFIG")
	}
	explicit := path != ""
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolve config path")
	}

	var cfg Config
	file, err := os.Open(absPath)
	switch {
	case err == nil:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, errors.Wrap(err, "decode config")
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, errors.Wrapf(err, "open config %s", absPath)
	}

	if provider = strings.TrimSpace(provider); provider != "" {
		cfg.BasicConfig.DefaultProvider = provider
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = DefaultServerAddress
	}
	if c.BasicConfig.LogLevel == "" {
		c.BasicConfig.LogLevel = "info"
	}
	if c.BasicConfig.DefaultProvider == "" {
		c.BasicConfig.DefaultProvider = DefaultProvider
	}
	if c.BasicConfig.SessionIdleMinutes <= 0 {
		c.BasicConfig.SessionIdleMinutes = DefaultSessionIdleMinutes
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	selected := c.BasicConfig.DefaultProvider
	if _, ok := c.Providers[selected]; !ok {
		if _, known := defaultModels[selected]; known {
			c.Providers[selected] = ProviderConfig{}
		}
	}
	for name, p := range c.Providers {
		if p.Model == "" {
			p.Model = defaultModels[name]
		}
		if p.APIKey == "" {
			if env, ok := apiKeyEnv[name]; ok {
				p.APIKey = strings.TrimSpace(os.Getenv(env))
			}
		}
		c.Providers[name] = p
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "127.0.0.1"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
}

// Validate checks that the default provider can be reached.
func (c *Config) Validate() error {
	name := c.BasicConfig.DefaultProvider
	p, ok := c.Providers[name]
	if !ok {
		return errors.Errorf("default provider %s not configured", name)
	}
	if p.APIKey == "" {
		return errors.Errorf("api key for provider %s must be configured", name)
	}
	if p.Model == "" {
		return errors.Errorf("model for provider %s must be configured", name)
	}
	return nil
}

// Provider returns the named provider config, or the default one when name is empty.
func (c *Config) Provider(name string) (string, ProviderConfig, error) {
	if name == "" {
		name = c.BasicConfig.DefaultProvider
	}
	p, ok := c.Providers[name]
	if !ok {
		return "", ProviderConfig{}, errors.Errorf("provider %s not configured", name)
	}
	return name, p, nil
}
