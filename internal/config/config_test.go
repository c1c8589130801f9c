package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileWithDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"basic_config": {"server_address": ":9000"},
		"providers": {"gemini": {"model": "gemini-2.0-flash", "api_key": "file-key"}}
	}`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.BasicConfig.ServerAddress)
	assert.Equal(t, "info", cfg.BasicConfig.LogLevel)
	assert.Equal(t, DefaultSessionIdleMinutes, cfg.BasicConfig.SessionIdleMinutes)
	assert.Equal(t, "file-key", cfg.Providers["gemini"].APIKey)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	path := writeConfig(t, `{"providers": {"gemini": {"model": "gemini-2.0-flash"}}}`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Providers["gemini"].APIKey)
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MODELCHAT_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerAddress, cfg.BasicConfig.ServerAddress)
	assert.Equal(t, DefaultGeminiModel, cfg.Providers["gemini"].Model)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), "")
	require.Error(t, err)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	path := writeConfig(t, `{}`)

	_, err := Load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestLoadUnknownDefaultProvider(t *testing.T) {
	path := writeConfig(t, `{"basic_config": {"default_provider": "mistral"}}`)
	_, err := Load(path, "")
	require.Error(t, err)
}

func TestProviderLookup(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := writeConfig(t, `{
		"providers": {
			"gemini": {"model": "gemini-2.0-flash", "api_key": "k"},
			"openai": {"model": "gpt-4o-mini"}
		}
	}`)
	cfg, err := Load(path, "")
	require.NoError(t, err)

	name, p, err := cfg.Provider("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", name)
	assert.Equal(t, "k", p.APIKey)

	_, p, err = cfg.Provider("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", p.APIKey)

	_, _, err = cfg.Provider("claude")
	require.Error(t, err)
}

func TestLoadProviderOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MODELCHAT_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("", "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.BasicConfig.DefaultProvider)

	name, p, err := cfg.Provider("")
	require.NoError(t, err)
	assert.Equal(t, "openai", name)
	assert.Equal(t, "sk-test", p.APIKey)
	assert.Equal(t, DefaultOpenAIModel, p.Model)
}

func TestLoadProviderOverrideValidatesSelected(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	path := writeConfig(t, `{"providers": {"gemini": {"api_key": "k"}}}`)

	_, err := Load(path, "claude")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key for provider claude")
}
