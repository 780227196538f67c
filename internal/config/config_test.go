package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate clears every variable Load reads and moves into an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		for _, name := range k.names {
			t.Setenv(name, "")
		}
	}
	for _, name := range providerKeys {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("FIREBREAK_PROVIDER", "offline")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOffline, cfg.Provider)
	assert.Equal(t, "2024-12-01-preview", cfg.Inference.APIVersion)
	assert.Equal(t, 60*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, StoreFile, cfg.Store.Kind)
	assert.Equal(t, ".firebreak/runs", cfg.Store.Path)
	assert.Equal(t, 25, cfg.MaxVisits)
	assert.Equal(t, ":2112", cfg.MetricsAddr)
	assert.False(t, cfg.Debug)
}

func TestLoad_NoProviderConfigured(t *testing.T) {
	isolate(t)

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Contains(t, err.Error(), "no inference provider configured")

	// An endpoint alone is not enough to select offline either.
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	_, err = Load("")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoProvider)
}

func TestLoadStoreOnly_SkipsProvider(t *testing.T) {
	isolate(t)

	cfg, err := LoadStoreOnly("", map[string]string{"store.kind": StoreSQLite})
	require.NoError(t, err)
	assert.Empty(t, cfg.Provider)
	assert.Equal(t, ".firebreak/firebreak.db", cfg.Store.Path)

	_, err = LoadStoreOnly("", map[string]string{"store.kind": "mongo"})
	assert.Error(t, err)
}

func TestLoad_AzureFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o")
	t.Setenv("AZURE_OPENAI_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderAzure, cfg.Provider)
	assert.Equal(t, "https://example.openai.azure.com", cfg.Inference.Endpoint)
	assert.Equal(t, "gpt-4o", cfg.Inference.Model)
	assert.Equal(t, "secret", cfg.Inference.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_API_KEY=from-dotenv\n"), 0o600))
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "from-dotenv", cfg.Inference.APIKey)
}

func TestLoad_YAMLThenEnvironment(t *testing.T) {
	dir := isolate(t)
	yaml := `
provider: openai
inference:
  model: gpt-4o-mini
  api_key: from-file
  timeout: 30s
store:
  kind: sqlite
redis:
  ttl: 24h
redact_patterns:
  - postcode
  - phone
max_visits: 10
debug: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(yaml), 0o600))
	t.Setenv("FIREBREAK_MAX_VISITS", "5")
	t.Setenv("FIREBREAK_STORE", "Redis")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Inference.Model)
	assert.Equal(t, "from-file", cfg.Inference.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, []string{"postcode", "phone"}, cfg.RedactPatterns)
	assert.Equal(t, 5, cfg.MaxVisits)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "2024-12-01-preview", cfg.Inference.APIVersion, "defaults survive a partial section")
}

func TestLoad_EnvList(t *testing.T) {
	isolate(t)
	t.Setenv("FIREBREAK_PROVIDER", "offline")
	t.Setenv("FIREBREAK_REDACT_PATTERNS", "postcode,address")
	t.Setenv("FIREBREAK_STORE", "sqlite")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"postcode", "address"}, cfg.RedactPatterns)
	assert.Equal(t, ".firebreak/firebreak.db", cfg.Store.Path)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{"Azure without key", map[string]string{"FIREBREAK_PROVIDER": "azure", "AZURE_OPENAI_ENDPOINT": "https://x"}, ""},
		{"OpenAI without key", map[string]string{"FIREBREAK_PROVIDER": "openai"}, ""},
		{"Unknown provider", map[string]string{"FIREBREAK_PROVIDER": "llama"}, ""},
		{"Unknown store", map[string]string{"FIREBREAK_PROVIDER": "offline", "FIREBREAK_STORE": "mongo"}, ""},
		{"Bad duration", map[string]string{"FIREBREAK_PROVIDER": "offline", "FIREBREAK_INFERENCE_TIMEOUT": "soon"}, ""},
		{"Negative visits", map[string]string{"FIREBREAK_PROVIDER": "offline", "FIREBREAK_MAX_VISITS": "-1"}, ""},
		{"Unknown key", nil, "colour: red\n"},
		{"Malformed YAML", nil, "provider: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(tt.file), 0o600))
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load("nope.yaml")
	assert.Error(t, err)
}

func TestLoadWithOverrides_FlagsWin(t *testing.T) {
	isolate(t)
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("FIREBREAK_MAX_VISITS", "10")

	cfg, err := LoadWithOverrides("", map[string]string{
		"provider":   ProviderOffline,
		"max_visits": "3",
		"store.kind": StoreMemory,
	})
	require.NoError(t, err)

	assert.Equal(t, ProviderOffline, cfg.Provider)
	assert.Equal(t, 3, cfg.MaxVisits)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Empty(t, cfg.Store.Path)
}
