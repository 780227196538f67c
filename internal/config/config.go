// Package config loads firebreak configuration from a .env file, an optional
// YAML file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "firebreak.yaml"

// Providers.
const (
	ProviderAzure   = "azure"
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"
)

// Store kinds.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Provider  string          `mapstructure:"provider"`
	Inference InferenceConfig `mapstructure:"inference"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`

	// EncryptionKey is a base64 AES-256 key. Empty disables encryption at rest.
	EncryptionKey string `mapstructure:"encryption_key"`

	// RedactPatterns mask matching answers in the inspection API.
	RedactPatterns []string `mapstructure:"redact_patterns"`

	// MaxVisits bounds executions of one stage per engine pass. Zero is unbounded.
	MaxVisits int `mapstructure:"max_visits"`

	Debug       bool   `mapstructure:"debug"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// InferenceConfig configures the structured-inference collaborator.
type InferenceConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`
	APIVersion string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects the checkpoint store.
type StoreConfig struct {
	Kind string `mapstructure:"kind"`
	Path string `mapstructure:"path"`
}

// RedisConfig configures the redis store and distributed lock.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func defaults() map[string]any {
	return map[string]any{
		"provider": "",
		"inference": map[string]any{
			"api_version": "2024-12-01-preview",
			"timeout":     "60s",
		},
		"store": map[string]any{
			"kind": StoreFile,
		},
		"redis": map[string]any{
			"addr": "localhost:6379",
		},
		"max_visits":   25,
		"metrics_addr": ":2112",
	}
}

// envKeys maps config paths to environment variables. The first variable
// that is set wins.
var envKeys = []struct {
	path  string
	names []string
}{
	{"provider", []string{"FIREBREAK_PROVIDER"}},
	{"inference.endpoint", []string{"FIREBREAK_ENDPOINT", "AZURE_OPENAI_ENDPOINT"}},
	{"inference.model", []string{"FIREBREAK_MODEL", "AZURE_OPENAI_DEPLOYMENT"}},
	{"inference.api_key", []string{"FIREBREAK_API_KEY"}},
	{"inference.api_version", []string{"AZURE_OPENAI_API_VERSION"}},
	{"inference.timeout", []string{"FIREBREAK_INFERENCE_TIMEOUT"}},
	{"store.kind", []string{"FIREBREAK_STORE"}},
	{"store.path", []string{"FIREBREAK_STORE_PATH"}},
	{"redis.addr", []string{"FIREBREAK_REDIS_ADDR"}},
	{"redis.password", []string{"FIREBREAK_REDIS_PASSWORD"}},
	{"redis.db", []string{"FIREBREAK_REDIS_DB"}},
	{"redis.ttl", []string{"FIREBREAK_REDIS_TTL"}},
	{"encryption_key", []string{"FIREBREAK_ENCRYPTION_KEY"}},
	{"redact_patterns", []string{"FIREBREAK_REDACT_PATTERNS"}},
	{"max_visits", []string{"FIREBREAK_MAX_VISITS"}},
	{"debug", []string{"FIREBREAK_DEBUG"}},
	{"metrics_addr", []string{"FIREBREAK_METRICS_ADDR"}},
}

// providerKeys are the per-provider API key variables.
var providerKeys = map[string]string{
	ProviderAzure:  "AZURE_OPENAI_KEY",
	ProviderOpenAI: "OPENAI_API_KEY",
	ProviderGemini: "GEMINI_API_KEY",
}

// Load reads configuration. path names a YAML file; when empty, DefaultFile
// is used if present. A .env file in the working directory is loaded first
// and never overrides variables already set.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides is Load with command-line values applied last. Keys are
// dotted config paths such as "provider" or "store.kind".
func LoadWithOverrides(path string, overrides map[string]string) (*Config, error) {
	cfg, err := load(path, overrides)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadStoreOnly is LoadWithOverrides for commands that never call a model.
// The provider is not required.
func LoadStoreOnly(path string, overrides map[string]string) (*Config, error) {
	cfg, err := load(path, overrides)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateStore(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func load(path string, overrides map[string]string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	raw := defaults()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		merge(raw, file)
	}

	for _, k := range envKeys {
		for _, name := range k.names {
			if v, ok := os.LookupEnv(name); ok && v != "" {
				set(raw, k.path, v)
				break
			}
		}
	}
	for k, v := range overrides {
		set(raw, k, v)
	}

	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}
	cfg.resolve()
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return out, nil
}

func decode(raw map[string]any) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// resolve infers the provider from the available credentials when unset and
// falls back to the provider-specific key variable. Offline is never inferred.
func (c *Config) resolve() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		switch {
		case c.Inference.Endpoint != "":
			c.Provider = ProviderAzure
		case os.Getenv(providerKeys[ProviderOpenAI]) != "":
			c.Provider = ProviderOpenAI
		case os.Getenv(providerKeys[ProviderGemini]) != "":
			c.Provider = ProviderGemini
		}
	}
	if c.Inference.APIKey == "" {
		if name, ok := providerKeys[c.Provider]; ok {
			c.Inference.APIKey = os.Getenv(name)
		}
	}
	c.Store.Kind = strings.ToLower(strings.TrimSpace(c.Store.Kind))
	if c.Store.Path == "" {
		switch c.Store.Kind {
		case StoreFile:
			c.Store.Path = ".firebreak/runs"
		case StoreSQLite:
			c.Store.Path = ".firebreak/firebreak.db"
		}
	}
}

// ErrNoProvider is returned when no credentials select a provider and offline
// mode was not requested explicitly.
var ErrNoProvider = errors.New("no inference provider configured: set AZURE_OPENAI_*, OPENAI_API_KEY or GEMINI_API_KEY, or pass --offline (FIREBREAK_PROVIDER=offline)")

// Validate checks that the selected provider and store are usable.
func (c *Config) Validate() error {
	return errors.Join(c.validateProvider(), c.ValidateStore())
}

func (c *Config) validateProvider() error {
	var errs []error

	switch c.Provider {
	case "":
		errs = append(errs, ErrNoProvider)
	case ProviderAzure:
		if c.Inference.Endpoint == "" {
			errs = append(errs, errors.New("AZURE_OPENAI_ENDPOINT cannot be empty"))
		}
		if c.Inference.Model == "" {
			errs = append(errs, errors.New("AZURE_OPENAI_DEPLOYMENT cannot be empty"))
		}
		if c.Inference.APIKey == "" {
			errs = append(errs, errors.New("AZURE_OPENAI_KEY cannot be empty"))
		}
	case ProviderOpenAI, ProviderGemini:
		if c.Inference.APIKey == "" {
			errs = append(errs, fmt.Errorf("%s cannot be empty", providerKeys[c.Provider]))
		}
	case ProviderOffline:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}
	return errors.Join(errs...)
}

// ValidateStore checks every setting except the provider.
func (c *Config) ValidateStore() error {
	var errs []error

	switch c.Store.Kind {
	case StoreFile, StoreMemory, StoreRedis, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store.Kind))
	}

	if c.Inference.Timeout <= 0 {
		errs = append(errs, errors.New("inference timeout must be > 0"))
	}
	if c.MaxVisits < 0 {
		errs = append(errs, errors.New("max_visits must be >= 0"))
	}
	return errors.Join(errs...)
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// set assigns value at a dotted path, creating intermediate maps.
func set(m map[string]any, path, value string) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}
