// Package config loads tutorat settings from flags, TUTORAT_* environment
// variables, the config file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tutorat/tutorat/internal/llm"
)

const (
	envPrefix = "TUTORAT"
	appName   = "tutorat"

	DefaultAPIURL = "http://localhost:8000/api/"
)

// AI backends.
const (
	BackendRemote = "remote" // through the platform's ai/ endpoints
	BackendLocal  = "local"  // through an llm provider on this machine
)

// Config is the resolved configuration.
type Config struct {
	API   API
	Token Token
	DB    string
	Log   Log
	AI    AI
	LLM   llm.Config
}

// API configures the REST client.
type API struct {
	URL        string
	Timeout    time.Duration
	AuthScheme string
}

// Token configures where the auth token is kept.
type Token struct {
	Path  string
	Value string // TUTORAT_TOKEN, never written to disk
}

// Log configures logging.
type Log struct {
	Level  string
	Format string // console or json
	File   string
}

// AI selects the tutor backend.
type AI struct {
	Backend string
}

// New returns a viper instance with defaults registered and environment
// binding enabled. Callers bind flags before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	bindEnv(v)
	return v
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.auth_scheme", "Token")
	v.SetDefault("token.path", "")
	v.SetDefault("db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("ai.backend", BackendRemote)

	v.SetDefault("llm.provider", d.Provider)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.groq.model", d.Groq.Model)
	v.SetDefault("llm.groq.base_url", "")
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
}

// bindEnv registers extra environment names per key. The first name is
// the prefixed one; the rest are the providers' own variables.
func bindEnv(v *viper.Viper) {
	names := map[string][]string{
		"token.value":            {"TUTORAT_TOKEN"},
		"llm.anthropic.api_key":  {"TUTORAT_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"llm.openai.api_key":     {"TUTORAT_LLM_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"llm.gemini.api_key":     {"TUTORAT_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"llm.openrouter.api_key": {"TUTORAT_LLM_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
		"llm.groq.api_key":       {"TUTORAT_LLM_GROQ_API_KEY", "GROQ_API_KEY"},
	}
	for key, env := range names {
		_ = v.BindEnv(append([]string{key}, env...)...)
	}
}

// BindFlags binds the persistent flags that override config keys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"api.url":    "api-url",
		"db":         "db",
		"log.level":  "log-level",
		"log.format": "log-format",
		"ai.backend": "ai-backend",
	}
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file, if any, and resolves the configuration.
// path overrides the default config file location.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Debug().Err(err).Msg("no config file, using defaults")
	}

	cfg := &Config{
		API: API{
			URL:        v.GetString("api.url"),
			Timeout:    v.GetDuration("api.timeout"),
			AuthScheme: v.GetString("api.auth_scheme"),
		},
		Token: Token{
			Path:  v.GetString("token.path"),
			Value: v.GetString("token.value"),
		},
		DB: v.GetString("db"),
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
		AI:  AI{Backend: v.GetString("ai.backend")},
		LLM: llmConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func llmConfig(v *viper.Viper) llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Provider = v.GetString("llm.provider")
	cfg.Timeout = v.GetDuration("llm.timeout")

	cfg.Anthropic.APIKey = v.GetString("llm.anthropic.api_key")
	cfg.Anthropic.Model = v.GetString("llm.anthropic.model")
	cfg.OpenAI.APIKey = v.GetString("llm.openai.api_key")
	cfg.OpenAI.Model = v.GetString("llm.openai.model")
	cfg.OpenAI.BaseURL = v.GetString("llm.openai.base_url")
	cfg.Gemini.APIKey = v.GetString("llm.gemini.api_key")
	cfg.Gemini.Model = v.GetString("llm.gemini.model")
	cfg.OpenRouter.APIKey = v.GetString("llm.openrouter.api_key")
	cfg.OpenRouter.Model = v.GetString("llm.openrouter.model")
	cfg.OpenRouter.BaseURL = v.GetString("llm.openrouter.base_url")
	cfg.Groq.APIKey = v.GetString("llm.groq.api_key")
	cfg.Groq.Model = v.GetString("llm.groq.model")
	cfg.Groq.BaseURL = v.GetString("llm.groq.base_url")

	cfg.Retry.MaxAttempts = v.GetInt("llm.retry.max_attempts")
	cfg.Retry.InitialWait = v.GetDuration("llm.retry.initial_wait")
	cfg.Retry.MaxWait = v.GetDuration("llm.retry.max_wait")
	cfg.Retry.Multiplier = v.GetFloat64("llm.retry.multiplier")
	return cfg
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return errors.New("api.url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	switch c.AI.Backend {
	case BackendRemote, BackendLocal:
	default:
		return fmt.Errorf("ai.backend must be %q or %q, got %q", BackendRemote, BackendLocal, c.AI.Backend)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Dir is the config directory: $XDG_CONFIG_HOME/tutorat or
// ~/.config/tutorat.
func Dir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// DataDir is the data directory: $XDG_DATA_HOME/tutorat or
// ~/.local/share/tutorat.
func DataDir() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// TokenPath resolves where the auth token file lives.
func (c *Config) TokenPath() (string, error) {
	if c.Token.Path != "" {
		return c.Token.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "token"), nil
}

// LogPath resolves the log file used while the terminal UI owns the
// screen.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".log"), nil
}
