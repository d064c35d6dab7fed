// Package config loads chatbot settings from defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const AppName = "go-chatbot"

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

var ErrInvalid = errors.New("invalid config")

type SearchConfig struct {
	MaxResults     int    `yaml:"max_results"`
	Depth          string `yaml:"depth"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Model         string       `yaml:"model"`
	MaxTokens     int          `yaml:"max_tokens"`
	MaxRetries    int          `yaml:"max_retries"`
	SystemPrompt  string       `yaml:"system_prompt"`
	MaxRoundTrips int          `yaml:"max_round_trips"`
	Search        SearchConfig `yaml:"search"`
	Store         StoreConfig  `yaml:"store"`
	Log           LogConfig    `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Model:         "claude-3-7-sonnet-latest",
		MaxTokens:     1024,
		MaxRetries:    2,
		MaxRoundTrips: 8,
		Search: SearchConfig{
			MaxResults:     2,
			Depth:          "basic",
			TimeoutSeconds: 10,
		},
		Store: StoreConfig{Backend: StoreMemory},
		Log:   LogConfig{Level: "warn", Format: "text"},
	}
}

// Dir returns $HOME/.config/go-chatbot without creating it.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultPath is the config file read when --config is not given.
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultDBPath is the sqlite file used when store.path is empty.
func DefaultDBPath() string {
	dir, err := Dir()
	if err != nil {
		return "chatbot.db"
	}
	return filepath.Join(dir, "sessions.db")
}

// Load applies defaults, then the YAML file at path, then environment overrides.
// A missing file is only an error when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Model, "CHATBOT_MODEL")
	setString(&c.SystemPrompt, "CHATBOT_SYSTEM_PROMPT")
	setString(&c.Store.Backend, "CHATBOT_STORE")
	setString(&c.Store.Path, "CHATBOT_DB_PATH")
	setString(&c.Log.Level, "CHATBOT_LOG_LEVEL")
	setString(&c.Log.Format, "CHATBOT_LOG_FORMAT")
	setString(&c.Search.Depth, "CHATBOT_SEARCH_DEPTH")
	setString(&c.Search.BaseURL, "CHATBOT_SEARCH_URL")
	for key, dst := range map[string]*int{
		"CHATBOT_MAX_TOKENS":         &c.MaxTokens,
		"CHATBOT_MAX_RETRIES":        &c.MaxRetries,
		"CHATBOT_MAX_ROUND_TRIPS":    &c.MaxRoundTrips,
		"CHATBOT_SEARCH_MAX_RESULTS": &c.Search.MaxResults,
	} {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
	}
	*dst = n
	return nil
}

// Validate rejects values the chatbot cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries))
	}
	if c.MaxRoundTrips <= 0 {
		errs = append(errs, fmt.Errorf("max_round_trips must be positive, got %d", c.MaxRoundTrips))
	}
	if c.Search.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults))
	}
	if c.Search.Depth != "basic" && c.Search.Depth != "advanced" {
		errs = append(errs, fmt.Errorf("search.depth must be basic or advanced, got %q", c.Search.Depth))
	}
	if c.Store.Backend != StoreMemory && c.Store.Backend != StoreSQLite {
		errs = append(errs, fmt.Errorf("store.backend must be %s or %s, got %q", StoreMemory, StoreSQLite, c.Store.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
