// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-review/internal/llm"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Roles    string `json:"roles,omitempty" yaml:"roles,omitempty"`         // Path to roles JSON file
	Job      string `json:"job,omitempty" yaml:"job,omitempty"`             // Path to job posting text file
	JobURL   string `json:"job_url,omitempty" yaml:"job_url,omitempty"`     // URL to fetch job posting from
	JobTitle string `json:"job_title,omitempty" yaml:"job_title,omitempty"` // Title of the target job
	Company  string `json:"company,omitempty" yaml:"company,omitempty"`     // Company of the target job

	// Suggestions
	Provider       string `json:"provider,omitempty" yaml:"provider,omitempty"`               // LLM provider: gemini, openai or anthropic
	APIKey         string `json:"api_key,omitempty" yaml:"api_key,omitempty"`                 // Provider API key
	MaxSuggestions int    `json:"max_suggestions,omitempty" yaml:"max_suggestions,omitempty"` // AI bullets requested per role
	SuggestTimeout int    `json:"suggest_timeout,omitempty" yaml:"suggest_timeout,omitempty"` // Seconds allowed per role's suggestion fetch

	// Storage and transport
	DatabaseURL   string `json:"database_url,omitempty" yaml:"database_url,omitempty"`     // PostgreSQL connection URL
	LocalDB       string `json:"local_db,omitempty" yaml:"local_db,omitempty"`             // SQLite file for offline snapshots and the tracker
	RabbitMQURL   string `json:"rabbitmq_url,omitempty" yaml:"rabbitmq_url,omitempty"`     // AMQP broker for feedback events
	FeedbackQueue string `json:"feedback_queue,omitempty" yaml:"feedback_queue,omitempty"` // Queue feedback events are published to
	Port          int    `json:"port,omitempty" yaml:"port,omitempty"`                     // HTTP server port

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Use headless browser for SPA sites
	Verbose    bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`         // Print detailed debug information
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	if _, err := llm.ParseProvider(c.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.MaxSuggestions < 0 {
		return fmt.Errorf("config error: 'max_suggestions' must be non-negative")
	}
	if c.SuggestTimeout < 0 {
		return fmt.Errorf("config error: 'suggest_timeout' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.Roles != "" {
		if _, err := os.Stat(c.Roles); os.IsNotExist(err) {
			return fmt.Errorf("config error: roles file not found: %s", c.Roles)
		}
	}
	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&result.Roles, defaults.Roles},
		{&result.Job, defaults.Job},
		{&result.JobURL, defaults.JobURL},
		{&result.JobTitle, defaults.JobTitle},
		{&result.Company, defaults.Company},
		{&result.Provider, defaults.Provider},
		{&result.APIKey, defaults.APIKey},
		{&result.DatabaseURL, defaults.DatabaseURL},
		{&result.LocalDB, defaults.LocalDB},
		{&result.RabbitMQURL, defaults.RabbitMQURL},
		{&result.FeedbackQueue, defaults.FeedbackQueue},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}

	// Int fields: use default if zero
	if result.MaxSuggestions == 0 {
		result.MaxSuggestions = defaults.MaxSuggestions
	}
	if result.SuggestTimeout == 0 {
		result.SuggestTimeout = defaults.SuggestTimeout
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv fills empty connection settings from the environment:
// DATABASE_URL, RABBITMQ_URL and the selected provider's API key variable.
func (c *Config) ApplyEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.RabbitMQURL == "" {
		c.RabbitMQURL = os.Getenv("RABBITMQ_URL")
	}
	if c.APIKey == "" {
		if p, err := llm.ParseProvider(c.Provider); err == nil {
			c.APIKey = os.Getenv(p.APIKeyEnv())
		}
	}
}
