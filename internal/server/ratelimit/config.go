package ratelimit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	// IdleTTL is how long an unused bucket is kept; CleanupInterval is how
	// often idle buckets are swept.
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Rules           []Rule
}

// DefaultConfig is used when no configuration is given
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		IdleTTL:         time.Hour,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// LoadConfig builds the configuration from RATE_LIMIT_* environment variables.
// Malformed values keep their defaults and are reported in the returned error,
// so callers can log and continue.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	var errs []error

	lookup := func(key string, parse func(string) error) {
		raw, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		if err := parse(strings.TrimSpace(raw)); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", key, raw, err))
		}
	}

	lookup("RATE_LIMIT_ENABLED", func(v string) (err error) {
		cfg.Enabled, err = strconv.ParseBool(v)
		return err
	})
	lookup("RATE_LIMIT_DEFAULT_LIMIT", func(v string) error {
		n, err := strconv.Atoi(v)
		if err == nil && n < 0 {
			err = errors.New("must not be negative")
		}
		if err == nil {
			cfg.DefaultLimit = n
		}
		return err
	})
	for key, dst := range map[string]*time.Duration{
		"RATE_LIMIT_DEFAULT_WINDOW":   &cfg.DefaultWindow,
		"RATE_LIMIT_IDLE_TTL":         &cfg.IdleTTL,
		"RATE_LIMIT_CLEANUP_INTERVAL": &cfg.CleanupInterval,
	} {
		lookup(key, func(v string) error {
			d, err := time.ParseDuration(v)
			if err == nil && d <= 0 {
				err = errors.New("must be positive")
			}
			if err == nil {
				*dst = d
			}
			return err
		})
	}
	lookup("RATE_LIMIT_WHITELIST", func(v string) error {
		cfg.Whitelist = parseClientList(v)
		return nil
	})
	lookup("RATE_LIMIT_BLACKLIST", func(v string) error {
		cfg.Blacklist = parseClientList(v)
		return nil
	})

	return cfg, errors.Join(errs...)
}

// parseClientList parses a comma-separated list of client IDs into a set.
func parseClientList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			result[id] = true
		}
	}
	return result
}
