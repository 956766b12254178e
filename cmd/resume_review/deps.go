package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-review/internal/ats"
	"github.com/jonathan/resume-review/internal/config"
	"github.com/jonathan/resume-review/internal/db"
	"github.com/jonathan/resume-review/internal/experience"
	"github.com/jonathan/resume-review/internal/feedback"
	"github.com/jonathan/resume-review/internal/ingestion"
	"github.com/jonathan/resume-review/internal/llm"
	"github.com/jonathan/resume-review/internal/localstore"
	"github.com/jonathan/resume-review/internal/schemas"
	"github.com/jonathan/resume-review/internal/session"
	"github.com/jonathan/resume-review/internal/suggest"
	"github.com/jonathan/resume-review/internal/types"
	"github.com/spf13/cobra"
)

// defaults apply when neither the config file nor a flag sets a value
var defaults = config.Config{
	Provider:       string(llm.ProviderGemini),
	MaxSuggestions: suggest.MaxSuggestions,
	SuggestTimeout: int(session.DefaultSuggestTimeout / time.Second),
	FeedbackQueue:  feedback.DefaultQueue,
	Port:           8080,
}

// loadConfig reads --config when given, merges defaults and the environment,
// and validates the result. Commands apply their own flag overrides first via
// override.
func loadConfig(override func(*config.Config)) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		slog.Debug("loaded config", "path", configPath)
	}
	if override != nil {
		override(&cfg)
	}
	if verbose {
		cfg.Verbose = true
	}

	cfg = cfg.MergeWithDefaults(defaults)
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadRoles validates a roles file against the roles schema and decodes it
func loadRoles(path string) ([]types.Role, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roles file: %w", err)
	}
	if err := schemas.ValidateRoles(data); err != nil {
		return nil, fmt.Errorf("invalid roles file %s: %w", path, err)
	}
	set, err := experience.ParseRoles(data)
	if err != nil {
		return nil, err
	}
	return set.Roles, nil
}

// readJob returns the cleaned job description from a file or URL
func readJob(ctx context.Context, cfg config.Config) (string, error) {
	switch {
	case cfg.Job != "":
		text, _, err := ingestion.JobFromFile(cfg.Job)
		return text, err
	case cfg.JobURL != "":
		text, _, err := ingestion.FetchJobDescription(ctx, cfg.JobURL, cfg.UseBrowser)
		return text, err
	default:
		return "", fmt.Errorf("either --job or --job-url must be provided")
	}
}

// newLLMClient creates the configured provider's client
func newLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set --api-key or %s)", provider.APIKeyEnv())
	}
	return llm.NewClient(ctx, llm.ConfigForProvider(provider), cfg.APIKey)
}

// newSuggester returns an LLM-backed suggester and keyword extractor, or a
// static suggester that suggests nothing and heuristic keywords when offline.
// The returned func releases the client.
func newSuggester(ctx context.Context, cfg config.Config, offline bool) (suggest.Suggester, *ats.Extractor, func(), error) {
	if offline {
		return &suggest.StaticSuggester{}, &ats.Extractor{}, func() {}, nil
	}
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	s := suggest.NewLLMSuggester(client, suggest.WithMaxSuggestions(cfg.MaxSuggestions))
	keywords := &ats.Extractor{Client: client, Logger: slog.Default()}
	return s, keywords, func() { _ = client.Close() }, nil
}

// reviewStore persists snapshots and feedback
type reviewStore interface {
	session.SnapshotStore
	feedback.Recorder
}

// openStore connects to PostgreSQL when a database URL is configured and falls
// back to the local SQLite file otherwise.
func openStore(ctx context.Context, cfg config.Config) (reviewStore, func(), error) {
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return database, database.Close, nil
	}

	store, err := openLocalStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func openLocalStore(ctx context.Context, cfg config.Config) (*localstore.Store, error) {
	path := cfg.LocalDB
	if path == "" {
		path = localstore.DefaultPath()
	}
	slog.Debug("opening local store", "path", path)
	return localstore.Open(ctx, path)
}

// writeJSON writes v as indented JSON to path, or to the command's output when
// path is empty.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
