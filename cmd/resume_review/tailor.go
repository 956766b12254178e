package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/resume-review/internal/config"
	"github.com/jonathan/resume-review/internal/observability"
	"github.com/jonathan/resume-review/internal/schemas"
	"github.com/jonathan/resume-review/internal/selection"
	"github.com/jonathan/resume-review/internal/session"
	"github.com/jonathan/resume-review/internal/types"
	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor bullets for a job posting and score the result",
	Long: `Starts a tailoring session for a job posting, activates the most recent roles with their
default bullets, waits for AI suggestions, applies any --pick selections, and prints the
tailored bullets with their ATS keyword score.

Configuration can be loaded from a file using --config. Command-line arguments override config file values.`,
	RunE: runTailor,
}

var (
	tailorRoles    string
	tailorJob      string
	tailorJobURL   string
	tailorTitle    string
	tailorCompany  string
	tailorRecent   int
	tailorPicks    []string
	tailorSummary  string
	tailorSkills   []string
	tailorOut      string
	tailorSave     bool
	tailorOffline  bool
	tailorBrowser  bool
	tailorProvider string
	tailorAPIKey   string
	tailorDBURL    string
	tailorLocalDB  string
)

func init() {
	tailorCmd.Flags().StringVarP(&tailorRoles, "roles", "r", "", "Path to roles JSON file")
	tailorCmd.Flags().StringVarP(&tailorJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	tailorCmd.Flags().StringVar(&tailorTitle, "title", "", "Job title")
	tailorCmd.Flags().StringVar(&tailorCompany, "company", "", "Company name")
	tailorCmd.Flags().IntVar(&tailorRecent, "recent", 3, "Number of most recent roles to activate")
	tailorCmd.Flags().StringSliceVar(&tailorPicks, "pick", nil, "Toggle a candidate, as role_key:index (repeatable)")
	tailorCmd.Flags().StringVar(&tailorSummary, "summary", "", "Narrative summary to store with the snapshot")
	tailorCmd.Flags().StringSliceVar(&tailorSkills, "skills", nil, "Skills to store with the snapshot")
	tailorCmd.Flags().StringVarP(&tailorOut, "out", "o", "", "Write the snapshot JSON to this path")
	tailorCmd.Flags().BoolVar(&tailorSave, "save", false, "Persist the snapshot (PostgreSQL when --db-url is set, else the local store)")
	tailorCmd.Flags().BoolVar(&tailorOffline, "offline", false, "Skip AI suggestions")
	tailorCmd.Flags().BoolVar(&tailorBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	tailorCmd.Flags().StringVar(&tailorProvider, "provider", "", "LLM provider: gemini, openai or anthropic")
	tailorCmd.Flags().StringVar(&tailorAPIKey, "api-key", "", "Provider API key (defaults to the provider's env var)")
	tailorCmd.Flags().StringVar(&tailorDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	tailorCmd.Flags().StringVar(&tailorLocalDB, "local-db", "", "SQLite file for saved snapshots (default ~/.resume_review/review.db)")

	rootCmd.AddCommand(tailorCmd)
}

// parsePick parses a role_key:index selection
func parsePick(s string) (types.RoleKey, int, error) {
	key, idx, ok := strings.Cut(s, ":")
	if !ok || key == "" {
		return "", 0, fmt.Errorf("invalid pick %q: want role_key:index", s)
	}
	var index int
	if _, err := fmt.Sscanf(idx, "%d", &index); err != nil || index < 0 {
		return "", 0, fmt.Errorf("invalid pick %q: index must be a non-negative integer", s)
	}
	return types.RoleKey(key), index, nil
}

// applyPicks toggles each pick in order. Budget rejections are reported and skipped.
func applyPicks(sess *session.Session, picks []string) error {
	for _, p := range picks {
		key, index, err := parsePick(p)
		if err != nil {
			return err
		}
		outcome, err := sess.Toggle(key, index)
		if err != nil {
			return fmt.Errorf("pick %s: %w", p, err)
		}
		if outcome == selection.RejectedBudget {
			slog.Warn("pick skipped: bullet budget reached", "pick", p, "max", selection.MaxTotalBullets)
		}
	}
	return nil
}

func runTailor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		flags := cmd.Flags()
		for name, dst := range map[string]*string{
			"roles":    &c.Roles,
			"job":      &c.Job,
			"job-url":  &c.JobURL,
			"title":    &c.JobTitle,
			"company":  &c.Company,
			"provider": &c.Provider,
			"api-key":  &c.APIKey,
			"db-url":   &c.DatabaseURL,
			"local-db": &c.LocalDB,
		} {
			if flags.Changed(name) {
				*dst, _ = flags.GetString(name)
			}
		}
		if flags.Changed("use-browser") {
			c.UseBrowser = tailorBrowser
		}
	})
	if err != nil {
		return err
	}
	if cfg.Roles == "" {
		return fmt.Errorf("--roles is required")
	}

	ctx := cmd.Context()
	roles, err := loadRoles(cfg.Roles)
	if err != nil {
		return err
	}
	jobText, err := readJob(ctx, cfg)
	if err != nil {
		return err
	}

	suggester, keywords, release, err := newSuggester(ctx, cfg, tailorOffline)
	if err != nil {
		return err
	}
	defer release()

	sess := session.New(session.Params{
		JobTitle:       cfg.JobTitle,
		Company:        cfg.Company,
		JobDescription: jobText,
		Roles:          roles,
		Keywords:       keywords.Keywords(ctx, jobText),
	}, suggester, nil, session.Options{
		SuggestTimeout: time.Duration(cfg.SuggestTimeout) * time.Second,
		Logger:         slog.Default(),
	})
	defer sess.Close()

	activated, err := sess.ActivateRecent(tailorRecent)
	if err != nil {
		return err
	}
	sess.Wait()
	slog.Debug("roles activated", "count", len(activated))

	if err := applyPicks(sess, tailorPicks); err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if cfg.Verbose {
		view := sess.View()
		for _, rv := range view.Roles {
			if rv.Active {
				printer.PrintCandidates(fmt.Sprintf("%s @ %s [%s]", rv.Title, rv.Company, rv.RoleKey), rv.Candidates)
			}
		}
	}

	snap := sess.Snapshot(tailorSummary, tailorSkills)
	printer.PrintTailored(snap.Roles, selection.MaxTotalBullets)
	printer.PrintScore(snap.ATS)

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := schemas.ValidateSnapshot(data); err != nil {
		return fmt.Errorf("snapshot failed validation: %w", err)
	}

	if tailorOut != "" {
		if err := writeJSON(cmd, tailorOut, snap); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Snapshot: %s\n", tailorOut)
	}

	if tailorSave {
		store, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		if err := store.SaveSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s\n", snap.ID)
	}
	return nil
}
