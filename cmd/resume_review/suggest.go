package main

import (
	"fmt"
	"time"

	"github.com/jonathan/resume-review/internal/config"
	"github.com/jonathan/resume-review/internal/experience"
	"github.com/jonathan/resume-review/internal/suggest"
	"github.com/jonathan/resume-review/internal/types"
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Fetch AI bullet suggestions for roles",
	Long:  "Asks the configured LLM for new bullets for the most recent roles (or one role by key), tailored to a job posting.",
	RunE:  runSuggest,
}

var (
	suggestRoles    string
	suggestJob      string
	suggestJobURL   string
	suggestRoleKey  string
	suggestRecent   int
	suggestProvider string
	suggestAPIKey   string
	suggestMax      int
)

func init() {
	suggestCmd.Flags().StringVarP(&suggestRoles, "roles", "r", "", "Path to roles JSON file")
	suggestCmd.Flags().StringVarP(&suggestJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	suggestCmd.Flags().StringVar(&suggestJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	suggestCmd.Flags().StringVar(&suggestRoleKey, "role-key", "", "Only suggest for this role")
	suggestCmd.Flags().IntVar(&suggestRecent, "recent", 3, "Number of most recent roles to suggest for")
	suggestCmd.Flags().StringVar(&suggestProvider, "provider", "", "LLM provider: gemini, openai or anthropic")
	suggestCmd.Flags().StringVar(&suggestAPIKey, "api-key", "", "Provider API key (defaults to the provider's env var)")
	suggestCmd.Flags().IntVar(&suggestMax, "max", 0, "Maximum suggestions per role")

	rootCmd.AddCommand(suggestCmd)
}

// suggestionTargets picks the roles to fetch for: one by key, or the n most recent
func suggestionTargets(roles []types.Role, key types.RoleKey, n int) ([]types.Role, error) {
	if key != "" {
		for _, r := range roles {
			if r.Key() == key {
				return []types.Role{r}, nil
			}
		}
		return nil, fmt.Errorf("no role with key %s", key)
	}
	return roles[:min(n, len(roles))], nil
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if cmd.Flags().Changed("roles") {
			c.Roles = suggestRoles
		}
		if cmd.Flags().Changed("job") {
			c.Job = suggestJob
		}
		if cmd.Flags().Changed("job-url") {
			c.JobURL = suggestJobURL
		}
		if cmd.Flags().Changed("provider") {
			c.Provider = suggestProvider
		}
		if cmd.Flags().Changed("api-key") {
			c.APIKey = suggestAPIKey
		}
		if cmd.Flags().Changed("max") {
			c.MaxSuggestions = suggestMax
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
	roles = experience.NormalizeRoles(roles, time.Now())

	targets, err := suggestionTargets(roles, types.RoleKey(suggestRoleKey), suggestRecent)
	if err != nil {
		return err
	}

	jobText, err := readJob(ctx, cfg)
	if err != nil {
		return err
	}

	suggester, _, release, err := newSuggester(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer release()

	reqs := make([]suggest.Request, len(targets))
	for i, r := range targets {
		reqs[i] = suggest.RequestForRole(r, jobText)
	}
	results := suggest.Prefetch(ctx, suggester, reqs, 0, time.Duration(cfg.SuggestTimeout)*time.Second)

	out := cmd.OutOrStdout()
	for _, r := range targets {
		res := results[r.Key()]
		_, _ = fmt.Fprintf(out, "%s @ %s [%s]\n", r.Title, r.Company, r.Key())
		if res.Err != nil {
			_, _ = fmt.Fprintf(out, "  suggestions unavailable: %v\n\n", res.Err)
			continue
		}
		for _, b := range res.Bullets {
			_, _ = fmt.Fprintf(out, "  + %s\n", b)
		}
		_, _ = fmt.Fprintln(out)
	}
	return nil
}
