package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-review/internal/config"
	"github.com/jonathan/resume-review/internal/ingestion"
	"github.com/jonathan/resume-review/internal/schemas"
	"github.com/jonathan/resume-review/internal/types"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import work history or a job posting",
}

var importLinkedInCmd = &cobra.Command{
	Use:   "linkedin",
	Short: "Import roles from a LinkedIn profile URL or saved profile page",
	RunE:  runImportLinkedIn,
}

var importResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Import roles from a resume file (.pdf, .docx, .txt, .md) using an LLM",
	RunE:  runImportResume,
}

var importJobCmd = &cobra.Command{
	Use:   "job",
	Short: "Ingest a job posting from a text file or URL",
	Long:  "Ingest a job posting from either a text file or URL, clean the content, and output cleaned text with metadata.",
	RunE:  runImportJob,
}

var (
	importURL        string
	importHTMLFile   string
	importFile       string
	importOut        string
	importUseBrowser bool
	importProvider   string
	importAPIKey     string
)

func init() {
	importLinkedInCmd.Flags().StringVarP(&importURL, "url", "u", "", "Public LinkedIn profile URL")
	importLinkedInCmd.Flags().StringVar(&importHTMLFile, "html", "", "Saved LinkedIn profile HTML file")
	importLinkedInCmd.Flags().BoolVar(&importUseBrowser, "use-browser", false, "Use headless browser to render the profile (requires Chrome)")
	importLinkedInCmd.MarkFlagsMutuallyExclusive("url", "html")
	importLinkedInCmd.MarkFlagsOneRequired("url", "html")

	importResumeCmd.Flags().StringVarP(&importFile, "in", "i", "", "Resume file (required)")
	importResumeCmd.Flags().StringVar(&importProvider, "provider", "", "LLM provider: gemini, openai or anthropic")
	importResumeCmd.Flags().StringVar(&importAPIKey, "api-key", "", "Provider API key (defaults to the provider's env var)")
	if err := importResumeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	importJobCmd.Flags().StringVarP(&importFile, "text-file", "t", "", "Path to text file containing job posting")
	importJobCmd.Flags().StringVarP(&importURL, "url", "u", "", "URL to fetch job posting from")
	importJobCmd.Flags().BoolVar(&importUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	importJobCmd.MarkFlagsMutuallyExclusive("text-file", "url")
	importJobCmd.MarkFlagsOneRequired("text-file", "url")

	for _, c := range []*cobra.Command{importLinkedInCmd, importResumeCmd, importJobCmd} {
		c.Flags().StringVarP(&importOut, "out", "o", "", "Output path (default: stdout)")
		importCmd.AddCommand(c)
	}
	rootCmd.AddCommand(importCmd)
}

// writeRoles validates imported roles against the roles schema before writing them
func writeRoles(cmd *cobra.Command, set *types.RoleSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal roles: %w", err)
	}
	if err := schemas.ValidateRoles(data); err != nil {
		return fmt.Errorf("imported roles failed validation: %w", err)
	}
	if err := writeJSON(cmd, importOut, set); err != nil {
		return err
	}
	if importOut != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d roles\nOutput: %s\n", len(set.Roles), importOut)
	}
	return nil
}

func runImportLinkedIn(cmd *cobra.Command, _ []string) error {
	var (
		set *types.RoleSet
		err error
	)
	if importHTMLFile != "" {
		var content []byte
		content, err = os.ReadFile(importHTMLFile)
		if err != nil {
			return fmt.Errorf("failed to read HTML file: %w", err)
		}
		set, err = ingestion.ParseLinkedInHTML(string(content))
	} else {
		set, err = ingestion.FetchLinkedIn(cmd.Context(), importURL, importUseBrowser)
	}
	if err != nil {
		return fmt.Errorf("failed to import LinkedIn profile: %w", err)
	}
	return writeRoles(cmd, set)
}

func runImportResume(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if cmd.Flags().Changed("provider") {
			c.Provider = importProvider
		}
		if cmd.Flags().Changed("api-key") {
			c.APIKey = importAPIKey
		}
	})
	if err != nil {
		return err
	}

	text, err := ingestion.ExtractUploadText(importFile)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	client, err := newLLMClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	set, err := ingestion.ExtractRoles(cmd.Context(), client, text)
	if err != nil {
		return fmt.Errorf("failed to extract roles: %w", err)
	}
	return writeRoles(cmd, set)
}

func runImportJob(cmd *cobra.Command, _ []string) error {
	var (
		text     string
		metadata *ingestion.Metadata
		err      error
	)
	if importFile != "" {
		text, metadata, err = ingestion.JobFromFile(importFile)
	} else {
		text, metadata, err = ingestion.FetchJobDescription(cmd.Context(), importURL, importUseBrowser)
	}
	if err != nil {
		return fmt.Errorf("failed to ingest job posting: %w", err)
	}

	if importOut == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}

	textPath, metaPath, err := ingestion.SaveJob(importOut, text, metadata)
	if err != nil {
		return fmt.Errorf("failed to save job posting: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully ingested job posting\n")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleaned text: %s\n", textPath)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Metadata: %s\n", metaPath)
	return nil
}
