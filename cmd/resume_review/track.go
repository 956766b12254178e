package main

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-review/internal/config"
	"github.com/jonathan/resume-review/internal/localstore"
	"github.com/jonathan/resume-review/internal/observability"
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track job applications in the local store",
}

var trackAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Start tracking a job application",
	RunE:  runTrackAdd,
}

var trackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked applications, most recently updated first",
	RunE:  runTrackList,
}

var trackUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an application's status or notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrackUpdate,
}

var (
	trackInput   localstore.AddApplicationInput
	trackStatus  string
	trackNotes   string
	trackLimit   int
	trackLocalDB string
)

func init() {
	trackAddCmd.Flags().StringVar(&trackInput.Title, "title", "", "Job title (required)")
	trackAddCmd.Flags().StringVar(&trackInput.Company, "company", "", "Company (required)")
	trackAddCmd.Flags().StringVar(&trackInput.URL, "url", "", "Job posting URL")
	trackAddCmd.Flags().StringVar(&trackInput.Status, "status", "", "saved, applied, interview, offer or rejected (default saved)")
	trackAddCmd.Flags().StringVar(&trackInput.Notes, "notes", "", "Free-form notes")
	trackAddCmd.Flags().StringVar(&trackInput.SnapshotID, "snapshot", "", "ID of the tailored snapshot sent with this application")

	trackListCmd.Flags().StringVar(&trackStatus, "status", "", "Only list applications with this status")
	trackListCmd.Flags().IntVar(&trackLimit, "limit", 20, "Maximum applications to list")

	trackUpdateCmd.Flags().StringVar(&trackStatus, "status", "", "New status")
	trackUpdateCmd.Flags().StringVar(&trackNotes, "notes", "", "Replacement notes")

	trackCmd.PersistentFlags().StringVar(&trackLocalDB, "local-db", "", "SQLite file (default ~/.resume_review/review.db)")
	trackCmd.AddCommand(trackAddCmd, trackListCmd, trackUpdateCmd)
	rootCmd.AddCommand(trackCmd)
}

func openTracker(cmd *cobra.Command) (*localstore.Store, error) {
	cfg, err := loadConfig(func(c *config.Config) {
		if cmd.Flags().Changed("local-db") {
			c.LocalDB = trackLocalDB
		}
	})
	if err != nil {
		return nil, err
	}
	return openLocalStore(cmd.Context(), cfg)
}

func runTrackAdd(cmd *cobra.Command, _ []string) error {
	if err := validator.New().Struct(trackInput); err != nil {
		return fmt.Errorf("invalid application: %w", err)
	}

	store, err := openTracker(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	app, err := store.AddApplication(cmd.Context(), trackInput)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Tracking #%d %s @ %s (%s)\n", app.ID, app.Title, app.Company, app.Status)
	return nil
}

func runTrackList(cmd *cobra.Command, _ []string) error {
	store, err := openTracker(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := store.ListApplications(cmd.Context(), trackStatus, trackLimit)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintApplications(result.Applications, result.Total)
	return nil
}

func runTrackUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid application id %q", args[0])
	}

	store, err := openTracker(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	app, err := store.UpdateApplicationStatus(cmd.Context(), id, trackStatus, trackNotes)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d: %s\n", app.ID, app.Status)
	return nil
}
