package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/config"
	"github.com/jonathan/resume-review/internal/db"
	"github.com/jonathan/resume-review/internal/observability"
	"github.com/jonathan/resume-review/internal/selection"
	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect saved tailoring snapshots",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots, newest first",
	RunE:  runSnapshotsList,
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsShow,
}

var (
	snapshotsLimit   int
	snapshotsJSON    bool
	snapshotsLocalDB string
)

func init() {
	snapshotsListCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "Maximum snapshots to list")
	snapshotsShowCmd.Flags().BoolVar(&snapshotsJSON, "json", false, "Print the snapshot as JSON")
	snapshotsCmd.PersistentFlags().StringVar(&snapshotsLocalDB, "local-db", "", "SQLite file (ignored when DATABASE_URL is set)")
	snapshotsCmd.AddCommand(snapshotsListCmd, snapshotsShowCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

func snapshotsConfig(cmd *cobra.Command) (config.Config, error) {
	return loadConfig(func(c *config.Config) {
		if cmd.Flags().Changed("local-db") {
			c.LocalDB = snapshotsLocalDB
		}
	})
}

func runSnapshotsList(cmd *cobra.Command, _ []string) error {
	cfg, err := snapshotsConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()
	_, _ = fmt.Fprintln(tw, "ID\tJOB\tCOMPANY\tBULLETS\tSCORE\tCREATED")

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		rows, err := database.ListSnapshots(ctx, snapshotsLimit)
		if err != nil {
			return err
		}
		for _, s := range rows {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", s.ID, s.JobTitle, s.Company, s.BulletTotal, formatScore(s.Score), s.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	}

	store, err := openLocalStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rows, err := store.ListSnapshots(ctx, snapshotsLimit)
	if err != nil {
		return err
	}
	for _, s := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", s.ID, s.JobTitle, s.Company, s.BulletTotal, formatScore(s.Score), s.CreatedAt)
	}
	return nil
}

func runSnapshotsShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid snapshot ID: %w", err)
	}
	cfg, err := snapshotsConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	snap, err := store.GetSnapshot(ctx, id)
	if err != nil {
		return err
	}
	if snapshotsJSON {
		return writeJSON(cmd, "", snap)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintTailored(snap.Roles, selection.MaxTotalBullets)
	printer.PrintScore(snap.ATS)
	return nil
}

// formatScore renders a 0-100 keyword score, or "-" when none was recorded
func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *score)
}
