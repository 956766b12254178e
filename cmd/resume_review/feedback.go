package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/config"
	"github.com/jonathan/resume-review/internal/db"
	"github.com/jonathan/resume-review/internal/feedback"
	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Consume and inspect bullet feedback",
}

var feedbackConsumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Record feedback events from RabbitMQ until interrupted",
	RunE:  runFeedbackConsume,
}

var feedbackStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show up/down vote counts",
	Long:  "Shows vote totals from the local store, or for one session from PostgreSQL with --session.",
	RunE:  runFeedbackStats,
}

var (
	feedbackQueue   string
	feedbackSession string
	feedbackLocalDB string
)

func init() {
	feedbackConsumeCmd.Flags().StringVar(&feedbackQueue, "queue", "", "Queue to consume (default bullet_feedback)")
	feedbackStatsCmd.Flags().StringVar(&feedbackSession, "session", "", "Session ID to tally (requires DATABASE_URL)")
	feedbackCmd.PersistentFlags().StringVar(&feedbackLocalDB, "local-db", "", "SQLite file (ignored when DATABASE_URL is set)")
	feedbackCmd.AddCommand(feedbackConsumeCmd, feedbackStatsCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedbackConsume(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if cmd.Flags().Changed("queue") {
			c.FeedbackQueue = feedbackQueue
		}
		if cmd.Flags().Changed("local-db") {
			c.LocalDB = feedbackLocalDB
		}
	})
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL environment variable is required")
	}

	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sink := feedback.MultiSink{
		feedback.LogSink{Logger: slog.Default()},
		feedback.StoreSink{Store: store},
	}
	slog.Info("consuming feedback", "queue", cfg.FeedbackQueue)
	return feedback.Consume(ctx, cfg.RabbitMQURL, cfg.FeedbackQueue, sink)
}

func runFeedbackStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if cmd.Flags().Changed("local-db") {
			c.LocalDB = feedbackLocalDB
		}
	})
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if feedbackSession != "" {
		sessionID, err := uuid.Parse(feedbackSession)
		if err != nil {
			return fmt.Errorf("invalid session ID: %w", err)
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for --session")
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		tally, err := database.TallyFeedback(ctx, sessionID)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Session %s: %d up, %d down\n", sessionID, tally.Up, tally.Down)
		return nil
	}

	store, err := openLocalStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	up, down, err := store.FeedbackCounts(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "All sessions: %d up, %d down\n", up, down)
	return nil
}
