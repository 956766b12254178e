package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/resume-review/internal/config"
	"github.com/jonathan/resume-review/internal/feedback"
	"github.com/jonathan/resume-review/internal/localstore"
	"github.com/jonathan/resume-review/internal/server"
	"github.com/jonathan/resume-review/internal/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes tailoring sessions over REST, with server-sent events
for AI suggestion arrivals. Snapshots and feedback go to PostgreSQL when DATABASE_URL is
set and to the local SQLite store otherwise; feedback is also published to RabbitMQ when
RABBITMQ_URL is set.`,
	RunE: runServe,
}

var (
	servePort     int
	serveOffline  bool
	serveProvider string
	serveLocalDB  string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "Serve without AI suggestions")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "LLM provider: gemini, openai or anthropic")
	serveCmd.Flags().StringVar(&serveLocalDB, "local-db", "", "SQLite file for snapshots, feedback and the tracker")
	rootCmd.AddCommand(serveCmd)
}

// feedbackSink fans feedback out to the log, the store and, when configured, the broker
func feedbackSink(cfg config.Config, store reviewStore) (feedback.Sink, func(), error) {
	sinks := feedback.MultiSink{
		feedback.LogSink{Logger: slog.Default()},
		feedback.StoreSink{Store: store},
	}
	if cfg.RabbitMQURL == "" {
		return sinks, func() {}, nil
	}

	amqpSink, err := feedback.NewAMQPSink(cfg.RabbitMQURL, cfg.FeedbackQueue)
	if err != nil {
		return nil, nil, err
	}
	return append(sinks, amqpSink), func() { _ = amqpSink.Close() }, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if cmd.Flags().Changed("port") {
			c.Port = servePort
		}
		if cmd.Flags().Changed("provider") {
			c.Provider = serveProvider
		}
		if cmd.Flags().Changed("local-db") {
			c.LocalDB = serveLocalDB
		}
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	suggester, keywords, release, err := newSuggester(ctx, cfg, serveOffline)
	if err != nil {
		return fmt.Errorf("failed to create suggester: %w", err)
	}
	defer release()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeStore()

	sink, closeSink, err := feedbackSink(cfg, store)
	if err != nil {
		return fmt.Errorf("failed to connect feedback broker: %w", err)
	}
	defer closeSink()

	emitter := feedback.NewEmitter(sink, feedback.DefaultBuffer, slog.Default())
	defer emitter.Close()

	manager := session.NewManager(suggester, emitter, session.Options{
		SuggestTimeout: time.Duration(cfg.SuggestTimeout) * time.Second,
		Logger:         slog.Default(),
	})

	srvCfg := server.Config{
		Port:      cfg.Port,
		Logger:    slog.Default(),
		Snapshots: store,
		Keywords:  keywords,
	}
	if local, ok := store.(*localstore.Store); ok {
		srvCfg.Tracker = local
	}

	return server.New(srvCfg, manager).Start(ctx)
}
