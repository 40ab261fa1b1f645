package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thereayou/microblog/cmd/server"
	"github.com/thereayou/microblog/internal/config"
	"github.com/thereayou/microblog/internal/search"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "microblog",
		Short:         "Microblog API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			setupLogger(cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return nil
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				srv, err := server.NewServer(ctx, cfg)
				if err != nil {
					return err
				}
				defer srv.Close()

				return srv.Run(ctx)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := server.Connect(cfg)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := db.Migrate(); err != nil {
					return err
				}
				slog.Info("migrations applied")
				return nil
			},
		},
		reindexCmd(func() *config.Config { return cfg }),
	)

	return root
}

// reindexCmd получает конфиг лениво: он загружается в PersistentPreRunE
func reindexCmd(getConfig func() *config.Config) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Push every post into the search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			if cfg.Search.ElasticsearchURL == "" {
				return search.ErrNotConfigured
			}

			db, err := server.Connect(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.ReindexPosts(cmd.Context(), batchSize)
			if err != nil {
				return err
			}
			slog.Info("posts reindexed", "count", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "posts per batch")
	return cmd
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
