// Command indexctl rebuilds and queries catalog embeddings outside the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yoockh/studycounsel/config"
	"github.com/yoockh/studycounsel/internal/bootstrap"
	"github.com/yoockh/studycounsel/internal/logger"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/workers"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "indexctl",
		Short:         "Manage catalog embeddings",
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
	}
	root.AddCommand(newReindexCmd(), newSearchCmd())
	return root
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	app, err := bootstrap.Build(ctx, cfg, logger.New(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func validCollection(name string) error {
	for _, c := range models.IndexableCollections {
		if c == name {
			return nil
		}
	}
	return fmt.Errorf("unknown collection %q (want one of %s)", name, strings.Join(models.IndexableCollections, ", "))
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex [collection]",
		Short: "Embed every record of one or all catalog collections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols := models.IndexableCollections
			if len(args) == 1 {
				if err := validCollection(args[0]); err != nil {
					return err
				}
				cols = []string{args[0]}
			}
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				w := &workers.ReindexWorker{Embeddings: app.Embeddings, Collections: cols, Logger: app.Log}
				stats, err := w.RunOnce(ctx)
				if encErr := printJSON(cmd, stats); encErr != nil {
					return encErr
				}
				return err
			})
		},
	}
}

func newSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <collection> <query>",
		Short: "Run a similarity search against stored embeddings",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validCollection(args[0]); err != nil {
				return err
			}
			query := strings.Join(args[1:], " ")
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return printJSON(cmd, app.Embeddings.SimilaritySearch(ctx, query, args[0], limit))
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum results")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
