// Package main provides metricsctl, the operator command line for the maritime metrics store.
// It runs imports and statistics directly against the configured store without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jengzang/maritime-metrics-go/internal/config"
	"github.com/jengzang/maritime-metrics-go/internal/repository"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
)

const (
	Version = "0.1.0"
	appName = "metricsctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the persistent flags shared by every subcommand
type options struct {
	driver   string
	dbPath   string
	logLevel string
}

// env is the opened store and configuration a subcommand runs against
type env struct {
	cfg     *config.Config
	log     logger.Logger
	store   repository.WaypointStore
	batches repository.ImportBatchLog
	out     io.Writer
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Vessel telemetry import and statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "Store driver (sqlite, postgres); overrides STORE_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path; overrides DB_PATH")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		importCmd(opts),
		historyCmd(opts),
		vesselsCmd(opts),
		frequenciesCmd(opts),
		medianCmd(opts),
		compareCmd(opts),
		summaryCmd(opts),
		outliersCmd(opts),
		groupsCmd(opts),
		tokenCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

// withStore loads the configuration, opens the store and runs fn against it
func withStore(cmd *cobra.Command, opts *options, fn func(ctx context.Context, e *env) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.driver != "" {
		cfg.StoreDriver = opts.driver
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}

	log := logger.NewLogger(opts.logLevel)
	defer log.Sync()

	stores, err := repository.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer stores.Close()

	return fn(cmd.Context(), &env{
		cfg:     cfg,
		log:     log,
		store:   stores.Waypoints,
		batches: stores.Batches,
		out:     cmd.OutOrStdout(),
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
