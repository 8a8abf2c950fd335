package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jengzang/maritime-metrics-go/internal/classify"
	"github.com/jengzang/maritime-metrics-go/internal/config"
	"github.com/jengzang/maritime-metrics-go/internal/ingest"
	"github.com/jengzang/maritime-metrics-go/internal/middleware"
	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/internal/service"
	"github.com/jengzang/maritime-metrics-go/pkg/metrics"
)

func importCmd(opts *options) *cobra.Command {
	var (
		dryRun  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the stored dataset with a tabular telemetry file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, e *env) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()

				if workers <= 0 {
					workers = e.cfg.ImportWorkers
				}
				classifier := classify.NewClassifier(e.cfg.Thresholds.Classifier())
				pipeline := ingest.NewPipeline(classifier, e.store, workers, e.log)

				if dryRun {
					batch, err := pipeline.Stage(ctx, f)
					if err != nil {
						return err
					}
					return printJSON(e.out, batch.Result)
				}

				svc := service.NewImportService(pipeline, e.batches, newMetrics(), e.log)
				result, err := svc.Import(ctx, args[0], f)
				if err != nil {
					return err
				}
				return printJSON(e.out, result)
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify and report without touching the store")
	cmd.Flags().IntVar(&workers, "workers", 0, "Classification workers (default IMPORT_WORKERS)")
	return cmd
}

func historyCmd(opts *options) *cobra.Command {
	var filter models.ImportBatchFilter

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past imports, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, e *env) error {
				svc := service.NewImportService(nil, e.batches, newMetrics(), e.log)
				batches, err := svc.History(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(e.out, batches)
			})
		},
	}

	cmd.Flags().StringVar(&filter.Status, "status", "", "Only list imports with this status (completed, failed)")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of entries (0 uses the service default)")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Number of newest entries to skip")
	return cmd
}

func vesselsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "vessels",
		Short: "List the stored vessel codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, e *env) error {
				codes, err := service.NewWaypointService(e.store).VesselCodes(ctx)
				if err != nil {
					return err
				}
				return printJSON(e.out, codes)
			})
		},
	}
}

func frequenciesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "frequencies VESSEL",
		Short: "Count missing, below-zero, outlier, invalid and total waypoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStats(cmd, opts, func(ctx context.Context, e *env, svc *service.StatsService) error {
				frequencies, err := svc.ProblemFrequencies(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(e.out, frequencies)
			})
		},
	}
}

func medianCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "median VESSEL",
		Short: "Median absolute difference between actual and proposed speed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStats(cmd, opts, func(ctx context.Context, e *env, svc *service.StatsService) error {
				median, err := svc.MedianSpeedDifference(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(e.out, strconv.FormatFloat(median, 'f', -1, 64))
				return err
			})
		},
	}
}

func compareCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare VESSEL1 VESSEL2",
		Short: "Print the vessel with the smaller median speed difference, or equal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStats(cmd, opts, func(ctx context.Context, e *env, svc *service.StatsService) error {
				result, err := svc.CompareCompliance(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(e.out, result)
				return err
			})
		},
	}
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary VESSEL",
		Short: "Five-number summary of the absolute speed difference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStats(cmd, opts, func(ctx context.Context, e *env, svc *service.StatsService) error {
				summary, err := svc.SpeedDeviationSummary(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(e.out, summary)
			})
		},
	}
}

// outlierQuery selects one of the threshold queries of the stats service
type outlierQuery func(svc *service.StatsService) func(context.Context, string, float64) ([]models.Waypoint, error)

func outliersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outliers",
		Short: "Invalid waypoints whose relative deviation exceeds a threshold",
	}

	query := func(use, short string, selectQuery outlierQuery) *cobra.Command {
		return &cobra.Command{
			Use:   use + " VESSEL THRESHOLD",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				threshold, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("invalid threshold %q: %w", args[1], err)
				}
				return withStats(cmd, opts, func(ctx context.Context, e *env, svc *service.StatsService) error {
					waypoints, err := selectQuery(svc)(ctx, args[0], threshold)
					if err != nil {
						return err
					}
					return printJSON(e.out, waypoints)
				})
			},
		}
	}

	cmd.AddCommand(
		query("speed", "|actual - proposed| / proposed > THRESHOLD", func(svc *service.StatsService) func(context.Context, string, float64) ([]models.Waypoint, error) {
			return svc.SpeedOutliers
		}),
		query("fuel", "|fuel - predicted| / predicted > THRESHOLD", func(svc *service.StatsService) func(context.Context, string, float64) ([]models.Waypoint, error) {
			return svc.FuelOutliers
		}),
	)
	return cmd
}

func groupsCmd(opts *options) *cobra.Command {
	var brief bool

	cmd := &cobra.Command{
		Use:   "groups VESSEL PROBLEM",
		Short: "Consecutive runs of waypoints sharing a problem (missing, belowzero, outlier)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStats(cmd, opts, func(ctx context.Context, e *env, svc *service.StatsService) error {
				groups, err := svc.ConsecutiveProblemGroups(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if brief {
					for i := range groups {
						groups[i].Waypoints = nil
					}
				}
				return printJSON(e.out, groups)
			})
		},
	}

	cmd.Flags().BoolVar(&brief, "brief", false, "Omit the waypoints of each group")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the import endpoint, signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := middleware.IssueToken([]byte(cfg.JWTSecret), subject, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func withStats(cmd *cobra.Command, opts *options, fn func(ctx context.Context, e *env, svc *service.StatsService) error) error {
	return withStore(cmd, opts, func(ctx context.Context, e *env) error {
		svc := service.NewStatsService(e.store, e.cfg.Thresholds.GroupWindow, newMetrics(), e.log)
		return fn(ctx, e, svc)
	})
}

// newMetrics returns metrics on a private registry; the CLI does not expose them
func newMetrics() *metrics.Metrics {
	return metrics.NewMetrics("metricsctl", prometheus.NewRegistry())
}
