package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/headlands-org/go-parbench/internal/metrics"
	"github.com/headlands-org/go-parbench/internal/record"
	"github.com/headlands-org/go-parbench/internal/report"
)

func newAggregateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate run records into rankings, speedups and reports",
		Long: `Aggregate reads every run record in the log directory whose name ends in
the record suffix (default ".json"), skipping and
logging malformed files, prints summary statistics and writes the consolidated
metrics JSON, CSV, Go benchmark-format and SVG chart outputs. An empty output
path disables that output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel, cmd.ErrOrStderr())

			set, err := record.Load(cfg.LogDir,
				record.WithLogger(logger),
				record.WithSuffix(cfg.RecordSuffix),
			)
			if err != nil {
				return err
			}
			if len(set.Skipped) > 0 {
				logger.WithField("count", len(set.Skipped)).Warn("some run records were skipped")
			}

			table := set.Table()
			m := metrics.Aggregate(table, cfg.MetricsOptions())
			if err := report.WriteSummary(cmd.OutOrStdout(), m); err != nil {
				return err
			}

			if cfg.Output != "" {
				if err := metrics.WriteFile(cfg.Output, m); err != nil {
					return err
				}
				logger.WithField("path", cfg.Output).Info("metrics written")
			}
			if cfg.CSV != "" {
				if err := report.WriteCSV(cfg.CSV, table); err != nil {
					return err
				}
				logger.WithField("path", cfg.CSV).Info("csv written")
			}
			if cfg.Benchfmt != "" {
				if err := report.WriteBenchfmt(cfg.Benchfmt, table); err != nil {
					return err
				}
				logger.WithField("path", cfg.Benchfmt).Info("benchmark-format results written")
			}
			if cfg.ChartsDir != "" {
				paths, err := report.WriteCharts(cfg.ChartsDir, m)
				if err != nil {
					return err
				}
				logger.WithFields(logrus.Fields{"dir": cfg.ChartsDir, "charts": len(paths)}).Info("charts written")
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "Consolidated metrics JSON path (overrides config)")
	cmd.Flags().String("csv", "", "CSV output path (overrides config)")
	cmd.Flags().String("benchfmt", "", "Go benchmark-format output path (overrides config)")
	cmd.Flags().String("charts-dir", "", "SVG chart directory (overrides config)")
	cmd.Flags().String("baseline", "", "Baseline implementation name (overrides config)")
	cmd.Flags().String("record-suffix", "", "Only read record files ending in this suffix (overrides config)")
	return cmd
}
