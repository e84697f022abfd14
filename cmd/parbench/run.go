package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/headlands-org/go-parbench/internal/metrics"
	"github.com/headlands-org/go-parbench/internal/record"
	"github.com/headlands-org/go-parbench/internal/report"
	"github.com/headlands-org/go-parbench/pkg/parbench"
)

type profileFlags struct {
	cpuProfile   string
	blockProfile string
	mutexProfile string
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	prof := &profileFlags{}
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run [workers]",
		Short: "Run the benchmark suite and write a run record",
		Long: `Run times each workload serially and then in parallel, verifies that both
produce the same result, prints the timings and writes <log-dir>/<name>_results.json.

The optional workers argument is capped at the number of CPUs; omit it (or
pass 0) to use every CPU.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel, cmd.ErrOrStderr())

			workers := cfg.Workers
			if len(args) == 1 {
				workers, err = strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid worker count %q: %w", args[0], err)
				}
			}

			stop := setupProfiling(prof, logger)
			defer stop()

			r, err := parbench.Open(
				parbench.WithWorkers(workers),
				parbench.WithImplementation(cfg.Implementation),
				parbench.WithSizes(parbench.Sizes{
					Fibonacci:    cfg.Sizes.Fibonacci,
					Primes:       cfg.Sizes.Primes,
					Sort:         cfg.Sizes.Sort,
					SortMaxValue: cfg.Sizes.SortMaxValue,
					SortDepth:    cfg.Sizes.SortDepth,
				}),
				parbench.WithThresholds(cfg.ParallelThresholds()),
				parbench.WithSeed(cfg.Seed),
				parbench.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			defer r.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			rec, err := r.Run(ctx)
			if err != nil {
				logger.WithError(err).Error("benchmark run failed")
				return err
			}
			if err := printRun(cmd.OutOrStdout(), rec); err != nil {
				return err
			}

			if dryRun {
				return nil
			}
			path, err := record.Write(cfg.LogDir, rec)
			if err != nil {
				return err
			}
			logger.WithField("path", path).Info("run record written")
			return nil
		},
	}

	cmd.Flags().String("implementation", "", "Implementation name written to the record (overrides config)")
	cmd.Flags().Int64("seed", 0, "Seed for the random sort input (overrides config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print timings without writing a record")
	cmd.Flags().StringVar(&prof.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&prof.blockProfile, "blockprofile", "", "Write blocking profile to file")
	cmd.Flags().StringVar(&prof.mutexProfile, "mutexprofile", "", "Write mutex contention profile to file")
	return cmd
}

// printRun prints the timings of one run per workload.
func printRun(w io.Writer, rec record.RunRecord) error {
	p := &lineWriter{w: w}
	p.printf("\n%s benchmark (%d workers)\n", rec.Language, rec.WorkerCount())
	for _, wl := range record.Workloads {
		serial, okS := rec.Elapsed(wl, record.Serial)
		par, okP := rec.Elapsed(wl, record.Parallel)
		if !okS || !okP {
			continue
		}
		p.printf("\n%s:\n", wl)
		p.printf("  Serial Time:   %.4f seconds\n", serial)
		p.printf("  Parallel Time: %.4f seconds\n", par)
		p.printf("  Speedup:       %s\n", report.FormatSpeedup(metrics.Speedup(serial, par)))
	}
	return p.err
}

type lineWriter struct {
	w   io.Writer
	err error
}

func (p *lineWriter) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

// setupProfiling starts the requested profiles and returns a function that
// writes and stops them.
func setupProfiling(f *profileFlags, logger logrus.FieldLogger) func() {
	var cleanups []func()

	// CPU profiling
	if f.cpuProfile != "" {
		out, err := os.Create(f.cpuProfile)
		if err != nil {
			logger.WithError(err).Warn("could not create CPU profile")
		} else if err := pprof.StartCPUProfile(out); err != nil {
			logger.WithError(err).Warn("could not start CPU profile")
			out.Close()
		} else {
			logger.WithField("path", f.cpuProfile).Info("CPU profiling enabled")
			cleanups = append(cleanups, func() {
				pprof.StopCPUProfile()
				out.Close()
				logger.WithField("path", f.cpuProfile).Info("CPU profile written")
			})
		}
	}

	// Block profiling
	if f.blockProfile != "" {
		runtime.SetBlockProfileRate(1)
		cleanups = append(cleanups, func() {
			if err := writeProfile(f.blockProfile, "block"); err != nil {
				logger.WithError(err).Warn("could not write block profile")
			} else {
				logger.WithField("path", f.blockProfile).Info("block profile written")
			}
			runtime.SetBlockProfileRate(0)
		})
	}

	// Mutex profiling
	if f.mutexProfile != "" {
		runtime.SetMutexProfileFraction(1)
		cleanups = append(cleanups, func() {
			if err := writeProfile(f.mutexProfile, "mutex"); err != nil {
				logger.WithError(err).Warn("could not write mutex profile")
			} else {
				logger.WithField("path", f.mutexProfile).Info("mutex profile written")
			}
			runtime.SetMutexProfileFraction(0)
		})
	}

	return func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
}

// writeProfile writes a named profile to a file
func writeProfile(filename, profileName string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return pprof.Lookup(profileName).WriteTo(f, 0)
}
