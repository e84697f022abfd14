package parbench

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/headlands-org/go-parbench/internal/metrics"
	"github.com/headlands-org/go-parbench/internal/parallel"
	"github.com/headlands-org/go-parbench/internal/record"
	"github.com/headlands-org/go-parbench/internal/report"
	pb "github.com/headlands-org/go-parbench/pkg/parbench"
)

// Workload identifies one benchmarked computation.
type Workload = record.Workload

const (
	SequenceComputation = record.SequenceComputation
	PrimalitySearch     = record.PrimalitySearch
	ComparisonSort      = record.ComparisonSort
)

// Workloads lists every workload in report order.
var Workloads = record.Workloads

// Mode distinguishes serial and parallel timings.
type Mode = record.Mode

const (
	Serial   = record.Serial
	Parallel = record.Parallel
)

// Record is one implementation's persisted timing results.
type Record = record.RunRecord

// Metrics is the full set of views derived from a directory of records.
type Metrics = metrics.ComparisonMetrics

// Thresholds control when each workload switches from serial to parallel.
type Thresholds = parallel.Thresholds

// Sizes are the per-workload problem sizes.
type Sizes = pb.Sizes

// Option configures the runner.
type Option = pb.Option

// Options helpers for configuring the runner.
var (
	WithWorkers        = pb.WithWorkers
	WithImplementation = pb.WithImplementation
	WithSizes          = pb.WithSizes
	WithThresholds     = pb.WithThresholds
	WithSeed           = pb.WithSeed
	WithWorkloads      = pb.WithWorkloads
	WithLogger         = pb.WithLogger
	DefaultSizes       = pb.DefaultSizes
	DefaultThresholds  = parallel.DefaultThresholds
)

// Speedup returns serial/parallel, or +Inf when the parallel time is zero.
var Speedup = metrics.Speedup

// FormatSpeedup renders a speedup factor, spelling out the infinite case.
var FormatSpeedup = report.FormatSpeedup

// Runner wraps the underlying benchmark runner and exposes a simplified API.
type Runner struct {
	inner *pb.Runner
}

// Open starts a runner with its worker pool.
func Open(opts ...Option) (*Runner, error) {
	r, err := pb.Open(opts...)
	if err != nil {
		return nil, err
	}
	return &Runner{inner: r}, nil
}

// Close releases the worker pool.
func (r *Runner) Close() error {
	return r.inner.Close()
}

// Workers reports the resolved worker count.
func (r *Runner) Workers() int {
	return r.inner.Workers()
}

// Run executes the suite and returns the timings.
func (r *Runner) Run(ctx context.Context) (Record, error) {
	return r.inner.Run(ctx)
}

// RunAndWrite executes the suite and stores the record in dir, returning the
// record path.
func (r *Runner) RunAndWrite(ctx context.Context, dir string) (Record, string, error) {
	rec, err := r.inner.Run(ctx)
	if err != nil {
		return Record{}, "", err
	}
	path, err := record.Write(dir, rec)
	if err != nil {
		return Record{}, "", fmt.Errorf("write record: %w", err)
	}
	return rec, path, nil
}

// AggregateOptions configures Aggregate.
type AggregateOptions struct {
	// Baseline names the reference implementation (default "Python").
	Baseline string
	// Pairings maps message-passing variant names to their base names.
	Pairings map[string]string
	// Suffix pairs remaining variants by name (default " MPI"); "-" disables it.
	Suffix string
	// RecordSuffix selects record files by name (default ".json").
	RecordSuffix string
	Logger       logrus.FieldLogger
}

// Aggregate loads every record in dir and derives the comparison views.
// Malformed records are skipped and logged.
func Aggregate(dir string, opts AggregateOptions) (Metrics, error) {
	var loadOpts []record.LoadOption
	if opts.Logger != nil {
		loadOpts = append(loadOpts, record.WithLogger(opts.Logger))
	}
	if opts.RecordSuffix != "" {
		loadOpts = append(loadOpts, record.WithSuffix(opts.RecordSuffix))
	}
	set, err := record.Load(dir, loadOpts...)
	if err != nil {
		return Metrics{}, err
	}

	mo := metrics.DefaultOptions()
	if opts.Baseline != "" {
		mo.Baseline = opts.Baseline
	}
	switch opts.Suffix {
	case "":
	case "-":
		mo.Pairings.Suffix = ""
	default:
		mo.Pairings.Suffix = opts.Suffix
	}
	mo.Pairings.Explicit = opts.Pairings
	return metrics.Aggregate(set.Table(), mo), nil
}
