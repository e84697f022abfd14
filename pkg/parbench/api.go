// Package parbench provides a high-level API for running the parallel
// benchmark suite and producing a run record.
package parbench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/headlands-org/go-parbench/internal/parallel"
	"github.com/headlands-org/go-parbench/internal/platform"
	"github.com/headlands-org/go-parbench/internal/record"
	"github.com/headlands-org/go-parbench/internal/workload"
)

// ErrVerification is returned when a parallel result differs from the serial
// result. The run is discarded rather than reported with a bad timing.
var ErrVerification = errors.New("parbench: parallel result does not match serial result")

// Sizes are the problem sizes for each workload.
type Sizes struct {
	// Fibonacci is the number of sequence terms.
	Fibonacci int
	// Primes is the inclusive upper bound of the prime search.
	Primes int
	// Sort is the number of elements to sort.
	Sort int
	// SortMaxValue bounds the random sort input to [1, SortMaxValue].
	SortMaxValue int
	// SortDepth limits how many times the parallel sort may fork.
	SortDepth int
}

// DefaultSizes returns the standard problem sizes.
func DefaultSizes() Sizes {
	return Sizes{
		Fibonacci:    100000,
		Primes:       100000,
		Sort:         1000000,
		SortMaxValue: 1000000,
		SortDepth:    2,
	}
}

// Options configures the runner
type Options struct {
	// Workers is the parallel worker count. Zero or negative uses every CPU;
	// larger values are capped at runtime.NumCPU.
	Workers int

	// Implementation names the record, e.g. "Go"
	Implementation string

	Sizes      Sizes
	Thresholds parallel.Thresholds

	// Seed makes the sort input reproducible
	Seed int64

	// Workloads selects what to run, in order. Empty runs all three.
	Workloads []record.Workload

	Logger logrus.FieldLogger
}

// Option is a functional option for configuring the runner
type Option func(*Options)

// WithWorkers sets the worker count
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithImplementation sets the implementation name written to the record
func WithImplementation(name string) Option {
	return func(o *Options) {
		o.Implementation = name
	}
}

// WithSizes sets the problem sizes
func WithSizes(s Sizes) Option {
	return func(o *Options) {
		o.Sizes = s
	}
}

// WithThresholds sets the serial/parallel cut-over thresholds
func WithThresholds(t parallel.Thresholds) Option {
	return func(o *Options) {
		o.Thresholds = t
	}
}

// WithSeed sets the random seed for the sort input
func WithSeed(seed int64) Option {
	return func(o *Options) {
		o.Seed = seed
	}
}

// WithWorkloads restricts the run to the given workloads
func WithWorkloads(w ...record.Workload) Option {
	return func(o *Options) {
		o.Workloads = w
	}
}

// WithLogger sets the logger for progress and timing messages
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Runner executes the benchmark suite. It owns a worker pool and adjusts
// GOMAXPROCS to the worker count until Close.
type Runner struct {
	options   Options
	workers   int
	pool      *parallel.Pool
	par       *workload.Parallel
	log       logrus.FieldLogger
	prevProcs int
	closeOnce sync.Once
}

// Open validates the options and starts the worker pool.
func Open(opts ...Option) (*Runner, error) {
	options := Options{
		Workers:        0, // 0 = every CPU
		Implementation: "Go",
		Sizes:          DefaultSizes(),
		Thresholds:     parallel.DefaultThresholds(),
		Seed:           42,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if len(options.Workloads) == 0 {
		options.Workloads = record.Workloads
	}
	if options.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		options.Logger = l
	}
	if record.CanonicalName(options.Implementation) == "" {
		return nil, fmt.Errorf("parbench: implementation name is empty")
	}
	s := options.Sizes
	for _, c := range []struct {
		name string
		n    int
	}{
		{"fibonacci", s.Fibonacci},
		{"primes", s.Primes},
		{"sort", s.Sort},
		{"sort_depth", s.SortDepth},
	} {
		if c.n < 0 {
			return nil, fmt.Errorf("%w: %s=%d", workload.ErrInvalidSize, c.name, c.n)
		}
	}
	if s.SortMaxValue < 1 {
		return nil, fmt.Errorf("%w: sort_max_value=%d", workload.ErrInvalidSize, s.SortMaxValue)
	}

	workers := platform.Workers(options.Workers)
	prev := runtime.GOMAXPROCS(workers)
	pool := parallel.NewPool(workers)

	r := &Runner{
		options:   options,
		workers:   workers,
		pool:      pool,
		par:       workload.NewParallel(pool, options.Thresholds),
		log:       options.Logger.WithField("implementation", options.Implementation),
		prevProcs: prev,
	}
	r.log.WithFields(logrus.Fields{
		"workers":   workers,
		"requested": options.Workers,
		"cpus":      runtime.NumCPU(),
	}).Info("runner started")
	return r, nil
}

// Workers returns the resolved worker count.
func (r *Runner) Workers() int {
	return r.workers
}

// Close stops the worker pool and restores GOMAXPROCS.
func (r *Runner) Close() error {
	r.closeOnce.Do(func() {
		r.pool.Close()
		runtime.GOMAXPROCS(r.prevProcs)
	})
	return nil
}

// Run executes each selected workload serially and then in parallel, checks
// that both produce the same output and returns the timings as a record.
// Cancellation is checked between measurements only.
func (r *Runner) Run(ctx context.Context) (record.RunRecord, error) {
	platformInfo := platform.Detect()
	workers := record.Count(r.workers)
	rec := record.RunRecord{
		Language:    r.options.Implementation,
		ThreadCount: &workers,
		CPUSeconds:  make(map[string]float64),
		Seed:        r.options.Seed,
		Platform:    &platformInfo,
	}

	for _, w := range r.options.Workloads {
		var err error
		switch w {
		case record.SequenceComputation:
			err = r.runFibonacci(ctx, &rec)
		case record.PrimalitySearch:
			err = r.runPrimes(ctx, &rec)
		case record.ComparisonSort:
			err = r.runSort(ctx, &rec)
		default:
			err = fmt.Errorf("parbench: unknown workload %v", w)
		}
		if err != nil {
			return record.RunRecord{}, fmt.Errorf("%s: %w", w, err)
		}
	}
	return rec, nil
}
