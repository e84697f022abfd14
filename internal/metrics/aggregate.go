package metrics

import (
	"github.com/headlands-org/go-parbench/internal/record"
)

// DefaultBaseline is the implementation other implementations are compared to.
const DefaultBaseline = "Python"

// ModeRatios holds baseline/this ratios for both modes of one workload.
type ModeRatios struct {
	Serial   float64
	Parallel float64
}

// complete reports whether impl has both modes of every workload.
func complete(t record.Table, impl string) (map[record.Workload]ModeTimes, bool) {
	out := make(map[record.Workload]ModeTimes, len(record.Workloads))
	for _, w := range record.Workloads {
		mt, ok := times(t, impl, w)
		if !ok {
			return nil, false
		}
		out[w] = mt
	}
	return out, true
}

// RelativeToBaseline returns baseline_time / this_time per workload and mode
// for every non-baseline implementation with complete data. Values above 1
// mean faster than the baseline. The view is empty when the baseline itself
// is missing or incomplete.
func RelativeToBaseline(t record.Table, baseline string) map[string]map[record.Workload]ModeRatios {
	out := make(map[string]map[record.Workload]ModeRatios)
	baseline = record.CanonicalName(baseline)
	base, ok := complete(t, baseline)
	if !ok {
		return out
	}
	for _, impl := range t.Implementations() {
		if impl == baseline {
			continue
		}
		mine, ok := complete(t, impl)
		if !ok {
			continue
		}
		ratios := make(map[record.Workload]ModeRatios, len(mine))
		for w, mt := range mine {
			ratios[w] = ModeRatios{
				Serial:   Ratio(base[w].Serial, mt.Serial),
				Parallel: Ratio(base[w].Parallel, mt.Parallel),
			}
		}
		out[impl] = ratios
	}
	return out
}

// Options configures Aggregate.
type Options struct {
	Baseline string
	Pairings Pairings
}

// DefaultOptions compares against Python and pairs " MPI" variants by suffix.
func DefaultOptions() Options {
	return Options{
		Baseline: DefaultBaseline,
		Pairings: Pairings{Suffix: DefaultSuffix},
	}
}

// ComparisonMetrics is the complete set of derived views.
type ComparisonMetrics struct {
	Baseline           string
	Implementations    []string
	Workers            map[string]int
	Rankings           Rankings
	AbsoluteTimes      map[string]map[record.Workload]ModeTimes
	Speedups           map[string]map[record.Workload]float64
	Pairs              map[string]string
	MessagePassing     map[string]MessagePassing
	RelativeToBaseline map[string]map[record.Workload]ModeRatios
}

// Aggregate derives every view from t. Missing data only removes the affected
// implementation from the affected view.
func Aggregate(t record.Table, opts Options) ComparisonMetrics {
	impls := t.Implementations()
	pairs := opts.Pairings.Resolve(impls)
	return ComparisonMetrics{
		Baseline:           record.CanonicalName(opts.Baseline),
		Implementations:    impls,
		Workers:            WorkerCounts(t),
		Rankings:           Rank(t),
		AbsoluteTimes:      AbsoluteTimes(t),
		Speedups:           Speedups(t),
		Pairs:              pairs,
		MessagePassing:     CompareMessagePassing(t, pairs),
		RelativeToBaseline: RelativeToBaseline(t, opts.Baseline),
	}
}
