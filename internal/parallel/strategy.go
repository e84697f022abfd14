package parallel

// Decision is the outcome of a serial-vs-parallel check.
type Decision int

const (
	Serial Decision = iota
	Parallel
)

func (d Decision) String() string {
	if d == Parallel {
		return "parallel"
	}
	return "serial"
}

// Thresholds holds the problem-size cut-offs below which a workload runs
// serially even when a pool is available.
type Thresholds struct {
	// Fibonacci: sequences shorter than this run serially.
	Fibonacci int
	// FibonacciMinChunk is the fewest terms handed to one worker. Every chunk
	// rebuilds the prefix before its range, so tiny chunks only add rework.
	FibonacciMinChunk int
	// Primes: limits below this run serially.
	Primes int
	// PrimesMinChunk is the smallest range handed to one worker.
	PrimesMinChunk int
	// Sort: arrays at or below this length sort serially.
	Sort int
	// SortPartition: a pivot partition recurses in parallel only when it is
	// longer than this.
	SortPartition int
}

// DefaultThresholds returns cut-offs tuned so that dispatch overhead stays
// small next to per-chunk compute.
//
// - Fibonacci below 100 terms finishes faster than a single dispatch, and
//   chunks under 1000 terms cost more in prefix rework than they save.
// - Trial division ranges under 5000 numbers do not amortize a worker hop.
// - Quicksort below 100000 elements, or a partition under 50000, sorts
//   faster in place than it can be forked.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Fibonacci:         100,
		FibonacciMinChunk: 1000,
		Primes:            10000,
		PrimesMinChunk:    5000,
		Sort:              100000,
		SortPartition:     50000,
	}
}

// DecideFibonacci picks the strategy for a sequence of n terms.
func (t Thresholds) DecideFibonacci(n int) Decision {
	if n < t.Fibonacci {
		return Serial
	}
	return Parallel
}

// DecidePrimes picks the strategy for a search up to limit.
func (t Thresholds) DecidePrimes(limit int) Decision {
	if limit < t.Primes {
		return Serial
	}
	return Parallel
}

// DecideSort picks the strategy for an array of length n at the given
// remaining recursion depth. Depth exhausted or small input is always serial.
func (t Thresholds) DecideSort(n, depth int) Decision {
	if n <= t.Sort || depth <= 0 {
		return Serial
	}
	return Parallel
}

// SortBranches reports which sides of a pivot split are large enough to
// recurse in parallel. Sides that are not must be sorted serially in the
// calling goroutine.
func (t Thresholds) SortBranches(left, right int) (parallelLeft, parallelRight bool) {
	return left > t.SortPartition, right > t.SortPartition
}
