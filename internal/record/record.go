// Package record defines the per-run timing record shared by every
// benchmark implementation, and turns a directory of such records into a
// normalized table.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/headlands-org/go-parbench/internal/platform"
)

// ErrMalformed marks a record that failed structural validation.
var ErrMalformed = errors.New("record: malformed")

// Workload identifies one of the benchmarked computations.
type Workload int

const (
	SequenceComputation Workload = iota
	PrimalitySearch
	ComparisonSort
)

// Workloads lists every workload in report order.
var Workloads = []Workload{SequenceComputation, PrimalitySearch, ComparisonSort}

// String returns the display name used in tables.
func (w Workload) String() string {
	switch w {
	case SequenceComputation:
		return "Fibonacci"
	case PrimalitySearch:
		return "Primes"
	case ComparisonSort:
		return "QuickSort"
	default:
		return fmt.Sprintf("Workload(%d)", int(w))
	}
}

// Key returns the field prefix used in persisted records and exports.
func (w Workload) Key() string {
	switch w {
	case SequenceComputation:
		return "fibonacci"
	case PrimalitySearch:
		return "primes"
	case ComparisonSort:
		return "sort"
	default:
		return ""
	}
}

// Mode distinguishes the single-threaded and multi-worker variants.
type Mode int

const (
	Serial Mode = iota
	Parallel
)

// Modes lists both modes in report order.
var Modes = []Mode{Serial, Parallel}

func (m Mode) String() string {
	if m == Parallel {
		return "Parallel"
	}
	return "Serial"
}

// Key returns the field suffix used in persisted records.
func (m Mode) Key() string {
	if m == Parallel {
		return "parallel"
	}
	return "serial"
}

// FieldName returns the persisted field for a workload/mode pair, e.g.
// "primes_parallel".
func FieldName(w Workload, m Mode) string {
	return w.Key() + "_" + m.Key()
}

// Count is a worker or process count. Some implementations print counts as
// floating point ("4.000000"), so any integral JSON number is accepted.
type Count int

// maxCount bounds decoded counts to values a float64 holds exactly.
const maxCount = 1 << 53

// UnmarshalJSON accepts integral numbers in either integer or float notation.
func (c *Count) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("count: %w", err)
	}
	if f != math.Trunc(f) || math.Abs(f) > maxCount {
		return fmt.Errorf("%w: non-integral count %s", ErrMalformed, data)
	}
	*c = Count(f)
	return nil
}

// RunRecord is one implementation's timing results for a single invocation.
// Timings are wall-clock seconds; a nil timing means the workload was not run.
type RunRecord struct {
	Language     string `json:"language"`
	ThreadCount  *Count `json:"thread_count,omitempty"`
	ProcessCount *Count `json:"process_count,omitempty"`

	FibonacciSerial   *float64 `json:"fibonacci_serial,omitempty"`
	FibonacciParallel *float64 `json:"fibonacci_parallel,omitempty"`
	PrimesSerial      *float64 `json:"primes_serial,omitempty"`
	PrimesParallel    *float64 `json:"primes_parallel,omitempty"`
	SortSerial        *float64 `json:"sort_serial,omitempty"`
	SortParallel      *float64 `json:"sort_parallel,omitempty"`

	// CPUSeconds holds process CPU time per measurement, keyed by FieldName.
	CPUSeconds map[string]float64 `json:"cpu_seconds,omitempty"`
	Seed       int64              `json:"seed,omitempty"`
	Platform   *platform.Info     `json:"platform,omitempty"`
}

// WorkerCount resolves the worker count from thread_count, falling back to
// process_count, and to 0 when neither is present.
func (r *RunRecord) WorkerCount() int {
	switch {
	case r.ThreadCount != nil:
		return int(*r.ThreadCount)
	case r.ProcessCount != nil:
		return int(*r.ProcessCount)
	default:
		return 0
	}
}

func (r *RunRecord) field(w Workload, m Mode) **float64 {
	switch {
	case w == SequenceComputation && m == Serial:
		return &r.FibonacciSerial
	case w == SequenceComputation && m == Parallel:
		return &r.FibonacciParallel
	case w == PrimalitySearch && m == Serial:
		return &r.PrimesSerial
	case w == PrimalitySearch && m == Parallel:
		return &r.PrimesParallel
	case w == ComparisonSort && m == Serial:
		return &r.SortSerial
	case w == ComparisonSort && m == Parallel:
		return &r.SortParallel
	default:
		return nil
	}
}

// Elapsed returns the timing for a workload/mode pair, if recorded.
func (r *RunRecord) Elapsed(w Workload, m Mode) (float64, bool) {
	f := r.field(w, m)
	if f == nil || *f == nil {
		return 0, false
	}
	return **f, true
}

// SetElapsed records the timing for a workload/mode pair.
func (r *RunRecord) SetElapsed(w Workload, m Mode, seconds float64) {
	if f := r.field(w, m); f != nil {
		*f = &seconds
	}
}

// Validate checks the structural invariants of a decoded record.
func (r *RunRecord) Validate() error {
	if CanonicalName(r.Language) == "" {
		return fmt.Errorf("%w: missing language", ErrMalformed)
	}
	for _, w := range Workloads {
		for _, m := range Modes {
			v, ok := r.Elapsed(w, m)
			if !ok {
				continue
			}
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s=%v", ErrMalformed, FieldName(w, m), v)
			}
		}
	}
	if r.WorkerCount() < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrMalformed, r.WorkerCount())
	}
	return nil
}

// CanonicalName normalizes an implementation name for grouping: surrounding
// whitespace is trimmed and the text is put in Unicode NFC form, so names
// that differ only in character composition group together.
func CanonicalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
