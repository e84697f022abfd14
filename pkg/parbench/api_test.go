package parbench

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/headlands-org/go-parbench/internal/parallel"
	"github.com/headlands-org/go-parbench/internal/record"
	"github.com/headlands-org/go-parbench/internal/workload"
)

func smallSizes() Sizes {
	return Sizes{
		Fibonacci:    500,
		Primes:       5000,
		Sort:         4000,
		SortMaxValue: 1000,
		SortDepth:    3,
	}
}

func smallThresholds() parallel.Thresholds {
	return parallel.Thresholds{
		Fibonacci:      10,
		Primes:         100,
		PrimesMinChunk: 50,
		Sort:           200,
		SortPartition:  100,
	}
}

func openSmall(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	base := []Option{
		WithWorkers(4),
		WithSizes(smallSizes()),
		WithThresholds(smallThresholds()),
	}
	r, err := Open(append(base, opts...)...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRunProducesCompleteRecord(t *testing.T) {
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)

	r := openSmall(t, WithImplementation("Go"), WithSeed(7), WithLogger(logger))
	rec, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if err := rec.Validate(); err != nil {
		t.Fatalf("Record does not validate: %v", err)
	}
	if rec.Language != "Go" || rec.Seed != 7 {
		t.Errorf("Unexpected record header: %+v", rec)
	}
	if rec.WorkerCount() != r.Workers() {
		t.Errorf("Expected worker count %d, got %d", r.Workers(), rec.WorkerCount())
	}
	for _, w := range record.Workloads {
		for _, m := range record.Modes {
			if _, ok := rec.Elapsed(w, m); !ok {
				t.Errorf("Missing %s", record.FieldName(w, m))
			}
			if _, ok := rec.CPUSeconds[record.FieldName(w, m)]; !ok {
				t.Errorf("Missing cpu time for %s", record.FieldName(w, m))
			}
		}
	}
	if rec.Platform == nil || rec.Platform.Cores != runtime.NumCPU() {
		t.Errorf("Expected platform info, got %+v", rec.Platform)
	}
	if !strings.Contains(logs.String(), "measured") {
		t.Errorf("Expected measurement logs, got %q", logs.String())
	}

	// the record survives the ingest pipeline as three complete workloads
	table := record.Normalize([]record.RunRecord{rec})
	if len(table) != 6 {
		t.Errorf("Expected 6 rows, got %d", len(table))
	}
}

func TestRunSelectedWorkloads(t *testing.T) {
	r := openSmall(t, WithWorkloads(record.ComparisonSort))
	rec, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, ok := rec.Elapsed(record.ComparisonSort, record.Parallel); !ok {
		t.Error("Expected sort timings")
	}
	if _, ok := rec.Elapsed(record.SequenceComputation, record.Serial); ok {
		t.Error("Expected no fibonacci timings")
	}
}

func TestRunCancelled(t *testing.T) {
	r := openSmall(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestOpenRejectsInvalidSizes(t *testing.T) {
	tests := []struct {
		name  string
		sizes Sizes
	}{
		{"negative fibonacci", Sizes{Fibonacci: -1, SortMaxValue: 1}},
		{"negative sort", Sizes{Sort: -10, SortMaxValue: 1}},
		{"zero max value", Sizes{Sort: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Open(WithSizes(tt.sizes))
			if err == nil {
				r.Close()
			}
			if !errors.Is(err, workload.ErrInvalidSize) {
				t.Errorf("Expected ErrInvalidSize, got %v", err)
			}
		})
	}
}

func TestOpenRejectsEmptyName(t *testing.T) {
	if _, err := Open(WithImplementation("  ")); err == nil {
		t.Error("Expected an error for an empty implementation name")
	}
}

func TestCloseRestoresGOMAXPROCS(t *testing.T) {
	before := runtime.GOMAXPROCS(0)
	r, err := Open(WithWorkers(1), WithSizes(smallSizes()))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := runtime.GOMAXPROCS(0); got != 1 {
		t.Errorf("Expected GOMAXPROCS 1 while open, got %d", got)
	}
	r.Close()
	r.Close()
	if got := runtime.GOMAXPROCS(0); got != before {
		t.Errorf("Expected GOMAXPROCS restored to %d, got %d", before, got)
	}
}

func TestSortInputDeterministic(t *testing.T) {
	a := SortInput(3, 100, 10)
	b := SortInput(3, 100, 10)
	if !slices.Equal(a, b) {
		t.Error("Expected identical input for identical seed")
	}
	for _, v := range a {
		if v < 1 || v > 10 {
			t.Fatalf("Value %d out of range [1, 10]", v)
		}
	}
}

func TestSameSlice(t *testing.T) {
	if err := sameSlice([]int{1, 2}, []int{1, 2}); err != nil {
		t.Errorf("Expected equal slices, got %v", err)
	}
	if err := sameSlice([]int{1, 2}, []int{1}); !errors.Is(err, ErrVerification) {
		t.Errorf("Expected ErrVerification for length mismatch, got %v", err)
	}
	if err := sameSlice([]int{1, 2}, []int{1, 3}); !errors.Is(err, ErrVerification) {
		t.Errorf("Expected ErrVerification for element mismatch, got %v", err)
	}
}
