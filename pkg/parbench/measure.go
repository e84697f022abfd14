package parbench

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/headlands-org/go-parbench/internal/platform"
	"github.com/headlands-org/go-parbench/internal/record"
	"github.com/headlands-org/go-parbench/internal/workload"
)

// measurement is one timed call.
type measurement struct {
	wall time.Duration
	cpu  time.Duration
}

// timed runs fn and records wall-clock and process CPU time around it.
func timed[T any](fn func() (T, error)) (T, measurement, error) {
	cpuStart := platform.CPUTime()
	start := time.Now()
	out, err := fn()
	m := measurement{wall: time.Since(start), cpu: platform.CPUTime() - cpuStart}
	return out, m, err
}

// runPair times serial then parallel, verifies the parallel output and stores
// both timings in rec.
func runPair[T any](ctx context.Context, r *Runner, rec *record.RunRecord, w record.Workload,
	serial, par func() (T, error), verify func(serial, parallel T) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	want, sm, err := timed(serial)
	if err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	r.record(rec, w, record.Serial, sm)

	if err := ctx.Err(); err != nil {
		return err
	}
	got, pm, err := timed(par)
	if err != nil {
		r.log.WithError(err).WithField("workload", w.String()).Error("parallel run failed")
		return fmt.Errorf("parallel: %w", err)
	}
	if err := verify(want, got); err != nil {
		r.log.WithError(err).WithField("workload", w.String()).Error("parallel result rejected")
		return err
	}
	r.record(rec, w, record.Parallel, pm)
	return nil
}

func (r *Runner) record(rec *record.RunRecord, w record.Workload, m record.Mode, meas measurement) {
	secs := meas.wall.Seconds()
	rec.SetElapsed(w, m, secs)
	rec.CPUSeconds[record.FieldName(w, m)] = meas.cpu.Seconds()
	r.log.WithFields(logrus.Fields{
		"workload": w.String(),
		"mode":     m.Key(),
		"seconds":  fmt.Sprintf("%.4f", secs),
		"cpu":      fmt.Sprintf("%.4f", meas.cpu.Seconds()),
	}).Info("measured")
}

func sameSlice[T comparable](serial, parallel []T) error {
	if len(serial) != len(parallel) {
		return fmt.Errorf("%w: %d elements, expected %d", ErrVerification, len(parallel), len(serial))
	}
	for i := range serial {
		if serial[i] != parallel[i] {
			return fmt.Errorf("%w: element %d differs", ErrVerification, i)
		}
	}
	return nil
}

func (r *Runner) runFibonacci(ctx context.Context, rec *record.RunRecord) error {
	n := r.options.Sizes.Fibonacci
	return runPair(ctx, r, rec, record.SequenceComputation,
		func() ([]uint64, error) { return workload.FibonacciSerial(n) },
		func() ([]uint64, error) { return r.par.Fibonacci(n) },
		sameSlice[uint64])
}

func (r *Runner) runPrimes(ctx context.Context, rec *record.RunRecord) error {
	limit := r.options.Sizes.Primes
	return runPair(ctx, r, rec, record.PrimalitySearch,
		func() ([]int, error) { return workload.PrimesSerial(limit) },
		func() ([]int, error) { return r.par.Primes(limit) },
		sameSlice[int])
}

// SortInput returns n pseudo-random values in [1, maxValue] for seed.
func SortInput(seed int64, n, maxValue int) []int {
	rng := rand.New(rand.NewSource(seed))
	arr := make([]int, n)
	for i := range arr {
		arr[i] = rng.Intn(maxValue) + 1
	}
	return arr
}

func (r *Runner) runSort(ctx context.Context, rec *record.RunRecord) error {
	s := r.options.Sizes
	arr := SortInput(r.options.Seed, s.Sort, s.SortMaxValue)
	return runPair(ctx, r, rec, record.ComparisonSort,
		func() ([]int, error) { return workload.QuicksortSerial(arr), nil },
		func() ([]int, error) { return r.par.Quicksort(arr, s.SortDepth) },
		func(serial, parallel []int) error {
			if !slices.IsSorted(parallel) {
				return fmt.Errorf("%w: output is not sorted", ErrVerification)
			}
			return sameSlice(serial, parallel)
		})
}
