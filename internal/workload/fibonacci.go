package workload

import (
	"slices"

	"github.com/headlands-org/go-parbench/internal/parallel"
)

// FibonacciSerial returns F(0) through F(n-1), computed bottom-up. Terms wrap
// modulo 2^64 once they exceed uint64.
func FibonacciSerial(n int) ([]uint64, error) {
	if err := checkSize("n", n); err != nil {
		return nil, err
	}
	return fibonacciRange(parallel.Range{Start: 0, End: n}), nil
}

// fibonacciRange recomputes the sequence from F(0) up to r.End and keeps only
// the terms inside r. Chunks never exchange state.
func fibonacciRange(r parallel.Range) []uint64 {
	out := make([]uint64, 0, r.Len())
	var a, b uint64 = 0, 1
	for i := 0; i < r.End; i++ {
		if i >= r.Start {
			out = append(out, a)
		}
		a, b = b, a+b
	}
	return out
}

// Fibonacci returns the same sequence as FibonacciSerial. Above the
// threshold, [0, n) is split into chunks that each rebuild their own prefix,
// and the slices are joined in chunk order.
func (p *Parallel) Fibonacci(n int) ([]uint64, error) {
	if err := checkSize("n", n); err != nil {
		return nil, err
	}
	if p.serialOnly() || p.thresholds.DecideFibonacci(n) == parallel.Serial {
		return FibonacciSerial(n)
	}

	parts, err := parallel.Map(p.pool, p.fibonacciChunks(n), func(r parallel.Range) ([]uint64, error) {
		return fibonacciRange(r), nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Concat(parts...), nil
}

// fibonacciChunks splits [0, n) into at most one range per worker, each at
// least FibonacciMinChunk terms long except the last.
func (p *Parallel) fibonacciChunks(n int) []parallel.Range {
	return parallel.Split(0, n, p.pool.Size(), p.thresholds.FibonacciMinChunk)
}
