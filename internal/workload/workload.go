// Package workload implements the benchmarked computations: a Fibonacci
// sequence, a trial-division prime search and a three-way quicksort, each in
// a serial and a pool-backed parallel variant that produce identical output.
package workload

import (
	"errors"
	"fmt"

	"github.com/headlands-org/go-parbench/internal/parallel"
)

// ErrInvalidSize is returned for negative problem sizes.
var ErrInvalidSize = errors.New("workload: invalid problem size")

// Parallel runs the parallel variants on a shared pool.
type Parallel struct {
	pool       *parallel.Pool
	thresholds parallel.Thresholds
}

// NewParallel returns parallel variants bound to pool. The pool is borrowed;
// the caller closes it.
func NewParallel(pool *parallel.Pool, th parallel.Thresholds) *Parallel {
	return &Parallel{pool: pool, thresholds: th}
}

// Workers returns the pool size.
func (p *Parallel) Workers() int {
	return p.pool.Size()
}

// serialOnly reports whether the pool is too small for any parallel work.
func (p *Parallel) serialOnly() bool {
	return p.pool.Size() <= 1
}

func checkSize(name string, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidSize, name, n)
	}
	return nil
}
