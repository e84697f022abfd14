package workload

import (
	"slices"

	"github.com/headlands-org/go-parbench/internal/parallel"
)

// IsPrime tests n by trial division up to its integer square root, skipping
// multiples of 2 and 3.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n < 4 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := 5; i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

func primesInRange(r parallel.Range) []int {
	var out []int
	for n := r.Start; n < r.End; n++ {
		if IsPrime(n) {
			out = append(out, n)
		}
	}
	return out
}

// PrimesSerial returns every prime in [2, limit] in ascending order.
func PrimesSerial(limit int) ([]int, error) {
	if err := checkSize("limit", limit); err != nil {
		return nil, err
	}
	return primesInRange(parallel.Range{Start: 2, End: limit + 1}), nil
}

// Primes returns the same primes as PrimesSerial. Chunks cover increasing
// ranges, so joining them in chunk order keeps the output ascending.
func (p *Parallel) Primes(limit int) ([]int, error) {
	if err := checkSize("limit", limit); err != nil {
		return nil, err
	}
	if p.serialOnly() || p.thresholds.DecidePrimes(limit) == parallel.Serial {
		return PrimesSerial(limit)
	}

	chunks := parallel.Split(2, limit+1, p.pool.Size(), p.thresholds.PrimesMinChunk)
	parts, err := parallel.Map(p.pool, chunks, func(r parallel.Range) ([]int, error) {
		return primesInRange(r), nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Concat(parts...), nil
}
