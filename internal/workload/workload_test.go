package workload

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/headlands-org/go-parbench/internal/parallel"
)

// smallThresholds forces the parallel paths on test-sized inputs
func smallThresholds() parallel.Thresholds {
	return parallel.Thresholds{
		Fibonacci:      4,
		Primes:         50,
		PrimesMinChunk: 7,
		Sort:           16,
		SortPartition:  8,
	}
}

func newParallel(t testing.TB, workers int, th parallel.Thresholds) *Parallel {
	t.Helper()
	pool := parallel.NewPool(workers)
	t.Cleanup(pool.Close)
	return NewParallel(pool, th)
}

func TestFibonacciSerial(t *testing.T) {
	got, err := FibonacciSerial(10)
	if err != nil {
		t.Fatalf("FibonacciSerial failed: %v", err)
	}
	want := []uint64{0, 1, 1, 2, 3, 5, 8, 13, 21, 34}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got, _ := FibonacciSerial(0); len(got) != 0 {
		t.Errorf("Expected empty sequence for n=0, got %v", got)
	}
	if got, _ := FibonacciSerial(1); !slices.Equal(got, []uint64{0}) {
		t.Errorf("Expected [0] for n=1, got %v", got)
	}
}

// TestFibonacciParallelMatchesSerial checks element-wise equality across
// sizes around the chunk boundaries
func TestFibonacciParallelMatchesSerial(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 8} {
		p := newParallel(t, workers, smallThresholds())
		for _, n := range []int{0, 1, 2, 3, 4, 5, 17, 93, 94, 95, 200, 1001} {
			want, _ := FibonacciSerial(n)
			got, err := p.Fibonacci(n)
			if err != nil {
				t.Fatalf("workers=%d n=%d: %v", workers, n, err)
			}
			if !slices.Equal(got, want) {
				t.Errorf("workers=%d n=%d: parallel sequence differs from serial", workers, n)
			}
		}
	}
}

func TestFibonacciChunksRespectMinimum(t *testing.T) {
	th := smallThresholds()
	th.FibonacciMinChunk = 100
	p := newParallel(t, 8, th)

	chunks := p.fibonacciChunks(250)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks of at most 100 terms, got %v", chunks)
	}
	for _, c := range chunks[:len(chunks)-1] {
		if c.Len() < th.FibonacciMinChunk {
			t.Errorf("Chunk %v is shorter than the minimum %d", c, th.FibonacciMinChunk)
		}
	}
	if chunks[len(chunks)-1].End != 250 {
		t.Errorf("Expected chunks to cover [0, 250), got %v", chunks)
	}

	want, _ := FibonacciSerial(250)
	got, err := p.Fibonacci(250)
	if err != nil {
		t.Fatalf("Fibonacci failed: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Error("parallel sequence differs from serial with a chunk minimum")
	}
}

func TestPrimesSerial(t *testing.T) {
	got, err := PrimesSerial(30)
	if err != nil {
		t.Fatalf("PrimesSerial failed: %v", err)
	}
	want := []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	for _, limit := range []int{0, 1} {
		if got, _ := PrimesSerial(limit); len(got) != 0 {
			t.Errorf("Expected no primes up to %d, got %v", limit, got)
		}
	}
	if got, _ := PrimesSerial(2); !slices.Equal(got, []int{2}) {
		t.Errorf("Expected [2], got %v", got)
	}
}

// TestIsPrimeAgainstNaive compares the 6k±1 test with plain trial division
func TestIsPrimeAgainstNaive(t *testing.T) {
	naive := func(n int) bool {
		if n < 2 {
			return false
		}
		for i := 2; i*i <= n; i++ {
			if n%i == 0 {
				return false
			}
		}
		return true
	}
	for n := -3; n < 5000; n++ {
		if IsPrime(n) != naive(n) {
			t.Fatalf("IsPrime(%d) = %v, expected %v", n, IsPrime(n), naive(n))
		}
	}
}

func TestPrimesParallelMatchesSerial(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 7} {
		p := newParallel(t, workers, smallThresholds())
		for _, limit := range []int{0, 1, 2, 3, 49, 50, 51, 97, 1000, 10007} {
			want, _ := PrimesSerial(limit)
			got, err := p.Primes(limit)
			if err != nil {
				t.Fatalf("workers=%d limit=%d: %v", workers, limit, err)
			}
			if !slices.Equal(got, want) {
				t.Errorf("workers=%d limit=%d: got %d primes, expected %d", workers, limit, len(got), len(want))
			}
			if !slices.IsSorted(got) {
				t.Errorf("workers=%d limit=%d: primes not ascending", workers, limit)
			}
		}
	}
}

func TestQuicksortSerial(t *testing.T) {
	in := []int{5, 3, 9, 1, 5, 7, 2, 8, 5}
	orig := slices.Clone(in)
	got := QuicksortSerial(in)

	want := slices.Clone(in)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if !slices.Equal(in, orig) {
		t.Errorf("Input was modified: %v", in)
	}
}

// TestQuicksortParallelMatchesSerial covers random, skewed and degenerate inputs
// so every pivot branch is exercised
func TestQuicksortParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	random := make([]int, 5000)
	for i := range random {
		random[i] = rng.Intn(1000) + 1
	}
	ascending := make([]int, 3000)
	for i := range ascending {
		ascending[i] = i
	}
	skewed := make([]int, 3000)
	for i := range skewed {
		// Mostly small values with a long tail so one side stays tiny
		if i%50 == 0 {
			skewed[i] = 1000000 + i
		} else {
			skewed[i] = i % 7
		}
	}
	constant := make([]int, 2000)
	for i := range constant {
		constant[i] = 42
	}

	inputs := map[string][]int{
		"empty":     {},
		"single":    {1},
		"random":    random,
		"ascending": ascending,
		"skewed":    skewed,
		"constant":  constant,
	}

	for _, workers := range []int{1, 2, 4} {
		p := newParallel(t, workers, smallThresholds())
		for name, in := range inputs {
			for _, depth := range []int{0, 1, 3, 6} {
				want := QuicksortSerial(in)
				got, err := p.Quicksort(in, depth)
				if err != nil {
					t.Fatalf("%s workers=%d depth=%d: %v", name, workers, depth, err)
				}
				if !slices.IsSorted(got) {
					t.Errorf("%s workers=%d depth=%d: output not sorted", name, workers, depth)
				}
				if !slices.Equal(got, want) {
					t.Errorf("%s workers=%d depth=%d: output differs from serial", name, workers, depth)
				}
			}
		}
	}
}

func TestNegativeSizes(t *testing.T) {
	p := newParallel(t, 2, smallThresholds())

	if _, err := FibonacciSerial(-1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}
	if _, err := p.Fibonacci(-1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}
	if _, err := PrimesSerial(-5); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}
	if _, err := p.Primes(-5); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}
}

func BenchmarkPrimes(b *testing.B) {
	p := newParallel(b, 4, parallel.DefaultThresholds())

	b.Run("Serial", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = PrimesSerial(100000)
		}
	})
	b.Run("Parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = p.Primes(100000)
		}
	})
}

func BenchmarkQuicksort(b *testing.B) {
	p := newParallel(b, 4, parallel.DefaultThresholds())
	rng := rand.New(rand.NewSource(1))
	arr := make([]int, 1000000)
	for i := range arr {
		arr[i] = rng.Intn(1000000) + 1
	}

	b.Run("Serial", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			QuicksortSerial(arr)
		}
	})
	b.Run("Parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = p.Quicksort(arr, 3)
		}
	})
}
