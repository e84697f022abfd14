package workload

import (
	"github.com/headlands-org/go-parbench/internal/parallel"
)

// QuicksortSerial returns a sorted copy of arr using three-way quicksort with
// a median-of-three pivot. arr is not modified.
func QuicksortSerial(arr []int) []int {
	if len(arr) <= 1 {
		return append([]int(nil), arr...)
	}
	less, equal, greater := parallel.Partition3(arr, parallel.MedianOfThree(arr))
	return join(QuicksortSerial(less), equal, QuicksortSerial(greater))
}

// Quicksort returns the same ordering as QuicksortSerial.
//
// Arrays above the sort threshold are split around a pivot while depth
// remains. A side recurses in parallel only if it is itself above the
// partition threshold; the other side is sorted serially in the calling
// goroutine. Every fork holds one extra worker, so at most 2^depth workers
// are live at once.
func (p *Parallel) Quicksort(arr []int, depth int) ([]int, error) {
	if p.serialOnly() {
		return QuicksortSerial(arr), nil
	}
	return p.quicksort(arr, depth)
}

func (p *Parallel) quicksort(arr []int, depth int) ([]int, error) {
	if p.thresholds.DecideSort(len(arr), depth) == parallel.Serial {
		return QuicksortSerial(arr), nil
	}

	less, equal, greater := parallel.Partition3(arr, parallel.MedianOfThree(arr))
	parLeft, parRight := p.thresholds.SortBranches(len(less), len(greater))

	var left, right []int
	recurse := func(dst *[]int, src []int) func() error {
		return func() error {
			sorted, err := p.quicksort(src, depth-1)
			*dst = sorted
			return err
		}
	}
	serial := func(dst *[]int, src []int) func() error {
		return func() error {
			*dst = QuicksortSerial(src)
			return nil
		}
	}

	var err error
	switch {
	case parLeft && parRight:
		err = parallel.Nested(recurse(&left, less), recurse(&right, greater))
	case parLeft:
		err = parallel.Nested(recurse(&left, less), serial(&right, greater))
	case parRight:
		err = parallel.Nested(recurse(&right, greater), serial(&left, less))
	default:
		left, right = QuicksortSerial(less), QuicksortSerial(greater)
	}
	if err != nil {
		return nil, err
	}
	return join(left, equal, right), nil
}

// join concatenates partitions whose value ranges are already ordered.
func join(left, equal, right []int) []int {
	out := make([]int, 0, len(left)+len(equal)+len(right))
	out = append(out, left...)
	out = append(out, equal...)
	return append(out, right...)
}
