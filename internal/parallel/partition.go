// Package parallel provides the chunking, pooling and serial-vs-parallel
// decisions shared by the benchmark workloads.
package parallel

// Range is a half-open interval [Start, End) of problem indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices covered by the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Split partitions [start, end) into at most workers contiguous ranges.
//
// Every range holds at least minChunk indices except the last, which absorbs
// the remainder, so small inputs yield fewer ranges than workers. An empty
// input yields a single empty range at start. Concatenating the ranges in
// order reproduces [start, end) exactly.
func Split(start, end, workers, minChunk int) []Range {
	if workers < 1 {
		workers = 1
	}
	if minChunk < 1 {
		minChunk = 1
	}

	n := end - start
	if n <= 0 {
		return []Range{{Start: start, End: start}}
	}

	size := (n + workers - 1) / workers
	if size < minChunk {
		size = minChunk
	}

	chunks := make([]Range, 0, (n+size-1)/size)
	for lo := start; lo < end; lo += size {
		hi := lo + size
		if hi > end {
			hi = end
		}
		chunks = append(chunks, Range{Start: lo, End: hi})
	}
	return chunks
}

// MedianOfThree returns the median of the first, middle and last elements.
// When two candidates compare equal the shared value is returned, so the
// election is deterministic for any input. arr must not be empty.
func MedianOfThree(arr []int) int {
	a, b, c := arr[0], arr[len(arr)/2], arr[len(arr)-1]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}

// Partition3 splits arr around pivot into values strictly less than, equal
// to, and strictly greater than the pivot. arr is not modified.
func Partition3(arr []int, pivot int) (less, equal, greater []int) {
	for _, v := range arr {
		switch {
		case v < pivot:
			less = append(less, v)
		case v > pivot:
			greater = append(greater, v)
		default:
			equal = append(equal, v)
		}
	}
	return less, equal, greater
}
