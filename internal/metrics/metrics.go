// Package metrics derives comparison views from a normalized timing table:
// per-workload rankings, serial/parallel speedups, message-passing variant
// comparisons and ratios against a baseline implementation.
//
// Every function here is pure: the same table always yields the same result.
package metrics

import (
	"math"
	"sort"

	"github.com/headlands-org/go-parbench/internal/record"
)

// Entry is one implementation's time in a ranking.
type Entry struct {
	Implementation string
	Elapsed        float64
	Workers        int
}

// Rankings holds, per workload and mode, implementations sorted by ascending
// elapsed time. Ties keep table order.
type Rankings map[record.Workload]map[record.Mode][]Entry

// Rank builds the ranking view.
func Rank(t record.Table) Rankings {
	out := make(Rankings)
	for _, w := range record.Workloads {
		for _, m := range record.Modes {
			rows := t.Filter(w, m)
			if len(rows) == 0 {
				continue
			}
			entries := make([]Entry, len(rows))
			for i, row := range rows {
				entries[i] = Entry{Implementation: row.Implementation, Elapsed: row.Elapsed, Workers: row.Workers}
			}
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].Elapsed < entries[j].Elapsed
			})
			if out[w] == nil {
				out[w] = make(map[record.Mode][]Entry)
			}
			out[w][m] = entries
		}
	}
	return out
}

// Ratio divides num by den, returning +Inf when den is zero.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return math.Inf(1)
	}
	return num / den
}

// Speedup returns serial/parallel, or +Inf when parallel is zero.
func Speedup(serial, parallel float64) float64 {
	return Ratio(serial, parallel)
}

// ModeTimes holds both timings of one implementation/workload pair.
type ModeTimes struct {
	Serial   float64
	Parallel float64
}

// times returns both timings for impl/w when the table has them.
func times(t record.Table, impl string, w record.Workload) (ModeTimes, bool) {
	s, okS := t.Lookup(impl, w, record.Serial)
	p, okP := t.Lookup(impl, w, record.Parallel)
	if !okS || !okP {
		return ModeTimes{}, false
	}
	return ModeTimes{Serial: s.Elapsed, Parallel: p.Elapsed}, true
}

// AbsoluteTimes returns the raw timings per implementation and workload.
func AbsoluteTimes(t record.Table) map[string]map[record.Workload]ModeTimes {
	out := make(map[string]map[record.Workload]ModeTimes)
	for _, impl := range t.Implementations() {
		for _, w := range record.Workloads {
			mt, ok := times(t, impl, w)
			if !ok {
				continue
			}
			if out[impl] == nil {
				out[impl] = make(map[record.Workload]ModeTimes)
			}
			out[impl][w] = mt
		}
	}
	return out
}

// Speedups returns serial/parallel per implementation and workload, for every
// pair that has both modes.
func Speedups(t record.Table) map[string]map[record.Workload]float64 {
	out := make(map[string]map[record.Workload]float64)
	for impl, byWorkload := range AbsoluteTimes(t) {
		out[impl] = make(map[record.Workload]float64, len(byWorkload))
		for w, mt := range byWorkload {
			out[impl][w] = Speedup(mt.Serial, mt.Parallel)
		}
	}
	return out
}

// WorkerCounts returns the worker count recorded for each implementation.
func WorkerCounts(t record.Table) map[string]int {
	out := make(map[string]int)
	for _, row := range t {
		out[row.Implementation] = row.Workers
	}
	return out
}
