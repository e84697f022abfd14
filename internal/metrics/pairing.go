package metrics

import (
	"sort"
	"strings"

	"github.com/headlands-org/go-parbench/internal/record"
)

// DefaultSuffix marks message-passing variants by name, e.g. "C++ MPI".
const DefaultSuffix = " MPI"

// Pairings declares which implementations are message-passing variants of
// which base implementations.
type Pairings struct {
	// Explicit maps variant name to base name and always takes precedence.
	Explicit map[string]string
	// Suffix, when non-empty, pairs any remaining implementation whose name
	// ends in Suffix with the implementation named by stripping it.
	Suffix string
}

// Resolve returns the variant -> base relation restricted to names. A pair
// is formed only when both sides are present and differ. A suffix pair also
// needs a base that is not itself a variant; names without a counterpart are
// left unpaired.
func (p Pairings) Resolve(names []string) map[string]string {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[record.CanonicalName(n)] = true
	}

	out := make(map[string]string)
	for variant, base := range p.Explicit {
		variant, base = record.CanonicalName(variant), record.CanonicalName(base)
		if variant != base && known[variant] && known[base] {
			out[variant] = base
		}
	}

	if p.Suffix == "" {
		return out
	}
	sorted := make([]string, 0, len(known))
	for n := range known {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		if _, done := out[name]; done {
			continue
		}
		if !strings.HasSuffix(name, p.Suffix) {
			continue
		}
		base := strings.TrimSpace(strings.TrimSuffix(name, p.Suffix))
		if _, isVariant := out[base]; isVariant || strings.HasSuffix(base, p.Suffix) {
			continue
		}
		if base != "" && base != name && known[base] {
			out[name] = base
		}
	}
	return out
}

// WorkloadComparison compares a variant with its base on one workload.
type WorkloadComparison struct {
	BaseSpeedup    float64
	VariantSpeedup float64
	// ParallelGain is base parallel time / variant parallel time. It is only
	// set when HasGain is true, i.e. both parallel times are positive.
	ParallelGain float64
	HasGain      bool
}

// MessagePassing holds every paired workload of one variant.
type MessagePassing struct {
	Base      string
	Workloads map[record.Workload]WorkloadComparison
}

// CompareMessagePassing compares each variant in pairs with its base on the
// workloads both have complete data for. Variants that share no complete
// workload with their base are left out.
func CompareMessagePassing(t record.Table, pairs map[string]string) map[string]MessagePassing {
	out := make(map[string]MessagePassing)
	for variant, base := range pairs {
		cmp := MessagePassing{Base: base, Workloads: make(map[record.Workload]WorkloadComparison)}
		for _, w := range record.Workloads {
			bt, okB := times(t, base, w)
			vt, okV := times(t, variant, w)
			if !okB || !okV {
				continue
			}
			wc := WorkloadComparison{
				BaseSpeedup:    Speedup(bt.Serial, bt.Parallel),
				VariantSpeedup: Speedup(vt.Serial, vt.Parallel),
			}
			if bt.Parallel > 0 && vt.Parallel > 0 {
				wc.ParallelGain = bt.Parallel / vt.Parallel
				wc.HasGain = true
			}
			cmp.Workloads[w] = wc
		}
		if len(cmp.Workloads) > 0 {
			out[variant] = cmp
		}
	}
	return out
}
