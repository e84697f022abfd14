// Package report renders aggregated benchmark results: a plain-text summary,
// CSV and Go benchmark-format exports, and SVG bar charts.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/headlands-org/go-parbench/internal/metrics"
	"github.com/headlands-org/go-parbench/internal/record"
)

// FormatSpeedup renders a speedup as "2.00x", or the infinity marker when the
// parallel time was zero.
func FormatSpeedup(s float64) string {
	if math.IsInf(s, 1) {
		return "∞ (parallel time ≈ 0)"
	}
	return fmt.Sprintf("%.2fx", s)
}

// WriteSummary prints rankings per workload and mode, then speedup factors
// per implementation.
func WriteSummary(w io.Writer, m metrics.ComparisonMetrics) error {
	p := &printer{w: w}

	p.printf("\nSummary Statistics:\n")
	p.printf("==================\n")
	for _, wl := range record.Workloads {
		byMode, ok := m.Rankings[wl]
		if !ok {
			continue
		}
		p.printf("\n%s Test:\n", wl)
		for _, mode := range record.Modes {
			entries := byMode[mode]
			if len(entries) == 0 {
				continue
			}
			width := len("Language")
			for _, e := range entries {
				width = max(width, len(e.Implementation))
			}
			p.printf("\n%s Mode:\n", mode)
			p.printf("%-*s  %12s  %7s\n", width, "Language", "Time", "Threads")
			for _, e := range entries {
				p.printf("%-*s  %12.6f  %7d\n", width, e.Implementation, e.Elapsed, e.Workers)
			}
		}
	}

	p.printf("\nSpeedup Factors (Serial/Parallel):\n")
	p.printf("================================\n")
	for _, impl := range m.Implementations {
		byWorkload := m.Speedups[impl]
		p.printf("\n%s:\n", impl)
		for _, wl := range record.Workloads {
			if s, ok := byWorkload[wl]; ok {
				p.printf("  %s: %s\n", wl, FormatSpeedup(s))
			}
		}
	}

	if len(m.MessagePassing) > 0 {
		p.printf("\nMessage-Passing Comparisons:\n")
		p.printf("============================\n")
		for _, variant := range sortedKeys(m.MessagePassing) {
			mp := m.MessagePassing[variant]
			p.printf("\n%s vs %s:\n", variant, mp.Base)
			for _, wl := range record.Workloads {
				wc, ok := mp.Workloads[wl]
				if !ok {
					continue
				}
				gain := "n/a"
				if wc.HasGain {
					gain = fmt.Sprintf("%.2fx", wc.ParallelGain)
				}
				p.printf("  %-10s base %s, variant %s, parallel gain %s\n",
					wl.String()+":", FormatSpeedup(wc.BaseSpeedup), FormatSpeedup(wc.VariantSpeedup), gain)
			}
		}
	}

	if len(m.RelativeToBaseline) > 0 {
		title := fmt.Sprintf("Relative to %s (baseline time / time):", m.Baseline)
		p.printf("\n%s\n%s\n", title, strings.Repeat("=", len(title)-1))
		for _, impl := range m.Implementations {
			byWorkload, ok := m.RelativeToBaseline[impl]
			if !ok {
				continue
			}
			p.printf("\n%s:\n", impl)
			for _, wl := range record.Workloads {
				r := byWorkload[wl]
				p.printf("  %-10s serial %s, parallel %s\n", wl.String()+":", formatRatio(r.Serial), formatRatio(r.Parallel))
			}
		}
	}
	return p.err
}

func formatRatio(r float64) string {
	if math.IsInf(r, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2fx", r)
}

// printer remembers the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
