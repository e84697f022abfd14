package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/headlands-org/go-parbench/internal/metrics"
	"github.com/headlands-org/go-parbench/internal/record"
)

// chart is one grouped bar chart: one group per workload, one bar per series.
type chart struct {
	Title        string
	YAxisLabel   string
	SeriesLabels []string
	SeriesValues []plotter.Values
	FileBasename string
}

func setupPlot(c *chart) *plot.Plot {
	p := plot.New()

	p.Title.Text = c.Title
	p.Y.Label.Text = c.YAxisLabel

	p.Title.TextStyle.Color = color.Gray{128}
	p.X.Color = color.Gray{128}
	p.Y.Color = color.Gray{128}
	p.Y.Label.TextStyle.Color = color.Gray{128}
	p.X.Tick.Color = color.Gray{128}
	p.Y.Tick.Color = color.Gray{128}
	p.X.Tick.Label.Color = color.Gray{128}
	p.Y.Tick.Label.Color = color.Gray{128}
	p.Legend.TextStyle.Color = color.Gray{128}

	names := make([]string, len(record.Workloads))
	for i, w := range record.Workloads {
		names[i] = w.String()
	}
	p.NominalX(names...)

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.Padding = 1 * vg.Millimeter
	p.BackgroundColor = color.Transparent

	return p
}

func plotBars(dir string, c *chart) (string, error) {
	p := setupPlot(c)

	// Paired has between 3 and 12 colors; larger groups reuse them.
	palette, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", min(max(len(c.SeriesLabels), 3), 12))
	if err != nil {
		return "", err
	}
	colors := palette.Colors()

	barSpacing := vg.Points(2)
	barWidth := vg.Points(max(6, 96/float64(len(c.SeriesLabels))))

	groupWidth := (barWidth + barSpacing) * vg.Length(len(c.SeriesLabels)-1)

	for i, label := range c.SeriesLabels {
		bc, err := plotter.NewBarChart(c.SeriesValues[i], barWidth)
		if err != nil {
			return "", fmt.Errorf("series %s: %w", label, err)
		}
		bc.Offset = (barWidth+barSpacing)*vg.Length(i) - groupWidth/2
		bc.Color = colors[i%len(colors)]
		bc.LineStyle.Width = 0

		p.Add(bc)
		p.Legend.Add(label, bc)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, c.FileBasename+".svg")
	if err := p.Save(9*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", err
	}
	return path, nil
}

// finite maps +Inf and missing values to zero; bar charts reject
// non-finite values.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func timeCharts(m metrics.ComparisonMetrics) []*chart {
	var out []*chart
	for _, mode := range record.Modes {
		c := &chart{
			Title:        fmt.Sprintf("%s execution time", mode),
			YAxisLabel:   "seconds",
			FileBasename: "times_" + mode.Key(),
		}
		for _, impl := range m.Implementations {
			byWorkload, ok := m.AbsoluteTimes[impl]
			if !ok {
				continue
			}
			vals := make(plotter.Values, len(record.Workloads))
			for i, w := range record.Workloads {
				mt := byWorkload[w]
				if mode == record.Serial {
					vals[i] = mt.Serial
				} else {
					vals[i] = mt.Parallel
				}
			}
			c.SeriesLabels = append(c.SeriesLabels, impl)
			c.SeriesValues = append(c.SeriesValues, vals)
		}
		out = append(out, c)
	}
	return out
}

func speedupChart(m metrics.ComparisonMetrics) *chart {
	c := &chart{
		Title:        "Speedup (serial / parallel)",
		YAxisLabel:   "speedup",
		FileBasename: "speedups",
	}
	for _, impl := range m.Implementations {
		byWorkload, ok := m.Speedups[impl]
		if !ok {
			continue
		}
		vals := make(plotter.Values, len(record.Workloads))
		for i, w := range record.Workloads {
			vals[i] = finite(byWorkload[w])
		}
		c.SeriesLabels = append(c.SeriesLabels, impl)
		c.SeriesValues = append(c.SeriesValues, vals)
	}
	return c
}

func baselineChart(m metrics.ComparisonMetrics) *chart {
	c := &chart{
		Title:        fmt.Sprintf("Parallel performance relative to %s", m.Baseline),
		YAxisLabel:   "baseline time / time",
		FileBasename: "relative_parallel",
	}
	impls := make([]string, 0, len(m.RelativeToBaseline))
	for impl := range m.RelativeToBaseline {
		impls = append(impls, impl)
	}
	sort.Strings(impls)
	for _, impl := range impls {
		vals := make(plotter.Values, len(record.Workloads))
		for i, w := range record.Workloads {
			vals[i] = finite(m.RelativeToBaseline[impl][w].Parallel)
		}
		c.SeriesLabels = append(c.SeriesLabels, impl)
		c.SeriesValues = append(c.SeriesValues, vals)
	}
	return c
}

// WriteCharts renders SVG bar charts of absolute times, speedups and
// baseline-relative performance into dir. Charts without data are skipped.
// Infinite speedups are drawn as zero-height bars. It returns the written
// paths.
func WriteCharts(dir string, m metrics.ComparisonMetrics) ([]string, error) {
	charts := append(timeCharts(m), speedupChart(m), baselineChart(m))

	var paths []string
	for _, c := range charts {
		if len(c.SeriesLabels) == 0 {
			continue
		}
		path, err := plotBars(dir, c)
		if err != nil {
			return paths, fmt.Errorf("chart %s: %w", c.FileBasename, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
