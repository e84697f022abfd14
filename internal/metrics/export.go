package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/headlands-org/go-parbench/internal/record"
)

// Float is a ratio that survives JSON: +Inf is written as the string "inf".
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-inf"`), nil
	case math.IsNaN(v):
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case `"inf"`:
		*f = Float(math.Inf(1))
		return nil
	case `"-inf"`:
		*f = Float(math.Inf(-1))
		return nil
	case "null":
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("ratio: %w", err)
	}
	*f = Float(v)
	return nil
}

// Comparison is the serialized form of WorkloadComparison.
type Comparison struct {
	BaseSpeedup  Float  `json:"base_speedup"`
	MPISpeedup   Float  `json:"mpi_speedup"`
	ParallelGain *Float `json:"parallel_gain,omitempty"`
}

// VariantComparison is the serialized form of MessagePassing.
type VariantComparison struct {
	Base      string                `json:"base"`
	Workloads map[string]Comparison `json:"workloads"`
}

// RankEntry is the serialized form of Entry.
type RankEntry struct {
	Implementation string  `json:"language"`
	Time           float64 `json:"time"`
	Workers        int     `json:"workers"`
}

// Document is the metrics file written next to the run records. Keys are
// record field names ("fibonacci_serial") or workload keys ("fibonacci").
type Document struct {
	Baseline           string                            `json:"baseline"`
	WorkerCounts       map[string]int                    `json:"worker_counts"`
	AbsoluteTimes      map[string]map[string]float64     `json:"absolute_times"`
	SpeedupFactors     map[string]map[string]Float       `json:"speedup_factors"`
	MPIComparisons     map[string]VariantComparison      `json:"mpi_comparisons"`
	RelativeToBaseline map[string]map[string]Float       `json:"relative_to_baseline"`
	Rankings           map[string]map[string][]RankEntry `json:"rankings"`
}

// NewDocument flattens m into its serialized form.
func NewDocument(m ComparisonMetrics) Document {
	doc := Document{
		Baseline:           m.Baseline,
		WorkerCounts:       make(map[string]int, len(m.Workers)),
		AbsoluteTimes:      make(map[string]map[string]float64),
		SpeedupFactors:     make(map[string]map[string]Float),
		MPIComparisons:     make(map[string]VariantComparison),
		RelativeToBaseline: make(map[string]map[string]Float),
		Rankings:           make(map[string]map[string][]RankEntry),
	}
	for impl, n := range m.Workers {
		doc.WorkerCounts[impl] = n
	}
	for impl, byWorkload := range m.AbsoluteTimes {
		fields := make(map[string]float64, 2*len(byWorkload))
		for w, mt := range byWorkload {
			fields[record.FieldName(w, record.Serial)] = mt.Serial
			fields[record.FieldName(w, record.Parallel)] = mt.Parallel
		}
		doc.AbsoluteTimes[impl] = fields
	}
	for impl, byWorkload := range m.Speedups {
		fields := make(map[string]Float, len(byWorkload))
		for w, s := range byWorkload {
			fields[w.Key()] = Float(s)
		}
		doc.SpeedupFactors[impl] = fields
	}
	for variant, mp := range m.MessagePassing {
		vc := VariantComparison{Base: mp.Base, Workloads: make(map[string]Comparison, len(mp.Workloads))}
		for w, wc := range mp.Workloads {
			c := Comparison{BaseSpeedup: Float(wc.BaseSpeedup), MPISpeedup: Float(wc.VariantSpeedup)}
			if wc.HasGain {
				gain := Float(wc.ParallelGain)
				c.ParallelGain = &gain
			}
			vc.Workloads[w.Key()] = c
		}
		doc.MPIComparisons[variant] = vc
	}
	for impl, byWorkload := range m.RelativeToBaseline {
		fields := make(map[string]Float, 2*len(byWorkload))
		for w, r := range byWorkload {
			fields[record.FieldName(w, record.Serial)] = Float(r.Serial)
			fields[record.FieldName(w, record.Parallel)] = Float(r.Parallel)
		}
		doc.RelativeToBaseline[impl] = fields
	}
	for w, byMode := range m.Rankings {
		modes := make(map[string][]RankEntry, len(byMode))
		for mode, entries := range byMode {
			out := make([]RankEntry, len(entries))
			for i, e := range entries {
				out[i] = RankEntry{Implementation: e.Implementation, Time: e.Elapsed, Workers: e.Workers}
			}
			modes[mode.Key()] = out
		}
		doc.Rankings[w.Key()] = modes
	}
	return doc
}

// Encode writes the document as indented JSON.
func (d Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	return nil
}

// DecodeDocument reads a document written by Encode.
func DecodeDocument(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode metrics: %w", err)
	}
	return d, nil
}

// WriteFile stores m as a metrics document at path, creating parent
// directories as needed.
func WriteFile(path string, m ComparisonMetrics) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	if err := NewDocument(m).Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
