package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/perf/benchfmt"

	"github.com/headlands-org/go-parbench/internal/record"
)

// create opens path for writing, creating parent directories.
func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

// writeFile runs fn against a freshly created file at path.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes the normalized table to path.
func WriteCSV(path string, t record.Table) error {
	return writeFile(path, func(w io.Writer) error { return EncodeCSV(w, t) })
}

// EncodeCSV writes one line per row with the header
// Language,Test,Mode,Time,Threads.
func EncodeCSV(w io.Writer, t record.Table) error {
	cw := csv.NewWriter(w)

	header := []string{"Language", "Test", "Mode", "Time", "Threads"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range t {
		row := []string{
			r.Implementation,
			r.Workload.String(),
			r.Mode.String(),
			fmt.Sprintf("%.6f", r.Elapsed),
			strconv.Itoa(r.Workers),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBenchfmt writes the table to path in the Go benchmark format.
func WriteBenchfmt(path string, t record.Table) error {
	return writeFile(path, func(w io.Writer) error { return EncodeBenchfmt(w, t) })
}

// EncodeBenchfmt writes the table in the Go benchmark format so result files
// can be compared with benchstat. Each implementation becomes a configuration
// block; each row becomes BenchmarkWorkload/mode=... with one iteration.
func EncodeBenchfmt(w io.Writer, t record.Table) error {
	bw := benchfmt.NewWriter(w)
	var res benchfmt.Result
	for _, impl := range t.Implementations() {
		rows := make(record.Table, 0, 6)
		for _, r := range t {
			if r.Implementation == impl {
				rows = append(rows, r)
			}
		}
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Workload != rows[j].Workload {
				return rows[i].Workload < rows[j].Workload
			}
			return rows[i].Mode < rows[j].Mode
		})
		for _, r := range rows {
			res.Config = []benchfmt.Config{
				{Key: "implementation", Value: []byte(impl), File: true},
				{Key: "workers", Value: []byte(strconv.Itoa(r.Workers)), File: true},
			}
			res.Name = benchfmt.Name(r.Workload.String() + "/mode=" + r.Mode.Key())
			res.Iters = 1
			res.Values = []benchfmt.Value{{Value: r.Elapsed, Unit: "sec/op"}}
			if err := bw.Write(&res); err != nil {
				return fmt.Errorf("failed to write benchmark %s: %w", res.Name, err)
			}
		}
	}
	return nil
}
