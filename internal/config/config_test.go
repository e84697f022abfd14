package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.Sizes, Default().Sizes) {
		t.Errorf("Unexpected sizes %+v", cfg.Sizes)
	}
	if cfg.Baseline != "Python" || cfg.MPISuffix != " MPI" {
		t.Errorf("Unexpected aggregation defaults: baseline=%q suffix=%q", cfg.Baseline, cfg.MPISuffix)
	}
	if cfg.Thresholds.Sort != 100000 || cfg.Thresholds.PrimesMinChunk != 5000 || cfg.Thresholds.FibonacciMinChunk != 1000 {
		t.Errorf("Unexpected thresholds %+v", cfg.Thresholds)
	}
	if cfg.Sizes.SortDepth != 2 {
		t.Errorf("Expected sort depth 2, got %d", cfg.Sizes.SortDepth)
	}
	if cfg.RecordSuffix != ".json" {
		t.Errorf("Expected record suffix .json, got %q", cfg.RecordSuffix)
	}
}

// TestLoadBinderPrecedence verifies a bound source overrides the file
func TestLoadBinderPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parbench.yaml")
	if err := os.WriteFile(path, []byte("log_dir: from-file\nbaseline: Rust\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, func(v *viper.Viper) error {
		v.Set("log_dir", "from-binder")
		return nil
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogDir != "from-binder" {
		t.Errorf("Expected bound value to win, got %q", cfg.LogDir)
	}
	if cfg.Baseline != "Rust" {
		t.Errorf("Expected file value for baseline, got %q", cfg.Baseline)
	}

	boom := errors.New("boom")
	if _, err := Load("", func(*viper.Viper) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Expected binder error, got %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parbench.yaml")
	content := `implementation: Go
workers: 4
sizes:
  sort: 5000
thresholds:
  sort_partition: 100
pairings:
  - variant: C++ MPI
    base: C++
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PARBENCH_SIZES_PRIMES", "777")
	t.Setenv("PARBENCH_BASELINE", "C")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 4 || cfg.Sizes.Sort != 5000 {
		t.Errorf("Expected file values, got workers=%d sort=%d", cfg.Workers, cfg.Sizes.Sort)
	}
	if cfg.Sizes.Fibonacci != 100000 {
		t.Errorf("Expected default fibonacci size, got %d", cfg.Sizes.Fibonacci)
	}
	if cfg.Sizes.Primes != 777 {
		t.Errorf("Expected env override for primes, got %d", cfg.Sizes.Primes)
	}
	if cfg.Baseline != "C" {
		t.Errorf("Expected env override for baseline, got %q", cfg.Baseline)
	}
	if cfg.Thresholds.SortPartition != 100 {
		t.Errorf("Expected sort_partition 100, got %d", cfg.Thresholds.SortPartition)
	}

	opts := cfg.MetricsOptions()
	if opts.Pairings.Explicit["C++ MPI"] != "C++" {
		t.Errorf("Expected case-preserving pairing, got %v", opts.Pairings.Explicit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative size", func(c *Config) { c.Sizes.Primes = -1 }},
		{"negative threshold", func(c *Config) { c.Thresholds.Sort = -5 }},
		{"negative fibonacci chunk", func(c *Config) { c.Thresholds.FibonacciMinChunk = -1 }},
		{"empty record suffix", func(c *Config) { c.RecordSuffix = "" }},
		{"zero sort max", func(c *Config) { c.Sizes.SortMaxValue = 0 }},
		{"empty implementation", func(c *Config) { c.Implementation = " " }},
		{"half pairing", func(c *Config) { c.Pairings = []Pairing{{Variant: "X MPI"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Pairings = []Pairing{{Variant: "Java MPI", Base: "Java"}}

	var buf bytes.Buffer
	if err := cfg.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "parbench.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestParallelThresholds(t *testing.T) {
	th := Default().ParallelThresholds()
	if th.Fibonacci != 100 || th.FibonacciMinChunk != 1000 || th.Primes != 10000 || th.SortPartition != 50000 {
		t.Errorf("Unexpected thresholds %+v", th)
	}
}
