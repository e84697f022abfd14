// Package config loads benchmark and aggregation settings from an optional
// YAML file with PARBENCH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/headlands-org/go-parbench/internal/metrics"
	"github.com/headlands-org/go-parbench/internal/parallel"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// EnvPrefix prefixes every environment override, e.g. PARBENCH_SIZES_SORT.
const EnvPrefix = "PARBENCH"

// Sizes are the problem sizes used by the runner.
type Sizes struct {
	Fibonacci    int `mapstructure:"fibonacci" yaml:"fibonacci"`
	Primes       int `mapstructure:"primes" yaml:"primes"`
	Sort         int `mapstructure:"sort" yaml:"sort"`
	SortMaxValue int `mapstructure:"sort_max_value" yaml:"sort_max_value"`
	SortDepth    int `mapstructure:"sort_depth" yaml:"sort_depth"`
}

// Thresholds mirror parallel.Thresholds.
type Thresholds struct {
	Fibonacci         int `mapstructure:"fibonacci" yaml:"fibonacci"`
	FibonacciMinChunk int `mapstructure:"fibonacci_min_chunk" yaml:"fibonacci_min_chunk"`
	Primes            int `mapstructure:"primes" yaml:"primes"`
	PrimesMinChunk    int `mapstructure:"primes_min_chunk" yaml:"primes_min_chunk"`
	Sort              int `mapstructure:"sort" yaml:"sort"`
	SortPartition     int `mapstructure:"sort_partition" yaml:"sort_partition"`
}

// Pairing declares one message-passing variant and its base. Pairings are a
// list rather than a map because config keys are case-folded.
type Pairing struct {
	Variant string `mapstructure:"variant" yaml:"variant"`
	Base    string `mapstructure:"base" yaml:"base"`
}

// Config is the full parbench configuration.
type Config struct {
	Implementation string `mapstructure:"implementation" yaml:"implementation"`
	Workers        int    `mapstructure:"workers" yaml:"workers"`
	Seed           int64  `mapstructure:"seed" yaml:"seed"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`

	LogDir       string `mapstructure:"log_dir" yaml:"log_dir"`
	RecordSuffix string `mapstructure:"record_suffix" yaml:"record_suffix"`
	Output       string `mapstructure:"output" yaml:"output"`
	CSV          string `mapstructure:"csv" yaml:"csv"`
	Benchfmt     string `mapstructure:"benchfmt" yaml:"benchfmt"`
	ChartsDir    string `mapstructure:"charts_dir" yaml:"charts_dir"`

	Baseline  string    `mapstructure:"baseline" yaml:"baseline"`
	MPISuffix string    `mapstructure:"mpi_suffix" yaml:"mpi_suffix"`
	Pairings  []Pairing `mapstructure:"pairings" yaml:"pairings"`

	Sizes      Sizes      `mapstructure:"sizes" yaml:"sizes"`
	Thresholds Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
}

// Default returns the built-in configuration.
func Default() Config {
	th := parallel.DefaultThresholds()
	return Config{
		Implementation: "Go",
		Workers:        0,
		Seed:           42,
		LogLevel:       "info",
		LogDir:         "logs",
		RecordSuffix:   ".json",
		Output:         "results/metrics.json",
		CSV:            "results/results.csv",
		Benchfmt:       "results/results.txt",
		ChartsDir:      "results/charts",
		Baseline:       metrics.DefaultBaseline,
		MPISuffix:      metrics.DefaultSuffix,
		Sizes: Sizes{
			Fibonacci:    100000,
			Primes:       100000,
			Sort:         1000000,
			SortMaxValue: 1000000,
			SortDepth:    2,
		},
		Thresholds: Thresholds{
			Fibonacci:         th.Fibonacci,
			FibonacciMinChunk: th.FibonacciMinChunk,
			Primes:            th.Primes,
			PrimesMinChunk:    th.PrimesMinChunk,
			Sort:              th.Sort,
			SortPartition:     th.SortPartition,
		},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("implementation", d.Implementation)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("record_suffix", d.RecordSuffix)
	v.SetDefault("output", d.Output)
	v.SetDefault("csv", d.CSV)
	v.SetDefault("benchfmt", d.Benchfmt)
	v.SetDefault("charts_dir", d.ChartsDir)
	v.SetDefault("baseline", d.Baseline)
	v.SetDefault("mpi_suffix", d.MPISuffix)
	v.SetDefault("pairings", []map[string]string{})

	v.SetDefault("sizes.fibonacci", d.Sizes.Fibonacci)
	v.SetDefault("sizes.primes", d.Sizes.Primes)
	v.SetDefault("sizes.sort", d.Sizes.Sort)
	v.SetDefault("sizes.sort_max_value", d.Sizes.SortMaxValue)
	v.SetDefault("sizes.sort_depth", d.Sizes.SortDepth)

	v.SetDefault("thresholds.fibonacci", d.Thresholds.Fibonacci)
	v.SetDefault("thresholds.fibonacci_min_chunk", d.Thresholds.FibonacciMinChunk)
	v.SetDefault("thresholds.primes", d.Thresholds.Primes)
	v.SetDefault("thresholds.primes_min_chunk", d.Thresholds.PrimesMinChunk)
	v.SetDefault("thresholds.sort", d.Thresholds.Sort)
	v.SetDefault("thresholds.sort_partition", d.Thresholds.SortPartition)
}

// New returns a viper instance primed with defaults and environment
// overrides. Callers may bind flags to it before calling Decode.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Binder attaches an extra source, typically command-line flags, to v.
type Binder func(v *viper.Viper) error

// Load reads path (if non-empty) on top of the defaults and environment, then
// validates the result. Sources attached by binders take precedence over the
// file when they are set.
func Load(path string, binders ...Binder) (Config, error) {
	v := New()
	for _, bind := range binders {
		if err := bind(v); err != nil {
			return Config{}, fmt.Errorf("bind config source: %w", err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects negative sizes and thresholds and incomplete pairings.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"sizes.fibonacci", c.Sizes.Fibonacci},
		{"sizes.primes", c.Sizes.Primes},
		{"sizes.sort", c.Sizes.Sort},
		{"sizes.sort_depth", c.Sizes.SortDepth},
		{"thresholds.fibonacci", c.Thresholds.Fibonacci},
		{"thresholds.fibonacci_min_chunk", c.Thresholds.FibonacciMinChunk},
		{"thresholds.primes", c.Thresholds.Primes},
		{"thresholds.primes_min_chunk", c.Thresholds.PrimesMinChunk},
		{"thresholds.sort", c.Thresholds.Sort},
		{"thresholds.sort_partition", c.Thresholds.SortPartition},
	}
	for _, ch := range checks {
		if ch.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalid, ch.name, ch.value)
		}
	}
	if c.Sizes.SortMaxValue < 1 {
		return fmt.Errorf("%w: sizes.sort_max_value must be at least 1, got %d", ErrInvalid, c.Sizes.SortMaxValue)
	}
	if c.RecordSuffix == "" {
		return fmt.Errorf("%w: record_suffix must not be empty", ErrInvalid)
	}
	if strings.TrimSpace(c.Implementation) == "" {
		return fmt.Errorf("%w: implementation must not be empty", ErrInvalid)
	}
	for i, p := range c.Pairings {
		if strings.TrimSpace(p.Variant) == "" || strings.TrimSpace(p.Base) == "" {
			return fmt.Errorf("%w: pairings[%d] needs both variant and base", ErrInvalid, i)
		}
	}
	return nil
}

// ParallelThresholds converts the thresholds for the workload engine.
func (c Config) ParallelThresholds() parallel.Thresholds {
	return parallel.Thresholds{
		Fibonacci:         c.Thresholds.Fibonacci,
		FibonacciMinChunk: c.Thresholds.FibonacciMinChunk,
		Primes:            c.Thresholds.Primes,
		PrimesMinChunk:    c.Thresholds.PrimesMinChunk,
		Sort:              c.Thresholds.Sort,
		SortPartition:     c.Thresholds.SortPartition,
	}
}

// MetricsOptions converts the aggregation settings.
func (c Config) MetricsOptions() metrics.Options {
	explicit := make(map[string]string, len(c.Pairings))
	for _, p := range c.Pairings {
		explicit[p.Variant] = p.Base
	}
	return metrics.Options{
		Baseline: c.Baseline,
		Pairings: metrics.Pairings{Explicit: explicit, Suffix: c.MPISuffix},
	}
}

// WriteYAML renders c as a YAML config file.
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
