// Package config handles YAML configuration parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stopsim/internal/collector"
	"stopsim/internal/core"
	"stopsim/internal/grid"
	"stopsim/internal/sequence"

	"gopkg.in/yaml.v3"
)

// Default values, matching the interactive defaults of the simulator.
const (
	DefaultItems          = 100
	DefaultSimulations    = 10000
	DefaultLookRatio      = 0.37
	DefaultThresholdRatio = 1.0
	DefaultProgressRate   = 10
)

// Config is the root configuration structure.
type Config struct {
	Simulation   core.Params            `yaml:"simulation"`
	Execution    ExecutionConfig        `yaml:"execution,omitempty"`
	Sample       SampleConfig           `yaml:"sample,omitempty"`
	Sweep        SweepConfig            `yaml:"sweep,omitempty"`
	Output       OutputConfig           `yaml:"output,omitempty"`
	Expectations collector.Expectations `yaml:"expectations,omitempty"`

	// dir is the directory of the loaded file; relative paths resolve
	// against it.
	dir string
}

// ExecutionConfig controls how trials are scheduled.
type ExecutionConfig struct {
	Workers   int    `yaml:"workers"`
	ChunkSize int    `yaml:"chunk_size"`
	Seed      uint64 `yaml:"seed"`
	// ProgressRate caps progress updates per second. 0 forwards all.
	ProgressRate float64 `yaml:"progress_rate"`
}

// SampleConfig controls the single example sequence.
type SampleConfig struct {
	Items        int                   `yaml:"items"`
	Distribution sequence.Distribution `yaml:"distribution"`
}

// SweepConfig defines the parameter grid of a sweep. Grid, when set, takes
// precedence over the look ratio range.
type SweepConfig struct {
	LookStart  float64   `yaml:"look_start"`
	LookStop   float64   `yaml:"look_stop"`
	LookStep   float64   `yaml:"look_step"`
	Thresholds []float64 `yaml:"thresholds"`
	Grid       string    `yaml:"grid,omitempty"`
}

// OutputConfig controls presentation.
type OutputConfig struct {
	Format        string `yaml:"format"`
	Quiet         bool   `yaml:"quiet"`
	LogLevel      string `yaml:"log_level"`
	HistogramBins int    `yaml:"histogram_bins"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Simulation: core.Params{
			Items:          DefaultItems,
			Simulations:    DefaultSimulations,
			LookRatio:      DefaultLookRatio,
			ThresholdRatio: DefaultThresholdRatio,
		},
		Execution: ExecutionConfig{
			ProgressRate: DefaultProgressRate,
		},
		Sample: SampleConfig{
			Items:        20,
			Distribution: sequence.Normal,
		},
		Sweep: SweepConfig{
			LookStart:  0.05,
			LookStop:   0.95,
			LookStep:   0.05,
			Thresholds: []float64{1, 0.95, 0.9, 0.85, 0.8},
		},
		Output: OutputConfig{
			Format:        "text",
			LogLevel:      "info",
			HistogramBins: collector.DefaultValueBins,
		},
	}
}

// LoadConfig reads and parses a YAML configuration file. Fields the file
// omits keep their Default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.dir = filepath.Dir(path)

	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulation: %w", err))
	}
	if c.Execution.Workers < 0 {
		errs = append(errs, fmt.Errorf("execution: workers must be >= 0, got %d", c.Execution.Workers))
	}
	if c.Execution.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("execution: chunk_size must be >= 0, got %d", c.Execution.ChunkSize))
	}
	if c.Sample.Items < 1 {
		errs = append(errs, fmt.Errorf("sample: %w", &core.ParamError{Name: "items", Value: c.Sample.Items, Reason: "must be >= 1"}))
	}
	if c.Sweep.Grid == "" {
		if _, err := grid.Steps(c.Sweep.LookStart, c.Sweep.LookStop, c.Sweep.LookStep); err != nil {
			errs = append(errs, fmt.Errorf("sweep: look range: %w", err))
		}
		if len(c.Sweep.Thresholds) == 0 {
			errs = append(errs, fmt.Errorf("sweep: at least one threshold is required"))
		}
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("output: format must be text or json, got %q", c.Output.Format))
	}
	if c.Output.HistogramBins < 0 {
		errs = append(errs, fmt.Errorf("output: histogram_bins must be >= 0, got %d", c.Output.HistogramBins))
	}
	if err := c.Expectations.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("expectations: %w", err))
	}
	return errors.Join(errs...)
}

// SweepGrid builds the sweep grid from the grid file or the look ratio
// range crossed with the thresholds.
func (c *Config) SweepGrid() (grid.Grid, error) {
	if c.Sweep.Grid != "" {
		return grid.LoadFile(c.Sweep.Grid, c.dir)
	}
	looks, err := grid.Steps(c.Sweep.LookStart, c.Sweep.LookStop, c.Sweep.LookStep)
	if err != nil {
		return nil, err
	}
	return grid.Cartesian(looks, c.Sweep.Thresholds), nil
}
