// Package config loads the YAML configuration of the lloyd command.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/dataset"
	"github.com/hupe1980/lloyd/history"
)

// Config represents the run configuration.
type Config struct {
	K             int                 `yaml:"k"`
	Seed          *int64              `yaml:"seed,omitempty"`
	Epsilon       float64             `yaml:"epsilon"`
	MaxIterations int                 `yaml:"max_iterations"`
	Workers       int                 `yaml:"workers"`
	Input         string              `yaml:"input,omitempty"` // .csv or .yaml; blobs are generated when empty
	Blobs         dataset.BlobsConfig `yaml:"blobs"`
	Output        OutputConfig        `yaml:"output"`
	Verbose       bool                `yaml:"verbose,omitempty"`
}

// OutputConfig controls what the run writes.
type OutputConfig struct {
	GIF         string `yaml:"gif,omitempty"`
	History     string `yaml:"history,omitempty"`
	Compression string `yaml:"compression,omitempty"` // none, lz4 or zstd
	Delay       int    `yaml:"delay,omitempty"`       // hundredths of a second per frame
	Width       int    `yaml:"width,omitempty"`
	Height      int    `yaml:"height,omitempty"`
}

// Default returns the configuration of the four-blob demonstration.
func Default() *Config {
	return &Config{
		K:             4,
		Epsilon:       lloyd.DefaultEpsilon,
		MaxIterations: lloyd.DefaultMaxIterations,
		Workers:       1,
		Blobs:         dataset.DefaultBlobs(),
		Output: OutputConfig{
			GIF:         "kmeans.gif",
			Compression: "zstd",
			Delay:       50,
			Width:       480,
			Height:      480,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that the clustering options do not cover.
func (c *Config) Validate() error {
	var errs []error
	if c.K <= 0 {
		errs = append(errs, fmt.Errorf("k must be positive, got %d", c.K))
	}
	if c.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("epsilon must be >= 0, got %v", c.Epsilon))
	}
	if _, err := history.ParseCompression(c.Output.Compression); err != nil {
		errs = append(errs, err)
	}
	if c.Output.Delay < 0 {
		errs = append(errs, fmt.Errorf("output.delay must be >= 0, got %d", c.Output.Delay))
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		errs = append(errs, fmt.Errorf("output size must be positive, got %dx%d", c.Output.Width, c.Output.Height))
	}
	return errors.Join(errs...)
}

// Options converts the configuration into clustering options.
func (c *Config) Options() []lloyd.Option {
	opts := []lloyd.Option{
		lloyd.WithEpsilon(c.Epsilon),
		lloyd.WithMaxIterations(c.MaxIterations),
		lloyd.WithWorkers(c.Workers),
	}
	if c.Seed != nil {
		opts = append(opts, lloyd.WithSeed(*c.Seed))
	}
	return opts
}
