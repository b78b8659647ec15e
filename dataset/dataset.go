package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoPoints is returned when a source contains no data rows.
var ErrNoPoints = errors.New("dataset contains no points")

// BlobsConfig describes a set of Gaussian blobs.
type BlobsConfig struct {
	// Centers are the blob means. All centres must share one dimensionality.
	Centers [][]float64 `yaml:"centers"`
	// Samples is the total number of points, spread as evenly as possible.
	Samples int `yaml:"samples"`
	// Std is the standard deviation of every coordinate.
	Std float64 `yaml:"std"`
}

// DefaultBlobs returns the four-blob demonstration set: 300 samples around
// (0,0), (2,2), (-3,2) and (2,-4) with unit standard deviation.
func DefaultBlobs() BlobsConfig {
	return BlobsConfig{
		Centers: [][]float64{{0, 0}, {2, 2}, {-3, 2}, {2, -4}},
		Samples: 300,
		Std:     1,
	}
}

// Blobs draws cfg.Samples points and returns them with the index of the
// blob each one was drawn from. Points are emitted blob by blob; the first
// Samples%len(Centers) blobs get one extra point.
func Blobs(rng *rand.Rand, cfg BlobsConfig) ([][]float64, []int, error) {
	if len(cfg.Centers) == 0 {
		return nil, nil, errors.New("blobs: at least one centre is required")
	}
	if cfg.Samples <= 0 {
		return nil, nil, fmt.Errorf("blobs: samples must be positive, got %d", cfg.Samples)
	}
	if cfg.Std < 0 {
		return nil, nil, fmt.Errorf("blobs: std must be >= 0, got %v", cfg.Std)
	}
	dim := len(cfg.Centers[0])
	if dim == 0 {
		return nil, nil, errors.New("blobs: centres have no coordinates")
	}
	for i, c := range cfg.Centers {
		if len(c) != dim {
			return nil, nil, fmt.Errorf("blobs: centre %d has %d coordinates, want %d", i, len(c), dim)
		}
	}

	nc := len(cfg.Centers)
	points := make([][]float64, 0, cfg.Samples)
	labels := make([]int, 0, cfg.Samples)
	for b, centre := range cfg.Centers {
		n := cfg.Samples / nc
		if b < cfg.Samples%nc {
			n++
		}
		for range n {
			p := make([]float64, dim)
			for d := range p {
				p[d] = centre[d] + rng.NormFloat64()*cfg.Std
			}
			points = append(points, p)
			labels = append(labels, b)
		}
	}

	return points, labels, nil
}

// LoadCSV reads one point per row. A first row that does not parse as
// numbers is treated as a header. Empty rows are skipped.
func LoadCSV(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var points [][]float64
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", row, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}

		p, err := parseRow(rec)
		if err != nil {
			if row == 1 {
				continue // header
			}
			return nil, fmt.Errorf("csv row %d: %w", row, err)
		}
		if len(points) > 0 && len(p) != len(points[0]) {
			return nil, fmt.Errorf("csv row %d: %d columns, want %d", row, len(p), len(points[0]))
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	return points, nil
}

func parseRow(rec []string) ([]float64, error) {
	p := make([]float64, len(rec))
	for i, field := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		p[i] = v
	}
	return p, nil
}

type yamlFile struct {
	Points [][]float64 `yaml:"points"`
}

// LoadYAML reads a document of the form
//
//	points:
//	  - [0, 0]
//	  - [1.5, 2]
func LoadYAML(r io.Reader) ([][]float64, error) {
	var f yamlFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoPoints
		}
		return nil, fmt.Errorf("error parsing YAML dataset: %w", err)
	}
	if len(f.Points) == 0 {
		return nil, ErrNoPoints
	}
	dim := len(f.Points[0])
	for i, p := range f.Points {
		if len(p) != dim {
			return nil, fmt.Errorf("yaml point %d: %d coordinates, want %d", i, len(p), dim)
		}
	}
	return f.Points, nil
}
