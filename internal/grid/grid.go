// Package grid builds and loads the parameter points a sweep evaluates.
package grid

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Point is one set of policy ratios to simulate. Items of 0 means the
// sweep's base item count.
type Point struct {
	Items          int     `json:"items,omitempty" yaml:"items,omitempty"`
	LookRatio      float64 `json:"look_ratio" yaml:"look_ratio"`
	ThresholdRatio float64 `json:"threshold_ratio" yaml:"threshold_ratio"`
}

// Grid is an ordered list of points.
type Grid []Point

// Thresholds returns the distinct threshold ratios in ascending order.
func (g Grid) Thresholds() []float64 {
	seen := make(map[float64]bool, len(g))
	var out []float64
	for _, p := range g {
		if !seen[p.ThresholdRatio] {
			seen[p.ThresholdRatio] = true
			out = append(out, p.ThresholdRatio)
		}
	}
	sort.Float64s(out)
	return out
}

// Steps returns evenly spaced values from start to stop inclusive, step
// apart. The last value is stop even when step does not divide the range.
func Steps(start, stop, step float64) ([]float64, error) {
	switch {
	case math.IsNaN(start) || math.IsNaN(stop) || math.IsNaN(step):
		return nil, fmt.Errorf("range bounds must be numbers")
	case step <= 0:
		return nil, fmt.Errorf("step must be positive, got %v", step)
	case stop < start:
		return nil, fmt.Errorf("stop %v is below start %v", stop, start)
	}
	// Tolerate float error so 0..1 by 0.1 yields 11 values, not 10.
	n := int(math.Floor((stop-start)/step+1e-9)) + 1
	out := []float64{start}
	if n > 1 {
		out = floats.Span(make([]float64, n), start, start+float64(n-1)*step)
	}
	if last := out[len(out)-1]; last < stop-1e-9 {
		out = append(out, stop)
	}
	return out, nil
}

// Cartesian pairs every look ratio with every threshold ratio, thresholds
// varying slowest.
func Cartesian(lookRatios, thresholds []float64) Grid {
	g := make(Grid, 0, len(lookRatios)*len(thresholds))
	for _, thr := range thresholds {
		for _, look := range lookRatios {
			g = append(g, Point{LookRatio: look, ThresholdRatio: thr})
		}
	}
	return g
}

// ParseFloats parses a comma-separated list such as "0.5,0.8,1".
func ParseFloats(s string) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", field, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadFile loads a grid from a CSV or JSON file. Relative paths are
// resolved against baseDir.
//
// CSV files need a header row naming look_ratio and threshold_ratio, and
// optionally items. JSON files hold an array of objects with the same keys.
func LoadFile(path, baseDir string) (Grid, error) {
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var g Grid
	var err error

	switch ext {
	case ".csv":
		g, err = loadCSV(path)
	case ".json":
		g, err = loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported grid format %q (use .csv or .json)", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if len(g) == 0 {
		return nil, fmt.Errorf("grid file %s is empty", path)
	}

	return g, nil
}

// loadCSV reads a header row and one point per following row.
func loadCSV(path string) (Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must have header row and at least one data row")
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	lookCol, ok := cols["look_ratio"]
	if !ok {
		return nil, fmt.Errorf("CSV header is missing look_ratio")
	}
	thrCol, ok := cols["threshold_ratio"]
	if !ok {
		return nil, fmt.Errorf("CSV header is missing threshold_ratio")
	}
	itemsCol, hasItems := cols["items"]

	g := make(Grid, 0, len(records)-1)
	for n, record := range records[1:] {
		line := n + 2
		var p Point
		if p.LookRatio, err = parseField(record, lookCol); err != nil {
			return nil, fmt.Errorf("line %d: look_ratio: %w", line, err)
		}
		if p.ThresholdRatio, err = parseField(record, thrCol); err != nil {
			return nil, fmt.Errorf("line %d: threshold_ratio: %w", line, err)
		}
		if hasItems && itemsCol < len(record) && strings.TrimSpace(record[itemsCol]) != "" {
			if p.Items, err = strconv.Atoi(strings.TrimSpace(record[itemsCol])); err != nil {
				return nil, fmt.Errorf("line %d: items: %w", line, err)
			}
		}
		g = append(g, p)
	}

	return g, nil
}

func parseField(record []string, col int) (float64, error) {
	if col >= len(record) {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
}

// loadJSON reads an array of point objects.
func loadJSON(path string) (Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("JSON must be an array of objects: %w", err)
	}

	return g, nil
}
