// Package engine runs the statistics over every requested
// (region, field, shape) combination and fills an aggregation store.
package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
	"github.com/KaramelBytes/meshstats-cli/internal/mesh"
	"github.com/KaramelBytes/meshstats-cli/internal/stats"
)

// TripleError is a failure to summarize one (region, field, shape) combination.
type TripleError struct {
	Region string `json:"region"`
	Field  string `json:"field"`
	Shape  string `json:"shape"`
	Err    error  `json:"-"`
}

func (e *TripleError) Error() string {
	return fmt.Sprintf("region %q, field %q, shape %q: %v", e.Region, e.Field, e.Shape, e.Err)
}

func (e *TripleError) Unwrap() error { return e.Err }

// Result summarizes a run.
type Result struct {
	Recorded int
	Failures []*TripleError
}

// Runner computes statistics with fixed options.
type Runner struct {
	Options stats.Options
	Logger  *slog.Logger
}

// NewRunner returns a Runner; a nil logger discards.
func NewRunner(opt stats.Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{Options: opt, Logger: logger}
}

// Run clears store and records one summary per (region, field, shape). Regions
// and fields are visited in name order and shapes in the order given. A failing
// combination is reported in Result.Failures and does not stop the run.
// Region mesh.EntireShape selects every point.
func (r *Runner) Run(shapes []mesh.Shape, fields, regions []string, store *aggregate.Store) *Result {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store.Clear()
	res := &Result{}
	for _, region := range sortedCopy(regions) {
		for _, field := range sortedCopy(fields) {
			for _, shape := range shapes {
				rec, err := r.summarize(shape, field, region)
				if err != nil {
					te := &TripleError{Region: region, Field: field, Shape: shape.Name(), Err: err}
					logger.Warn("statistics skipped", "region", region, "field", field, "shape", shape.Name(), "err", err)
					res.Failures = append(res.Failures, te)
					continue
				}
				store.Record(region, field, shape.Name(), rec)
				res.Recorded++
				logger.Debug("recorded", "region", region, "field", field, "shape", shape.Name(), "count", rec.Count)
			}
		}
	}
	return res
}

func (r *Runner) summarize(shape mesh.Shape, field, region string) (*stats.Record, error) {
	values, err := shape.Values(field)
	if err != nil {
		return nil, err
	}
	var mask stats.Mask
	if region != mesh.EntireShape {
		m, err := shape.Values(region)
		if err != nil {
			return nil, err
		}
		mask = m
	}
	selected, err := stats.Select(values, mask)
	if err != nil {
		return nil, err
	}
	return stats.Summarize(selected, r.Options)
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
