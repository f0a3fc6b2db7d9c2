package stats

import (
	"fmt"
	"math"
	"sort"

	ms "github.com/montanaflynn/stats"
)

// DefaultPrecision is the number of decimals kept in a Record.
const DefaultPrecision = 3

// MaxPrecision is the largest accepted precision. A float64 holds about 15
// significant decimal digits, so more decimals cannot change a value.
const MaxPrecision = 15

// DefaultPercentiles are the centile thresholds reported by default, in percent.
var DefaultPercentiles = []float64{5, 15, 25, 50, 75, 85, 95}

// Options controls how a value sequence is summarized.
type Options struct {
	// Percentiles lists centile thresholds in percent, each in (0, 100].
	Percentiles []float64
	// Precision is the number of decimals to round to; negative disables rounding.
	Precision int
}

// DefaultOptions returns the default thresholds and precision.
func DefaultOptions() Options {
	p := make([]float64, len(DefaultPercentiles))
	copy(p, DefaultPercentiles)
	return Options{Percentiles: p, Precision: DefaultPrecision}
}

// Percentile is one centile of a Record.
type Percentile struct {
	Threshold float64 `json:"threshold"`
	Value     float64 `json:"value"`
}

// Record is the descriptive summary of one (region, field, shape) selection.
type Record struct {
	Count       int          `json:"count"`
	Min         float64      `json:"min"`
	Max         float64      `json:"max"`
	Mean        float64      `json:"mean"`
	Std         float64      `json:"std"`
	Percentiles []Percentile `json:"percentiles"`
}

// Percentile returns the value stored for threshold, if it was computed.
func (r *Record) Percentile(threshold float64) (float64, bool) {
	if r == nil {
		return 0, false
	}
	for _, p := range r.Percentiles {
		if p.Threshold == threshold {
			return p.Value, true
		}
	}
	return 0, false
}

// ValidatePrecision rejects precisions above MaxPrecision. Negative values are
// allowed and disable rounding.
func ValidatePrecision(precision int) error {
	if precision > MaxPrecision {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidPrecision, precision, MaxPrecision)
	}
	return nil
}

// NormalizePercentiles validates thresholds and returns them sorted ascending
// without duplicates.
func NormalizePercentiles(thresholds []float64) ([]float64, error) {
	out := make([]float64, 0, len(thresholds))
	seen := make(map[float64]struct{}, len(thresholds))
	for _, t := range thresholds {
		if math.IsNaN(t) || t <= 0 || t > 100 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPercentile, t)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Float64s(out)
	return out, nil
}

// Summarize computes min, max, mean, population standard deviation and the
// requested nearest-rank percentiles of values.
func Summarize(values []float64, opt Options) (*Record, error) {
	if len(values) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ValidatePrecision(opt.Precision); err != nil {
		return nil, err
	}
	thresholds, err := NormalizePercentiles(opt.Percentiles)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: index %d", ErrNonFinite, i)
		}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, err := ms.Mean(sorted)
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	std, err := ms.StandardDeviationPopulation(sorted)
	if err != nil {
		return nil, fmt.Errorf("standard deviation: %w", err)
	}
	if math.IsInf(mean, 0) || math.IsInf(std, 0) || math.IsNaN(std) {
		return nil, fmt.Errorf("%w: moments overflow float64", ErrNonFinite)
	}

	rec := &Record{
		Count:       len(sorted),
		Min:         round(sorted[0], opt.Precision),
		Max:         round(sorted[len(sorted)-1], opt.Precision),
		Mean:        round(mean, opt.Precision),
		Std:         round(std, opt.Precision),
		Percentiles: make([]Percentile, 0, len(thresholds)),
	}
	for _, t := range thresholds {
		v := sorted[NearestRank(len(sorted), t/100)]
		rec.Percentiles = append(rec.Percentiles, Percentile{Threshold: t, Value: round(v, opt.Precision)})
	}
	return rec, nil
}

// NearestRank returns the index into an ascending slice of n values holding the
// p-quantile (p in (0, 1]): ceil(n*p) - 1, clamped to [0, n-1]. It does not
// interpolate; for p = 0.5 and even n this is the lower middle element.
func NearestRank(n int, p float64) int {
	idx := int(math.Ceil(float64(n)*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

func round(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	r, err := ms.Round(v, precision)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		// v*10^precision overflowed; v is already as precise as it gets
		return v
	}
	if r == 0 {
		// drop the sign of -0 so exports never print "-0"
		return 0
	}
	return r
}
