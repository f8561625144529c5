// Package analysis joins rentals to weather, tiers metro stations by traffic
// and fits the weather/rentals regressions.
package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/citypulse-cli/internal/dataset"
)

// Tier thresholds as quantiles.
const (
	LowQuantile = 0.33
	MidQuantile = 0.66
)

// quantile interpolates linearly between closest ranks of a sorted slice
// (type 7 in Hyndman and Fan, the usual spreadsheet PERCENTILE).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// present reports whether v holds a usable finite value. NaN and ±Inf count
// as missing.
func present(v dataset.NullFloat) bool {
	return v.Valid && !math.IsNaN(v.Value) && !math.IsInf(v.Value, 0)
}

// validValues returns the present values in a sorted copy.
func validValues(vals []dataset.NullFloat) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if present(v) {
			out = append(out, v.Value)
		}
	}
	sort.Float64s(out)
	return out
}

// pairAcc accumulates sums for a Pearson correlation over paired values.
type pairAcc struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXX float64
	sumYY float64
	sumXY float64
}

func (pa *pairAcc) add(x, y float64) {
	pa.n++
	pa.sumX += x
	pa.sumY += y
	pa.sumXX += x * x
	pa.sumYY += y * y
	pa.sumXY += x * y
}

// r returns the clamped Pearson coefficient; ok is false when undefined.
func (pa *pairAcc) r() (float64, bool) {
	if pa.n < 2 {
		return 0, false
	}
	denom := math.Sqrt((pa.n*pa.sumXX - pa.sumX*pa.sumX) * (pa.n*pa.sumYY - pa.sumY*pa.sumY))
	if denom == 0 || math.IsNaN(denom) {
		return 0, false
	}
	r := (pa.n*pa.sumXY - pa.sumX*pa.sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}
