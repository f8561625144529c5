package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/citypulse-cli/internal/dataset"
	"github.com/KaramelBytes/citypulse-cli/internal/schema"
)

// Tier is a traffic class.
type Tier string

const (
	TierNone   Tier = ""
	TierQuiet  Tier = "quiet"
	TierNormal Tier = "normal"
	TierBusy   Tier = "busy"
)

// Tiers in ascending order of traffic.
var Tiers = []Tier{TierQuiet, TierNormal, TierBusy}

// Color is the marker color used on the station map.
func (t Tier) Color() string {
	switch t {
	case TierQuiet:
		return "green"
	case TierNormal:
		return "orange"
	case TierBusy:
		return "red"
	}
	return "gray"
}

// ParseTier accepts quiet|normal|busy, or all/"" for no filter (TierNone).
func ParseTier(s string) (Tier, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "all":
		return TierNone, nil
	case string(TierQuiet), string(TierNormal), string(TierBusy):
		return Tier(v), nil
	}
	return TierNone, fmt.Errorf("invalid tier %q (use all, quiet, normal or busy)", s)
}

// Classify tiers v against thresholds: v <= low is quiet, v <= mid normal, else busy.
func Classify(v, low, mid float64) Tier {
	switch {
	case v <= low:
		return TierQuiet
	case v <= mid:
		return TierNormal
	default:
		return TierBusy
	}
}

// Series is the tiering of an arbitrary numeric series.
type Series struct {
	Low, Mid float64
	// Tiers is aligned with the input; null inputs get TierNone.
	Tiers   []Tier
	Nulls   int
	Warning *InsufficientDataWarning
}

// BucketizeSeries computes the 33rd/66th percentiles over the non-null values
// and tiers each value. With fewer than three values every value is normal and
// Warning is set.
func BucketizeSeries(values []dataset.NullFloat) Series {
	sorted := validValues(values)
	s := Series{Tiers: make([]Tier, len(values)), Nulls: len(values) - len(sorted)}
	if len(sorted) < 3 {
		s.Warning = &InsufficientDataWarning{Values: len(sorted)}
		for i, v := range values {
			if present(v) {
				s.Tiers[i] = TierNormal
			}
		}
		return s
	}
	s.Low = quantile(sorted, LowQuantile)
	s.Mid = quantile(sorted, MidQuantile)
	for i, v := range values {
		if present(v) {
			s.Tiers[i] = Classify(v.Value, s.Low, s.Mid)
		}
	}
	return s
}

// StationScore is one station's traffic and tier.
type StationScore struct {
	Station string  `json:"station"`
	Score   float64 `json:"score"`
	Tier    Tier    `json:"tier"`
}

// Buckets is the tiering of metro stations for one category subset.
type Buckets struct {
	Subset   schema.Subset
	Low, Mid float64
	// Stations with a traffic value, in input order.
	Stations []StationScore
	// Nulls counts stations with none of the subset's categories present.
	Nulls   int
	Warning *InsufficientDataWarning
}

// Bucketize sums each station's traffic over the subset's categories and tiers
// the stations. Thresholds come from this population only and are recomputed
// on every call.
func Bucketize(stations []dataset.StationTraffic, subset schema.Subset) Buckets {
	cats := subset.Categories()
	values := make([]dataset.NullFloat, len(stations))
	for i, st := range stations {
		values[i] = st.Traffic(cats)
	}
	s := BucketizeSeries(values)
	b := Buckets{Subset: subset, Low: s.Low, Mid: s.Mid, Nulls: s.Nulls, Warning: s.Warning}
	for i, st := range stations {
		if !present(values[i]) {
			continue
		}
		b.Stations = append(b.Stations, StationScore{Station: st.Station, Score: values[i].Value, Tier: s.Tiers[i]})
	}
	return b
}

// Filter returns the stations in tier t; TierNone returns all of them.
func (b Buckets) Filter(t Tier) []StationScore {
	if t == TierNone {
		return b.Stations
	}
	var out []StationScore
	for _, s := range b.Stations {
		if s.Tier == t {
			out = append(out, s)
		}
	}
	return out
}

// Counts tallies stations per tier.
func (b Buckets) Counts() map[Tier]int {
	out := map[Tier]int{}
	for _, s := range b.Stations {
		out[s.Tier]++
	}
	return out
}
