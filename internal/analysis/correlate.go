package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/citypulse-cli/internal/schema"
)

// Correlation is Pearson r between one covariate and daily rentals.
type Correlation struct {
	Covariate schema.Covariate `json:"covariate"`
	R         float64          `json:"r"`
	N         int              `json:"n"`
	Valid     bool             `json:"valid"`
}

// Correlate computes r for each covariate against rentals, dropping days where
// the covariate is null. Results are ordered by |r| descending, undefined last.
func Correlate(rows []DailyRow, covariates []schema.Covariate) []Correlation {
	out := make([]Correlation, 0, len(covariates))
	for _, c := range covariates {
		var pa pairAcc
		for _, r := range rows {
			if v := r.Weather.Get(c); present(v) {
				pa.add(v.Value, float64(r.Total))
			}
		}
		rv, ok := pa.r()
		out = append(out, Correlation{Covariate: c, R: rv, N: int(pa.n), Valid: ok})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Valid != out[j].Valid {
			return out[i].Valid
		}
		return math.Abs(out[i].R) > math.Abs(out[j].R)
	})
	return out
}
