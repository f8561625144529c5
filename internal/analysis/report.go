package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/schema"
)

// Report collects pipeline results for Markdown rendering.
type Report struct {
	RunID        string
	Generated    time.Time
	Sources      []string
	Join         *JoinResult
	Regressions  []RegressionOutcome
	Correlations []Correlation
	Buckets      *Buckets
	// MaxStations caps the station table; 0 means 25.
	MaxStations int
	// StationTier limits the station table to one tier. Tier counts always
	// cover every station.
	StationTier Tier
	Notes       []string
}

// Note appends a line to the [NOTES] section.
func (r *Report) Note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// Markdown renders the report in bracketed sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[RUN]\n")
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}
	if !r.Generated.IsZero() {
		b.WriteString(fmt.Sprintf("Generated: %s\n", r.Generated.UTC().Format(time.RFC3339)))
	}
	b.WriteString(fmt.Sprintf("Schema: v%d\n", schema.Version))
	for _, s := range r.Sources {
		b.WriteString(fmt.Sprintf("Source: %s\n", s))
	}

	if j := r.Join; j != nil {
		b.WriteString("\n[JOIN]\n")
		b.WriteString(fmt.Sprintf("Joined days: %d\n", len(j.Rows)))
		if len(j.Rows) > 0 {
			b.WriteString(fmt.Sprintf("Range: %s .. %s\n", j.Rows[0].Date.Format("2006-01-02"), j.Rows[len(j.Rows)-1].Date.Format("2006-01-02")))
			var total int
			for _, row := range j.Rows {
				total += row.Total
			}
			b.WriteString(fmt.Sprintf("Rentals on joined days: %d\n", total))
		}
		b.WriteString(fmt.Sprintf("Unmatched rental days: %d\n", j.UnmatchedRentalDays))
		b.WriteString(fmt.Sprintf("Unmatched weather days: %d\n", j.UnmatchedWeatherDays))
		b.WriteString(fmt.Sprintf("Rows dropped while loading: %d\n", j.DroppedRows))
	}

	if len(r.Regressions) > 0 {
		b.WriteString("\n[REGRESSION]\n")
		for _, o := range r.Regressions {
			if !o.OK() {
				b.WriteString(fmt.Sprintf("- %s: failed: %s\n", o.Covariate.Title(), o.Failure))
				continue
			}
			f := o.Fit
			b.WriteString(fmt.Sprintf("- %s: %s, R²=%.4f (n=%d", o.Covariate.Title(), f.Equation(), f.RSquared, f.N))
			if f.Dropped > 0 {
				b.WriteString(fmt.Sprintf(", %d null pairs skipped", f.Dropped))
			}
			b.WriteString(")\n")
		}
	}

	if len(r.Correlations) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, c := range r.Correlations {
			if !c.Valid {
				b.WriteString(fmt.Sprintf("- %s ~ rentals: undefined (n=%d)\n", c.Covariate, c.N))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s ~ rentals: r=%.3f (n=%d)\n", c.Covariate, c.R, c.N))
		}
	}

	if bk := r.Buckets; bk != nil {
		b.WriteString("\n[STATIONS]\n")
		b.WriteString(fmt.Sprintf("Subset: %s\n", bk.Subset))
		if bk.Warning == nil {
			b.WriteString(fmt.Sprintf("Thresholds: quiet <= %.0f < normal <= %.0f < busy\n", bk.Low, bk.Mid))
		}
		counts := bk.Counts()
		b.WriteString(fmt.Sprintf("Tiers: quiet %d, normal %d, busy %d", counts[TierQuiet], counts[TierNormal], counts[TierBusy]))
		if bk.Nulls > 0 {
			b.WriteString(fmt.Sprintf("; %d without data", bk.Nulls))
		}
		b.WriteString("\n")
		limit := r.MaxStations
		if limit <= 0 {
			limit = 25
		}
		listed := bk.Filter(r.StationTier)
		if r.StationTier != TierNone {
			b.WriteString(fmt.Sprintf("Showing: %s (%d of %d)\n", r.StationTier, len(listed), len(bk.Stations)))
		}
		if len(listed) > 0 {
			b.WriteString("| Station | Score | Tier |\n| --- | --- | --- |\n")
			for i, s := range listed {
				if i == limit {
					b.WriteString(fmt.Sprintf("| … %d more | | |\n", len(listed)-limit))
					break
				}
				b.WriteString(fmt.Sprintf("| %s | %.0f | %s |\n", safeVal(s.Station), s.Score, s.Tier))
			}
		}
	}

	notes := r.Notes
	if r.Buckets != nil && r.Buckets.Warning != nil {
		notes = append([]string{r.Buckets.Warning.Error()}, notes...)
	}
	if len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
