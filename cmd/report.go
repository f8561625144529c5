package cmd

import (
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/analysis"
	"github.com/KaramelBytes/citypulse-cli/internal/schema"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	repOutput     string
	repSubset     string
	repCovariates []string
	repMaxRows    int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the whole pipeline and render one Markdown report",
	Long: `Loads every configured source, joins rentals with weather, fits the requested
regressions, ranks all covariates by correlation and tiers metro stations. A source that
fails to load only removes the sections that depend on it; the failure is listed in [NOTES].`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		subset, err := p.subset(repSubset)
		if err != nil {
			return err
		}
		covs, err := p.covariates(repCovariates)
		if err != nil {
			return err
		}

		r := &analysis.Report{RunID: uuid.NewString(), Generated: time.Now(), MaxStations: repMaxRows}

		j, rentals, weather, err := p.join()
		if err != nil {
			log.Error("rentals/weather unavailable", "error", err)
			r.Note("rentals/weather: %v", err)
		} else {
			r.Sources = append(r.Sources, rentals.Files...)
			r.Sources = append(r.Sources, weather.File)
			r.Join = &j
			for _, c := range covs {
				r.Regressions = append(r.Regressions, analysis.RegressCovariate(j.Rows, c))
			}
			r.Correlations = analysis.Correlate(j.Rows, schema.Covariates)
			r.Notes = append(r.Notes, dropNotes("rentals", rentals.Dropped, maxDropNotes)...)
			r.Notes = append(r.Notes, dropNotes("weather", weather.Dropped, maxDropNotes)...)
			if weather.Duplicates > 0 {
				r.Note("weather: %d duplicate dates ignored, first row kept", weather.Duplicates)
			}
			for _, o := range r.Regressions {
				if !o.OK() {
					log.Warn("regression failed", "covariate", string(o.Covariate), "error", o.Err)
				}
			}
		}

		b, metro, err := p.buckets(subset)
		if err != nil {
			log.Error("metro traffic unavailable", "error", err)
			r.Note("metro: %v", err)
		} else {
			r.Sources = append(r.Sources, metro.File)
			r.Buckets = &b
			r.Notes = append(r.Notes, dropNotes("metro", metro.Dropped, maxDropNotes)...)
			if b.Nulls > 0 {
				r.Note("metro: %d stations have no %s traffic and were not tiered", b.Nulls, subset)
			}
		}

		return emit(cmd.OutOrStdout(), repOutput, []byte(r.Markdown()))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repOutput, "output", "o", "", "write the report to a file instead of stdout")
	reportCmd.Flags().StringVar(&repSubset, "subset", "", "day subset for station tiers (default from config)")
	reportCmd.Flags().StringSliceVar(&repCovariates, "covariate", nil, "covariate(s) to regress on (default from config)")
	reportCmd.Flags().IntVar(&repMaxRows, "max-stations", 25, "max stations listed in [STATIONS]")
}
