package cmd

import (
	"github.com/KaramelBytes/citypulse-cli/internal/analysis"
	"github.com/KaramelBytes/citypulse-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	regCovariates []string
	regFormat     string
)

type regressJSON struct {
	Join        joinSummary                  `json:"join"`
	Regressions []analysis.RegressionOutcome `json:"regressions"`
}

var regressCmd = &cobra.Command{
	Use:   "regress",
	Short: "Fit daily rentals against a weather covariate by least squares",
	Long: `Joins daily rental totals with weather by date and fits rentals = slope * covariate + intercept
for each requested covariate. A covariate that cannot be fitted is reported as a failure
instead of aborting the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		covs, err := p.covariates(regCovariates)
		if err != nil {
			return err
		}
		format, err := parseFormat(regFormat)
		if err != nil {
			return err
		}
		j, _, _, err := p.join()
		if err != nil {
			return err
		}
		outcomes := make([]analysis.RegressionOutcome, 0, len(covs))
		for _, c := range covs {
			o := analysis.RegressCovariate(j.Rows, c)
			if !o.OK() {
				log.Warn("regression failed", "covariate", string(c), "error", o.Err)
			}
			outcomes = append(outcomes, o)
		}

		if format == "json" {
			data, err := utils.PrettyJSON(regressJSON{Join: summarizeJoin(j), Regressions: outcomes})
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), "", append(data, '\n'))
		}
		r := &analysis.Report{Join: &j, Regressions: outcomes}
		return emit(cmd.OutOrStdout(), "", []byte(sections(r.Markdown())))
	},
}

func init() {
	rootCmd.AddCommand(regressCmd)
	regressCmd.Flags().StringSliceVar(&regCovariates, "covariate", nil, "weather covariate(s): tavg|tmin|tmax|prcp|snow|wdir|wspd|wpgt|pres|tsun (default from config)")
	regressCmd.Flags().StringVar(&regFormat, "format", "md", "output format: md|json")
}
