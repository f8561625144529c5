package cmd

import (
	"github.com/KaramelBytes/citypulse-cli/internal/analysis"
	"github.com/KaramelBytes/citypulse-cli/internal/schema"
	"github.com/KaramelBytes/citypulse-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	corCovariates []string
	corFormat     string
)

type correlateJSON struct {
	Join         joinSummary            `json:"join"`
	Correlations []analysis.Correlation `json:"correlations"`
}

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Rank weather covariates by Pearson correlation with daily rentals",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		covs := schema.Covariates
		if len(corCovariates) > 0 {
			if covs, err = p.covariates(corCovariates); err != nil {
				return err
			}
		}
		format, err := parseFormat(corFormat)
		if err != nil {
			return err
		}
		j, _, _, err := p.join()
		if err != nil {
			return err
		}
		cs := analysis.Correlate(j.Rows, covs)

		if format == "json" {
			data, err := utils.PrettyJSON(correlateJSON{Join: summarizeJoin(j), Correlations: cs})
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), "", append(data, '\n'))
		}
		r := &analysis.Report{Join: &j, Correlations: cs}
		return emit(cmd.OutOrStdout(), "", []byte(sections(r.Markdown())))
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	correlateCmd.Flags().StringSliceVar(&corCovariates, "covariates", nil, "covariates to rank (default: all)")
	correlateCmd.Flags().StringVar(&corFormat, "format", "md", "output format: md|json")
}
