package cmd

import (
	"strings"

	"github.com/KaramelBytes/citypulse-cli/internal/analysis"
	"github.com/KaramelBytes/citypulse-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	stSubset string
	stTier   string
	stFormat string
	stLimit  int
)

// stationsJSON is the machine-readable shape of a station tiering.
type stationsJSON struct {
	Subset   string                  `json:"subset"`
	Tier     string                  `json:"tier"`
	Low      float64                 `json:"low_threshold"`
	Mid      float64                 `json:"mid_threshold"`
	Nulls    int                     `json:"stations_without_data"`
	Warning  string                  `json:"warning,omitempty"`
	Counts   map[analysis.Tier]int   `json:"tier_counts"`
	Stations []analysis.StationScore `json:"stations"`
}

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Tier metro stations into quiet, normal and busy by annual traffic",
	Long: `Sums each station's entries and exits over the chosen day subset, computes the
33rd and 66th percentiles of that population, and assigns each station a tier.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		subset, err := p.subset(stSubset)
		if err != nil {
			return err
		}
		tier, err := analysis.ParseTier(stTier)
		if err != nil {
			return err
		}
		format, err := parseFormat(stFormat)
		if err != nil {
			return err
		}
		b, _, err := p.buckets(subset)
		if err != nil {
			return err
		}
		selected := b.Filter(tier)

		if format == "json" {
			out := stationsJSON{Subset: string(subset), Tier: tierLabel(tier), Low: b.Low, Mid: b.Mid, Nulls: b.Nulls, Counts: b.Counts(), Stations: selected}
			if out.Stations == nil {
				out.Stations = []analysis.StationScore{}
			}
			if b.Warning != nil {
				out.Warning = b.Warning.Error()
			}
			data, err := utils.PrettyJSON(out)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), "", append(data, '\n'))
		}

		r := &analysis.Report{Buckets: &b, MaxStations: stLimit, StationTier: tier}
		return emit(cmd.OutOrStdout(), "", []byte(sections(r.Markdown())))
	},
}

func tierLabel(t analysis.Tier) string {
	if t == analysis.TierNone {
		return "all"
	}
	return string(t)
}

// sections drops the [RUN] header for single-purpose command output.
func sections(md string) string {
	if i := strings.Index(md, "\n\n["); i >= 0 {
		return md[i+2:]
	}
	return md
}

func init() {
	rootCmd.AddCommand(stationsCmd)
	stationsCmd.Flags().StringVar(&stSubset, "subset", "", "day subset: weekday|weekend|all (default from config)")
	stationsCmd.Flags().StringVar(&stTier, "tier", "all", "tier filter: all|quiet|normal|busy")
	stationsCmd.Flags().StringVar(&stFormat, "format", "md", "output format: md|json")
	stationsCmd.Flags().IntVar(&stLimit, "limit", 25, "max stations listed in Markdown output")
}
