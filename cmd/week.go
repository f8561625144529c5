package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/analysis"
	"github.com/KaramelBytes/citypulse-cli/internal/schema"
	"github.com/spf13/cobra"
)

var weekDate string

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show weather and rentals for the ISO week containing a date",
	Long: `Prints every weather day of the ISO week that contains --date, with the day's
rental total where rentals were recorded. Days without rentals are shown with "-".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if weekDate == "" {
			return fmt.Errorf("--date is required (YYYY-MM-DD)")
		}
		date, err := time.Parse(time.DateOnly, weekDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", weekDate, err)
		}
		p, err := newPipeline()
		if err != nil {
			return err
		}
		r, err := p.rentals()
		if err != nil {
			return err
		}
		w, err := p.weather()
		if err != nil {
			return err
		}
		days := analysis.WeekOf(analysis.LeftJoinWeather(analysis.AggregateDaily(r.Records), w.Observations), date)
		year, wk := date.ISOWeek()
		if len(days) == 0 {
			return fmt.Errorf("no weather observations in week %d-W%02d", year, wk)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "[WEEK]\nWeek: %d-W%02d\n", year, wk)
		b.WriteString("| Date | Day | Rentals")
		for _, c := range schema.Covariates {
			fmt.Fprintf(&b, " | %s", c)
		}
		b.WriteString(" |\n| --- | --- | ---")
		b.WriteString(strings.Repeat(" | ---", len(schema.Covariates)))
		b.WriteString(" |\n")
		for _, d := range days {
			rentals := "-"
			if d.HasRentals {
				rentals = fmt.Sprintf("%d", d.Total)
			}
			fmt.Fprintf(&b, "| %s | %s | %s", d.Date.Format(time.DateOnly), d.Date.Weekday().String()[:3], rentals)
			for _, c := range schema.Covariates {
				v := d.Weather.Get(c)
				if !v.Valid {
					b.WriteString(" | -")
					continue
				}
				fmt.Fprintf(&b, " | %.1f", v.Value)
			}
			b.WriteString(" |\n")
		}
		return emit(cmd.OutOrStdout(), "", []byte(b.String()))
	},
}

func init() {
	rootCmd.AddCommand(weekCmd)
	weekCmd.Flags().StringVar(&weekDate, "date", "", "any date inside the week, YYYY-MM-DD")
}
