package analysis

import (
	"sort"
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/dataset"
)

// DailyRentalTotal is the number of rentals on one calendar day.
type DailyRentalTotal struct {
	Date  time.Time
	Total int
}

// DailyRow is one inner-joined day: rentals plus that day's weather.
type DailyRow struct {
	Date    time.Time
	Total   int
	Weather dataset.WeatherObservation
}

// JoinResult is the inner join of daily rentals and weather.
type JoinResult struct {
	Rows []DailyRow
	// Days present on one side only; dropped by the join.
	UnmatchedRentalDays  int
	UnmatchedWeatherDays int
	// DroppedRows counts input rows rejected while loading either side.
	DroppedRows int
}

// AggregateDaily sums rental counts per day, sorted by date. Days without
// records are absent rather than zero.
func AggregateDaily(records []dataset.RentalRecord) []DailyRentalTotal {
	sums := map[time.Time]int{}
	for _, r := range records {
		sums[civilDay(r.Date)] += r.Count
	}
	out := make([]DailyRentalTotal, 0, len(sums))
	for d, n := range sums {
		out = append(out, DailyRentalTotal{Date: d, Total: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// JoinWeather inner-joins daily totals with weather on date. If weather holds
// the same date twice the first observation is used.
func JoinWeather(daily []DailyRentalTotal, weather []dataset.WeatherObservation) JoinResult {
	byDay := indexWeather(weather)
	var res JoinResult
	matched := map[time.Time]struct{}{}
	for _, d := range daily {
		key := civilDay(d.Date)
		w, ok := byDay[key]
		if !ok {
			res.UnmatchedRentalDays++
			continue
		}
		matched[key] = struct{}{}
		res.Rows = append(res.Rows, DailyRow{Date: key, Total: d.Total, Weather: w})
	}
	for key := range byDay {
		if _, ok := matched[key]; !ok {
			res.UnmatchedWeatherDays++
		}
	}
	sort.Slice(res.Rows, func(i, j int) bool { return res.Rows[i].Date.Before(res.Rows[j].Date) })
	return res
}

// Join aggregates a rental set and inner-joins it with a weather set, carrying
// the loaders' dropped-row counts through.
func Join(rentals *dataset.RentalSet, weather *dataset.WeatherSet) JoinResult {
	res := JoinWeather(AggregateDaily(rentals.Records), weather.Observations)
	res.DroppedRows = len(rentals.Dropped) + len(weather.Dropped)
	return res
}

// WeatherDay is a weather row with the day's rentals when known.
type WeatherDay struct {
	Date       time.Time
	Weather    dataset.WeatherObservation
	Total      int
	HasRentals bool
}

// LeftJoinWeather keeps every weather day and attaches rentals where present.
func LeftJoinWeather(daily []DailyRentalTotal, weather []dataset.WeatherObservation) []WeatherDay {
	totals := make(map[time.Time]int, len(daily))
	for _, d := range daily {
		totals[civilDay(d.Date)] = d.Total
	}
	byDay := indexWeather(weather)
	out := make([]WeatherDay, 0, len(byDay))
	for key, w := range byDay {
		n, ok := totals[key]
		out = append(out, WeatherDay{Date: key, Weather: w, Total: n, HasRentals: ok})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// WeekOf returns the days sharing the ISO year and week of date.
func WeekOf(days []WeatherDay, date time.Time) []WeatherDay {
	wy, ww := date.ISOWeek()
	var out []WeatherDay
	for _, d := range days {
		if y, w := d.Date.ISOWeek(); y == wy && w == ww {
			out = append(out, d)
		}
	}
	return out
}

func indexWeather(weather []dataset.WeatherObservation) map[time.Time]dataset.WeatherObservation {
	byDay := make(map[time.Time]dataset.WeatherObservation, len(weather))
	for _, w := range weather {
		key := civilDay(w.Date)
		if _, dup := byDay[key]; !dup {
			byDay[key] = w
		}
	}
	return byDay
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
