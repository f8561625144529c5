package analysis

import (
	"testing"
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestJoinScenario(t *testing.T) {
	records := []dataset.RentalRecord{
		{Date: day(2021, 1, 1), Count: 10},
		{Date: day(2021, 1, 1), Count: 5},
		{Date: day(2021, 1, 2), Count: 7},
	}
	weather := []dataset.WeatherObservation{
		{Date: day(2021, 1, 1), TAvg: dataset.Float(4.0)},
		{Date: day(2021, 1, 3), TAvg: dataset.Float(6.0)},
	}

	daily := AggregateDaily(records)
	assert.Equal(t, []DailyRentalTotal{
		{Date: day(2021, 1, 1), Total: 15},
		{Date: day(2021, 1, 2), Total: 7},
	}, daily)

	res := JoinWeather(daily, weather)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, day(2021, 1, 1), res.Rows[0].Date)
	assert.Equal(t, 15, res.Rows[0].Total)
	assert.Equal(t, dataset.Float(4.0), res.Rows[0].Weather.TAvg)
	assert.Equal(t, 1, res.UnmatchedRentalDays)
	assert.Equal(t, 1, res.UnmatchedWeatherDays)
}

func TestAggregateDailyPreservesTotal(t *testing.T) {
	var records []dataset.RentalRecord
	want := 0
	start := day(2021, 3, 1)
	for i := 0; i < 500; i++ {
		n := (i * 37) % 11
		records = append(records, dataset.RentalRecord{
			Date:  start.Add(time.Duration(i%45)*24*time.Hour + time.Duration(i%7)*time.Hour),
			Count: n,
		})
		want += n
	}
	daily := AggregateDaily(records)
	got := 0
	seen := map[time.Time]bool{}
	for i, d := range daily {
		got += d.Total
		assert.False(t, seen[d.Date], "duplicate day %s", d.Date)
		seen[d.Date] = true
		if i > 0 {
			assert.True(t, daily[i-1].Date.Before(d.Date))
		}
	}
	assert.Equal(t, want, got)
	assert.Len(t, daily, 45)
}

func TestJoinOutputDatesPresentOnBothSides(t *testing.T) {
	var daily []DailyRentalTotal
	var weather []dataset.WeatherObservation
	for i := 0; i < 60; i++ {
		d := day(2021, 5, 1).AddDate(0, 0, i)
		if i%3 != 0 {
			daily = append(daily, DailyRentalTotal{Date: d, Total: i})
		}
		if i%2 == 0 {
			weather = append(weather, dataset.WeatherObservation{Date: d})
		}
	}
	res := JoinWeather(daily, weather)
	inDaily := map[time.Time]bool{}
	for _, d := range daily {
		inDaily[d.Date] = true
	}
	inWeather := map[time.Time]bool{}
	for _, w := range weather {
		inWeather[w.Date] = true
	}
	for _, r := range res.Rows {
		assert.True(t, inDaily[r.Date] && inWeather[r.Date], "date %s not on both sides", r.Date)
	}
	assert.Equal(t, len(daily), len(res.Rows)+res.UnmatchedRentalDays)
	assert.Equal(t, len(weather), len(res.Rows)+res.UnmatchedWeatherDays)
}

func TestJoinCarriesDroppedRows(t *testing.T) {
	rentals := &dataset.RentalSet{
		Records: []dataset.RentalRecord{{Date: day(2021, 1, 1), Count: 2}},
		Dropped: []error{&dataset.DateParseError{File: "r.csv", Row: 3, Value: "??"}},
	}
	weather := &dataset.WeatherSet{
		Observations: []dataset.WeatherObservation{{Date: day(2021, 1, 1)}},
		Dropped:      []error{&dataset.DateParseError{File: "w.csv", Row: 9, Value: "x"}},
	}
	res := Join(rentals, weather)
	assert.Len(t, res.Rows, 1)
	assert.Equal(t, 2, res.DroppedRows)
}

func TestLeftJoinAndWeekOf(t *testing.T) {
	daily := []DailyRentalTotal{{Date: day(2021, 6, 14), Total: 30000}}
	var weather []dataset.WeatherObservation
	for d := 10; d <= 22; d++ {
		weather = append(weather, dataset.WeatherObservation{Date: day(2021, 6, d)})
	}
	days := LeftJoinWeather(daily, weather)
	require.Len(t, days, len(weather))

	week := WeekOf(days, day(2021, 6, 16))
	require.Len(t, week, 7)
	assert.Equal(t, day(2021, 6, 14), week[0].Date)
	assert.Equal(t, day(2021, 6, 20), week[6].Date)
	assert.True(t, week[0].HasRentals)
	assert.Equal(t, 30000, week[0].Total)
	assert.False(t, week[1].HasRentals)
}
