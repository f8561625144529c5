package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/cache"
	"github.com/KaramelBytes/citypulse-cli/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func lines(rows ...string) []byte { return []byte(strings.Join(rows, "\n") + "\n") }

func TestParseRentals_DropsBadDatesAndCounts(t *testing.T) {
	data := lines(
		"Day,Total Rentals",
		"2021-01-01,10",
		"2021-01-01,5",
		"not-a-date,3",
		"2021-01-02,7.0",
		"2021-01-03,-4",
	)
	set, err := ParseRentals("rentals.csv", data, DefaultReadOptions())
	require.NoError(t, err)

	assert.Equal(t, []RentalRecord{
		{Date: day(2021, 1, 1), Count: 10},
		{Date: day(2021, 1, 1), Count: 5},
		{Date: day(2021, 1, 2), Count: 7},
	}, set.Records)
	require.Len(t, set.Dropped, 2)

	var dpe *DateParseError
	require.True(t, errors.As(set.Dropped[0], &dpe))
	assert.Equal(t, 4, dpe.Row)
	assert.Equal(t, "not-a-date", dpe.Value)

	var ve *ValueError
	require.True(t, errors.As(set.Dropped[1], &ve))
	assert.Equal(t, schema.ColCount, ve.Column)
}

func TestParseRentals_TripExportCountsRows(t *testing.T) {
	data := lines(
		"Rental Id;Start Date;Bike Id",
		"1;2021-04-01 08:15:00;99",
		"2;2021-04-01 09:00:00;12",
		"3;01/04/2021;5",
	)
	set, err := ParseRentals("2021_Q2_Central.csv", data, DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, set.Records, 3)
	for _, r := range set.Records {
		assert.Equal(t, day(2021, 4, 1), r.Date)
		assert.Equal(t, 1, r.Count)
	}
}

func TestParseRentals_QuarterlyCountFilePrefersDate(t *testing.T) {
	data := lines(
		"Wave,SiteID,Date,Weather,Time,Day,Round,Direction,Path,Mode,Count",
		"2021 Q2 spring (Apr-Jun),ML0001,01/04/2021,Dry,0600 - 0615,Weekday,A,Northbound,Carriageway,Private cycles,4",
		"2021 Q2 spring (Apr-Jun),ML0001,01/04/2021,Dry,0615 - 0630,Weekday,A,Northbound,Carriageway,Private cycles,6",
		"2021 Q2 spring (Apr-Jun),ML0002,03/04/2021,Wet,0600 - 0615,Weekend,A,Southbound,Carriageway,Cycle hire bikes,1",
	)
	set, err := ParseRentals("2021_Q2_Central.csv", data, DefaultReadOptions())
	require.NoError(t, err)
	assert.Empty(t, set.Dropped)
	assert.Equal(t, []RentalRecord{
		{Date: day(2021, 4, 1), Count: 4},
		{Date: day(2021, 4, 1), Count: 6},
		{Date: day(2021, 4, 3), Count: 1},
	}, set.Records)
}

func TestParseRentals_TripExportDayFirstDateTime(t *testing.T) {
	data := lines(
		"Rental Id,Duration,Bike Id,End Date,EndStation Id,Start Date,StartStation Id",
		"109234701,1140,9570,01/06/2021 00:19,361,01/06/2021 00:00,154",
		"109234702,600,1022,01/06/2021 00:11,14,01/06/2021 00:01:30,73",
	)
	set, err := ParseRentals("trips.csv", data, DefaultReadOptions())
	require.NoError(t, err)
	assert.Empty(t, set.Dropped)
	require.Len(t, set.Records, 2)
	for _, r := range set.Records {
		assert.Equal(t, day(2021, 6, 1), r.Date)
	}
}

func TestParseWeather_NonFiniteAndNAAreNull(t *testing.T) {
	data := lines(
		"Date,tavg,tmin,prcp",
		"2021-01-01,1,NA,0",
		"2021-01-02,NaN,N/A,nan",
		"2021-01-03,3,null,Inf",
		"2021-01-04,4,-inf,0.5",
	)
	set, err := ParseWeather("weather.csv", data, DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, set.Observations, 4)
	obs := set.Observations
	assert.Equal(t, Float(1), obs[0].TAvg)
	assert.Equal(t, Null, obs[1].TAvg)
	assert.Equal(t, Null, obs[1].Prcp)
	assert.Equal(t, Null, obs[2].Prcp)
	for _, o := range obs {
		assert.Equal(t, Null, o.TMin, o.Date)
	}
	assert.Equal(t, Float(0.5), obs[3].Prcp)
}

func TestParseMetro_NaNCategoryIsMissing(t *testing.T) {
	data := lines(
		"Station,Weekday(Mon-Thu)Entries,Weekday(Mon-Thu)Exits",
		"A,1,1",
		"B,NaN,NaN",
		"C,NaN,2",
	)
	set, err := ParseMetro("metro.csv", data, DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, set.Stations, 3)
	cats := schema.SubsetWeekday.Categories()
	assert.False(t, set.Stations[1].Traffic(cats).Valid)
	assert.Equal(t, Float(2000), set.Stations[2].Traffic(cats))
}

func TestParseRentals_MissingDateColumn(t *testing.T) {
	_, err := ParseRentals("rentals.csv", lines("When,Count", "x,1"), DefaultReadOptions())
	var mce *schema.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, schema.ColDate, mce.Column)
	assert.Contains(t, err.Error(), "rentals.csv")
}

func TestParseWeather_BlankIndexHeaderBOMAndDuplicates(t *testing.T) {
	data := append([]byte("\ufeff"), lines(
		",tavg,tmin,tmax,prcp,snow,wdir,wspd,wpgt,pres,tsun",
		"2021-01-01,4.0,1.2,6.3,0.5,,230,12.1,,1012.3,",
		"2021-01-01,9.9,,,,,,,,,",
		"2021-01-02,,,,,,,,,,",
		"garbage,1,,,,,,,,,",
	)...)
	set, err := ParseWeather("weather_london.csv", data, DefaultReadOptions())
	require.NoError(t, err)

	require.Len(t, set.Observations, 2)
	first := set.Observations[0]
	assert.Equal(t, day(2021, 1, 1), first.Date)
	assert.Equal(t, Float(4.0), first.TAvg)
	assert.Equal(t, Float(230), first.Get(schema.WDir))
	assert.False(t, first.Snow.Valid)
	assert.False(t, set.Observations[1].TAvg.Valid)
	assert.Equal(t, 1, set.Duplicates)
	require.Len(t, set.Dropped, 1)
}

func TestParseMetro_ScalesCategoriesAndCleansAnnualised(t *testing.T) {
	data := lines(
		"Station;AnnualisedEnEx;Weekday(Mon-Thu)Entries;Weekday(Mon-Thu)Exits;FridayEntries;FridayExits;SaturdayEntries;SaturdayExits;SundayEntries;SundayExits",
		"Bank;\"1,234,567\";10;11;5;5;3;3;2;2",
		"Quiet Halt;n/a;1;;;;;;;",
		";9;1;1;1;1;1;1;1;1",
	)
	opt := DefaultReadOptions()
	set, err := ParseMetro("metro.csv", data, opt)
	require.NoError(t, err)
	require.Len(t, set.Stations, 2)
	require.Len(t, set.Dropped, 1)

	bank := set.Stations[0]
	assert.Equal(t, "Bank", bank.Station)
	assert.Equal(t, Float(1234567), bank.Annualised)
	assert.Equal(t, Float(21000), bank.Traffic(schema.SubsetWeekday.Categories()))
	assert.Equal(t, Float(20000), bank.Traffic(schema.SubsetWeekend.Categories()))

	quiet := set.Stations[1]
	assert.False(t, quiet.Annualised.Valid)
	assert.Equal(t, Float(1000), quiet.Traffic(schema.SubsetWeekday.Categories()))
	assert.False(t, quiet.Traffic(schema.SubsetWeekend.Categories()).Valid)
}

func TestParseStationsAndTubeLines(t *testing.T) {
	st, err := ParseStations("stations.csv", lines(
		"Station,OS X,OS Y,Latitude,Longitude,Zone",
		"Bank,532,181,51.5133,-0.0886,1",
		"Nowhere,0,0,,,",
	), DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, st.Locations, 1)
	assert.Len(t, st.Dropped, 1)
	assert.InDelta(t, -0.0886, st.Lookup()["Bank"].Longitude, 1e-12)

	tl, err := ParseTubeLines("lines.csv", lines(
		"Tube Line,From Station,To Station",
		"Central,Bank,Liverpool Street",
		"Central,,Liverpool Street",
	), DefaultReadOptions())
	require.NoError(t, err)
	assert.Equal(t, []TubeLineSegment{{From: "Bank", To: "Liverpool Street", Line: "Central"}}, tl.Segments)
	assert.Len(t, tl.Dropped, 1)
}

func TestParseCycleStations_InstallDateMillis(t *testing.T) {
	set, err := ParseCycleStations("cycle_stations.csv", lines(
		"id,installDate,lat,long,name,nbBikes,nbStandardBikes,nbEBikes",
		"1,1278947280000,51.5299,-0.1099,River Street,11,10,1",
		"2,,51.5,-0.1,Broken,,0,0",
	), DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, set.Stations, 1)
	cs := set.Stations[0]
	assert.Equal(t, "River Street", cs.Name)
	assert.Equal(t, 11, cs.Bikes)
	assert.Equal(t, 1, cs.EBikes)
	assert.Equal(t, time.Date(2010, 7, 12, 15, 8, 0, 0, time.UTC), cs.Installed)
	assert.Len(t, set.Dropped, 1)
}

func TestParseNumericLocales(t *testing.T) {
	opt := ReadOptions{}
	cases := map[string]float64{
		"1.000,5": 1000.5,
		"1,000.5": 1000.5,
		"0,55":    0.55,
		"12%":     12,
		"-3.25":   -3.25,
	}
	for in, want := range cases {
		got, ok := parseNumeric(in, opt)
		require.True(t, ok, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}
	_, ok := parseNumeric("n/a", opt)
	assert.False(t, ok)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter("a.csv", []byte("a;b;c\n1;2;3")))
	assert.Equal(t, ',', sniffDelimiter("a.csv", []byte("a,b\n")))
	assert.Equal(t, '\t', sniffDelimiter("a.tsv", []byte("a,b\n")))
}

func TestLoader_MemoizesByContent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "rentals.csv")
	require.NoError(t, os.WriteFile(p, lines("Day,Total Rentals", "2021-01-01,3"), 0o644))

	store := cache.New(time.Minute)
	l := NewLoader(DefaultReadOptions(), store, nil)

	_, err := l.Weather(p)
	var mce *schema.MissingColumnError
	require.True(t, errors.As(err, &mce), "a rental file is not a weather file")
	assert.Equal(t, 0, store.Len())

	r1, err := l.Rentals(p)
	require.NoError(t, err)
	r2, err := l.Rentals(p, p)
	require.NoError(t, err)
	assert.Len(t, r1.Records, 1)
	assert.Len(t, r2.Records, 2)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, os.WriteFile(p, lines("Day,Total Rentals", "2021-01-01,3", "2021-01-02,4"), 0o644))
	r3, err := l.Rentals(p)
	require.NoError(t, err)
	assert.Len(t, r3.Records, 2)
	assert.Equal(t, 2, store.Len())

	assert.Equal(t, 2, l.Invalidate(p))
}
