package schema

import (
	"fmt"
	"strings"
)

// Logical column names.
const (
	ColDate       = "date"
	ColCount      = "count"
	ColStation    = "station"
	ColAnnualised = "annualised"
	ColLatitude   = "latitude"
	ColLongitude  = "longitude"
	ColFrom       = "from"
	ColTo         = "to"
	ColLine       = "line"
	ColName       = "name"
	ColBikes      = "bikes"
	ColStdBikes   = "standard_bikes"
	ColEBikes     = "ebikes"
	ColInstalled  = "installed"
)

// Metro entry/exit categories as they appear in the annualised entry/exit file.
const (
	WeekdayEntries  = "Weekday(Mon-Thu)Entries"
	WeekdayExits    = "Weekday(Mon-Thu)Exits"
	FridayEntries   = "FridayEntries"
	FridayExits     = "FridayExits"
	SaturdayEntries = "SaturdayEntries"
	SaturdayExits   = "SaturdayExits"
	SundayEntries   = "SundayEntries"
	SundayExits     = "SundayExits"
)

// MetroCategories lists every entry/exit category in file order.
var MetroCategories = []string{
	WeekdayEntries, WeekdayExits,
	FridayEntries, SaturdayEntries, SundayEntries,
	FridayExits, SaturdayExits, SundayExits,
}

// Subset selects which metro categories make up a station's traffic.
type Subset string

const (
	SubsetWeekday Subset = "weekday"
	SubsetWeekend Subset = "weekend"
	SubsetAll     Subset = "all"
)

// Categories returns the category names summed for the subset.
func (s Subset) Categories() []string {
	switch s {
	case SubsetWeekday:
		return []string{WeekdayEntries, WeekdayExits}
	case SubsetWeekend:
		return []string{FridayEntries, SaturdayEntries, SundayEntries, FridayExits, SaturdayExits, SundayExits}
	case SubsetAll:
		out := make([]string, len(MetroCategories))
		copy(out, MetroCategories)
		return out
	}
	return nil
}

// ParseSubset accepts weekday|weekend|all in any case.
func ParseSubset(s string) (Subset, error) {
	switch Subset(strings.ToLower(strings.TrimSpace(s))) {
	case SubsetWeekday:
		return SubsetWeekday, nil
	case SubsetWeekend:
		return SubsetWeekend, nil
	case SubsetAll:
		return SubsetAll, nil
	}
	return "", fmt.Errorf("invalid subset %q (use weekday, weekend or all)", s)
}

// Covariate names a weather field usable as a regression input.
type Covariate string

const (
	TAvg Covariate = "tavg"
	TMin Covariate = "tmin"
	TMax Covariate = "tmax"
	Prcp Covariate = "prcp"
	Snow Covariate = "snow"
	WDir Covariate = "wdir"
	WSpd Covariate = "wspd"
	WPgt Covariate = "wpgt"
	Pres Covariate = "pres"
	TSun Covariate = "tsun"
)

// Covariates in weather file order.
var Covariates = []Covariate{TAvg, TMin, TMax, Prcp, Snow, WDir, WSpd, WPgt, Pres, TSun}

var covariateLabels = map[Covariate][2]string{
	TAvg: {"Average temperature", "°C"},
	TMin: {"Minimum temperature", "°C"},
	TMax: {"Maximum temperature", "°C"},
	Prcp: {"Precipitation", "mm"},
	Snow: {"Snowfall", "cm"},
	WDir: {"Wind direction", "°"},
	WSpd: {"Wind speed", "m/s"},
	WPgt: {"Wind gust", "m/s"},
	Pres: {"Air pressure", "hPa"},
	TSun: {"Sunshine", "h"},
}

// Label is the human-readable name without unit.
func (c Covariate) Label() string { return covariateLabels[c][0] }

// Unit of the covariate.
func (c Covariate) Unit() string { return covariateLabels[c][1] }

// Title renders "Average temperature (°C)".
func (c Covariate) Title() string {
	l, ok := covariateLabels[c]
	if !ok {
		return string(c)
	}
	return fmt.Sprintf("%s (%s)", l[0], l[1])
}

// ParseCovariate validates a covariate name.
func ParseCovariate(s string) (Covariate, error) {
	c := Covariate(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := covariateLabels[c]; ok {
		return c, nil
	}
	names := make([]string, len(Covariates))
	for i, v := range Covariates {
		names[i] = string(v)
	}
	return "", fmt.Errorf("invalid covariate %q (use one of %s)", s, strings.Join(names, ", "))
}

// Rentals is the daily rental file ("Day","Total Rentals"). Raw trip exports
// without a count column count one rental per row. Quarterly count files carry
// both "Date" and a "Day" column holding Weekday/Weekend, so "Date" is tried first.
var Rentals = Dataset{
	Name: "rentals",
	Columns: []Column{
		{Name: ColDate, Aliases: []string{"Date", "Day", "Start Date"}, Required: true},
		{Name: ColCount, Aliases: []string{"Total Rentals", "Count"}},
	},
}

// Weather is the daily London weather file. Exports that write the date as an
// unnamed index column leave its header blank, hence the "" alias.
var Weather = func() Dataset {
	cols := []Column{{Name: ColDate, Aliases: []string{"Date", "Unnamed: 0", ""}, Required: true}}
	for _, c := range Covariates {
		cols = append(cols, Column{Name: string(c), Aliases: []string{string(c)}})
	}
	return Dataset{Name: "weather", Columns: cols}
}()

// Metro is the annualised entry/exit file (semicolon separated upstream).
var Metro = func() Dataset {
	cols := []Column{
		{Name: ColStation, Aliases: []string{"Station"}, Required: true},
		{Name: ColAnnualised, Aliases: []string{"AnnualisedEnEx"}},
	}
	for _, c := range MetroCategories {
		cols = append(cols, Column{Name: c, Aliases: []string{c}})
	}
	return Dataset{Name: "metro", Columns: cols}
}()

// Stations holds tube station coordinates.
var Stations = Dataset{
	Name: "stations",
	Columns: []Column{
		{Name: ColStation, Aliases: []string{"Station"}, Required: true},
		{Name: ColLatitude, Aliases: []string{"Latitude"}, Required: true},
		{Name: ColLongitude, Aliases: []string{"Longitude"}, Required: true},
	},
}

// TubeLines holds station-to-station segments.
var TubeLines = Dataset{
	Name: "tube lines",
	Columns: []Column{
		{Name: ColFrom, Aliases: []string{"From Station"}, Required: true},
		{Name: ColTo, Aliases: []string{"To Station"}, Required: true},
		{Name: ColLine, Aliases: []string{"Tube Line"}, Required: true},
	},
}

// CycleStations is the bike docking station export.
var CycleStations = Dataset{
	Name: "cycle stations",
	Columns: []Column{
		{Name: ColName, Aliases: []string{"name"}, Required: true},
		{Name: ColLatitude, Aliases: []string{"lat"}, Required: true},
		{Name: ColLongitude, Aliases: []string{"long", "lon"}, Required: true},
		{Name: ColBikes, Aliases: []string{"nbBikes"}, Required: true},
		{Name: ColStdBikes, Aliases: []string{"nbStandardBikes"}},
		{Name: ColEBikes, Aliases: []string{"nbEBikes"}},
		{Name: ColInstalled, Aliases: []string{"installDate"}},
	},
}
