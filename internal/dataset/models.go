// Package dataset loads the rental, weather, metro and geometry files into
// typed in-memory tables.
package dataset

import (
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/schema"
)

// NullFloat is a float64 that may be missing.
type NullFloat struct {
	Value float64
	Valid bool
}

// Float wraps a present value.
func Float(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

// Null is the missing value.
var Null = NullFloat{}

// RentalRecord is one rental row; several rows usually share a date.
type RentalRecord struct {
	Date  time.Time
	Count int
}

// RentalSet is a parsed rental file.
type RentalSet struct {
	Files   []string
	Records []RentalRecord
	// Dropped holds one error per skipped row (*DateParseError or *ValueError).
	Dropped []error
}

// WeatherObservation is one day of weather. Any field may be null.
type WeatherObservation struct {
	Date time.Time
	TAvg NullFloat
	TMin NullFloat
	TMax NullFloat
	Prcp NullFloat
	Snow NullFloat
	WDir NullFloat
	WSpd NullFloat
	WPgt NullFloat
	Pres NullFloat
	TSun NullFloat
}

// Get returns the field for covariate c.
func (w WeatherObservation) Get(c schema.Covariate) NullFloat {
	switch c {
	case schema.TAvg:
		return w.TAvg
	case schema.TMin:
		return w.TMin
	case schema.TMax:
		return w.TMax
	case schema.Prcp:
		return w.Prcp
	case schema.Snow:
		return w.Snow
	case schema.WDir:
		return w.WDir
	case schema.WSpd:
		return w.WSpd
	case schema.WPgt:
		return w.WPgt
	case schema.Pres:
		return w.Pres
	case schema.TSun:
		return w.TSun
	}
	return Null
}

func (w *WeatherObservation) set(c schema.Covariate, v NullFloat) {
	switch c {
	case schema.TAvg:
		w.TAvg = v
	case schema.TMin:
		w.TMin = v
	case schema.TMax:
		w.TMax = v
	case schema.Prcp:
		w.Prcp = v
	case schema.Snow:
		w.Snow = v
	case schema.WDir:
		w.WDir = v
	case schema.WSpd:
		w.WSpd = v
	case schema.WPgt:
		w.WPgt = v
	case schema.Pres:
		w.Pres = v
	case schema.TSun:
		w.TSun = v
	}
}

// WeatherSet is a parsed weather file, one observation per date.
type WeatherSet struct {
	File         string
	Observations []WeatherObservation
	Dropped      []error
	// Duplicates counts rows whose date was already seen; the first row wins.
	Duplicates int
}

// StationTraffic is one metro station's entry/exit counts, already scaled to
// absolute passengers. Categories missing from the file are absent from Entries.
type StationTraffic struct {
	Station    string
	Entries    map[string]float64
	Annualised NullFloat
}

// Traffic sums the given categories. It is null when none of them is present.
func (s StationTraffic) Traffic(categories []string) NullFloat {
	var sum float64
	var seen bool
	for _, c := range categories {
		if v, ok := s.Entries[c]; ok {
			sum += v
			seen = true
		}
	}
	if !seen {
		return Null
	}
	return Float(sum)
}

// MetroSet is a parsed metro entry/exit file.
type MetroSet struct {
	File     string
	Stations []StationTraffic
	Dropped  []error
}

// StationLocation is a tube station coordinate.
type StationLocation struct {
	Station   string
	Latitude  float64
	Longitude float64
}

// StationSet is a parsed station coordinate file.
type StationSet struct {
	File      string
	Locations []StationLocation
	Dropped   []error
}

// Lookup indexes locations by station name; the first entry for a name wins.
func (s *StationSet) Lookup() map[string]StationLocation {
	out := make(map[string]StationLocation, len(s.Locations))
	for _, l := range s.Locations {
		if _, ok := out[l.Station]; !ok {
			out[l.Station] = l
		}
	}
	return out
}

// TubeLineSegment links two stations on a line.
type TubeLineSegment struct {
	From string
	To   string
	Line string
}

// TubeLineSet is a parsed tube-line file.
type TubeLineSet struct {
	File     string
	Segments []TubeLineSegment
	Dropped  []error
}

// CycleStation is a bike docking station snapshot.
type CycleStation struct {
	Name          string
	Latitude      float64
	Longitude     float64
	Bikes         int
	StandardBikes int
	EBikes        int
	Installed     time.Time
}

// CycleStationSet is a parsed docking station file.
type CycleStationSet struct {
	File     string
	Stations []CycleStation
	Dropped  []error
}
