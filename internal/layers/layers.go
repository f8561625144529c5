// Package layers turns tiered stations, tube segments and docking stations
// into GeoJSON feature collections for a map renderer.
package layers

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/analysis"
	"github.com/KaramelBytes/citypulse-cli/internal/dataset"
)

// London is the default map center as [lat, lon].
var London = [2]float64{51.509865, -0.118092}

// lineColors follows the TfL palette closely enough for a legend.
var lineColors = map[string]string{
	"Bakerloo":             "brown",
	"Central":              "red",
	"Circle":               "yellow",
	"District":             "green",
	"Hammersmith and City": "pink",
	"Jubilee":              "silver",
	"Metropolitan":         "purple",
	"Northern":             "black",
	"Piccadilly":           "blue",
	"Victoria":             "lightblue",
	"Waterloo and City":    "turquoise",
	"Overground":           "orange",
	"DLR":                  "teal",
	"Elizabeth":            "magenta",
	"Thameslink":           "pink",
	"Southern":             "chocolate",
	"Southeastern":         "maroon",
	"South Western":        "navy",
	"Tramlink":             "lime",
	"Great Northern":       "darkred",
	"Greater Anglia":       "darkorange",
	"Heathrow Express":     "gold",
	"Liberty":              "lightgray",
	"Lioness":              "darkgray",
	"Mildmay":              "cyan",
	"Suffragette":          "purple",
	"Windrush":             "darkcyan",
	"Weaver":               "olive",
}

// LineColor returns the color for a line name, gray when unknown.
func LineColor(line string) string {
	if c, ok := lineColors[line]; ok {
		return c
	}
	return "gray"
}

// Geometry is a GeoJSON geometry. Coordinates are [lon, lat] per the RFC.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

func newCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

func point(lat, lon float64, props map[string]any) Feature {
	return Feature{Type: "Feature", Geometry: Geometry{Type: "Point", Coordinates: []float64{lon, lat}}, Properties: props}
}

// Map bundles every layer plus the counts of items that could not be placed.
type Map struct {
	Center   [2]float64        `json:"center"`
	Stations FeatureCollection `json:"stations"`
	Lines    FeatureCollection `json:"lines"`
	Docks    FeatureCollection `json:"docks"`
	// Thresholds used for the station colors.
	Low float64 `json:"low_threshold"`
	Mid float64 `json:"mid_threshold"`
	// Items skipped for missing coordinates.
	UnplacedStations int `json:"unplaced_stations"`
	UnplacedSegments int `json:"unplaced_segments"`
}

// StationMarkers places every station of tier t (TierNone for all) that has
// coordinates. It returns the collection and the number of stations without a location.
func StationMarkers(b analysis.Buckets, t analysis.Tier, loc map[string]dataset.StationLocation) (FeatureCollection, int) {
	fc := newCollection()
	unplaced := 0
	for _, s := range b.Filter(t) {
		l, ok := loc[s.Station]
		if !ok {
			unplaced++
			continue
		}
		fc.Features = append(fc.Features, point(l.Latitude, l.Longitude, map[string]any{
			"station": s.Station,
			"score":   s.Score,
			"tier":    string(s.Tier),
			"color":   s.Tier.Color(),
			"popup":   fmt.Sprintf("%s: %.0f visitors", s.Station, s.Score),
		}))
	}
	return fc, unplaced
}

// TubeSegments draws each segment whose endpoints both have coordinates.
func TubeSegments(segs []dataset.TubeLineSegment, loc map[string]dataset.StationLocation) (FeatureCollection, int) {
	fc := newCollection()
	unplaced := 0
	for _, seg := range segs {
		a, okA := loc[seg.From]
		b, okB := loc[seg.To]
		if !okA || !okB {
			unplaced++
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{Type: "LineString", Coordinates: [][]float64{
				{a.Longitude, a.Latitude},
				{b.Longitude, b.Latitude},
			}},
			Properties: map[string]any{
				"line":    seg.Line,
				"from":    seg.From,
				"to":      seg.To,
				"color":   LineColor(seg.Line),
				"tooltip": fmt.Sprintf("%s: %s ↔ %s", seg.Line, seg.From, seg.To),
			},
		})
	}
	return fc, unplaced
}

// CycleDocks places docking stations holding at least minBikes bikes.
func CycleDocks(stations []dataset.CycleStation, minBikes int) FeatureCollection {
	fc := newCollection()
	for _, s := range stations {
		if s.Bikes < minBikes {
			continue
		}
		props := map[string]any{
			"name":           s.Name,
			"bikes":          s.Bikes,
			"standard_bikes": s.StandardBikes,
			"ebikes":         s.EBikes,
		}
		if !s.Installed.IsZero() {
			props["installed"] = s.Installed.Format(time.DateOnly)
		}
		fc.Features = append(fc.Features, point(s.Latitude, s.Longitude, props))
	}
	return fc
}

// Build assembles all layers. Any input may be nil to leave its layer empty.
func Build(b *analysis.Buckets, t analysis.Tier, stations *dataset.StationSet, lines *dataset.TubeLineSet, docks *dataset.CycleStationSet, minBikes int) Map {
	m := Map{Center: London, Stations: newCollection(), Lines: newCollection(), Docks: newCollection()}
	var loc map[string]dataset.StationLocation
	if stations != nil {
		loc = stations.Lookup()
	}
	if b != nil {
		m.Low, m.Mid = b.Low, b.Mid
		m.Stations, m.UnplacedStations = StationMarkers(*b, t, loc)
	}
	if lines != nil {
		m.Lines, m.UnplacedSegments = TubeSegments(lines.Segments, loc)
	}
	if docks != nil {
		m.Docks = CycleDocks(docks.Stations, minBikes)
	}
	return m
}
