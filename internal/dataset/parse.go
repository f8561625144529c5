package dataset

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/schema"
)

// ParseRentals reads a rental file. Rows with an unparseable date or count are
// dropped and recorded in Dropped. Without a count column each row is one rental.
func ParseRentals(name string, data []byte, opt ReadOptions) (*RentalSet, error) {
	t, err := openTable(name, data, schema.Rentals, opt)
	if err != nil {
		return nil, err
	}
	hasCount := t.index.Has(schema.ColCount)
	set := &RentalSet{Files: []string{name}}
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		raw := t.value(rec, schema.ColDate)
		d, ok := parseDate(raw)
		if !ok {
			set.Dropped = append(set.Dropped, &DateParseError{File: name, Row: t.row, Value: raw})
			continue
		}
		n := 1
		if hasCount {
			cv := t.value(rec, schema.ColCount)
			if n, ok = parseCount(cv); !ok {
				set.Dropped = append(set.Dropped, &ValueError{File: name, Row: t.row, Column: schema.ColCount, Value: cv})
				continue
			}
		}
		set.Records = append(set.Records, RentalRecord{Date: d, Count: n})
	}
	return set, nil
}

// ParseWeather reads a daily weather file. Blank or non-numeric fields are null.
func ParseWeather(name string, data []byte, opt ReadOptions) (*WeatherSet, error) {
	t, err := openTable(name, data, schema.Weather, opt)
	if err != nil {
		return nil, err
	}
	set := &WeatherSet{File: name}
	seen := map[time.Time]struct{}{}
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		raw := t.value(rec, schema.ColDate)
		d, ok := parseDate(raw)
		if !ok {
			set.Dropped = append(set.Dropped, &DateParseError{File: name, Row: t.row, Value: raw})
			continue
		}
		if _, dup := seen[d]; dup {
			set.Duplicates++
			continue
		}
		seen[d] = struct{}{}
		obs := WeatherObservation{Date: d}
		for _, c := range schema.Covariates {
			obs.set(c, parseNullable(t.value(rec, string(c)), opt))
		}
		set.Observations = append(set.Observations, obs)
	}
	return set, nil
}

// ParseMetro reads the annualised entry/exit file and scales every category by
// opt.MetroScale. AnnualisedEnEx is read digits-only and left unscaled.
func ParseMetro(name string, data []byte, opt ReadOptions) (*MetroSet, error) {
	t, err := openTable(name, data, schema.Metro, opt)
	if err != nil {
		return nil, err
	}
	scale := opt.MetroScale
	if scale == 0 {
		scale = schema.MetroScaleFactor
	}
	set := &MetroSet{File: name}
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		st := StationTraffic{Station: t.value(rec, schema.ColStation), Entries: map[string]float64{}}
		if st.Station == "" {
			set.Dropped = append(set.Dropped, &ValueError{File: name, Row: t.row, Column: schema.ColStation})
			continue
		}
		for _, c := range schema.MetroCategories {
			if v, ok := parseNumeric(t.value(rec, c), opt); ok {
				st.Entries[c] = v * scale
			}
		}
		if digits := stripNonDigits(t.value(rec, schema.ColAnnualised)); digits != "" {
			if f, err := strconv.ParseFloat(digits, 64); err == nil {
				st.Annualised = Float(f)
			}
		}
		set.Stations = append(set.Stations, st)
	}
	return set, nil
}

// ParseStations reads station coordinates.
func ParseStations(name string, data []byte, opt ReadOptions) (*StationSet, error) {
	t, err := openTable(name, data, schema.Stations, opt)
	if err != nil {
		return nil, err
	}
	set := &StationSet{File: name}
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		loc := StationLocation{Station: t.value(rec, schema.ColStation)}
		if loc.Station == "" {
			set.Dropped = append(set.Dropped, &ValueError{File: name, Row: t.row, Column: schema.ColStation})
			continue
		}
		var okLat, okLon bool
		loc.Latitude, okLat = parseCoordinate(t.value(rec, schema.ColLatitude))
		loc.Longitude, okLon = parseCoordinate(t.value(rec, schema.ColLongitude))
		if !okLat || !okLon {
			set.Dropped = append(set.Dropped, &ValueError{File: name, Row: t.row, Column: "coordinates",
				Value: t.value(rec, schema.ColLatitude) + "," + t.value(rec, schema.ColLongitude)})
			continue
		}
		set.Locations = append(set.Locations, loc)
	}
	return set, nil
}

// ParseTubeLines reads station-to-station line segments.
func ParseTubeLines(name string, data []byte, opt ReadOptions) (*TubeLineSet, error) {
	t, err := openTable(name, data, schema.TubeLines, opt)
	if err != nil {
		return nil, err
	}
	set := &TubeLineSet{File: name}
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		seg := TubeLineSegment{
			From: t.value(rec, schema.ColFrom),
			To:   t.value(rec, schema.ColTo),
			Line: t.value(rec, schema.ColLine),
		}
		if seg.From == "" || seg.To == "" {
			set.Dropped = append(set.Dropped, &ValueError{File: name, Row: t.row, Column: "endpoints", Value: seg.From + "->" + seg.To})
			continue
		}
		set.Segments = append(set.Segments, seg)
	}
	return set, nil
}

// ParseCycleStations reads the docking station export. installDate is
// milliseconds since the Unix epoch.
func ParseCycleStations(name string, data []byte, opt ReadOptions) (*CycleStationSet, error) {
	t, err := openTable(name, data, schema.CycleStations, opt)
	if err != nil {
		return nil, err
	}
	set := &CycleStationSet{File: name}
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		cs := CycleStation{Name: t.value(rec, schema.ColName)}
		var okLat, okLon, okBikes bool
		cs.Latitude, okLat = parseCoordinate(t.value(rec, schema.ColLatitude))
		cs.Longitude, okLon = parseCoordinate(t.value(rec, schema.ColLongitude))
		if !okLat || !okLon {
			set.Dropped = append(set.Dropped, &ValueError{File: name, Row: t.row, Column: "coordinates",
				Value: t.value(rec, schema.ColLatitude) + "," + t.value(rec, schema.ColLongitude)})
			continue
		}
		bv := t.value(rec, schema.ColBikes)
		if cs.Bikes, okBikes = parseCount(bv); !okBikes {
			set.Dropped = append(set.Dropped, &ValueError{File: name, Row: t.row, Column: schema.ColBikes, Value: bv})
			continue
		}
		cs.StandardBikes, _ = parseCount(t.value(rec, schema.ColStdBikes))
		cs.EBikes, _ = parseCount(t.value(rec, schema.ColEBikes))
		if ms, err := strconv.ParseInt(t.value(rec, schema.ColInstalled), 10, 64); err == nil && ms > 0 {
			cs.Installed = time.UnixMilli(ms).UTC()
		}
		set.Stations = append(set.Stations, cs)
	}
	return set, nil
}

// Coordinates always use a dot decimal separator.
func parseCoordinate(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
