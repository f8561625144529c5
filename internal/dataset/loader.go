package dataset

import (
	"path/filepath"

	"github.com/KaramelBytes/citypulse-cli/internal/cache"
	"github.com/KaramelBytes/citypulse-cli/internal/logging"
	"github.com/KaramelBytes/citypulse-cli/internal/utils"
)

// Loader reads dataset files once per process, memoizing parsed tables by
// content digest.
type Loader struct {
	opt   ReadOptions
	store *cache.Store
	log   logging.Logger
}

// NewLoader builds a loader. store may be nil to disable memoization.
func NewLoader(opt ReadOptions, store *cache.Store, log logging.Logger) *Loader {
	if log == nil {
		log = logging.Nop()
	}
	return &Loader{opt: opt, store: store, log: log}
}

// Invalidate forgets every table parsed from path.
func (l *Loader) Invalidate(path string) int { return l.store.Invalidate(path) }

type parseFunc[T any] func(name string, data []byte, opt ReadOptions) (T, error)

func load[T any](l *Loader, kind, path string, parse parseFunc[T], dropped func(T) []error) (T, error) {
	var zero T
	data, digest, err := utils.ReadWithDigest(path)
	if err != nil {
		return zero, err
	}
	key := cache.Key(kind, digest, l.opt.fingerprint())
	v, hit, err := cache.Memo(l.store, path, key, func() (T, error) {
		return parse(filepath.Base(path), data, l.opt)
	})
	if err != nil {
		return zero, err
	}
	if hit {
		l.log.Debug("dataset served from cache", "kind", kind, "file", path)
		return v, nil
	}
	drops := dropped(v)
	if len(drops) > 0 {
		l.log.Warn("rows dropped while loading", "kind", kind, "file", path, "dropped", len(drops), "first", drops[0].Error())
	}
	l.log.Debug("dataset loaded", "kind", kind, "file", path, "bytes", len(data))
	return v, nil
}

// Rentals loads and concatenates one or more rental files (e.g. quarterly exports).
func (l *Loader) Rentals(paths ...string) (*RentalSet, error) {
	out := &RentalSet{}
	for _, p := range paths {
		set, err := load(l, "rentals", p, ParseRentals, func(s *RentalSet) []error { return s.Dropped })
		if err != nil {
			return nil, err
		}
		out.Files = append(out.Files, set.Files...)
		out.Records = append(out.Records, set.Records...)
		out.Dropped = append(out.Dropped, set.Dropped...)
	}
	return out, nil
}

// Weather loads the daily weather file.
func (l *Loader) Weather(path string) (*WeatherSet, error) {
	set, err := load(l, "weather", path, ParseWeather, func(s *WeatherSet) []error { return s.Dropped })
	if err == nil && set.Duplicates > 0 {
		l.log.Warn("duplicate weather dates ignored", "file", path, "duplicates", set.Duplicates)
	}
	return set, err
}

// Metro loads the annualised entry/exit file.
func (l *Loader) Metro(path string) (*MetroSet, error) {
	return load(l, "metro", path, ParseMetro, func(s *MetroSet) []error { return s.Dropped })
}

// Stations loads station coordinates.
func (l *Loader) Stations(path string) (*StationSet, error) {
	return load(l, "stations", path, ParseStations, func(s *StationSet) []error { return s.Dropped })
}

// TubeLines loads line segments.
func (l *Loader) TubeLines(path string) (*TubeLineSet, error) {
	return load(l, "tube-lines", path, ParseTubeLines, func(s *TubeLineSet) []error { return s.Dropped })
}

// CycleStations loads docking stations.
func (l *Loader) CycleStations(path string) (*CycleStationSet, error) {
	return load(l, "cycle-stations", path, ParseCycleStations, func(s *CycleStationSet) []error { return s.Dropped })
}
