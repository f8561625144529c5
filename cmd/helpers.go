package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/analysis"
	"github.com/KaramelBytes/citypulse-cli/internal/cache"
	cfgpkg "github.com/KaramelBytes/citypulse-cli/internal/config"
	"github.com/KaramelBytes/citypulse-cli/internal/dataset"
	"github.com/KaramelBytes/citypulse-cli/internal/schema"
	"github.com/KaramelBytes/citypulse-cli/internal/utils"
)

// maxDropNotes caps how many individual dropped rows a report lists.
const maxDropNotes = 10

// pipeline bundles the loader with resolved source paths for one command run.
type pipeline struct {
	cfg    *cfgpkg.Global
	loader *dataset.Loader
}

func newPipeline() (*pipeline, error) {
	if cfg == nil {
		return nil, errors.New("no configuration loaded (see warning above)")
	}
	opt, err := readOptions(cfg)
	if err != nil {
		return nil, err
	}
	ttl := cache.DefaultTTL
	if cfg.CacheTTLSec > 0 {
		ttl = time.Duration(cfg.CacheTTLSec) * time.Second
	}
	return &pipeline{cfg: cfg, loader: dataset.NewLoader(opt, cache.New(ttl), log)}, nil
}

func readOptions(c *cfgpkg.Global) (dataset.ReadOptions, error) {
	opt := dataset.DefaultReadOptions()
	var err error
	if opt.Delimiter, err = parseRune("delimiter", c.Delimiter); err != nil {
		return opt, err
	}
	if opt.DecimalSeparator, err = parseRune("decimal_separator", c.DecimalSeparator); err != nil {
		return opt, err
	}
	if opt.ThousandsSeparator, err = parseRune("thousands_separator", c.ThousandsSeparator); err != nil {
		return opt, err
	}
	if c.MetroScaleFactor > 0 {
		opt.MetroScale = c.MetroScaleFactor
	}
	return opt, nil
}

// parseRune accepts a single character or the names "comma", "semicolon",
// "tab", "dot" and "space". Empty means auto-detect.
func parseRune(key, s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "tab", "\\t":
		return '\t', nil
	case "dot":
		return '.', nil
	case "space":
		return ' ', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("invalid %s %q: use a single character or comma|semicolon|tab|dot|space", key, s)
	}
	return r[0], nil
}

func (p *pipeline) path(name string) string { return utils.ResolvePath(p.cfg.DataDir, name) }

func (p *pipeline) rentals() (*dataset.RentalSet, error) {
	if len(p.cfg.RentalFiles) == 0 {
		return nil, errors.New("no rental_files configured")
	}
	paths := make([]string, 0, len(p.cfg.RentalFiles))
	for _, f := range p.cfg.RentalFiles {
		paths = append(paths, p.path(f))
	}
	return p.loader.Rentals(paths...)
}

func (p *pipeline) weather() (*dataset.WeatherSet, error) {
	return p.loader.Weather(p.path(p.cfg.WeatherFile))
}

// join loads rentals and weather and inner-joins them by date.
func (p *pipeline) join() (analysis.JoinResult, *dataset.RentalSet, *dataset.WeatherSet, error) {
	r, err := p.rentals()
	if err != nil {
		return analysis.JoinResult{}, nil, nil, err
	}
	w, err := p.weather()
	if err != nil {
		return analysis.JoinResult{}, nil, nil, err
	}
	return analysis.Join(r, w), r, w, nil
}

func (p *pipeline) buckets(subset schema.Subset) (analysis.Buckets, *dataset.MetroSet, error) {
	m, err := p.loader.Metro(p.path(p.cfg.MetroFile))
	if err != nil {
		return analysis.Buckets{}, nil, err
	}
	b := analysis.Bucketize(m.Stations, subset)
	if b.Warning != nil {
		log.Warn("station thresholds not computed", "subset", string(subset), "error", b.Warning)
	}
	return b, m, nil
}

func (p *pipeline) subset(flag string) (schema.Subset, error) {
	if flag == "" {
		flag = p.cfg.DefaultSubset
	}
	return schema.ParseSubset(flag)
}

func (p *pipeline) covariates(flags []string) ([]schema.Covariate, error) {
	if len(flags) == 0 && p.cfg.DefaultCovariate != "" {
		flags = []string{p.cfg.DefaultCovariate}
	}
	out := make([]schema.Covariate, 0, len(flags))
	for _, f := range flags {
		c, err := schema.ParseCovariate(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// joinSummary carries the join and load-drop counters into JSON output.
type joinSummary struct {
	JoinedDays           int `json:"joined_days"`
	UnmatchedRentalDays  int `json:"unmatched_rental_days"`
	UnmatchedWeatherDays int `json:"unmatched_weather_days"`
	DroppedRows          int `json:"dropped_rows"`
}

func summarizeJoin(j analysis.JoinResult) joinSummary {
	return joinSummary{
		JoinedDays:           len(j.Rows),
		UnmatchedRentalDays:  j.UnmatchedRentalDays,
		UnmatchedWeatherDays: j.UnmatchedWeatherDays,
		DroppedRows:          j.DroppedRows,
	}
}

// dropNotes formats dropped-row errors for [NOTES], listing at most limit.
func dropNotes(kind string, errs []error, limit int) []string {
	var out []string
	for i, e := range errs {
		if i == limit {
			out = append(out, fmt.Sprintf("%s: and %d more dropped rows", kind, len(errs)-limit))
			break
		}
		out = append(out, fmt.Sprintf("%s: %v", kind, e))
	}
	return out
}

// emit writes data to path, or to w when path is empty.
func emit(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return err
	}
	log.Info("output written", "path", path, "bytes", len(data))
	return nil
}

func parseFormat(s string) (string, error) {
	switch s {
	case "", "md", "markdown":
		return "md", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("invalid --format %q (use md or json)", s)
	}
}
