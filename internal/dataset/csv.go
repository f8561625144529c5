package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/citypulse-cli/internal/schema"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadOptions controls how delimited files are tokenized and how numbers are read.
type ReadOptions struct {
	// Delimiter for CSV. If 0, sniffs the header line among ',', ';', '\t'.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// MetroScale multiplies metro category counts; 0 means schema.MetroScaleFactor.
	MetroScale float64
}

// DefaultReadOptions sniffs the delimiter and auto-detects number locale.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{MetroScale: schema.MetroScaleFactor}
}

// fingerprint identifies the options for cache keys.
func (o ReadOptions) fingerprint() string {
	return fmt.Sprintf("d=%q;dec=%q;th=%q;scale=%g", o.Delimiter, o.DecimalSeparator, o.ThousandsSeparator, o.MetroScale)
}

// table is a header-resolved delimited file.
type table struct {
	name  string
	index schema.Index
	r     *csv.Reader
	row   int
}

// openTable decodes data as UTF-8 (stripping a BOM), sniffs the delimiter and
// resolves the header against ds.
func openTable(name string, data []byte, ds schema.Dataset, opt ReadOptions) (*table, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("%s: decode utf-8: %w", name, err)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name, decoded)
	}
	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", name)
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	ix, err := ds.Resolve(name, header)
	if err != nil {
		return nil, err
	}
	return &table{name: name, index: ix, r: r, row: 1}, nil
}

// next returns the next record, or io.EOF. Row numbers count the header as 1.
func (t *table) next() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%s: read row %d: %w", t.name, t.row+1, err)
	}
	t.row++
	return rec, nil
}

func (t *table) value(rec []string, col string) string { return t.index.Value(rec, col) }

func sniffDelimiter(name string, data []byte) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestN := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// parseDate tries the schema's layouts and truncates to a UTC civil day.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range schema.DateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseNumeric reads a locale-formatted number ("1.234,5", "1,234.5", "12%").
func parseNumeric(s string, opt ReadOptions) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseNullable is parseNumeric mapped onto NullFloat. Blanks, garbage, NA
// markers ("NA", "N/A", "null") and non-finite spellings ("NaN", "Inf") are null.
func parseNullable(s string, opt ReadOptions) NullFloat {
	if f, ok := parseNumeric(s, opt); ok {
		return Float(f)
	}
	return Null
}

// parseCount reads a non-negative whole number. Float spellings ("15.0") and
// comma/space grouping ("1,234") are accepted; fractional values are not.
func parseCount(s string) (int, bool) {
	raw := strings.TrimSpace(s)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r := strings.NewReplacer(",", "", " ", "", "\u00A0", "", "'", "")
		f, err = strconv.ParseFloat(r.Replace(raw), 64)
		if err != nil {
			return 0, false
		}
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
