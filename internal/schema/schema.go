// Package schema holds the versioned column contract for every input dataset,
// plus the named constants (scale factors, date layouts) shared by loaders.
package schema

import (
	"fmt"
	"strings"
)

// Version identifies the column contract below. Bump it whenever an alias
// list, category name or canonical convention changes.
const Version = 2

// MetroScaleFactor converts the published metro entry/exit figures (thousands)
// into absolute passenger counts.
const MetroScaleFactor = 1000.0

// DateLayouts are tried in order; the first successful parse wins.
// Day-first is the only slash layout accepted since the sources are UK data.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
}

// Column is a logical column with its accepted header aliases.
type Column struct {
	Name     string
	Aliases  []string
	Required bool
}

// Dataset groups the columns a loader reads from one file.
type Dataset struct {
	Name    string
	Columns []Column
}

// Column returns the named logical column; it panics on a programming error.
func (d Dataset) Column(name string) Column {
	for _, c := range d.Columns {
		if c.Name == name {
			return c
		}
	}
	panic(fmt.Sprintf("schema: dataset %s has no column %s", d.Name, name))
}

// MissingColumnError reports a required column absent from a file header.
type MissingColumnError struct {
	File    string
	Dataset string
	Column  string
	Aliases []string
}

func (e *MissingColumnError) Error() string {
	quoted := make([]string, len(e.Aliases))
	for i, a := range e.Aliases {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return fmt.Sprintf("%s: %s file is missing required column %s (accepted headers: %s; schema v%d)",
		e.File, e.Dataset, e.Column, strings.Join(quoted, ", "), Version)
}

// Index maps logical column names to positions in a header row.
type Index map[string]int

// Has reports whether the logical column was found.
func (ix Index) Has(name string) bool {
	_, ok := ix[name]
	return ok
}

// Value returns the trimmed cell for the logical column, or "" when the
// column is absent or the row is short.
func (ix Index) Value(rec []string, name string) string {
	i, ok := ix[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Resolve matches a header row against the dataset's columns. Matching is
// case-insensitive and ignores surrounding whitespace; the first alias present
// wins. A missing required column yields *MissingColumnError.
func (d Dataset) Resolve(file string, header []string) (Index, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	ix := make(Index, len(d.Columns))
	for _, c := range d.Columns {
		for _, a := range c.Aliases {
			if i, ok := pos[normalizeHeader(a)]; ok {
				ix[c.Name] = i
				break
			}
		}
		if c.Required && !ix.Has(c.Name) {
			return nil, &MissingColumnError{File: file, Dataset: d.Name, Column: c.Name, Aliases: c.Aliases}
		}
	}
	return ix, nil
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.TrimSpace(s))
}
