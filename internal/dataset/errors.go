package dataset

import "fmt"

// DateParseError marks a row whose date cell could not be parsed. The row is
// dropped and loading continues.
type DateParseError struct {
	File  string
	Row   int
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("%s row %d: unparseable date %q", e.File, e.Row, e.Value)
}

// ValueError marks a row dropped because a required non-date cell was invalid.
type ValueError struct {
	File   string
	Row    int
	Column string
	Value  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s row %d: invalid %s %q", e.File, e.Row, e.Column, e.Value)
}
