package analysis

import "fmt"

// InsufficientDataError means too few paired observations remained for a fit.
type InsufficientDataError struct {
	Pairs int
	Need  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d paired observations, need at least %d", e.Pairs, e.Need)
}

// DegenerateInputError means the covariate has zero variance, so the slope is undefined.
type DegenerateInputError struct {
	Value float64
	Pairs int
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("degenerate input: all %d covariate values equal %g", e.Pairs, e.Value)
}

// InsufficientDataWarning is attached to bucket results when fewer than three
// values were available; every value is then tiered normal.
type InsufficientDataWarning struct {
	Values int
}

func (w *InsufficientDataWarning) Error() string {
	return fmt.Sprintf("insufficient data for percentile tiers: %d values, need at least 3; all tiered normal", w.Values)
}
