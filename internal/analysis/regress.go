package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/citypulse-cli/internal/dataset"
	"github.com/KaramelBytes/citypulse-cli/internal/schema"
)

// ErrLengthMismatch is returned when X and Y are not aligned.
var ErrLengthMismatch = errors.New("covariate and response lengths differ")

// Regression is a fitted y = Slope*x + Intercept.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	// N is the number of pairs used; Dropped the pairs skipped for a null side.
	N       int `json:"n"`
	Dropped int `json:"dropped"`
}

// Predict evaluates the fitted line.
func (r Regression) Predict(x float64) float64 { return r.Slope*x + r.Intercept }

// Equation renders the fit the way the chart annotates it, e.g. "y = 12.34x + 5.67".
func (r Regression) Equation() string {
	sign, b := "+", r.Intercept
	if b < 0 {
		sign, b = "-", -b
	}
	return fmt.Sprintf("y = %.2fx %s %.2f", r.Slope, sign, b)
}

// FitOLS fits y = slope*x + intercept by ordinary least squares. Pairs with a
// null on either side are dropped first. It fails with *InsufficientDataError
// below two pairs and *DegenerateInputError when every x is identical.
func FitOLS(x, y []dataset.NullFloat) (Regression, error) {
	if len(x) != len(y) {
		return Regression{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if present(x[i]) && present(y[i]) {
			xs = append(xs, x[i].Value)
			ys = append(ys, y[i].Value)
		}
	}
	fit := Regression{N: len(xs), Dropped: len(x) - len(xs)}
	if fit.N < 2 {
		return fit, &InsufficientDataError{Pairs: fit.N, Need: 2}
	}
	if allEqual(xs) {
		return fit, &DegenerateInputError{Value: xs[0], Pairs: fit.N}
	}

	n := float64(fit.N)
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n
	var sxx, sxy, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	fit.Slope = sxy / sxx
	fit.Intercept = my - fit.Slope*mx

	var ssr float64
	for i := range xs {
		res := ys[i] - fit.Predict(xs[i])
		ssr += res * res
	}
	if syy == 0 || allEqual(ys) {
		// constant response: the horizontal line is an exact fit
		fit.Slope, fit.Intercept, fit.RSquared = 0, ys[0], 1
	} else {
		fit.RSquared = 1 - ssr/syy
	}
	if math.IsNaN(fit.Slope) || math.IsInf(fit.Slope, 0) {
		return fit, &DegenerateInputError{Value: mx, Pairs: fit.N}
	}
	return fit, nil
}

// RegressionOutcome labels a regression attempt for one covariate. Exactly one
// of Fit and Failure is set, so callers can always render something.
type RegressionOutcome struct {
	Covariate schema.Covariate `json:"covariate"`
	Fit       *Regression      `json:"fit,omitempty"`
	Failure   string           `json:"failure,omitempty"`
	Err       error            `json:"-"`
}

// OK reports whether the fit succeeded.
func (o RegressionOutcome) OK() bool { return o.Fit != nil }

// RegressCovariate regresses daily rentals on one weather covariate.
func RegressCovariate(rows []DailyRow, c schema.Covariate) RegressionOutcome {
	x := make([]dataset.NullFloat, len(rows))
	y := make([]dataset.NullFloat, len(rows))
	for i, r := range rows {
		x[i] = r.Weather.Get(c)
		y[i] = dataset.Float(float64(r.Total))
	}
	out := RegressionOutcome{Covariate: c}
	fit, err := FitOLS(x, y)
	if err != nil {
		out.Err = err
		out.Failure = err.Error()
		return out
	}
	out.Fit = &fit
	return out
}

func allEqual(vs []float64) bool {
	for _, v := range vs[1:] {
		if v != vs[0] {
			return false
		}
	}
	return true
}
