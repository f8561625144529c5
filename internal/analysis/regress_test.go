package analysis

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/KaramelBytes/citypulse-cli/internal/dataset"
	"github.com/KaramelBytes/citypulse-cli/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func floats(vs ...float64) []dataset.NullFloat {
	out := make([]dataset.NullFloat, len(vs))
	for i, v := range vs {
		out[i] = dataset.Float(v)
	}
	return out
}

func relClose(t *testing.T, want, got float64) {
	t.Helper()
	scale := math.Max(1, math.Abs(want))
	assert.LessOrEqual(t, math.Abs(want-got)/scale, 1e-9, "want %v got %v", want, got)
}

func TestFitOLS_ExactLine(t *testing.T) {
	fit, err := FitOLS(floats(-1, 0, 2.5, 7), floats(1, 3, 8, 17))
	require.NoError(t, err)
	relClose(t, 2, fit.Slope)
	relClose(t, 3, fit.Intercept)
	relClose(t, 1, fit.RSquared)
	assert.Equal(t, 4, fit.N)
	assert.Equal(t, "y = 2.00x + 3.00", fit.Equation())
}

func TestFitOLS_MatchesReferenceSolver(t *testing.T) {
	rng := rand.New(rand.NewSource(2021))
	n := 365
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = -5 + rng.Float64()*30
		ys[i] = 1200*xs[i] + 15000 + rng.NormFloat64()*4000
	}
	fit, err := FitOLS(floats(xs...), floats(ys...))
	require.NoError(t, err)

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)
	relClose(t, beta, fit.Slope)
	relClose(t, alpha, fit.Intercept)
	relClose(t, r2, fit.RSquared)
}

func TestFitOLS_DropsNullPairs(t *testing.T) {
	x := []dataset.NullFloat{dataset.Float(1), dataset.Null, dataset.Float(2), dataset.Float(3), dataset.Float(100)}
	y := []dataset.NullFloat{dataset.Float(5), dataset.Float(1e9), dataset.Float(7), dataset.Float(9), dataset.Null}
	fit, err := FitOLS(x, y)
	require.NoError(t, err)
	assert.Equal(t, 3, fit.N)
	assert.Equal(t, 2, fit.Dropped)
	relClose(t, 2, fit.Slope)
	relClose(t, 3, fit.Intercept)
}

func TestFitOLS_NonFiniteCountsAsNull(t *testing.T) {
	x := []dataset.NullFloat{dataset.Float(1), dataset.Float(math.NaN()), dataset.Float(3), dataset.Float(4)}
	y := floats(5, 7, 9, 11)
	fit, err := FitOLS(x, y)
	require.NoError(t, err)
	assert.Equal(t, 3, fit.N)
	assert.Equal(t, 1, fit.Dropped)
	relClose(t, 2, fit.Slope)
	relClose(t, 3, fit.Intercept)

	rows := []DailyRow{
		{Total: 5, Weather: dataset.WeatherObservation{TAvg: dataset.Float(1)}},
		{Total: 7, Weather: dataset.WeatherObservation{TAvg: dataset.Float(math.Inf(1))}},
		{Total: 9, Weather: dataset.WeatherObservation{TAvg: dataset.Float(3)}},
		{Total: 11, Weather: dataset.WeatherObservation{TAvg: dataset.Float(4)}},
	}
	out := RegressCovariate(rows, schema.TAvg)
	require.True(t, out.OK(), out.Failure)
	relClose(t, 2, out.Fit.Slope)

	cs := Correlate(rows, []schema.Covariate{schema.TAvg})
	require.Len(t, cs, 1)
	assert.True(t, cs[0].Valid)
	assert.Equal(t, 3, cs[0].N)
	assert.InDelta(t, 1, cs[0].R, 1e-12)
}

func TestFitOLS_Errors(t *testing.T) {
	_, err := FitOLS(floats(5, 5, 5, 5), floats(1, 2, 3, 4))
	var dge *DegenerateInputError
	require.True(t, errors.As(err, &dge))
	assert.Equal(t, 5.0, dge.Value)

	_, err = FitOLS([]dataset.NullFloat{dataset.Float(1), dataset.Null}, floats(1, 2))
	var ide *InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 1, ide.Pairs)

	_, err = FitOLS(floats(1, 2), floats(1))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFitOLS_ConstantResponse(t *testing.T) {
	fit, err := FitOLS(floats(1, 2, 3), floats(0.1, 0.1, 0.1))
	require.NoError(t, err)
	assert.InDelta(t, 0, fit.Slope, 1e-15)
	assert.Equal(t, 1.0, fit.RSquared)
}

func TestRegressCovariate_LabelsFailures(t *testing.T) {
	rows := []DailyRow{
		{Date: day(2021, 1, 1), Total: 100, Weather: dataset.WeatherObservation{TAvg: dataset.Float(2), Snow: dataset.Float(0)}},
		{Date: day(2021, 1, 2), Total: 140, Weather: dataset.WeatherObservation{TAvg: dataset.Float(4), Snow: dataset.Float(0)}},
		{Date: day(2021, 1, 3), Total: 180, Weather: dataset.WeatherObservation{TAvg: dataset.Float(6), Snow: dataset.Float(0)}},
	}
	ok := RegressCovariate(rows, schema.TAvg)
	require.True(t, ok.OK())
	relClose(t, 20, ok.Fit.Slope)
	relClose(t, 60, ok.Fit.Intercept)

	snow := RegressCovariate(rows, schema.Snow)
	assert.False(t, snow.OK())
	assert.Contains(t, snow.Failure, "degenerate")
	var dge *DegenerateInputError
	assert.True(t, errors.As(snow.Err, &dge))

	sun := RegressCovariate(rows, schema.TSun)
	assert.False(t, sun.OK())
	var ide *InsufficientDataError
	assert.True(t, errors.As(sun.Err, &ide))
}

func TestEquationNegativeIntercept(t *testing.T) {
	assert.Equal(t, "y = -1.50x - 2.25", Regression{Slope: -1.5, Intercept: -2.25}.Equation())
}
