package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Forecast carries expected demand for upcoming periods, either as a flat
// per-period rate or as an explicit per-period sequence. Projections are
// floored at zero on construction; demand cannot be negative.
type Forecast struct {
	values []float64
	rate   float64
	scalar bool
}

// ForecastScalar builds a flat-rate forecast.
func ForecastScalar(ratePerPeriod float64) Forecast {
	return Forecast{rate: math.Max(0, finite(ratePerPeriod)), scalar: true}
}

// ForecastSeries builds a per-period forecast. The input slice is copied.
func ForecastSeries(perPeriod []float64) Forecast {
	values := make([]float64, len(perPeriod))
	for i, v := range perPeriod {
		values[i] = math.Max(0, finite(v))
	}

	return Forecast{values: values}
}

// IsScalar reports whether the forecast is a flat per-period rate.
func (f Forecast) IsScalar() bool { return f.scalar }

// Len returns the number of projected periods, 0 for scalar forecasts.
func (f Forecast) Len() int { return len(f.values) }

// Values returns a copy of the per-period projections, nil for scalar
// forecasts.
func (f Forecast) Values() []float64 {
	if f.values == nil {
		return nil
	}
	out := make([]float64, len(f.values))
	copy(out, f.values)

	return out
}

// ratePerPeriod averages the first window periods, or the whole series when
// it is shorter than the window. The second return is false when the
// forecast holds no data at all.
func (f Forecast) ratePerPeriod(window int) (float64, bool) {
	if f.scalar {
		return f.rate, true
	}
	if len(f.values) == 0 {
		return 0, false
	}

	n := window
	if n > len(f.values) {
		n = len(f.values)
	}

	return stat.Mean(f.values[:n], nil), true
}
