package forecast

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"stockplan/internal/engine"
)

// NameFlatAverage identifies the flat-average provider in config.
const NameFlatAverage = "flat-average"

// FlatAverage projects the historical mean as a constant per-period rate.
// It is the fallback every richer model degrades to and the only provider
// that works from a single observation.
type FlatAverage struct{}

func NewFlatAverage() *FlatAverage { return &FlatAverage{} }

func (*FlatAverage) Name() string { return NameFlatAverage }

func (*FlatAverage) Forecast(_ context.Context, demand []float64, _ int) (engine.Forecast, error) {
	if len(demand) == 0 {
		return engine.Forecast{}, fmt.Errorf("%w: no usage history to project", engine.ErrInsufficientData)
	}

	return engine.ForecastScalar(stat.Mean(demand, nil)), nil
}
