// Package forecast supplies demand projections to the planning engine.
// Providers are interchangeable behind one interface so the projection
// model can change without touching the calculations.
package forecast

import (
	"context"
	"fmt"

	"stockplan/internal/engine"
)

// HorizonMarginDays is the slack projected beyond the lead time so a
// projection stays usable while a replenishment decision is pending.
const HorizonMarginDays = 60

// Horizon returns the number of periods to project for a lead time.
func Horizon(leadTimeDays int) int {
	return leadTimeDays + HorizonMarginDays
}

// Provider produces a demand projection from historical usage. demand is
// ordered oldest first, one observation per period.
type Provider interface {
	Name() string
	Forecast(ctx context.Context, demand []float64, periods int) (engine.Forecast, error)
}

// New returns the provider registered under name. The empty string selects
// the flat-average provider.
func New(name string) (Provider, error) {
	switch name {
	case "", NameFlatAverage:
		return NewFlatAverage(), nil
	case NameSmoothedTrend:
		return NewSmoothedTrend(DefaultAlpha, DefaultBeta), nil
	}

	return nil, fmt.Errorf("unknown forecast provider %q (known: %s, %s)", name, NameFlatAverage, NameSmoothedTrend)
}
