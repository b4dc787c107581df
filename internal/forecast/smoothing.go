package forecast

import (
	"context"
	"fmt"

	"stockplan/internal/engine"
)

// NameSmoothedTrend identifies the smoothed-trend provider in config.
const NameSmoothedTrend = "smoothed-trend"

// Smoothing defaults. The trend is damped so long horizons flatten out
// instead of running away.
const (
	DefaultAlpha = 0.35
	DefaultBeta  = 0.15

	trendDamping = 0.98
)

// SmoothedTrend runs double exponential smoothing (level + trend) over the
// history and projects the damped trend forward as a per-period sequence.
type SmoothedTrend struct {
	alpha float64
	beta  float64
}

// NewSmoothedTrend builds a provider with the given smoothing factors.
// Factors outside (0, 1) fall back to the defaults.
func NewSmoothedTrend(alpha, beta float64) *SmoothedTrend {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	if beta <= 0 || beta >= 1 {
		beta = DefaultBeta
	}

	return &SmoothedTrend{alpha: alpha, beta: beta}
}

func (*SmoothedTrend) Name() string { return NameSmoothedTrend }

func (s *SmoothedTrend) Forecast(_ context.Context, demand []float64, periods int) (engine.Forecast, error) {
	if periods <= 0 {
		return engine.Forecast{}, fmt.Errorf("%w: periods must be positive, got %d", engine.ErrInvalidConfiguration, periods)
	}
	if len(demand) < 2 {
		return engine.Forecast{}, fmt.Errorf("%w: smoothing needs at least 2 observations, got %d", engine.ErrInsufficientData, len(demand))
	}

	// 1. Fit level and trend across the history
	level := demand[0]
	trend := demand[1] - demand[0]
	for _, v := range demand[1:] {
		prevLevel := level
		level = s.alpha*v + (1-s.alpha)*(level+trend)
		trend = s.beta*(level-prevLevel) + (1-s.beta)*trend
	}

	// 2. Project forward with a damped trend
	out := make([]float64, periods)
	phiPow := 1.0
	dampSum := 0.0
	for i := 0; i < periods; i++ {
		phiPow *= trendDamping
		dampSum += phiPow
		out[i] = level + trend*dampSum
	}

	// Negative projections are floored by the series constructor.
	return engine.ForecastSeries(out), nil
}
