package forecast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockplan/internal/engine"
)

func TestHorizon(t *testing.T) {
	assert.Equal(t, 90, Horizon(30))
	assert.Equal(t, 67, Horizon(7))
}

func TestNewProvider(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	assert.Equal(t, NameFlatAverage, p.Name())

	p, err = New(NameSmoothedTrend)
	require.NoError(t, err)
	assert.Equal(t, NameSmoothedTrend, p.Name())

	_, err = New("prophet")
	assert.Error(t, err)
}

func TestFlatAverage(t *testing.T) {
	p := NewFlatAverage()

	f, err := p.Forecast(context.Background(), []float64{10, 12, 9, 11, 10, 13, 8}, 90)
	require.NoError(t, err)

	assert.True(t, f.IsScalar())

	calc, err := engine.NewCalculator(engine.DefaultPolicy())
	require.NoError(t, err)

	// Flat rate 10.4286 over 7 days, no buffer.
	opt, err := calc.OptimalInventory(f, 7, 0)
	require.NoError(t, err)
	assert.InDelta(t, 73.0, opt, 1e-6)
}

func TestFlatAverage_EmptyHistory(t *testing.T) {
	_, err := NewFlatAverage().Forecast(context.Background(), nil, 90)
	assert.ErrorIs(t, err, engine.ErrInsufficientData)
}

func TestSmoothedTrend_ConstantDemandStaysFlat(t *testing.T) {
	p := NewSmoothedTrend(DefaultAlpha, DefaultBeta)

	f, err := p.Forecast(context.Background(), []float64{10, 10, 10, 10, 10}, 14)
	require.NoError(t, err)

	require.Equal(t, 14, f.Len())
	for i, v := range f.Values() {
		assert.InDelta(t, 10.0, v, 1e-9, "period %d", i)
	}
}

func TestSmoothedTrend_RisingDemandProjectsUpward(t *testing.T) {
	p := NewSmoothedTrend(DefaultAlpha, DefaultBeta)

	f, err := p.Forecast(context.Background(), []float64{10, 12, 14, 16, 18, 20}, 10)
	require.NoError(t, err)

	values := f.Values()
	require.Len(t, values, 10)
	assert.Greater(t, values[0], 20.0, "projection must continue above the last level")
	assert.GreaterOrEqual(t, values[9], values[0], "upward trend must not reverse")
}

func TestSmoothedTrend_DecliningDemandFlooredAtZero(t *testing.T) {
	p := NewSmoothedTrend(DefaultAlpha, DefaultBeta)

	f, err := p.Forecast(context.Background(), []float64{100, 75, 50, 25, 5}, 30)
	require.NoError(t, err)

	for i, v := range f.Values() {
		assert.GreaterOrEqual(t, v, 0.0, "period %d must not go negative", i)
	}
}

func TestSmoothedTrend_InsufficientHistory(t *testing.T) {
	p := NewSmoothedTrend(DefaultAlpha, DefaultBeta)

	_, err := p.Forecast(context.Background(), []float64{42}, 10)
	assert.ErrorIs(t, err, engine.ErrInsufficientData)
}

func TestSmoothedTrend_InvalidPeriods(t *testing.T) {
	p := NewSmoothedTrend(DefaultAlpha, DefaultBeta)

	_, err := p.Forecast(context.Background(), []float64{10, 11}, 0)
	assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
}

func TestNewSmoothedTrend_ClampsFactors(t *testing.T) {
	p := NewSmoothedTrend(-1, 2)

	assert.Equal(t, DefaultAlpha, p.alpha)
	assert.Equal(t, DefaultBeta, p.beta)
}
