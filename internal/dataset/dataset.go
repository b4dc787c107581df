// Package dataset loads and serves the planning datasets: usage history
// (demand observations per component) and the current stock snapshot.
package dataset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stockplan/internal/domain"
)

// Dataset is an immutable in-memory snapshot of components and their usage
// history. Usage series are kept ordered by date ascending. Safe for
// concurrent reads once built.
type Dataset struct {
	components map[string]domain.Component
	usage      map[string][]domain.UsagePoint
}

// NewDataset returns an empty dataset ready for Add calls.
func NewDataset() *Dataset {
	return &Dataset{
		components: make(map[string]domain.Component),
		usage:      make(map[string][]domain.UsagePoint),
	}
}

// AddComponent inserts or replaces a component.
func (d *Dataset) AddComponent(c domain.Component) {
	d.components[c.ComponentID] = c
}

// AddUsage appends one observation, keeping the series date-ordered.
func (d *Dataset) AddUsage(p domain.UsagePoint) {
	series := append(d.usage[p.ComponentID], p)
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	d.usage[p.ComponentID] = series
}

// Len returns the number of components.
func (d *Dataset) Len() int { return len(d.components) }

// Components lists all components sorted by component ID. Components that
// only appear in the usage history (no snapshot row) are not listed.
func (d *Dataset) Components(_ context.Context) ([]domain.Component, error) {
	out := make([]domain.Component, 0, len(d.components))
	for _, c := range d.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ComponentID < out[j].ComponentID })

	return out, nil
}

// Component returns one component by ID.
func (d *Dataset) Component(_ context.Context, componentID string) (domain.Component, error) {
	c, ok := d.components[componentID]
	if !ok {
		return domain.Component{}, fmt.Errorf("%w: %s", domain.ErrComponentNotFound, componentID)
	}

	return c, nil
}

// Usage returns the observations for a component over the trailing window,
// anchored at the component's latest observation. days <= 0 returns the
// full series. Unknown components return an empty series; a component with
// no recorded usage is not an error.
func (d *Dataset) Usage(_ context.Context, componentID string, days int) ([]domain.UsagePoint, error) {
	series := d.usage[componentID]
	if len(series) == 0 || days <= 0 {
		return append([]domain.UsagePoint(nil), series...), nil
	}

	anchor := series[len(series)-1].Date
	cutoff := anchor.AddDate(0, 0, -days)

	out := make([]domain.UsagePoint, 0, len(series))
	for _, p := range series {
		if p.Date.After(cutoff) {
			out = append(out, p)
		}
	}

	return out, nil
}

// Demand returns the full demand series for a component as plain values,
// date order preserved.
func (d *Dataset) Demand(ctx context.Context, componentID string) ([]float64, error) {
	points, err := d.Usage(ctx, componentID, 0)
	if err != nil {
		return nil, err
	}

	return UsageValues(points), nil
}

// UsageValues flattens observations to their unit values, order preserved.
func UsageValues(points []domain.UsagePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.UnitsUsed
	}

	return out
}

// LatestDate returns the newest observation date across all components,
// zero time for an empty dataset.
func (d *Dataset) LatestDate() time.Time {
	var latest time.Time
	for _, series := range d.usage {
		if n := len(series); n > 0 && series[n-1].Date.After(latest) {
			latest = series[n-1].Date
		}
	}

	return latest
}
