package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		safety  float64
		optimal float64
		want    StockStatus
	}{
		{name: "below safety", current: 3, safety: 7, optimal: 77, want: StatusUnderstocked},
		{name: "between safety and optimal", current: 50, safety: 7, optimal: 77, want: StatusBelowOptimal},
		{name: "at optimal", current: 77, safety: 7, optimal: 77, want: StatusAdequate},
		{name: "above optimal", current: 120, safety: 7, optimal: 77, want: StatusAdequate},
		{name: "zero everywhere", current: 0, safety: 0, optimal: 0, want: StatusAdequate},
		{name: "at safety boundary", current: 7, safety: 7, optimal: 77, want: StatusBelowOptimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStock(tt.current, tt.safety, tt.optimal))
		})
	}
}

func TestStockStatusLabel(t *testing.T) {
	assert.Equal(t, "Understocked", StatusUnderstocked.Label())
	assert.Equal(t, "Below Optimal", StatusBelowOptimal.Label())
	assert.Equal(t, "Adequate", StatusAdequate.Label())
	assert.Equal(t, "Unknown", StockStatus("bogus").Label())
}

func TestParseStockStatus(t *testing.T) {
	got, ok := ParseStockStatus("below_optimal")
	assert.True(t, ok)
	assert.Equal(t, StatusBelowOptimal, got)

	got, ok = ParseStockStatus(" Understocked ")
	assert.True(t, ok)
	assert.Equal(t, StatusUnderstocked, got)

	_, ok = ParseStockStatus("overflowing")
	assert.False(t, ok)
}

func TestPlanningParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultPlanningParams().Validate())

	assert.Error(t, PlanningParams{LeadTimeDays: 3, ServiceLevel: 0.95}.Validate())
	assert.Error(t, PlanningParams{LeadTimeDays: 120, ServiceLevel: 0.95}.Validate())
	assert.Error(t, PlanningParams{LeadTimeDays: 30, ServiceLevel: 0.5}.Validate())
	assert.Error(t, PlanningParams{LeadTimeDays: 30, ServiceLevel: 0.999}.Validate())
}
