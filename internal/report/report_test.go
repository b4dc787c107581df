package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockplan/internal/domain"
)

func sampleRecommendation() domain.Recommendation {
	return domain.Recommendation{
		ID:                 "11111111-1111-1111-1111-111111111111",
		ComponentID:        "CMP-001",
		ComponentName:      "Hydraulic seal",
		Category:           "seals",
		LeadTimeDays:       7,
		ServiceLevel:       0.95,
		CurrentStock:       50,
		UnitCost:           5,
		SafetyStock:        6.922916,
		OptimalInventory:   79.922916,
		OrderQuantity:      29.922916,
		BaselineInventory:  625.714285,
		InventoryReduction: 545.791369,
		ReductionPct:       87.226930,
		CapitalReleased:    2728.956847,
		AnnualSavings:      409.343527,
		StockStatus:        domain.StatusBelowOptimal,
		Action:             "Order 30 units at $5.00 each",
		DemandObservations: 7,
		ForecastSource:     "flat-average",
		GeneratedAt:        time.Date(2025, time.August, 20, 9, 30, 0, 0, time.UTC),
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, []domain.Recommendation{sampleRecommendation()}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, CSVHeader(), records[0])

	row := records[1]
	require.Len(t, row, len(CSVHeader()))
	assert.Equal(t, "CMP-001", row[0])
	assert.Equal(t, "6.92", row[7], "safety stock rounds to two decimals")
	assert.Equal(t, "87.2", row[12], "percentage rounds to one decimal")
	assert.Equal(t, "2728.96", row[13], "money rounds half up to cents")
	assert.Equal(t, "409.34", row[14])
	assert.Equal(t, "below_optimal", row[15])
	assert.Equal(t, "2025-08-20T09:30:00Z", row[18])
}

func TestRenderCSV_EmptyStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, CSVHeader(), records[0])
}

func TestSummary(t *testing.T) {
	params := domain.PlanningParams{LeadTimeDays: 30, ServiceLevel: 0.95}
	summary := domain.PortfolioSummary{
		Components:      12,
		CurrentValue:    10500.456,
		OptimalValue:    7200.123,
		CapitalReleased: 3300.333,
		AnnualSavings:   495.05,
		Understocked:    2,
		BelowOptimal:    4,
		Adequate:        6,
	}

	rows := Summary(params, summary)
	require.Len(t, rows, 10)

	byParam := make(map[string]string, len(rows))
	for _, row := range rows {
		byParam[row.Parameter] = row.Value
	}

	assert.Equal(t, "30", byParam["Lead Time (days)"])
	assert.Equal(t, "95.0", byParam["Service Level"])
	assert.Equal(t, "12", byParam["Components Analyzed"])
	assert.Equal(t, "10500.46", byParam["Current Inventory Value"])
	assert.Equal(t, "3300.33", byParam["Capital Released"])
	assert.Equal(t, "2", byParam["Understocked Components"])
}

func TestMoneyRounding(t *testing.T) {
	assert.Equal(t, "2.01", formatMoney(2.005))
	assert.Equal(t, "2.00", formatMoney(2.0049))
	assert.Equal(t, "0.00", formatMoney(0))
	assert.Equal(t, "-1.50", formatMoney(-1.499999))
}
