// Package report renders portfolio analysis results for export: the
// per-component CSV and the parameter/value summary table. Numbers are
// rendered through decimals so exported totals do not pick up float noise.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"stockplan/internal/domain"
)

// CSVHeader is the column set of the portfolio export.
func CSVHeader() []string {
	return []string{
		"component_id",
		"component_name",
		"category",
		"lead_time_days",
		"service_level",
		"current_stock",
		"unit_cost",
		"safety_stock",
		"optimal_inventory",
		"order_quantity",
		"baseline_inventory",
		"inventory_reduction",
		"reduction_pct",
		"capital_released",
		"annual_savings",
		"stock_status",
		"action",
		"forecast_source",
		"generated_at",
	}
}

// CSVRecord renders one recommendation as a CSV record matching CSVHeader.
func CSVRecord(rec domain.Recommendation) []string {
	return []string{
		rec.ComponentID,
		rec.ComponentName,
		rec.Category,
		fmt.Sprintf("%d", rec.LeadTimeDays),
		formatQuantity(rec.ServiceLevel),
		formatQuantity(rec.CurrentStock),
		formatMoney(rec.UnitCost),
		formatQuantity(rec.SafetyStock),
		formatQuantity(rec.OptimalInventory),
		formatQuantity(rec.OrderQuantity),
		formatQuantity(rec.BaselineInventory),
		formatQuantity(rec.InventoryReduction),
		formatPercent(rec.ReductionPct),
		formatMoney(rec.CapitalReleased),
		formatMoney(rec.AnnualSavings),
		string(rec.StockStatus),
		rec.Action,
		rec.ForecastSource,
		rec.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

// RenderCSV writes the full portfolio export, header first.
func RenderCSV(w io.Writer, recs []domain.Recommendation) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader()); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}

	for _, rec := range recs {
		if err := writer.Write(CSVRecord(rec)); err != nil {
			return fmt.Errorf("writing report row for %s: %w", rec.ComponentID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SummaryRow is one line of the parameter/value summary table.
type SummaryRow struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

// Summary builds the parameter/value table for a portfolio run.
func Summary(params domain.PlanningParams, s domain.PortfolioSummary) []SummaryRow {
	return []SummaryRow{
		{Parameter: "Lead Time (days)", Value: fmt.Sprintf("%d", params.LeadTimeDays)},
		{Parameter: "Service Level", Value: formatPercent(params.ServiceLevel * 100)},
		{Parameter: "Components Analyzed", Value: fmt.Sprintf("%d", s.Components)},
		{Parameter: "Current Inventory Value", Value: formatMoney(s.CurrentValue)},
		{Parameter: "Optimal Inventory Value", Value: formatMoney(s.OptimalValue)},
		{Parameter: "Capital Released", Value: formatMoney(s.CapitalReleased)},
		{Parameter: "Annual Savings", Value: formatMoney(s.AnnualSavings)},
		{Parameter: "Understocked Components", Value: fmt.Sprintf("%d", s.Understocked)},
		{Parameter: "Below Optimal Components", Value: fmt.Sprintf("%d", s.BelowOptimal)},
		{Parameter: "Adequate Components", Value: fmt.Sprintf("%d", s.Adequate)},
	}
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

func formatQuantity(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func formatPercent(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1)
}
