package domain

import "strings"

// StockStatus classifies a component's current position against its
// computed safety and optimal levels.
type StockStatus string

const (
	// StatusUnderstocked: current stock is below the safety buffer.
	StatusUnderstocked StockStatus = "understocked"

	// StatusBelowOptimal: covered against variability but under the
	// optimal position.
	StatusBelowOptimal StockStatus = "below_optimal"

	// StatusAdequate: at or above the optimal position.
	StatusAdequate StockStatus = "adequate"
)

var stockStatusLabels = map[StockStatus]string{
	StatusUnderstocked: "Understocked",
	StatusBelowOptimal: "Below Optimal",
	StatusAdequate:     "Adequate",
}

// ClassifyStock maps a current position to its status.
func ClassifyStock(currentStock, safetyStock, optimalInventory float64) StockStatus {
	switch {
	case currentStock < safetyStock:
		return StatusUnderstocked
	case currentStock < optimalInventory:
		return StatusBelowOptimal
	default:
		return StatusAdequate
	}
}

// Label returns a human-readable label for the status.
func (s StockStatus) Label() string {
	if label, ok := stockStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}

// Valid reports whether s is one of the known statuses.
func (s StockStatus) Valid() bool {
	_, ok := stockStatusLabels[s]

	return ok
}

// ParseStockStatus returns the status for a code or label
// (case-insensitive).
func ParseStockStatus(v string) (StockStatus, bool) {
	needle := strings.ToLower(strings.TrimSpace(v))
	for status, label := range stockStatusLabels {
		if needle == string(status) || needle == strings.ToLower(label) {
			return status, true
		}
	}

	return "", false
}
