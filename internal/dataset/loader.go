package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stockplan/internal/domain"
)

// Canonical dataset file names inside a dataset directory.
const (
	UsageHistoryFile = "usage_history.csv"
	StockLevelsFile  = "stock_levels.csv"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// Loader reads the planning datasets from CSV. Malformed rows are skipped
// and counted, not fatal; a missing required column is.
type Loader struct {
	skipped int
}

func NewLoader() *Loader { return &Loader{} }

// Skipped returns the number of rows dropped across all Load calls.
func (l *Loader) Skipped() int { return l.skipped }

// LoadDir loads the two canonical files from a dataset directory.
func (l *Loader) LoadDir(dir string) (*Dataset, error) {
	ds := NewDataset()

	if err := l.LoadStockLevels(filepath.Join(dir, StockLevelsFile), ds); err != nil {
		return nil, err
	}
	if err := l.LoadUsageHistory(filepath.Join(dir, UsageHistoryFile), ds); err != nil {
		return nil, err
	}

	log.Info().
		Str("dir", dir).
		Int("components", ds.Len()).
		Int("skipped_rows", l.skipped).
		Msg("dataset loaded")

	return ds, nil
}

// LoadStockLevels reads the current stock snapshot into ds. Expected
// columns: component_id, name, category, current_stock, unit_cost, with an
// optional lead_time_days override.
func (l *Loader) LoadStockLevels(path string, ds *Dataset) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open stock levels: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read stock levels header: %w", err)
	}

	idxComponent := colIndex(header, "component_id", "component", "id")
	idxName := colIndex(header, "name", "component_name", "description")
	idxCategory := colIndex(header, "category")
	idxStock := colIndex(header, "current_stock", "stock", "on_hand")
	idxCost := colIndex(header, "unit_cost", "cost")
	idxLeadTime := colIndex(header, "lead_time_days", "lead_time")

	if idxComponent < 0 || idxStock < 0 || idxCost < 0 {
		return fmt.Errorf("%s: missing required columns (component_id, current_stock, unit_cost)", path)
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%s line %d: %w", path, line+1, err)
		}
		line++

		id := field(record, idxComponent)
		if id == "" {
			l.skip(path, line, "empty component_id")
			continue
		}

		stock, ok := parseFloat(field(record, idxStock))
		if !ok || stock < 0 {
			l.skip(path, line, "bad current_stock")
			continue
		}
		cost, ok := parseFloat(field(record, idxCost))
		if !ok || cost < 0 {
			l.skip(path, line, "bad unit_cost")
			continue
		}

		leadTime := 0
		if v, ok := parseFloat(field(record, idxLeadTime)); ok && v > 0 {
			leadTime = int(v)
		}

		name := field(record, idxName)
		if name == "" {
			name = id
		}

		ds.AddComponent(domain.Component{
			ComponentID:  id,
			Name:         name,
			Category:     strings.ToLower(field(record, idxCategory)),
			CurrentStock: stock,
			UnitCost:     cost,
			LeadTimeDays: leadTime,
			UpdatedAt:    time.Now().UTC(),
		})
	}

	return nil
}

// LoadUsageHistory reads demand observations into ds. Expected columns:
// date, component_id, units_used.
func (l *Loader) LoadUsageHistory(path string, ds *Dataset) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open usage history: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read usage history header: %w", err)
	}

	idxDate := colIndex(header, "date", "usage_date")
	idxComponent := colIndex(header, "component_id", "component", "id")
	idxUnits := colIndex(header, "units_used", "units", "quantity", "demand")

	if idxDate < 0 || idxComponent < 0 || idxUnits < 0 {
		return fmt.Errorf("%s: missing required columns (date, component_id, units_used)", path)
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%s line %d: %w", path, line+1, err)
		}
		line++

		id := field(record, idxComponent)
		if id == "" {
			l.skip(path, line, "empty component_id")
			continue
		}

		date, ok := parseDate(field(record, idxDate))
		if !ok {
			l.skip(path, line, "bad date")
			continue
		}

		units, ok := parseFloat(field(record, idxUnits))
		if !ok || units < 0 {
			l.skip(path, line, "bad units_used")
			continue
		}

		ds.AddUsage(domain.UsagePoint{
			ComponentID: id,
			Date:        date,
			UnitsUsed:   units,
		})
	}

	return nil
}

func (l *Loader) skip(path string, line int, reason string) {
	l.skipped++
	log.Debug().Str("file", filepath.Base(path)).Int("line", line).Str("reason", reason).Msg("row skipped")
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))

	return columnNameSanitizer.Replace(name)
}

// colIndex finds the first header cell matching any of the candidate
// names, ignoring case, spacing and separators.
func colIndex(header []string, names ...string) int {
	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[normalizeColumnName(name)] = struct{}{}
	}
	for i, h := range header {
		if _, ok := targets[normalizeColumnName(h)]; ok {
			return i
		}
	}

	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

func parseFloat(v string) (float64, bool) {
	if v == "" {
		return 0, false
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

func parseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
