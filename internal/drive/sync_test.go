package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockplan/internal/dataset"
)

func TestNewestMatchPicksLatestExport(t *testing.T) {
	files := []File{
		{ID: "a", Name: "usage_history_2025-07-01.csv", ModifiedTime: "2025-07-01T08:00:00Z"},
		{ID: "b", Name: "Usage_History_2025-08-01.csv", ModifiedTime: "2025-08-01T08:00:00Z"},
		{ID: "c", Name: "usage_history_notes.txt", ModifiedTime: "2025-08-15T08:00:00Z"},
		{ID: "d", Name: "stock_levels.csv", ModifiedTime: "2025-08-10T08:00:00Z"},
	}

	latest, ok := newestMatch(files, dataset.UsageHistoryFile)
	assert.True(t, ok)
	assert.Equal(t, "b", latest.ID)

	stock, ok := newestMatch(files, dataset.StockLevelsFile)
	assert.True(t, ok)
	assert.Equal(t, "d", stock.ID)
}

func TestNewestMatchHandlesMissingAndUnparsableTimes(t *testing.T) {
	_, ok := newestMatch([]File{{Name: "other.csv"}}, dataset.UsageHistoryFile)
	assert.False(t, ok)

	files := []File{
		{ID: "bad", Name: "stock_levels_old.csv", ModifiedTime: "not-a-time"},
		{ID: "good", Name: "stock_levels_new.csv", ModifiedTime: "2025-08-01T08:00:00Z"},
	}
	latest, ok := newestMatch(files, dataset.StockLevelsFile)
	assert.True(t, ok)
	assert.Equal(t, "good", latest.ID)
}
