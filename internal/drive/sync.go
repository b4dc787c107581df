package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stockplan/internal/dataset"
)

// DatasetSync refreshes the local dataset directory from a Drive folder.
// Teams drop exports like usage_history_2025-08-01.csv into the folder;
// the newest file for each dataset wins and is written under its
// canonical name so the loader picks it up unchanged.
type DatasetSync struct {
	service    *Service
	folderID   string
	folderPath string
	dataDir    string
}

func NewDatasetSync(service *Service, folderID, folderPath, dataDir string) *DatasetSync {
	return &DatasetSync{
		service:    service,
		folderID:   folderID,
		folderPath: folderPath,
		dataDir:    dataDir,
	}
}

// Sync downloads the latest usage history and stock level exports and
// returns the local paths it refreshed. It fails when the folder holds
// neither dataset, and logs a warning when only one is present.
func (s *DatasetSync) Sync(ctx context.Context) ([]string, error) {
	folderID := s.folderID
	if folderID == "" && s.folderPath != "" {
		resolved, err := s.service.ResolveFolderPath(ctx, s.folderPath)
		if err != nil {
			return nil, fmt.Errorf("resolving drive folder %q: %w", s.folderPath, err)
		}
		folderID = resolved
	}

	files, err := s.service.ListFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating dataset directory: %w", err)
	}

	var refreshed []string
	for _, target := range []string{dataset.UsageHistoryFile, dataset.StockLevelsFile} {
		select {
		case <-ctx.Done():
			return refreshed, ctx.Err()
		default:
		}

		latest, ok := newestMatch(files, target)
		if !ok {
			log.Warn().
				Str("file", target).
				Str("folder_id", folderID).
				Msg("drive: no export found for dataset file")
			continue
		}

		localPath := filepath.Join(s.dataDir, target)
		if err := s.downloadTo(ctx, latest.ID, localPath); err != nil {
			return refreshed, fmt.Errorf("downloading %s: %w", latest.Name, err)
		}

		log.Info().
			Str("file", target).
			Str("source", latest.Name).
			Str("modified", latest.ModifiedTime).
			Msg("drive: refreshed dataset file")
		refreshed = append(refreshed, localPath)
	}

	if len(refreshed) == 0 {
		return nil, fmt.Errorf("no dataset exports found in drive folder %s", folderID)
	}

	return refreshed, nil
}

// newestMatch picks the most recently modified CSV whose name starts with
// the dataset file's base name, e.g. usage_history_2025-08-01.csv for
// usage_history.csv.
func newestMatch(files []File, target string) (File, bool) {
	prefix := strings.TrimSuffix(target, filepath.Ext(target))

	var best File
	var bestTime time.Time
	found := false
	for _, f := range files {
		name := strings.ToLower(f.Name)
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}

		modified, err := time.Parse(time.RFC3339, f.ModifiedTime)
		if err != nil {
			modified = time.Time{}
		}
		if !found || modified.After(bestTime) {
			best = f
			bestTime = modified
			found = true
		}
	}

	return best, found
}

// downloadTo writes the file next to its destination first and renames,
// so a reload never sees a half-written dataset.
func (s *DatasetSync) downloadTo(ctx context.Context, fileID, destPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".sync-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := s.service.Download(ctx, fileID, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, destPath)
}
