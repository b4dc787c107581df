package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"stockplan/internal/domain"
	"stockplan/internal/report"
)

// RunAggregator collects the recommendations of one run and writes the CSV
// artifact incrementally, a batch at a time in append mode, so a long run
// leaves a usable partial file behind if it dies.
type RunAggregator struct {
	runID     string
	outputDir string
	batchSize int

	mu          sync.Mutex
	file        *os.File
	writer      *csv.Writer
	wroteHeader bool
	recs        []domain.Recommendation
	flushed     int
}

// NewRunAggregator creates an aggregator for one run. The artifact file is
// created lazily on the first flush.
func NewRunAggregator(runID, outputDir string, batchSize int) *RunAggregator {
	if batchSize < 1 {
		batchSize = 1
	}
	return &RunAggregator{
		runID:     runID,
		outputDir: outputDir,
		batchSize: batchSize,
	}
}

// RunArtifactPath returns where a run's CSV artifact lands.
func RunArtifactPath(outputDir, runID string) string {
	return filepath.Join(outputDir, fmt.Sprintf("portfolio_%s.csv", runID))
}

// ArtifactPath returns where the run CSV lands.
func (a *RunAggregator) ArtifactPath() string {
	return RunArtifactPath(a.outputDir, a.runID)
}

// Add buffers one recommendation, flushing to the artifact when a full
// batch has accumulated.
func (a *RunAggregator) Add(rec domain.Recommendation) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.recs = append(a.recs, rec)

	if len(a.recs)-a.flushed >= a.batchSize {
		return a.flushLocked()
	}

	return nil
}

// Finalize flushes the remainder, closes the artifact, and returns its path
// together with the portfolio roll-up. A run that produced nothing returns
// an empty path.
func (a *RunAggregator) Finalize() (string, domain.PortfolioSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	summary := domain.BuildPortfolioSummary(a.recs)

	if len(a.recs) == 0 {
		return "", summary, nil
	}

	if err := a.flushLocked(); err != nil {
		return "", summary, err
	}

	path := a.ArtifactPath()
	if a.file != nil {
		a.writer.Flush()
		if err := a.writer.Error(); err != nil {
			a.file.Close()
			return "", summary, fmt.Errorf("flushing artifact: %w", err)
		}
		if err := a.file.Close(); err != nil {
			return "", summary, fmt.Errorf("closing artifact: %w", err)
		}
		a.file = nil
	}

	return path, summary, nil
}

// flushLocked writes the unflushed tail to the artifact. Must be called
// with a.mu held.
func (a *RunAggregator) flushLocked() error {
	if a.flushed >= len(a.recs) {
		return nil
	}

	if a.file == nil {
		if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		file, err := os.OpenFile(a.ArtifactPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open artifact: %w", err)
		}
		a.file = file
		a.writer = csv.NewWriter(file)
	}

	if !a.wroteHeader {
		if err := a.writer.Write(report.CSVHeader()); err != nil {
			return fmt.Errorf("writing artifact header: %w", err)
		}
		a.wroteHeader = true
	}

	for _, rec := range a.recs[a.flushed:] {
		if err := a.writer.Write(report.CSVRecord(rec)); err != nil {
			return fmt.Errorf("writing artifact row for %s: %w", rec.ComponentID, err)
		}
	}
	a.flushed = len(a.recs)

	a.writer.Flush()
	return a.writer.Error()
}
