package tilasto

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DatasetWriter common write interface for transformed datasets.
type DatasetWriter interface {
	// WriteDataset stores one named dataset.
	WriteDataset(name string, v interface{}) error
	// Stamp returns shared metadata for the current run.
	Stamp(source, tableID, description string) Metadata
}

// FileWriter writes datasets as indented JSON files into a directory.
type FileWriter struct {
	dir    string
	runID  string
	logger *zap.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// LoggerFileWriterOption sets the logger used for write reporting.
func LoggerFileWriterOption(logger *zap.Logger) FileWriterOption {
	return func(w *FileWriter) {
		w.logger = logger
	}
}

// NewFileWriter returns a writer rooted at dir, creating it if needed.
func NewFileWriter(dir string, opts ...FileWriterOption) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	w := &FileWriter{
		dir:    dir,
		runID:  uuid.NewString(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// RunID returns the identifier stamped into this run's metadata.
func (w *FileWriter) RunID() string {
	return w.runID
}

func (w *FileWriter) Stamp(source, tableID, description string) Metadata {
	return Metadata{
		Source:      source,
		TableID:     tableID,
		Description: description,
		FetchedAt:   time.Now().UTC(),
		RunID:       w.runID,
	}
}

func (w *FileWriter) WriteDataset(name string, v interface{}) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name+".json")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset %s: %w", name, err)
	}

	w.logger.Info("dataset written",
		zap.String("dataset", name),
		zap.String("path", path),
		zap.Int("bytes", len(body)))

	return nil
}
