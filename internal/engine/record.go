package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bianoble/shotpull/internal/manifest"
	"github.com/bianoble/shotpull/internal/tiles"
)

// RecordEngine writes assembled screenshots as the new baseline.
type RecordEngine struct {
	Logger *slog.Logger
}

// Record wipes recordDir and writes every screenshot of m that has an image
// as {recordDir}/{name}.png. Nothing is compared.
func (e *RecordEngine) Record(ctx context.Context, m *manifest.Manifest, tileDir, recordDir string) (*RecordResult, error) {
	log := loggerOr(e.Logger)

	if err := checkWipeable(recordDir); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(recordDir); err != nil {
		return nil, fmt.Errorf("clearing record dir: %w", err)
	}
	if err := os.MkdirAll(recordDir, 0755); err != nil {
		return nil, fmt.Errorf("creating record dir: %w", err)
	}

	result := &RecordResult{Dir: recordDir}
	for _, s := range m.Sorted() {
		if !s.HasImage() {
			log.Debug("skipping screenshot without image", "name", s.Name, "error", s.Error)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := tiles.AssembleTo(s, tileDir, recordDir)
		if err != nil {
			return nil, err
		}
		log.Debug("recorded", "name", s.Name, "path", out)
		result.Recorded = append(result.Recorded, s.Name)
	}
	log.Info("baseline recorded", "dir", recordDir, "screenshots", len(result.Recorded))
	return result, nil
}

// checkWipeable refuses record dirs whose removal would be a disaster.
func checkWipeable(dir string) error {
	if dir == "" {
		return fmt.Errorf("record dir is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving record dir: %w", err)
	}
	if abs == filepath.Dir(abs) {
		return fmt.Errorf("refusing to use filesystem root %s as record dir", abs)
	}
	if home, err := os.UserHomeDir(); err == nil && abs == filepath.Clean(home) {
		return fmt.Errorf("refusing to use home directory %s as record dir", abs)
	}
	return nil
}
