package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ridelab/internal/fitfile"
	"ridelab/internal/logger"
	"ridelab/internal/store"
)

// ImportService loads FIT files into the activity store
type ImportService struct {
	store *store.DB
}

// NewImportService creates a new import service
func NewImportService(store *store.DB) *ImportService {
	return &ImportService{store: store}
}

// ImportResult reports what an import run did
type ImportResult struct {
	Imported []string // activity names
	Skipped  []string // files already imported
	Errors   []error
}

// ImportFiles imports each FIT file at paths. A file whose content was
// imported before is skipped. Per-file failures are collected, not fatal.
func (s *ImportService) ImportFiles(paths []string) *ImportResult {
	result := &ImportResult{}
	for _, path := range paths {
		name, skipped, err := s.importFile(path)
		switch {
		case err != nil:
			logger.Error("import: %s: %v", path, err)
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", filepath.Base(path), err))
		case skipped:
			logger.Info("import: %s already imported", path)
			result.Skipped = append(result.Skipped, filepath.Base(path))
		default:
			logger.Info("import: %s stored as %q", path, name)
			result.Imported = append(result.Imported, name)
		}
	}

	if len(result.Imported) > 0 {
		if err := s.store.SetSyncTime(SyncKeyLastImport, time.Now()); err != nil {
			logger.Warn("import: saving import marker: %v", err)
		}
	}
	return result
}

func (s *ImportService) importFile(path string) (name string, skipped bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}

	exists, err := s.store.HasImportKey(fitfile.ImportKey(data))
	if err != nil {
		return "", false, fmt.Errorf("checking import key: %w", err)
	}
	if exists {
		return "", true, nil
	}

	summary, err := fitfile.Decode(data)
	if err != nil {
		return "", false, err
	}

	activity := FromFIT(summary)
	if err := s.store.UpsertActivity(activity); err != nil {
		return "", false, fmt.Errorf("storing activity: %w", err)
	}
	return activity.Name, false, nil
}
