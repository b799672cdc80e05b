package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StateStore persists the last run so `boltzsuite report` can re-render it
// without re-executing anything.
type StateStore struct {
	baseDir string
}

// NewStateStore creates a store at the given base directory (e.g. .boltzsuite).
func NewStateStore(baseDir string) *StateStore {
	return &StateStore{baseDir: baseDir}
}

func (s *StateStore) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

// ReadLastRun loads the previous run, or nil when none was recorded.
func (s *StateStore) ReadLastRun() (*Run, error) {
	f, err := os.Open(s.lastRunPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening last run file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var run Run
	if err := json.NewDecoder(f).Decode(&run); err != nil {
		return nil, fmt.Errorf("decoding last run: %w", err)
	}
	return &run, nil
}

// WriteRun saves the run as the new last run. The content goes to a temp
// file first and is renamed into place, so a crash mid-write leaves the
// previous state intact.
func (s *StateStore) WriteRun(run *Run) error {
	path := s.lastRunPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory %s: %w", dir, err)
	}

	content, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "last-run-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing run state: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("moving temp file to %s: %w", path, err)
	}
	return nil
}

// Reset clears the state directory.
func (s *StateStore) Reset() error {
	return os.RemoveAll(s.baseDir)
}
