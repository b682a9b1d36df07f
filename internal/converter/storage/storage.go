package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ============================================================
// Run Storage
// ============================================================

// RunStorage lays out one directory per conversion run under root:
//
//	<root>/<runID>/input.json
//	<root>/<runID>/out/...
type RunStorage struct {
	root string
}

func NewRunStorage(root string) *RunStorage {
	return &RunStorage{root: root}
}

func (s *RunStorage) Root() string {
	return s.root
}

func (s *RunStorage) RunDir(runID string) string {
	return filepath.Join(s.root, runID)
}

func (s *RunStorage) InputPath(runID string) string {
	return filepath.Join(s.RunDir(runID), "input.json")
}

func (s *RunStorage) OutputDir(runID string) string {
	return filepath.Join(s.RunDir(runID), "out")
}

// ArtifactPath resolves an artifact of a run by bare file name. Names that
// would leave the output directory are rejected.
func (s *RunStorage) ArtifactPath(runID, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(s.OutputDir(runID), name), nil
}

func (s *RunStorage) EnsureRunDir(runID string) error {
	path := s.OutputDir(runID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir run dir: %w", err)
	}
	return nil
}

func (s *RunStorage) SaveInput(runID string, data []byte) (string, error) {
	if err := s.EnsureRunDir(runID); err != nil {
		return "", err
	}
	target := s.InputPath(runID)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write input: %w", err)
	}
	return target, nil
}

// Artifacts lists the file names present in a run's output directory.
func (s *RunStorage) Artifacts(runID string) ([]string, error) {
	entries, err := os.ReadDir(s.OutputDir(runID))
	if err != nil {
		return nil, fmt.Errorf("read run dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
