package evaluation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// StorageClient abstracts blob storage for assessment reports and tree
// snapshots. Keys are project-scoped so one bucket serves all projects.
type StorageClient interface {
	PutReport(ctx context.Context, project, evaluationID string, data []byte) error
	GetReport(ctx context.Context, project, evaluationID string) ([]byte, error)
	PutTree(ctx context.Context, project, evaluationID string, data []byte) error
	GetTree(ctx context.Context, project, evaluationID string) ([]byte, error)
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(project, kind, id string) string {
	return filepath.Join(s.BaseDir, project, kind, id+".json")
}

func (s *LocalStorage) put(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// PutReport stores a report blob.
func (s *LocalStorage) PutReport(ctx context.Context, project, evaluationID string, data []byte) error {
	return s.put(s.path(project, "reports", evaluationID), data)
}

// GetReport retrieves a report blob.
func (s *LocalStorage) GetReport(ctx context.Context, project, evaluationID string) ([]byte, error) {
	return os.ReadFile(s.path(project, "reports", evaluationID))
}

// PutTree stores the tree snapshot an evaluation ran against.
func (s *LocalStorage) PutTree(ctx context.Context, project, evaluationID string, data []byte) error {
	return s.put(s.path(project, "trees", evaluationID), data)
}

// GetTree retrieves an evaluation's tree snapshot.
func (s *LocalStorage) GetTree(ctx context.Context, project, evaluationID string) ([]byte, error) {
	return os.ReadFile(s.path(project, "trees", evaluationID))
}
