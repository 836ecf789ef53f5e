package localstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// LocalStorage implements ports.ReportStore and ports.DatasetStore for the
// local filesystem.
type LocalStorage struct {
	DatasetDir string
	ReportFile string
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(datasetDir, reportFile string) *LocalStorage {
	return &LocalStorage{DatasetDir: datasetDir, ReportFile: reportFile}
}

// ReportPath returns the summary report location.
func (s *LocalStorage) ReportPath() string {
	return s.ReportFile
}

// SaveReport atomically replaces the summary report with data.
func (s *LocalStorage) SaveReport(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.ReportFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	return writeFileAtomic(s.ReportFile, data)
}

// InitTask creates the task directory.
func (s *LocalStorage) InitTask(ctx context.Context, taskName string) (string, error) {
	path := s.TaskPath(taskName)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create task directory %s: %w", path, err)
	}
	return path, nil
}

// SaveManifest writes manifest.json for the task.
func (s *LocalStorage) SaveManifest(ctx context.Context, taskName string, reader io.Reader) (string, error) {
	dir, err := s.InitTask(ctx, taskName)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest: %w", err)
	}

	path := filepath.Join(dir, "manifest.json")
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// TaskPath returns the directory for a task.
func (s *LocalStorage) TaskPath(taskName string) string {
	return filepath.Join(s.DatasetDir, Slug(taskName))
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a task description into a directory name,
// e.g. "Create a new project in Linear" -> "create_a_new_project_in_linear".
func Slug(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(name), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > 64 {
		slug = strings.TrimRight(slug[:64], "_")
	}
	if slug == "" {
		return "task"
	}
	return slug
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
