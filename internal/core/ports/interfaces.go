package ports

import (
	"context"
	"io"
)

// TaskRequest is what the runner hands to the agent for one job.
type TaskRequest struct {
	Description string
	StartURL    string
	MaxSteps    int
}

// Agent defines the contract for starting an execution agent session.
type Agent interface {
	// Initialize opens a browsing session. The returned Session is owned
	// by the caller, who must Close it.
	Initialize(ctx context.Context, headless bool) (Session, error)
}

// Session is a live agent session.
type Session interface {
	// ExecuteTask drives the session through one task and returns the
	// path of the manifest describing the captured states.
	ExecuteTask(ctx context.Context, req TaskRequest) (string, error)

	// Close releases the session. Calling it more than once is allowed.
	Close(ctx context.Context) error
}

// ReportStore persists the batch summary report.
type ReportStore interface {
	// SaveReport replaces the report at ReportPath with data.
	SaveReport(ctx context.Context, data []byte) error

	// ReportPath returns where the report is written.
	ReportPath() string
}

// DatasetStore holds per-task capture artifacts on the local filesystem.
type DatasetStore interface {
	// InitTask creates the directory for a task and returns its path.
	InitTask(ctx context.Context, taskName string) (string, error)

	// SaveManifest writes the manifest for a task and returns its path.
	SaveManifest(ctx context.Context, taskName string, reader io.Reader) (string, error)

	// TaskPath returns the directory for a task.
	TaskPath(taskName string) string
}

// Downloader defines the contract for fetching remote files.
type Downloader interface {
	// Download fetches the given URL.
	// Returns a ReadCloser that the caller must close.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
