package domain

import "fmt"

// SessionInitError means the agent session could not be started.
// No jobs are attempted when this happens.
type SessionInitError struct {
	Err error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("failed to initialize agent session: %v", e.Err)
}

func (e *SessionInitError) Unwrap() error { return e.Err }

// TaskExecutionError is a single job failure reported by the agent.
type TaskExecutionError struct {
	Message string
	Err     error
}

func (e *TaskExecutionError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TaskExecutionError) Unwrap() error { return e.Err }

// InvalidSelectionError is returned when a job index is outside the catalog.
type InvalidSelectionError struct {
	Index int
	Size  int
}

func (e *InvalidSelectionError) Error() string {
	if e.Size == 0 {
		return fmt.Sprintf("invalid task index %d: catalog is empty", e.Index)
	}
	return fmt.Sprintf("invalid task index %d. Available tasks: 0-%d", e.Index, e.Size-1)
}

// ReportPersistError means the summary report could not be written.
type ReportPersistError struct {
	Path string
	Err  error
}

func (e *ReportPersistError) Error() string {
	return fmt.Sprintf("failed to write report %s: %v", e.Path, e.Err)
}

func (e *ReportPersistError) Unwrap() error { return e.Err }
