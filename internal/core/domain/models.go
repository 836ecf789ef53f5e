package domain

// Job describes one UI capture task. Jobs are loaded once at startup and
// never modified.
type Job struct {
	Application    string   `json:"app" yaml:"app"`
	Description    string   `json:"description" yaml:"description"`
	StartURL       string   `json:"url" yaml:"url"`
	ExpectedStates []string `json:"expected_states" yaml:"expected_states"`
	MaxSteps       int      `json:"max_steps" yaml:"max_steps"`
}

// OutcomeStatus is the result of attempting a job.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailed  OutcomeStatus = "failed"
)

// JobOutcome holds the recorded result of one job attempt.
// Manifest is set only on success, Error only on failure.
type JobOutcome struct {
	Task     string        `json:"task"`
	App      string        `json:"app"`
	Status   OutcomeStatus `json:"status"`
	Manifest string        `json:"manifest,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Succeeded records a successful attempt of job.
func Succeeded(job Job, manifest string) JobOutcome {
	return JobOutcome{
		Task:     job.Description,
		App:      job.Application,
		Status:   StatusSuccess,
		Manifest: manifest,
	}
}

// Failed records a failed attempt of job.
func Failed(job Job, err error) JobOutcome {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return JobOutcome{
		Task:   job.Description,
		App:    job.Application,
		Status: StatusFailed,
		Error:  msg,
	}
}

// DatasetStructure documents the on-disk layout produced by the agent.
type DatasetStructure struct {
	Root           string   `json:"root"`
	Format         string   `json:"format"`
	ManifestFields []string `json:"manifest_fields"`
	StateFields    []string `json:"state_fields"`
}

// BatchReport is the aggregate summary written after a batch run.
type BatchReport struct {
	TotalTasks       int              `json:"total_tasks"`
	SuccessfulTasks  int              `json:"successful_tasks"`
	FailedTasks      int              `json:"failed_tasks"`
	AppsCovered      []string         `json:"apps_covered"`
	Tasks            []JobOutcome     `json:"tasks"`
	DatasetStructure DatasetStructure `json:"dataset_structure"`
}

// DefaultDatasetStructure returns the fixed dataset layout description.
func DefaultDatasetStructure() DatasetStructure {
	return DatasetStructure{
		Root:   "captured_states/",
		Format: "Each task has its own directory with manifest.json and screenshots",
		ManifestFields: []string{
			"task",
			"total_steps",
			"states (array of state objects)",
			"captured_at",
		},
		StateFields: []string{
			"step",
			"description",
			"timestamp",
			"url",
			"screenshot",
			"viewport",
			"title",
			"metadata",
		},
	}
}
