// Package catalog holds the ordered list of capture jobs.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"uicapture/internal/core/domain"
)

// DefaultMaxSteps bounds the agent's internal steps when a job does not set one.
const DefaultMaxSteps = 15

// Default returns the built-in job catalog.
func Default() []domain.Job {
	return []domain.Job{
		{
			Application: "Linear",
			Description: "Create a new project in Linear",
			StartURL:    "https://linear.app/test916/team/TES/active",
			ExpectedStates: []string{
				"Projects list view",
				"Create project button visible",
				"Create project modal open",
				"Project name input field",
				"Project settings options",
				"Success state with new project",
			},
			MaxSteps: DefaultMaxSteps,
		},
		{
			Application: "Linear",
			Description: "Create a new issue in Linear",
			StartURL:    "https://linear.app/test916/team/TES/active",
			ExpectedStates: []string{
				"Issues board view",
				"New issue button visible",
				"Issue creation modal",
				"Title and description fields",
				"Priority and assignee options",
				"Issue created confirmation",
			},
			MaxSteps: DefaultMaxSteps,
		},
		{
			Application: "Linear",
			Description: "Filter issues by status in Linear",
			StartURL:    "https://linear.app/test916/team/TES/active",
			ExpectedStates: []string{
				"Issues view with filters",
				"Filter menu button",
				"Filter dropdown expanded",
				"Status filter options",
				"Applied filter view",
				"Filtered results displayed",
			},
			MaxSteps: DefaultMaxSteps,
		},
		{
			Application: "Notion",
			Description: "Create a new page in Notion",
			StartURL:    "https://www.notion.so/",
			ExpectedStates: []string{
				"Notion workspace",
				"New page button",
				"Empty page editor",
				"Title input",
				"Content area",
				"Page saved",
			},
			MaxSteps: DefaultMaxSteps,
		},
		{
			Application: "Notion",
			Description: "Filter a database by property in Notion",
			StartURL:    "https://www.notion.so/",
			ExpectedStates: []string{
				"Database view",
				"Filter button visible",
				"Filter options panel",
				"Property selection",
				"Filter applied",
				"Filtered database results",
			},
			MaxSteps: DefaultMaxSteps,
		},
	}
}

type catalogFile struct {
	Tasks []domain.Job `yaml:"tasks"`
}

// LoadFile reads a YAML catalog of the form:
//
//	tasks:
//	  - app: Linear
//	    description: Create a new issue in Linear
//	    url: https://linear.app/...
//	    expected_states: [...]
//	    max_steps: 15
func LoadFile(path string) ([]domain.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) ([]domain.Job, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	jobs := make([]domain.Job, 0, len(f.Tasks))
	for i, job := range f.Tasks {
		switch {
		case job.Application == "":
			return nil, fmt.Errorf("catalog task %d: app is required", i)
		case job.Description == "":
			return nil, fmt.Errorf("catalog task %d: description is required", i)
		case job.StartURL == "":
			return nil, fmt.Errorf("catalog task %d: url is required", i)
		case job.MaxSteps < 0:
			return nil, fmt.Errorf("catalog task %d: max_steps must not be negative", i)
		}
		if job.MaxSteps == 0 {
			job.MaxSteps = DefaultMaxSteps
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Select returns the job at index.
func Select(jobs []domain.Job, index int) (domain.Job, error) {
	if index < 0 || index >= len(jobs) {
		return domain.Job{}, &domain.InvalidSelectionError{Index: index, Size: len(jobs)}
	}
	return jobs[index], nil
}
