package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"uicapture/internal/core/domain"
)

// GenerateReport summarizes outcomes. It has no side effects.
func GenerateReport(outcomes []domain.JobOutcome) domain.BatchReport {
	report := domain.BatchReport{
		TotalTasks:       len(outcomes),
		AppsCovered:      []string{},
		Tasks:            make([]domain.JobOutcome, len(outcomes)),
		DatasetStructure: domain.DefaultDatasetStructure(),
	}
	copy(report.Tasks, outcomes)

	seen := make(map[string]struct{})
	for _, o := range outcomes {
		switch o.Status {
		case domain.StatusSuccess:
			report.SuccessfulTasks++
		default:
			report.FailedTasks++
		}
		if _, ok := seen[o.App]; !ok {
			seen[o.App] = struct{}{}
			report.AppsCovered = append(report.AppsCovered, o.App)
		}
	}
	sort.Strings(report.AppsCovered)

	return report
}

// PersistReport writes report to the runner's report store, replacing any
// previous report.
func (r *BatchRunner) PersistReport(ctx context.Context, report domain.BatchReport) error {
	path := r.reports.ReportPath()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return &domain.ReportPersistError{Path: path, Err: fmt.Errorf("failed to encode report: %w", err)}
	}

	if err := r.reports.SaveReport(ctx, data); err != nil {
		r.logger.Printf("ERROR: failed to save summary report: %v", err)
		return &domain.ReportPersistError{Path: path, Err: err}
	}

	r.logger.Printf("Summary report generated: %s", path)
	return nil
}
