package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"uicapture/internal/catalog"
	"uicapture/internal/core/domain"
	"uicapture/internal/core/ports"
)

// BatchRunner executes capture jobs one at a time against a single agent session.
type BatchRunner struct {
	agent   ports.Agent
	reports ports.ReportStore
	logger  *log.Logger
	delay   time.Duration
}

// NewBatchRunner creates a new BatchRunner.
// A negative delay is treated as zero.
func NewBatchRunner(
	agent ports.Agent,
	reports ports.ReportStore,
	logger *log.Logger,
	delay time.Duration,
) *BatchRunner {
	if delay < 0 {
		delay = 0
	}
	return &BatchRunner{
		agent:   agent,
		reports: reports,
		logger:  logger,
		delay:   delay,
	}
}

// Run attempts every job in order and returns one outcome per job, in the
// same order. Per-job failures are recorded, not returned; the only error
// is a SessionInitError. An empty job list returns without opening a session.
func (r *BatchRunner) Run(ctx context.Context, jobs []domain.Job, headless bool) ([]domain.JobOutcome, error) {
	outcomes := make([]domain.JobOutcome, 0, len(jobs))
	if len(jobs) == 0 {
		r.logger.Printf("No tasks to run")
		return outcomes, nil
	}

	runID := uuid.New().String()
	r.logger.Printf("[RUN %s] Preparing to capture %d tasks across multiple apps", runID, len(jobs))

	session, err := r.agent.Initialize(ctx, headless)
	if err != nil {
		r.logger.Printf("[RUN %s] ERROR: agent session failed to start: %v", runID, err)
		return nil, &domain.SessionInitError{Err: err}
	}
	defer r.closeSession(ctx, runID, session)

	for i, job := range jobs {
		r.logger.Printf("[RUN %s] %s", runID, strings.Repeat("=", 60))
		r.logger.Printf("[RUN %s] TASK %d/%d: %s", runID, i+1, len(jobs), job.Application)
		r.logger.Printf("[RUN %s] Description: %s", runID, job.Description)
		r.logger.Printf("[RUN %s] URL: %s", runID, job.StartURL)
		r.logger.Printf("[RUN %s] Expected states: %d", runID, len(job.ExpectedStates))

		outcome := r.runJob(ctx, session, job)
		outcomes = append(outcomes, outcome)

		if outcome.Status == domain.StatusSuccess {
			r.logger.Printf("[RUN %s] Task %d completed successfully! Manifest: %s", runID, i+1, outcome.Manifest)
		} else {
			r.logger.Printf("[RUN %s] Task %d failed: %s", runID, i+1, outcome.Error)
		}

		if i < len(jobs)-1 {
			r.pause(ctx)
		}
	}

	return outcomes, nil
}

// RunSingle runs the job at index as a one-job batch. An out of range
// index fails with InvalidSelectionError before any session is opened.
func (r *BatchRunner) RunSingle(ctx context.Context, jobs []domain.Job, index int, headless bool) (domain.JobOutcome, error) {
	job, err := catalog.Select(jobs, index)
	if err != nil {
		return domain.JobOutcome{}, err
	}

	r.logger.Printf("Running single task: %s", job.Description)
	outcomes, err := r.Run(ctx, []domain.Job{job}, headless)
	if err != nil {
		return domain.JobOutcome{}, err
	}
	return outcomes[0], nil
}

// RunAll runs every job, builds the summary report and persists it.
// The report is returned even when persisting it fails.
func (r *BatchRunner) RunAll(ctx context.Context, jobs []domain.Job, headless bool) (domain.BatchReport, error) {
	outcomes, err := r.Run(ctx, jobs, headless)
	if err != nil {
		return domain.BatchReport{}, err
	}

	report := GenerateReport(outcomes)
	if err := r.PersistReport(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

func (r *BatchRunner) runJob(ctx context.Context, session ports.Session, job domain.Job) domain.JobOutcome {
	manifest, err := session.ExecuteTask(ctx, ports.TaskRequest{
		Description: job.Description,
		StartURL:    job.StartURL,
		MaxSteps:    job.MaxSteps,
	})
	if err != nil {
		return domain.Failed(job, &domain.TaskExecutionError{Err: err})
	}
	return domain.Succeeded(job, manifest)
}

// pause waits out the inter-job delay, returning early if ctx is done.
func (r *BatchRunner) pause(ctx context.Context) {
	if r.delay == 0 {
		return
	}
	t := time.NewTimer(r.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (r *BatchRunner) closeSession(ctx context.Context, runID string, session ports.Session) {
	// Close must run even when the run was cancelled.
	if err := session.Close(context.WithoutCancel(ctx)); err != nil {
		r.logger.Printf("[RUN %s] WARN: failed to close agent session: %v", runID, err)
		return
	}
	r.logger.Printf("[RUN %s] Agent session closed", runID)
}
