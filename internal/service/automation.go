package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
)

// recentJobLimit caps the job listing endpoint.
const recentJobLimit = 20

// JobStore defines the job data access interface consumed by AutomationService.
type JobStore interface {
	Create(ctx context.Context, jobType domain.JobType) (*domain.AutomationJob, error)
	FindByID(ctx context.Context, id int64) (*domain.AutomationJob, error)
	ListRecent(ctx context.Context, limit int) ([]domain.AutomationJob, error)
	MarkRunning(ctx context.Context, id int64) error
	MarkCompleted(ctx context.Context, id int64, finishedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, finishedAt time.Time, errorMessage string) error
}

// Fetcher produces raw product records from the external source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RawProduct, error)
}

// Syncer reconciles raw records against the product store.
type Syncer interface {
	Sync(ctx context.Context, records []domain.RawProduct) (SyncResult, error)
}

// Enqueuer hands a job id to the background execution collaborator.
type Enqueuer interface {
	Enqueue(jobID int64) error
}

// AutomationService owns the job state machine: it creates jobs, schedules
// their execution, and drives each one through
// queued → running → completed|failed.
type AutomationService struct {
	jobs    JobStore
	fetcher Fetcher
	syncer  Syncer
	queue   Enqueuer
	now     func() time.Time
}

// NewAutomationService creates a new AutomationService.
func NewAutomationService(jobs JobStore, fetcher Fetcher, syncer Syncer, queue Enqueuer) *AutomationService {
	return &AutomationService{
		jobs:    jobs,
		fetcher: fetcher,
		syncer:  syncer,
		queue:   queue,
		now:     time.Now,
	}
}

// Submit creates a queued job and schedules its asynchronous execution,
// returning before execution begins.
func (s *AutomationService) Submit(ctx context.Context, jobType domain.JobType) (*domain.AutomationJob, error) {
	job, err := s.jobs.Create(ctx, jobType)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := s.queue.Enqueue(job.ID); err != nil {
		slog.Warn("job created but not scheduled", "job_id", job.ID, "error", err)
		return nil, fmt.Errorf("schedule job %d: %w", job.ID, err)
	}

	slog.Info("job queued", "job_id", job.ID, "job_type", jobType)
	return job, nil
}

// Recent returns the most recent jobs, newest first.
func (s *AutomationService) Recent(ctx context.Context) ([]domain.AutomationJob, error) {
	return s.jobs.ListRecent(ctx, recentJobLimit)
}

// Execute runs one job to a terminal state. It is the single point where
// pipeline failures become structured job state: any error or panic from
// the fetch or sync steps is captured as a failed status with the cause in
// error_message, and nothing escapes to crash the worker.
//
// The job is always marked running before any work starts, so a failure in
// the pipeline reads as failed-while-running, never failed-while-queued.
func (s *AutomationService) Execute(ctx context.Context, jobID int64) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		// Race that should not occur under single-owner semantics.
		slog.Warn("job not found, skipping execution", "job_id", jobID, "error", err)
		return
	}

	if err := s.jobs.MarkRunning(ctx, job.ID); err != nil {
		slog.Error("failed to mark job running", "job_id", job.ID, "error", err)
		return
	}
	slog.Info("job running", "job_id", job.ID, "job_type", job.JobType)

	runErr := s.runPipeline(ctx)
	finishedAt := s.now().UTC()

	if runErr != nil {
		if err := s.jobs.MarkFailed(ctx, job.ID, finishedAt, runErr.Error()); err != nil {
			slog.Error("failed to mark job failed", "job_id", job.ID, "error", err)
			return
		}
		slog.Error("job failed", "job_id", job.ID, "error", runErr)
		return
	}

	if err := s.jobs.MarkCompleted(ctx, job.ID, finishedAt); err != nil {
		slog.Error("failed to mark job completed", "job_id", job.ID, "error", err)
		return
	}
	slog.Info("job completed", "job_id", job.ID)
}

func (s *AutomationService) runPipeline(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	records, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	result, err := s.syncer.Sync(ctx, records)
	if err != nil {
		return err
	}

	slog.Info("product sync finished",
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)
	return nil
}
