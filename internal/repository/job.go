package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
)

const jobColumns = `id, job_type, status, created_at, finished_at, error_message`

// JobRepository handles automation job data access operations.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job in the queued state and returns it.
func (r *JobRepository) Create(ctx context.Context, jobType domain.JobType) (*domain.AutomationJob, error) {
	var job domain.AutomationJob
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO automation_jobs (job_type, status)
		 VALUES ($1, $2)
		 RETURNING `+jobColumns,
		jobType, domain.JobStatusQueued,
	).StructScan(&job)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return &job, nil
}

// FindByID retrieves a job by its ID.
func (r *JobRepository) FindByID(ctx context.Context, id int64) (*domain.AutomationJob, error) {
	var job domain.AutomationJob
	err := r.db.GetContext(ctx, &job,
		`SELECT `+jobColumns+` FROM automation_jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find job by id %d: %w", id, err)
	}
	return &job, nil
}

// ListRecent retrieves the most recent jobs, newest first.
func (r *JobRepository) ListRecent(ctx context.Context, limit int) ([]domain.AutomationJob, error) {
	jobs := []domain.AutomationJob{}
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT `+jobColumns+` FROM automation_jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	return jobs, nil
}

// MarkRunning transitions a job to the running state.
func (r *JobRepository) MarkRunning(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id,
		`UPDATE automation_jobs SET status = $1 WHERE id = $2`,
		domain.JobStatusRunning, id)
}

// MarkCompleted transitions a job to the completed terminal state.
func (r *JobRepository) MarkCompleted(ctx context.Context, id int64, finishedAt time.Time) error {
	return r.setStatus(ctx, id,
		`UPDATE automation_jobs SET status = $1, finished_at = $2 WHERE id = $3`,
		domain.JobStatusCompleted, finishedAt, id)
}

// MarkFailed transitions a job to the failed terminal state, recording the
// failure cause.
func (r *JobRepository) MarkFailed(ctx context.Context, id int64, finishedAt time.Time, errorMessage string) error {
	return r.setStatus(ctx, id,
		`UPDATE automation_jobs SET status = $1, finished_at = $2, error_message = $3 WHERE id = $4`,
		domain.JobStatusFailed, finishedAt, errorMessage, id)
}

func (r *JobRepository) setStatus(ctx context.Context, id int64, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %d status: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %d status: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
