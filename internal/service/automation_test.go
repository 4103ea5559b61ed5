package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
)

type fakeJobStore struct {
	nextID      int64
	jobs        map[int64]*domain.AutomationJob
	transitions []domain.JobStatus
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{nextID: 1, jobs: make(map[int64]*domain.AutomationJob)}
}

func (s *fakeJobStore) Create(_ context.Context, jobType domain.JobType) (*domain.AutomationJob, error) {
	job := &domain.AutomationJob{
		ID:        s.nextID,
		JobType:   jobType,
		Status:    domain.JobStatusQueued,
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.jobs[job.ID] = job
	return job, nil
}

func (s *fakeJobStore) FindByID(_ context.Context, id int64) (*domain.AutomationJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *fakeJobStore) ListRecent(_ context.Context, limit int) ([]domain.AutomationJob, error) {
	jobs := make([]domain.AutomationJob, 0, len(s.jobs))
	for id := s.nextID - 1; id >= 1 && len(jobs) < limit; id-- {
		if job, ok := s.jobs[id]; ok {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

func (s *fakeJobStore) MarkRunning(_ context.Context, id int64) error {
	return s.transition(id, domain.JobStatusRunning, nil, nil)
}

func (s *fakeJobStore) MarkCompleted(_ context.Context, id int64, finishedAt time.Time) error {
	return s.transition(id, domain.JobStatusCompleted, &finishedAt, nil)
}

func (s *fakeJobStore) MarkFailed(_ context.Context, id int64, finishedAt time.Time, errorMessage string) error {
	return s.transition(id, domain.JobStatusFailed, &finishedAt, &errorMessage)
}

func (s *fakeJobStore) transition(id int64, status domain.JobStatus, finishedAt *time.Time, errorMessage *string) error {
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = status
	job.FinishedAt = finishedAt
	job.ErrorMessage = errorMessage
	s.transitions = append(s.transitions, status)
	return nil
}

type fakeFetcher struct {
	records []domain.RawProduct
	err     error
	panics  bool
}

func (f *fakeFetcher) Fetch(_ context.Context) ([]domain.RawProduct, error) {
	if f.panics {
		panic("fetcher exploded")
	}
	return f.records, f.err
}

type fakeSyncer struct {
	result SyncResult
	err    error
	calls  int
}

func (f *fakeSyncer) Sync(_ context.Context, _ []domain.RawProduct) (SyncResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeEnqueuer struct {
	ids []int64
	err error
}

func (f *fakeEnqueuer) Enqueue(jobID int64) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, jobID)
	return nil
}

func newTestAutomation(jobs JobStore, fetcher Fetcher, syncer Syncer, queue Enqueuer) *AutomationService {
	svc := NewAutomationService(jobs, fetcher, syncer, queue)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestSubmitQueuesJob(t *testing.T) {
	store := newFakeJobStore()
	queue := &fakeEnqueuer{}
	svc := newTestAutomation(store, &fakeFetcher{}, &fakeSyncer{}, queue)

	job, err := svc.Submit(context.Background(), domain.JobTypeScrapeProducts)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusQueued, job.Status)
	assert.Equal(t, []int64{job.ID}, queue.ids)
	assert.Nil(t, job.FinishedAt)
	assert.Nil(t, job.ErrorMessage)
}

func TestSubmitQueueFullReturnsError(t *testing.T) {
	store := newFakeJobStore()
	queueErr := errors.New("job queue is full")
	svc := newTestAutomation(store, &fakeFetcher{}, &fakeSyncer{}, &fakeEnqueuer{err: queueErr})

	_, err := svc.Submit(context.Background(), domain.JobTypeScrapeProducts)
	require.ErrorIs(t, err, queueErr)
}

func TestExecuteHappyPath(t *testing.T) {
	store := newFakeJobStore()
	syncer := &fakeSyncer{result: SyncResult{Created: 3}}
	svc := newTestAutomation(store, &fakeFetcher{records: []domain.RawProduct{{Name: "A", Price: "1.00"}}}, syncer, &fakeEnqueuer{})

	job, err := svc.Submit(context.Background(), domain.JobTypeScrapeProducts)
	require.NoError(t, err)

	svc.Execute(context.Background(), job.ID)

	assert.Equal(t, []domain.JobStatus{domain.JobStatusRunning, domain.JobStatusCompleted}, store.transitions)
	assert.Equal(t, 1, syncer.calls)

	final := store.jobs[job.ID]
	assert.Equal(t, domain.JobStatusCompleted, final.Status)
	require.NotNil(t, final.FinishedAt)
	assert.Nil(t, final.ErrorMessage)
}

func TestExecuteFetchFailureMarksFailed(t *testing.T) {
	store := newFakeJobStore()
	syncer := &fakeSyncer{}
	svc := newTestAutomation(store, &fakeFetcher{err: errors.New("source unreachable")}, syncer, &fakeEnqueuer{})

	job, err := svc.Submit(context.Background(), domain.JobTypeScrapeProducts)
	require.NoError(t, err)

	svc.Execute(context.Background(), job.ID)

	// The job is marked running before failing; the failure never reads as
	// failed-while-queued.
	assert.Equal(t, []domain.JobStatus{domain.JobStatusRunning, domain.JobStatusFailed}, store.transitions)
	assert.Equal(t, 0, syncer.calls)

	final := store.jobs[job.ID]
	require.NotNil(t, final.FinishedAt)
	require.NotNil(t, final.ErrorMessage)
	assert.Equal(t, "source unreachable", *final.ErrorMessage)
}

func TestExecuteSyncFailureMarksFailed(t *testing.T) {
	store := newFakeJobStore()
	svc := newTestAutomation(store, &fakeFetcher{}, &fakeSyncer{err: errors.New("database gone")}, &fakeEnqueuer{})

	job, err := svc.Submit(context.Background(), domain.JobTypeScrapeProducts)
	require.NoError(t, err)

	svc.Execute(context.Background(), job.ID)

	final := store.jobs[job.ID]
	assert.Equal(t, domain.JobStatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
	assert.Equal(t, "database gone", *final.ErrorMessage)
}

func TestExecutePanicIsRecovered(t *testing.T) {
	store := newFakeJobStore()
	svc := newTestAutomation(store, &fakeFetcher{panics: true}, &fakeSyncer{}, &fakeEnqueuer{})

	job, err := svc.Submit(context.Background(), domain.JobTypeScrapeProducts)
	require.NoError(t, err)

	require.NotPanics(t, func() {
		svc.Execute(context.Background(), job.ID)
	})

	final := store.jobs[job.ID]
	assert.Equal(t, domain.JobStatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
	assert.Contains(t, *final.ErrorMessage, "pipeline panic")
}

func TestExecuteMissingJobIsSilent(t *testing.T) {
	store := newFakeJobStore()
	syncer := &fakeSyncer{}
	svc := newTestAutomation(store, &fakeFetcher{}, syncer, &fakeEnqueuer{})

	svc.Execute(context.Background(), 42)

	assert.Empty(t, store.transitions)
	assert.Equal(t, 0, syncer.calls)
}

func TestTerminalInvariants(t *testing.T) {
	store := newFakeJobStore()
	svc := newTestAutomation(store, &fakeFetcher{}, &fakeSyncer{}, &fakeEnqueuer{})

	completed, err := svc.Submit(context.Background(), domain.JobTypeScrapeProducts)
	require.NoError(t, err)
	svc.Execute(context.Background(), completed.ID)

	failedSvc := newTestAutomation(store, &fakeFetcher{err: errors.New("boom")}, &fakeSyncer{}, &fakeEnqueuer{})
	failed, err := failedSvc.Submit(context.Background(), domain.JobTypeScrapeProducts)
	require.NoError(t, err)
	failedSvc.Execute(context.Background(), failed.ID)

	for _, job := range store.jobs {
		if job.Terminal() {
			assert.NotNil(t, job.FinishedAt, "job %d", job.ID)
		} else {
			assert.Nil(t, job.FinishedAt, "job %d", job.ID)
		}
		if job.Status == domain.JobStatusFailed {
			require.NotNil(t, job.ErrorMessage, "job %d", job.ID)
			assert.NotEmpty(t, *job.ErrorMessage, "job %d", job.ID)
		} else {
			assert.Nil(t, job.ErrorMessage, "job %d", job.ID)
		}
	}
}
