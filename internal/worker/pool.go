// Package worker provides the in-process asynchronous execution collaborator
// for automation jobs: a bounded queue drained by a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueFull is returned when the job queue cannot accept another job.
var ErrQueueFull = errors.New("job queue is full")

// Runner executes one job by id. It must run the job to a terminal state
// and never panic.
type Runner func(ctx context.Context, jobID int64)

// Pool runs enqueued job ids on a fixed number of worker goroutines.
type Pool struct {
	queue   chan int64
	workers int
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given queue capacity and worker count.
func NewPool(queueSize, workers int) *Pool {
	return &Pool{
		queue:   make(chan int64, queueSize),
		workers: workers,
	}
}

// Enqueue hands off a job id without blocking the caller. A full queue
// returns ErrQueueFull.
func (p *Pool) Enqueue(jobID int64) error {
	select {
	case p.queue <- jobID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker goroutines. Workers stop picking up new jobs
// once ctx is cancelled, but a job already started runs to completion:
// execution is not cancellable once begun.
func (p *Pool) Start(ctx context.Context, run Runner) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(worker int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case jobID, ok := <-p.queue:
					if !ok {
						return
					}
					slog.Debug("worker picked up job", "worker", worker, "job_id", jobID)
					run(context.WithoutCancel(ctx), jobID)
				}
			}
		}(i)
	}
}

// Wait blocks until all workers have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}
