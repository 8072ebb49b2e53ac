// Package worker provides the bounded worker pool the orchestrator uses to
// process independent channels. Work is partitioned by channel: one worker
// owns a channel's files for the whole run, so no cross-worker locking is
// needed.
package worker

import (
	"context"
	"fmt"
	"sync"

	"dcbackup/pkg/logger"
)

// Processor handles a single job and produces its result
type Processor[J, R any] func(ctx context.Context, job J) R

// Pool runs jobs on a fixed number of workers and streams results out.
// With one worker it degenerates to strictly sequential processing.
type Pool[J, R any] struct {
	numWorkers int
	jobs       chan J
	results    chan R
	process    Processor[J, R]
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	logger     logger.Logger
}

// New creates a worker pool with the given parallelism
func New[J, R any](numWorkers int, process Processor[J, R], log logger.Logger) *Pool[J, R] {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool[J, R]{
		numWorkers: numWorkers,
		jobs:       make(chan J, numWorkers*2),
		results:    make(chan R, numWorkers),
		process:    process,
		ctx:        ctx,
		cancel:     cancel,
		logger:     log,
	}
}

// Start launches the workers
func (p *Pool[J, R]) Start(ctx context.Context) {
	p.logger.DebugWithFields("starting worker pool", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit queues a job. It fails only when the pool is shutting down.
func (p *Pool[J, R]) Submit(job J) error {
	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Close signals that no more jobs will be submitted. Once the workers drain
// the queue the results channel is closed.
func (p *Pool[J, R]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
		p.cancel()
	}()
}

// Results returns the channel results are delivered on
func (p *Pool[J, R]) Results() <-chan R {
	return p.results
}

func (p *Pool[J, R]) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		select {
		case <-ctx.Done():
			p.logger.DebugWithFields("worker stopping, context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		result := p.process(ctx, job)

		select {
		case p.results <- result:
		case <-ctx.Done():
			return
		}
	}
}
