package worker

import (
	"context"
	"sync"
)

// Job is one unit of work, typically a single record extraction.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a finished job hands back.
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of goroutines. The intended flow is
// Start, Submit any number of jobs, Close, then drain Results until it
// closes. Submitting more jobs than the channels buffer requires the
// caller to drain Results while submitting.
type Pool struct {
	workers int
	jobs    chan Job
	results chan Result

	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	queueOnce sync.Once
	closeOnce sync.Once
}

// NewPool creates a pool. Worker counts below one are raised to one.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers plus a monitor that closes the result
// stream once the last worker exits.
func (p *Pool) Start() {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.run()
	}
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			select {
			case p.results <- job.Execute(p.ctx):
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. No Submit may follow Close. After Shutdown,
// Submit drops the job.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Close marks the queue complete so workers exit once it drains.
func (p *Pool) Close() {
	p.queueOnce.Do(func() {
		close(p.jobs)
	})
}

// Results exposes the result stream. It closes after Close once every
// queued job has finished.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Wait closes the queue and collects the remaining results in
// completion order. Only safe when every submitted job fits the
// channel buffers; larger batches should drain Results directly.
func (p *Pool) Wait() []Result {
	p.Close()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Shutdown cancels in-flight jobs and releases the workers without
// waiting for the queue to drain.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
