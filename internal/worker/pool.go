package worker

import (
	"errors"
	"sync"
)

var (
	// ErrPoolClosed indicates the pool no longer accepts tasks.
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrPoolNotStarted indicates Submit was called before Start.
	ErrPoolNotStarted = errors.New("worker pool not started")
)

// Pool manages a fixed set of planning workers sharing one task channel.
type Pool struct {
	workers  []*Worker
	taskCh   chan Task
	resultCh chan Result
	stopCh   chan struct{}
	wg       sync.WaitGroup
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewPool creates a pool with buffered task and result channels.
func NewPool(bufferSize int) *Pool {
	return &Pool{
		taskCh:   make(chan Task, bufferSize),
		resultCh: make(chan Result, bufferSize),
		stopCh:   make(chan struct{}),
	}
}

// Start launches workerCount workers, each running the given PlanFunc.
func (p *Pool) Start(workerCount int, plan PlanFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("pool already started")
	}
	for i := 0; i < workerCount; i++ {
		w := newWorker(i, plan, p.taskCh, p.resultCh, p.stopCh)
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run()
		}(w)
	}
	p.started = true
	return nil
}

// Submit queues one planning task.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrPoolNotStarted
	}
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	taskCh := p.taskCh
	stopCh := p.stopCh
	p.mu.Unlock()

	select {
	case taskCh <- task:
		return nil
	case <-stopCh:
		return ErrPoolClosed
	}
}

// ReceiveResult blocks for the next result.
func (p *Pool) ReceiveResult() (Result, error) {
	select {
	case result, ok := <-p.resultCh:
		if !ok {
			return Result{}, ErrPoolClosed
		}
		return result, nil
	case <-p.stopCh:
		return Result{}, ErrPoolClosed
	}
}

// Stop drains the pool: no new tasks, wait for in-flight planning calls.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.stopCh)
	close(p.taskCh)
	p.wg.Wait()
	close(p.resultCh)
}

// WorkerCount returns the number of started workers.
func (p *Pool) WorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}
