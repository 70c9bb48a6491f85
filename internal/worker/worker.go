// ============================================================================
// Worker - planning call execution unit
// ============================================================================
//
// Package: internal/worker
// Purpose: Runs independent planning calls on a fixed pool of goroutines.
//
// Cross-strategy comparison runs are embarrassingly parallel: each strategy
// call operates on an independent request and agent state, sharing only the
// read-mostly environment. Each Worker loops over the task channel, executes
// the injected PlanFunc synchronously, and reports a Result. There is no
// cancellation for an in-flight planning call; the planner's expansion budget
// bounds runaway search instead.
//
// ============================================================================

package worker

import (
	"log/slog"
	"time"
)

// Worker executes planning tasks from the shared task channel.
type Worker struct {
	id       int
	plan     PlanFunc
	taskCh   <-chan Task
	resultCh chan<- Result
	stopCh   <-chan struct{}
	logger   *slog.Logger
}

func newWorker(id int, plan PlanFunc, taskCh <-chan Task, resultCh chan<- Result, stopCh <-chan struct{}) *Worker {
	return &Worker{
		id:       id,
		plan:     plan,
		taskCh:   taskCh,
		resultCh: resultCh,
		stopCh:   stopCh,
		logger:   slog.With("component", "worker", "id", id),
	}
}

// Run is the worker main loop: execute every task until the channel closes.
func (w *Worker) Run() {
	for task := range w.taskCh {
		start := time.Now()
		path, err := w.plan(task.Env, task.Request)
		result := Result{
			TaskID:     task.ID,
			Strategy:   task.Request.Strategy,
			EnvVersion: task.EnvVersion,
			Path:       path,
			Err:        err,
			Duration:   time.Since(start),
		}
		if err != nil {
			w.logger.Debug("plan task failed", "task", task.ID, "strategy", task.Request.Strategy, "err", err)
		}

		// Block until the receiver drains the result; a full result
		// channel must stall the worker, not lose the task's outcome.
		select {
		case w.resultCh <- result:
		case <-w.stopCh:
			w.logger.Warn("pool stopping, discarding result", "task", task.ID)
			return
		}
	}
}
