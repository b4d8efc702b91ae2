package camunda

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler is what each task worker implements. The handler completes
// or fails the job itself through the JobClient; the returned error is
// surfaced only for logging.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// Worker is one open polling subscription on a single task type.
type Worker struct {
	jobs     worker.JobWorker
	log      *zap.Logger
	taskType string
}

// NewWorker opens a subscription for taskType and starts dispatching jobs
// to handler. The zbc.Client is shared between workers and stays open
// after Stop; closing it belongs to whoever dialed it.
func NewWorker(client zbc.Client, taskType string, maxJobsActive int, handler JobHandler, log *zap.Logger) *Worker {
	// The Zeebe callback signature has no error return, so errors are
	// logged here instead of lost.
	jobs := client.NewJobWorker().
		JobType(taskType).
		Handler(func(jc worker.JobClient, job entities.Job) {
			if err := handler.Handle(jc, job); err != nil {
				log.Error("job handler failed",
					zap.String("taskType", taskType),
					zap.Int64("jobKey", job.Key),
					zap.Error(err),
				)
			}
		}).
		MaxJobsActive(maxJobsActive).
		Open()

	log.Info("worker subscribed",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
	)

	return &Worker{jobs: jobs, log: log, taskType: taskType}
}

// Stop closes the subscription and waits for in-flight jobs to drain,
// giving up when ctx expires.
func (w *Worker) Stop(ctx context.Context) {
	w.log.Info("stopping worker", zap.String("taskType", w.taskType))

	done := make(chan struct{})
	go func() {
		w.jobs.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.log.Warn("worker stop deadline hit with jobs in flight",
			zap.String("taskType", w.taskType))
	}
}
