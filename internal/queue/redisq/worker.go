package redisq

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	portsqueue "github.com/meridianir/capcall_backend/internal/core/ports/queue"
	portsrepo "github.com/meridianir/capcall_backend/internal/core/ports/repositories"
)

const popBatchSize = 50

// Dispatcher consumes a fired notification job and performs the actual send.
// The send side observes its own success or failure through its own logging;
// the worker never reports it back to the call lifecycle.
type Dispatcher interface {
	Dispatch(ctx context.Context, job domain.ScheduledJob) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, job domain.ScheduledJob) error

func (f DispatcherFunc) Dispatch(ctx context.Context, job domain.ScheduledJob) error {
	return f(ctx, job)
}

// LogDispatcher returns a Dispatcher that only logs the fired job. It stands
// in for the real notification sender in environments without one.
func LogDispatcher(logger *slog.Logger) Dispatcher {
	return DispatcherFunc(func(_ context.Context, job domain.ScheduledJob) error {
		logger.Info("Notification job fired",
			slog.String("job_type", string(job.JobType)),
			slog.String("item_id", job.ItemID),
			slog.String("investor_id", job.InvestorID),
			slog.String("fund_id", job.FundID),
		)
		return nil
	})
}

// Worker polls the queue for due jobs and hands them to the dispatcher.
// Reminder-class jobs also bump the item's reminder bookkeeping.
type Worker struct {
	queue        *Queue
	dispatcher   Dispatcher
	itemWriter   portsrepo.CallItemWriter
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewWorker creates a polling dispatch worker.
func NewWorker(queue *Queue, dispatcher Dispatcher, itemWriter portsrepo.CallItemWriter, pollInterval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		queue:        queue,
		dispatcher:   dispatcher,
		itemWriter:   itemWriter,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run polls until the context is cancelled. Queue unavailability is logged and
// retried on the next tick; it never stops the worker.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Dispatch worker started", slog.Duration("poll_interval", w.pollInterval))
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Dispatch worker stopped")
			return
		case <-ticker.C:
			w.drainDue(ctx)
		}
	}
}

func (w *Worker) drainDue(ctx context.Context) {
	jobs, err := w.queue.PopDue(ctx, time.Now(), popBatchSize)
	if err != nil {
		if errors.Is(err, portsqueue.ErrUnavailable) {
			w.logger.Warn("Delayed task queue unavailable, retrying next tick")
		} else {
			w.logger.Error("Failed to pop due jobs", slog.String("error", err.Error()))
		}
		// Jobs claimed before the failure are still dispatched below.
	}

	for _, job := range jobs {
		if err := w.dispatcher.Dispatch(ctx, job); err != nil {
			w.logger.Error("Dispatch failed",
				slog.String("job_type", string(job.JobType)),
				slog.String("item_id", job.ItemID),
				slog.String("error", err.Error()),
			)
			continue
		}

		if class, ok := job.JobType.Class(); ok && class == domain.ClassReminder {
			if err := w.itemWriter.RecordReminderSent(ctx, job.ItemID, time.Now().UTC()); err != nil {
				w.logger.Warn("Failed to record reminder bookkeeping",
					slog.String("item_id", job.ItemID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
