package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	portsqueue "github.com/meridianir/capcall_backend/internal/core/ports/queue"
	portssvc "github.com/meridianir/capcall_backend/internal/core/ports/services"
	"github.com/meridianir/capcall_backend/internal/middleware"
)

// reminderScheduler submits deadline-relative notification jobs to the delayed
// task queue and cancels the subset made irrelevant by item status changes.
//
// The scheduler holds no mutable state and requires no locking: all waiting
// happens inside the external queue, and cancellation is addressed by the
// logical (jobType, itemID) key so any process instance can cancel jobs
// scheduled by another.
type reminderScheduler struct {
	taskQueue portsqueue.DelayedTaskQueue
}

// NewReminderScheduler creates a new reminder scheduler on top of the given
// delayed task queue.
func NewReminderScheduler(taskQueue portsqueue.DelayedTaskQueue) portssvc.ReminderSchedulerSvc {
	return &reminderScheduler{taskQueue: taskQueue}
}

var _ portssvc.ReminderSchedulerSvc = (*reminderScheduler)(nil)

// ScheduleAll submits one job per deadline-relative job type whose fire time is
// strictly after now. Queue unavailability degrades to zero jobs with a
// warning; per-job submit errors are logged and the remaining types are still
// attempted. Errors never propagate: the call's financial obligation is
// independent of notification delivery.
//
// ScheduleAll performs no deduplication against previously submitted jobs; the
// caller invokes it at most once per item, at call creation.
func (s *reminderScheduler) ScheduleAll(ctx context.Context, item domain.CapitalCallItem, deadline time.Time, now time.Time) int {
	logger := middleware.GetLoggerFromCtx(ctx)

	scheduled := 0
	for _, jobType := range domain.ScheduledJobTypes() {
		fireTime, ok := jobType.FireTime(deadline)
		if !ok || !fireTime.After(now) {
			continue
		}

		job := domain.ScheduledJob{
			JobType:     jobType,
			ItemID:      item.ItemID,
			CallID:      item.CallID,
			InvestorID:  item.InvestorID,
			FundID:      item.FundID,
			ScheduledAt: now,
		}

		_, err := s.taskQueue.Schedule(ctx, job, fireTime.Sub(now))
		if errors.Is(err, portsqueue.ErrUnavailable) {
			logger.Warn("Delayed task queue unavailable, no reminders scheduled",
				slog.String("item_id", item.ItemID),
				slog.Int("scheduled_before_degrade", scheduled),
			)
			return scheduled
		}
		if err != nil {
			logger.Error("Failed to schedule notification job",
				slog.String("item_id", item.ItemID),
				slog.String("job_type", string(jobType)),
				slog.String("error", err.Error()),
			)
			continue
		}
		scheduled++
	}

	logger.Info("Reminder cascade scheduled",
		slog.String("item_id", item.ItemID),
		slog.Int("job_count", scheduled),
	)
	return scheduled
}

// CancelByTypes issues a single bulk cancellation for the item correlated by
// the given job types. Cancellation is idempotent and best-effort: a job
// already handed to the dispatch side may still fire.
func (s *reminderScheduler) CancelByTypes(ctx context.Context, itemID string, jobTypes []domain.JobType) int {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(jobTypes) == 0 {
		return 0
	}

	count, err := s.taskQueue.CancelByCorrelation(ctx, jobTypes, itemID)
	if errors.Is(err, portsqueue.ErrUnavailable) {
		logger.Warn("Delayed task queue unavailable, no jobs cancelled", slog.String("item_id", itemID))
		return 0
	}
	if err != nil {
		logger.Error("Failed to cancel notification jobs",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return count
}

// HandleStatusChange applies the cancellation policy for one observed item
// status transition:
//
//   - COMPLETE and CANCELLED cancel every outstanding job type, reminder and
//     past-due classes both: the obligation is satisfied or void and no
//     further contact is warranted.
//   - DEFAULTED cancels only the past-due class; the default-notice process
//     takes over and reminder jobs are already irrelevant by that point.
//   - Any other transition (e.g. PENDING → PARTIAL) cancels nothing, because a
//     partial payment does not remove the obligation for the remainder.
//
// Calling it twice for the same transition is safe; calling it for a
// transition that did not occur produces incorrect suppression.
func (s *reminderScheduler) HandleStatusChange(ctx context.Context, itemID string, newStatus, oldStatus domain.ItemStatus) int {
	logger := middleware.GetLoggerFromCtx(ctx)

	var toCancel []domain.JobType
	switch newStatus {
	case domain.ItemComplete, domain.ItemCancelled:
		toCancel = domain.ScheduledJobTypes()
	case domain.ItemDefaulted:
		toCancel = domain.JobTypesOfClass(domain.ClassPastDue)
	default:
		return 0
	}

	count := s.CancelByTypes(ctx, itemID, toCancel)
	logger.Info("Cancelled notification jobs for status change",
		slog.String("item_id", itemID),
		slog.String("old_status", string(oldStatus)),
		slog.String("new_status", string(newStatus)),
		slog.Int("cancelled", count),
	)
	return count
}

// DispatchInitialNotice enqueues the investor's initial call notice with zero
// delay. The eventual send happens on the dispatch side; this hand-off is
// fire-and-forget and its failure is only ever logged.
func (s *reminderScheduler) DispatchInitialNotice(ctx context.Context, item domain.CapitalCallItem) bool {
	logger := middleware.GetLoggerFromCtx(ctx)

	job := domain.ScheduledJob{
		JobType:     domain.JobCallIssued,
		ItemID:      item.ItemID,
		CallID:      item.CallID,
		InvestorID:  item.InvestorID,
		FundID:      item.FundID,
		ScheduledAt: time.Now().UTC(),
	}

	if _, err := s.taskQueue.Schedule(ctx, job, 0); err != nil {
		logger.Warn("Failed to dispatch initial call notice",
			slog.String("item_id", item.ItemID),
			slog.String("investor_id", item.InvestorID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}
