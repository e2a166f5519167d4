package services

import (
	"context"
	"time"

	"github.com/meridianir/capcall_backend/internal/core/domain"
)

// ReminderSchedulerSvc computes and submits the deadline-relative notification
// cascade for call items and cancels the subset made irrelevant by payment or
// cancellation events. All methods degrade to no-ops when the delayed task
// queue is unavailable; queue failures never propagate past this boundary.
type ReminderSchedulerSvc interface {
	// ScheduleAll submits one delayed job for every job type whose fire time is
	// strictly after now, and returns the number submitted. It performs no
	// deduplication: the caller invokes it at most once per item, at call
	// creation.
	ScheduleAll(ctx context.Context, item domain.CapitalCallItem, deadline time.Time, now time.Time) int

	// CancelByTypes issues one bulk cancellation correlated by (jobTypes,
	// itemID) and returns the count actually cancelled. Cancelling an
	// already-cancelled or already-fired job is a no-op.
	CancelByTypes(ctx context.Context, itemID string, jobTypes []domain.JobType) int

	// HandleStatusChange applies the cancellation policy for an observed item
	// status transition and returns the count cancelled. It may be called by
	// any process observing the transition, not only by wire confirmation.
	HandleStatusChange(ctx context.Context, itemID string, newStatus, oldStatus domain.ItemStatus) int

	// DispatchInitialNotice enqueues the investor's initial call notice with
	// zero delay, fire-and-forget. It reports whether the hand-off was
	// accepted; a false return is logged by the scheduler and never blocks the
	// call lifecycle, since the obligation exists independent of delivery.
	DispatchInitialNotice(ctx context.Context, item domain.CapitalCallItem) bool
}
