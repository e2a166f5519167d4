package queue

import (
	"context"
	"errors"
	"time"

	"github.com/meridianir/capcall_backend/internal/core/domain"
)

// ErrUnavailable is returned by queue operations when the delayed task queue
// cannot be reached. Callers treat it as degraded mode, never as a reason to
// fail a financial operation. A timed-out operation reports the same error.
var ErrUnavailable = errors.New("delayed task queue unavailable")

// DelayedTaskQueue is the external delayed-dispatch capability. Implementations
// check their own availability and return ErrUnavailable instead of requiring
// call sites to pre-check a flag.
//
// Every operation is network-bound; callers should treat each call as the unit
// of potential latency and failure.
type DelayedTaskQueue interface {
	// Schedule submits a job to fire after the given delay and returns the
	// queue's opaque handle. The handle is informational only: cancellation is
	// issued by the logical (jobType, itemID) correlation key so that any
	// process instance can cancel jobs scheduled by another.
	Schedule(ctx context.Context, job domain.ScheduledJob, delay time.Duration) (string, error)

	// Cancel removes a single job by its opaque handle. It reports whether a
	// job was actually removed; cancelling an already-fired job is a no-op.
	Cancel(ctx context.Context, handle string) (bool, error)

	// CancelByCorrelation removes all still-pending jobs matching any of the
	// given job types for the item. It returns the count actually cancelled,
	// which may be lower than the count originally scheduled if some fired.
	CancelByCorrelation(ctx context.Context, jobTypes []domain.JobType, itemID string) (int, error)
}
