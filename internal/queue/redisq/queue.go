package redisq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	portsqueue "github.com/meridianir/capcall_backend/internal/core/ports/queue"
)

const defaultOpTimeout = 2 * time.Second

// Queue is a Redis-backed delayed task queue. Jobs live in a sorted set scored
// by fire time (unix milliseconds); payloads live in a hash keyed by the
// logical job key "jobType:itemID", which doubles as the queue handle and the
// cancellation correlation key.
//
// Every operation runs under a bounded timeout. Any Redis failure, including
// timeout, surfaces as ports/queue.ErrUnavailable so that callers degrade
// instead of failing a financial operation.
type Queue struct {
	client    *redis.Client
	keyPrefix string
	opTimeout time.Duration
}

// Option configures a Queue.
type Option func(*Queue)

// WithOpTimeout overrides the per-operation timeout.
func WithOpTimeout(d time.Duration) Option {
	return func(q *Queue) { q.opTimeout = d }
}

// NewQueue creates a Queue on the given Redis client. A nil client yields a
// queue that is permanently unavailable, which keeps the rest of the system
// usable when notification infrastructure is not deployed.
func NewQueue(client *redis.Client, keyPrefix string, opts ...Option) *Queue {
	q := &Queue{
		client:    client,
		keyPrefix: keyPrefix,
		opTimeout: defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

var _ portsqueue.DelayedTaskQueue = (*Queue)(nil)

func (q *Queue) scheduleKey() string { return q.keyPrefix + ":schedule" }
func (q *Queue) payloadKey() string  { return q.keyPrefix + ":payload" }

// jobKey builds the logical correlation key for a (jobType, itemID) pair.
func jobKey(jobType domain.JobType, itemID string) string {
	return string(jobType) + ":" + itemID
}

// Schedule submits a job to fire after the given delay. The returned handle is
// the logical job key; cancellation never requires it.
func (q *Queue) Schedule(ctx context.Context, job domain.ScheduledJob, delay time.Duration) (string, error) {
	if q.client == nil {
		return "", portsqueue.ErrUnavailable
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode job payload: %w", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, q.opTimeout)
	defer cancel()

	key := jobKey(job.JobType, job.ItemID)
	fireAt := time.Now().Add(delay).UnixMilli()

	pipe := q.client.TxPipeline()
	pipe.ZAdd(opCtx, q.scheduleKey(), redis.Z{Score: float64(fireAt), Member: key})
	pipe.HSet(opCtx, q.payloadKey(), key, payload)
	if _, err := pipe.Exec(opCtx); err != nil {
		return "", fmt.Errorf("%w: %v", portsqueue.ErrUnavailable, err)
	}

	return key, nil
}

// Cancel removes a single pending job by handle. Removing a job that already
// fired or was already cancelled is a no-op.
func (q *Queue) Cancel(ctx context.Context, handle string) (bool, error) {
	if q.client == nil {
		return false, portsqueue.ErrUnavailable
	}

	opCtx, cancel := context.WithTimeout(ctx, q.opTimeout)
	defer cancel()

	removed, err := q.client.ZRem(opCtx, q.scheduleKey(), handle).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", portsqueue.ErrUnavailable, err)
	}
	q.client.HDel(opCtx, q.payloadKey(), handle)
	return removed > 0, nil
}

// CancelByCorrelation removes all pending jobs for the item matching any of
// the given job types, in one round trip. Jobs that already fired are simply
// absent from the sorted set, so the returned count may be lower than the
// count originally scheduled.
func (q *Queue) CancelByCorrelation(ctx context.Context, jobTypes []domain.JobType, itemID string) (int, error) {
	if q.client == nil {
		return 0, portsqueue.ErrUnavailable
	}
	if len(jobTypes) == 0 {
		return 0, nil
	}

	keys := make([]interface{}, len(jobTypes))
	fields := make([]string, len(jobTypes))
	for i, jt := range jobTypes {
		key := jobKey(jt, itemID)
		keys[i] = key
		fields[i] = key
	}

	opCtx, cancel := context.WithTimeout(ctx, q.opTimeout)
	defer cancel()

	pipe := q.client.TxPipeline()
	remCmd := pipe.ZRem(opCtx, q.scheduleKey(), keys...)
	pipe.HDel(opCtx, q.payloadKey(), fields...)
	if _, err := pipe.Exec(opCtx); err != nil {
		return 0, fmt.Errorf("%w: %v", portsqueue.ErrUnavailable, err)
	}

	return int(remCmd.Val()), nil
}

// PopDue claims up to limit jobs whose fire time has passed. A job is claimed
// by removing its member from the sorted set; under concurrent workers only
// the remover that observes the removal owns the job. Claimed payloads are
// deleted before being returned.
func (q *Queue) PopDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error) {
	if q.client == nil {
		return nil, portsqueue.ErrUnavailable
	}

	opCtx, cancel := context.WithTimeout(ctx, q.opTimeout)
	defer cancel()

	members, err := q.client.ZRangeByScore(opCtx, q.scheduleKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.UnixMilli()),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", portsqueue.ErrUnavailable, err)
	}

	jobs := make([]domain.ScheduledJob, 0, len(members))
	for _, member := range members {
		removed, err := q.client.ZRem(opCtx, q.scheduleKey(), member).Result()
		if err != nil {
			return jobs, fmt.Errorf("%w: %v", portsqueue.ErrUnavailable, err)
		}
		if removed == 0 {
			// Another worker claimed it first.
			continue
		}

		payload, err := q.client.HGet(opCtx, q.payloadKey(), member).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return jobs, fmt.Errorf("%w: %v", portsqueue.ErrUnavailable, err)
		}
		q.client.HDel(opCtx, q.payloadKey(), member)

		var job domain.ScheduledJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			// A corrupt payload is dropped; the schedule entry is already gone.
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}
