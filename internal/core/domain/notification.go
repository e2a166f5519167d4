package domain

import "time"

// JobType identifies one kind of deadline-relative notification job.
type JobType string

const (
	JobReminder7d JobType = "reminder_7d"
	JobReminder3d JobType = "reminder_3d"
	JobReminder1d JobType = "reminder_1d"
	JobPastDue    JobType = "past_due"
	JobPastDue7   JobType = "past_due_7"
	// JobCallIssued is the immediate initial-call notice, dispatched with zero
	// delay at call creation. It is never scheduled ahead of time, so it has no
	// deadline offset and does not participate in cancellation by class.
	JobCallIssued JobType = "call_issued"
)

// JobClass groups job types for cancellation policy purposes.
type JobClass string

const (
	ClassReminder JobClass = "reminder"
	ClassPastDue  JobClass = "past_due"
)

// jobOffsets is the single source of truth for fire times relative to the call
// deadline. Job types absent from this map are not deadline-scheduled.
var jobOffsets = map[JobType]time.Duration{
	JobReminder7d: -7 * 24 * time.Hour,
	JobReminder3d: -3 * 24 * time.Hour,
	JobReminder1d: -24 * time.Hour,
	JobPastDue:    0,
	JobPastDue7:   7 * 24 * time.Hour,
}

// jobClasses maps each deadline-scheduled job type to its class.
var jobClasses = map[JobType]JobClass{
	JobReminder7d: ClassReminder,
	JobReminder3d: ClassReminder,
	JobReminder1d: ClassReminder,
	JobPastDue:    ClassPastDue,
	JobPastDue7:   ClassPastDue,
}

// ScheduledJobTypes returns the deadline-scheduled job types in fire-time order.
func ScheduledJobTypes() []JobType {
	return []JobType{JobReminder7d, JobReminder3d, JobReminder1d, JobPastDue, JobPastDue7}
}

// JobTypesOfClass returns the deadline-scheduled job types of the given class,
// in fire-time order.
func JobTypesOfClass(class JobClass) []JobType {
	types := make([]JobType, 0, len(jobClasses))
	for _, jt := range ScheduledJobTypes() {
		if jobClasses[jt] == class {
			types = append(types, jt)
		}
	}
	return types
}

// Class returns the job type's class and whether it is deadline-scheduled.
func (jt JobType) Class() (JobClass, bool) {
	class, ok := jobClasses[jt]
	return class, ok
}

// FireTime returns the instant the job should fire for the given deadline and
// whether the job type is deadline-scheduled at all.
func (jt JobType) FireTime(deadline time.Time) (time.Time, bool) {
	offset, ok := jobOffsets[jt]
	if !ok {
		return time.Time{}, false
	}
	return deadline.Add(offset), true
}

// ScheduledJob is the payload handed to the delayed task queue. The queue owns
// the physical timer; the logical correlation key is (JobType, ItemID).
type ScheduledJob struct {
	JobType     JobType   `json:"jobType"`
	ItemID      string    `json:"itemID"`
	CallID      string    `json:"callID"`
	InvestorID  string    `json:"investorID"`
	FundID      string    `json:"fundID"`
	ScheduledAt time.Time `json:"scheduledAt"`
}
