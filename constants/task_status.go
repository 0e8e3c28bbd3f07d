package constants

// Task statuses. Done is terminal and set only by an explicit mark-done;
// every other value is re-derived from the task's dates on each read.
const (
	TaskStatusCreated    = "created"
	TaskStatusPlanned    = "planned"
	TaskStatusInProgress = "in_progress"
	TaskStatusOverdue    = "overdue"
	TaskStatusDone       = "done"
)
