package services

import (
	"time"

	"github.com/zhenyapindos/TaskManagerService/constants"
	"github.com/zhenyapindos/TaskManagerService/models"
)

// Deadline computes a task's deadline from its start date and duration.
// It is nil exactly when the start date is nil. A nil duration counts as
// zero hours; fractional hours are honored.
func Deadline(startDate *time.Time, durationHours *float64) *time.Time {
	if startDate == nil {
		return nil
	}

	var hours float64
	if durationHours != nil {
		hours = *durationHours
	}

	deadline := startDate.Add(time.Duration(hours * float64(time.Hour)))
	return &deadline
}

// DeriveStatus computes a task's scheduling status from its dates relative
// to now. Done is sticky: once a task is marked done no further derivation
// happens. The stored status is otherwise not trusted between calls, so
// this must run on every read and on every temporal-field update.
//
//	no start date          -> created
//	now < start            -> planned
//	start <= now < deadline -> in_progress
//	now >= deadline        -> overdue
func DeriveStatus(now time.Time, startDate *time.Time, durationHours *float64, currentStatus string) string {
	if currentStatus == constants.TaskStatusDone {
		return constants.TaskStatusDone
	}

	if startDate == nil {
		return constants.TaskStatusCreated
	}

	deadline := *Deadline(startDate, durationHours)

	switch {
	case now.Before(*startDate):
		return constants.TaskStatusPlanned
	case now.Before(deadline):
		return constants.TaskStatusInProgress
	default:
		return constants.TaskStatusOverdue
	}
}

// RefreshStatus restamps the task's derived fields in place. Done tasks are
// left untouched: their status is terminal and their deadline was cleared
// when they were marked done.
func RefreshStatus(task *models.Task, now time.Time) {
	task.Status = DeriveStatus(now, task.StartDate, task.DurationHours, task.Status)
	if task.Status == constants.TaskStatusDone {
		return
	}
	task.Deadline = Deadline(task.StartDate, task.DurationHours)
}
