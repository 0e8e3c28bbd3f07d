package models

import "time"

// Task is the central scheduling entity. Status and Deadline are derived
// fields: Deadline = StartDate + DurationHours whenever StartDate is set,
// and Status is recomputed from the dates on every read. ParentTaskID and
// PreviousTaskID are optional self-references forming the subtask hierarchy
// and the sequential ordering chain.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	CreationTime   time.Time  `json:"creation_time"`
	StartDate      *time.Time `json:"start_date"`
	DurationHours  *float64   `json:"duration_hours"`
	Deadline       *time.Time `json:"deadline"`
	ParentTaskID   *uint      `gorm:"index" json:"parent_task_id"`
	PreviousTaskID *uint      `gorm:"index" json:"previous_task_id"`
	ProjectID      uint       `gorm:"index" json:"project_id"`
}

// TaskUser ties a user to a task with a task role (creator, assigned).
type TaskUser struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	TaskID uint   `gorm:"index:idx_task_user,unique" json:"task_id"`
	UserID string `gorm:"index:idx_task_user,unique" json:"user_id"`
	Role   string `json:"role"`
}
