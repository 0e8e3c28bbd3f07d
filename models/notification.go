package models

import "time"

// Notification is the persisted notification log entry. Rows are never
// deleted except when a task cascade removes the task they point at; the
// read flag is only ever flipped by bulk acknowledge.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `gorm:"index" json:"user_id"`
	ProjectID *uint     `json:"project_id"`
	TaskID    *uint     `gorm:"index" json:"task_id"`
	EventID   *uint     `json:"event_id"`
	CommentID *uint     `json:"comment_id"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
}
