package models

import "time"

// Calendar belongs to a project; every project gets one on creation.
type Calendar struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"uniqueIndex" json:"project_id"`
	Name      string `json:"name"`
}

type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CalendarID  uint      `gorm:"index" json:"calendar_id"`
	TaskID      *uint     `gorm:"index" json:"task_id"`
	EventType   string    `json:"event_type"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	CreatorID   string    `json:"creator_id"`
}

type EventUser struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	EventID uint   `gorm:"index:idx_event_user,unique" json:"event_id"`
	UserID  string `gorm:"index:idx_event_user,unique" json:"user_id"`
}
