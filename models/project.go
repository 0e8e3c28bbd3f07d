package models

import "time"

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectUser ties a user to a project with a project role
// (admin, moderator, worker, invited, kicked).
type ProjectUser struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"index:idx_project_user,unique" json:"project_id"`
	UserID    string `gorm:"index:idx_project_user,unique" json:"user_id"`
	Role      string `json:"role"`
}
