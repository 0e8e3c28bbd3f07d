package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/zhenyapindos/TaskManagerService/constants"
	"github.com/zhenyapindos/TaskManagerService/models"
)

type ProjectService struct {
	db            *gorm.DB
	clock         Clock
	notifications *NotificationService
}

func NewProjectService(db *gorm.DB, clock Clock, notifications *NotificationService) *ProjectService {
	return &ProjectService{db: db, clock: clock, notifications: notifications}
}

type ProjectInfo struct {
	models.Project
	Role  string        `json:"role"`
	Users []UserSummary `json:"users"`
	Tasks []TaskSummary `json:"tasks"`
}

// CreateProject creates the project, its calendar and an admin membership
// for the creator.
func (s *ProjectService) CreateProject(title, description, userID string) (*models.Project, error) {
	project := models.Project{
		Title:       title,
		Description: description,
		CreatedAt:   s.clock.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		calendar := models.Calendar{ProjectID: project.ID, Name: project.Title + " calendar"}
		if err := tx.Create(&calendar).Error; err != nil {
			return fmt.Errorf("failed to create calendar: %w", err)
		}

		admin := models.ProjectUser{
			ProjectID: project.ID,
			UserID:    userID,
			Role:      constants.ProjectRoleAdmin,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create project admin: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// GetProject returns the project with its members and its tasks, each task
// carrying a freshly derived status.
func (s *ProjectService) GetProject(projectID uint, userID string) (*ProjectInfo, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	var membership models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", project.ID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	info := ProjectInfo{Project: project, Role: membership.Role}

	var projectUsers []models.ProjectUser
	if err := s.db.Where("project_id = ?", project.ID).Find(&projectUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to load project users: %w", err)
	}
	for _, pu := range projectUsers {
		var user models.User
		if err := s.db.First(&user, "id = ?", pu.UserID).Error; err != nil {
			continue
		}
		info.Users = append(info.Users, UserSummary{ID: user.ID, Username: user.Username, Role: pu.Role})
	}

	now := s.clock.Now()
	var tasks []models.Task
	if err := s.db.Where("project_id = ?", project.ID).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	for i := range tasks {
		RefreshStatus(&tasks[i], now)
		info.Tasks = append(info.Tasks, TaskSummary{
			ID:       tasks[i].ID,
			Title:    tasks[i].Title,
			Status:   tasks[i].Status,
			Deadline: tasks[i].Deadline,
		})
	}

	return &info, nil
}

// ListProjects returns every project the user belongs to, with the tasks
// the user is on, statuses freshly derived.
func (s *ProjectService) ListProjects(userID string) ([]ProjectInfo, error) {
	var memberships []models.ProjectUser
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}

	now := s.clock.Now()
	infos := make([]ProjectInfo, 0, len(memberships))

	for _, membership := range memberships {
		var project models.Project
		if err := s.db.First(&project, membership.ProjectID).Error; err != nil {
			continue
		}

		info := ProjectInfo{Project: project, Role: membership.Role}

		var taskUsers []models.TaskUser
		err := s.db.Joins("JOIN tasks ON tasks.id = task_users.task_id").
			Where("task_users.user_id = ? AND tasks.project_id = ?", userID, project.ID).
			Find(&taskUsers).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load task memberships: %w", err)
		}

		for _, tu := range taskUsers {
			var task models.Task
			if err := s.db.First(&task, tu.TaskID).Error; err != nil {
				continue
			}
			RefreshStatus(&task, now)
			info.Tasks = append(info.Tasks, TaskSummary{
				ID:       task.ID,
				Title:    task.Title,
				Status:   task.Status,
				Deadline: task.Deadline,
			})
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// UpdateProject edits title and description. Admin only.
func (s *ProjectService) UpdateProject(projectID uint, title, description, userID string) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	if err := s.requireRole(project.ID, userID, constants.ProjectRoleAdmin); err != nil {
		return nil, err
	}

	project.Title = title
	project.Description = description
	if err := s.db.Save(&project).Error; err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return &project, nil
}

// DeleteProject removes the project and everything scoped under it. Admin
// only. Unread-cache entries for the project's notifications are purged.
func (s *ProjectService) DeleteProject(projectID uint, userID string) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load project: %w", err)
	}

	if err := s.requireRole(project.ID, userID, constants.ProjectRoleAdmin); err != nil {
		return err
	}

	removed := make(map[string][]uint)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var notifications []models.Notification
		if err := tx.Where("project_id = ?", project.ID).Find(&notifications).Error; err != nil {
			return fmt.Errorf("failed to load project notifications: %w", err)
		}
		for _, n := range notifications {
			removed[n.UserID] = append(removed[n.UserID], n.ID)
		}

		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
			return fmt.Errorf("failed to load project tasks: %w", err)
		}

		var calendar models.Calendar
		if err := tx.Where("project_id = ?", project.ID).First(&calendar).Error; err == nil {
			var eventIDs []uint
			if err := tx.Model(&models.Event{}).Where("calendar_id = ?", calendar.ID).Pluck("id", &eventIDs).Error; err != nil {
				return fmt.Errorf("failed to load calendar events: %w", err)
			}
			if len(eventIDs) > 0 {
				if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.EventUser{}).Error; err != nil {
					return fmt.Errorf("failed to delete event users: %w", err)
				}
				if err := tx.Where("id IN ?", eventIDs).Delete(&models.Event{}).Error; err != nil {
					return fmt.Errorf("failed to delete events: %w", err)
				}
			}
			if err := tx.Delete(&models.Calendar{}, calendar.ID).Error; err != nil {
				return fmt.Errorf("failed to delete calendar: %w", err)
			}
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskUser{}).Error; err != nil {
				return fmt.Errorf("failed to delete task users: %w", err)
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
				return fmt.Errorf("failed to delete comments: %w", err)
			}
			if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return fmt.Errorf("failed to delete tasks: %w", err)
			}
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("failed to delete notifications: %w", err)
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectUser{}).Error; err != nil {
			return fmt.Errorf("failed to delete project users: %w", err)
		}
		if err := tx.Delete(&models.Project{}, project.ID).Error; err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for user, ids := range removed {
		s.notifications.cache.RemoveMany(user, ids)
	}
	return nil
}

// InviteUser adds the user (looked up by username or email) with the
// invited role and notifies them. Admin or moderator only.
func (s *ProjectService) InviteUser(projectID uint, emailOrUsername, userID string) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load project: %w", err)
	}

	if err := s.requireManage(project.ID, userID); err != nil {
		return err
	}

	column := "username"
	if strings.Contains(emailOrUsername, "@") {
		column = "email"
	}

	var target models.User
	if err := s.db.Where(column+" = ?", emailOrUsername).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	var existing models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", project.ID, target.ID).First(&existing).Error
	if err == nil {
		return ErrInvalidArgument
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check membership: %w", err)
	}

	invited := models.ProjectUser{
		ProjectID: project.ID,
		UserID:    target.ID,
		Role:      constants.ProjectRoleInvited,
	}
	if err := s.db.Create(&invited).Error; err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	if _, err := s.notifications.ProjectInvitation(target.ID, project.ID); err != nil {
		return err
	}
	return nil
}

// KickUser demotes the member to the kicked role and notifies them. Admin
// or moderator only.
func (s *ProjectService) KickUser(projectID uint, username, userID string) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load project: %w", err)
	}

	if err := s.requireManage(project.ID, userID); err != nil {
		return err
	}

	var target models.User
	if err := s.db.Where("username = ?", username).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	var membership models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", project.ID, target.ID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}

	membership.Role = constants.ProjectRoleKicked
	if err := s.db.Save(&membership).Error; err != nil {
		return fmt.Errorf("failed to kick user: %w", err)
	}

	if _, err := s.notifications.ProjectKick(target.ID, project.ID); err != nil {
		return err
	}
	return nil
}

// AcceptInvitation promotes the caller from invited to worker.
func (s *ProjectService) AcceptInvitation(projectID uint, userID string) error {
	var membership models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}

	if membership.Role != constants.ProjectRoleInvited {
		return ErrInvalidArgument
	}

	membership.Role = constants.ProjectRoleWorker
	if err := s.db.Save(&membership).Error; err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	return nil
}

func (s *ProjectService) requireRole(projectID uint, userID, role string) error {
	var membership models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}
	if membership.Role != role {
		return ErrPermissionDenied
	}
	return nil
}

func (s *ProjectService) requireManage(projectID uint, userID string) error {
	var membership models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}
	if !canManageProject(membership.Role) {
		return ErrPermissionDenied
	}
	return nil
}
