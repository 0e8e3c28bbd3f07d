package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zhenyapindos/TaskManagerService/constants"
	"github.com/zhenyapindos/TaskManagerService/models"
)

type TaskService struct {
	db            *gorm.DB
	clock         Clock
	notifications *NotificationService
}

func NewTaskService(db *gorm.DB, clock Clock, notifications *NotificationService) *TaskService {
	return &TaskService{db: db, clock: clock, notifications: notifications}
}

type CreateTaskRequest struct {
	ProjectID         uint       `json:"project_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	StartDate         *time.Time `json:"start_date"`
	DurationHours     *float64   `json:"duration_hours"`
	ParentTaskID      *uint      `json:"parent_task_id"`
	PreviousTaskID    *uint      `json:"previous_task_id"`
	AssignedUsernames []string   `json:"assigned_usernames"`
}

type UpdateTaskRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	StartDate     *time.Time `json:"start_date"`
	DurationHours *float64   `json:"duration_hours"`
}

type TaskSummary struct {
	ID       uint       `json:"id"`
	Title    string     `json:"title"`
	Status   string     `json:"status"`
	Deadline *time.Time `json:"deadline"`
}

type ProjectSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type TaskInfo struct {
	models.Task
	Project       ProjectSummary `json:"project"`
	ParentTask    *TaskSummary   `json:"parent_task"`
	PreviousTask  *TaskSummary   `json:"previous_task"`
	AssignedUsers []UserSummary  `json:"assigned_users"`
}

// linkKind tags the two self-referential task relations.
type linkKind int

const (
	linkParent linkKind = iota
	linkPrevious
)

// linkBehavior pins the delete cascade's asymmetry in one place: tasks
// reached through a parent link are deleted outright, tasks reached through
// a previous link are only unlinked, after both are cleaned of their
// derived events and notifications.
var linkBehavior = map[linkKind]struct {
	column         string
	cascadeDeletes bool
}{
	linkParent:   {column: "parent_task_id", cascadeDeletes: true},
	linkPrevious: {column: "previous_task_id", cascadeDeletes: false},
}

func canManageProject(role string) bool {
	return role == constants.ProjectRoleAdmin || role == constants.ProjectRoleModerator
}

func (s *TaskService) projectRole(db *gorm.DB, projectID uint, userID string) (string, error) {
	var projectUser models.ProjectUser
	err := db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&projectUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPermissionDenied
		}
		return "", fmt.Errorf("failed to load project role: %w", err)
	}
	return projectUser.Role, nil
}

func (s *TaskService) taskRole(taskID uint, userID string) (string, error) {
	var taskUser models.TaskUser
	err := s.db.Where("task_id = ? AND user_id = ?", taskID, userID).First(&taskUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPermissionDenied
		}
		return "", fmt.Errorf("failed to load task role: %w", err)
	}
	return taskUser.Role, nil
}

// CreateTask creates a task in the project on behalf of an admin or
// moderator. When a previous task is referenced, the new task inherits that
// task's parent, overriding any explicitly supplied parent id.
func (s *TaskService) CreateTask(req CreateTaskRequest, userID string) (*models.Task, error) {
	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	role, err := s.projectRole(s.db, project.ID, userID)
	if err != nil {
		return nil, err
	}
	if !canManageProject(role) {
		return nil, ErrPermissionDenied
	}

	task := models.Task{
		Title:          req.Title,
		Description:    req.Description,
		Status:         constants.TaskStatusCreated,
		CreationTime:   s.clock.Now(),
		StartDate:      req.StartDate,
		DurationHours:  req.DurationHours,
		ParentTaskID:   req.ParentTaskID,
		PreviousTaskID: req.PreviousTaskID,
		ProjectID:      project.ID,
	}

	if req.PreviousTaskID != nil {
		var previous models.Task
		if err := s.db.First(&previous, *req.PreviousTaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to load previous task: %w", err)
		}
		// The previous link wins: the new task joins the previous task's
		// parent chain, even when a parent id was supplied explicitly.
		task.ParentTaskID = previous.ParentTaskID
	}

	RefreshStatus(&task, s.clock.Now())

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		creator := models.TaskUser{TaskID: task.ID, UserID: userID, Role: constants.TaskRoleCreator}
		if err := tx.Create(&creator).Error; err != nil {
			return fmt.Errorf("failed to create task creator: %w", err)
		}

		for _, username := range req.AssignedUsernames {
			var user models.User
			err := tx.Where("username = ?", username).First(&user).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return fmt.Errorf("failed to load user %q: %w", username, err)
			}

			assigned := models.TaskUser{TaskID: task.ID, UserID: user.ID, Role: constants.TaskRoleAssigned}
			if err := tx.Create(&assigned).Error; err != nil {
				return fmt.Errorf("failed to assign user %q: %w", username, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// GetTaskInfo returns the task with a freshly derived status, along with
// its project, parent/previous summaries and assigned users. Only task
// members may read a task.
func (s *TaskService) GetTaskInfo(taskID uint, userID string) (*TaskInfo, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	if _, err := s.taskRole(task.ID, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	RefreshStatus(&task, now)

	info := TaskInfo{Task: task}

	var project models.Project
	if err := s.db.First(&project, task.ProjectID).Error; err == nil {
		info.Project = ProjectSummary{ID: project.ID, Title: project.Title}
	}

	if task.ParentTaskID != nil {
		info.ParentTask = s.taskSummary(*task.ParentTaskID, now)
	}
	if task.PreviousTaskID != nil {
		info.PreviousTask = s.taskSummary(*task.PreviousTaskID, now)
	}

	var taskUsers []models.TaskUser
	if err := s.db.Where("task_id = ?", task.ID).Find(&taskUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to load task users: %w", err)
	}
	for _, tu := range taskUsers {
		var user models.User
		if err := s.db.First(&user, "id = ?", tu.UserID).Error; err != nil {
			continue
		}
		info.AssignedUsers = append(info.AssignedUsers, UserSummary{
			ID:       user.ID,
			Username: user.Username,
			Role:     tu.Role,
		})
	}

	return &info, nil
}

func (s *TaskService) taskSummary(taskID uint, now time.Time) *TaskSummary {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		return nil
	}
	RefreshStatus(&task, now)
	return &TaskSummary{ID: task.ID, Title: task.Title, Status: task.Status, Deadline: task.Deadline}
}

// UpdateTask replaces the task's editable fields and re-derives its status
// and deadline. Done tasks stay done. Requires project admin or moderator.
func (s *TaskService) UpdateTask(taskID uint, req UpdateTaskRequest, userID string) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	role, err := s.projectRole(s.db, task.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if !canManageProject(role) {
		return nil, ErrPermissionDenied
	}

	task.Title = req.Title
	task.Description = req.Description
	task.StartDate = req.StartDate
	task.DurationHours = req.DurationHours
	RefreshStatus(&task, s.clock.Now())

	if err := s.db.Save(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &task, nil
}

// MarkDone sets the terminal status on behalf of the task's creator and
// clears the deadline. The deadline stays nil from here on; no derivation
// will resurrect it.
func (s *TaskService) MarkDone(taskID uint, userID string) error {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load task: %w", err)
	}

	role, err := s.taskRole(task.ID, userID)
	if err != nil {
		return err
	}
	if role != constants.TaskRoleCreator {
		return ErrPermissionDenied
	}

	err = s.db.Model(&models.Task{}).Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"status":   constants.TaskStatusDone,
			"deadline": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark task done: %w", err)
	}
	return nil
}

// AssignUser adds the named user to the task with the assigned role and
// fans out a task-assignment notification. Only the task creator may
// assign. Assigning a user twice is a no-op.
func (s *TaskService) AssignUser(taskID uint, username string, userID string) error {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load task: %w", err)
	}

	role, err := s.taskRole(task.ID, userID)
	if err != nil {
		return err
	}
	if role != constants.TaskRoleCreator {
		return ErrPermissionDenied
	}

	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	var existing models.TaskUser
	err = s.db.Where("task_id = ? AND user_id = ?", task.ID, user.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check assignment: %w", err)
	}

	assigned := models.TaskUser{TaskID: task.ID, UserID: user.ID, Role: constants.TaskRoleAssigned}
	if err := s.db.Create(&assigned).Error; err != nil {
		return fmt.Errorf("failed to assign user: %w", err)
	}

	if _, err := s.notifications.TaskAssignment(user.ID, &task); err != nil {
		return err
	}
	return nil
}

// UnassignUser removes the named user's assigned role from the task. Only
// the task creator may unassign; the creator role itself cannot be removed.
func (s *TaskService) UnassignUser(taskID uint, username string, userID string) error {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load task: %w", err)
	}

	role, err := s.taskRole(task.ID, userID)
	if err != nil {
		return err
	}
	if role != constants.TaskRoleCreator {
		return ErrPermissionDenied
	}

	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	err = s.db.Where("task_id = ? AND user_id = ? AND role = ?",
		task.ID, user.ID, constants.TaskRoleAssigned).
		Delete(&models.TaskUser{}).Error
	if err != nil {
		return fmt.Errorf("failed to unassign user: %w", err)
	}
	return nil
}

// DeleteTask removes the task and walks both link relations inside one
// transaction, per linkBehavior: subtasks (parent links) are deleted
// recursively, successors (previous links) are kept but unlinked. Both are
// stripped of their task-derived events and notifications. Notifications
// deleted by the cascade are purged from the unread cache after commit.
//
// A visited set bounds the recursion, so a malformed cyclic graph
// terminates instead of recursing forever.
func (s *TaskService) DeleteTask(taskID uint, userID string) error {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load task: %w", err)
	}

	role, err := s.projectRole(s.db, task.ProjectID, userID)
	if err != nil {
		return err
	}
	if !canManageProject(role) {
		return ErrPermissionDenied
	}

	removed := make(map[string][]uint)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		visited := map[uint]bool{task.ID: true}

		if err := s.cascade(tx, task.ID, linkPrevious, visited, removed); err != nil {
			return err
		}
		if err := s.cascade(tx, task.ID, linkParent, visited, removed); err != nil {
			return err
		}
		if err := s.purgeDerived(tx, task.ID, removed); err != nil {
			return err
		}
		return s.deleteTaskRow(tx, task.ID)
	})
	if err != nil {
		return err
	}

	for user, ids := range removed {
		s.notifications.cache.RemoveMany(user, ids)
	}
	return nil
}

func (s *TaskService) cascade(tx *gorm.DB, taskID uint, kind linkKind, visited map[uint]bool, removed map[string][]uint) error {
	behavior := linkBehavior[kind]

	var linked []models.Task
	if err := tx.Where(behavior.column+" = ?", taskID).Find(&linked).Error; err != nil {
		return fmt.Errorf("failed to load linked tasks: %w", err)
	}

	for _, t := range linked {
		if visited[t.ID] {
			continue
		}
		visited[t.ID] = true

		if behavior.cascadeDeletes {
			if err := s.cascade(tx, t.ID, linkPrevious, visited, removed); err != nil {
				return err
			}
			if err := s.cascade(tx, t.ID, linkParent, visited, removed); err != nil {
				return err
			}
			if err := s.purgeDerived(tx, t.ID, removed); err != nil {
				return err
			}
			if err := s.deleteTaskRow(tx, t.ID); err != nil {
				return err
			}
			continue
		}

		// Unlink-only: the successor survives, but its own subtasks and
		// derived records still go.
		if err := s.cascade(tx, t.ID, linkParent, visited, removed); err != nil {
			return err
		}
		if err := s.purgeDerived(tx, t.ID, removed); err != nil {
			return err
		}
		err := tx.Model(&models.Task{}).Where("id = ?", t.ID).
			Update("previous_task_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to unlink task %d: %w", t.ID, err)
		}
	}
	return nil
}

// purgeDerived deletes the task's generated calendar events and
// notifications, recording notification ids per user for the cache purge.
func (s *TaskService) purgeDerived(tx *gorm.DB, taskID uint, removed map[string][]uint) error {
	var events []models.Event
	if err := tx.Where("task_id = ?", taskID).Find(&events).Error; err != nil {
		return fmt.Errorf("failed to load task events: %w", err)
	}
	for _, event := range events {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventUser{}).Error; err != nil {
			return fmt.Errorf("failed to delete event users: %w", err)
		}
		if err := tx.Delete(&models.Event{}, event.ID).Error; err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
	}

	var notifications []models.Notification
	if err := tx.Where("task_id = ?", taskID).Find(&notifications).Error; err != nil {
		return fmt.Errorf("failed to load task notifications: %w", err)
	}
	for _, n := range notifications {
		removed[n.UserID] = append(removed[n.UserID], n.ID)
	}
	if err := tx.Where("task_id = ?", taskID).Delete(&models.Notification{}).Error; err != nil {
		return fmt.Errorf("failed to delete task notifications: %w", err)
	}
	return nil
}

func (s *TaskService) deleteTaskRow(tx *gorm.DB, taskID uint) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskUser{}).Error; err != nil {
		return fmt.Errorf("failed to delete task users: %w", err)
	}
	if err := tx.Where("task_id = ?", taskID).Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("failed to delete task comments: %w", err)
	}
	if err := tx.Delete(&models.Task{}, taskID).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
