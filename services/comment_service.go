package services

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/zhenyapindos/TaskManagerService/models"
)

type CommentService struct {
	db            *gorm.DB
	clock         Clock
	notifications *NotificationService
}

func NewCommentService(db *gorm.DB, clock Clock, notifications *NotificationService) *CommentService {
	return &CommentService{db: db, clock: clock, notifications: notifications}
}

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.-]+)`)

// ExtractMentions returns the distinct usernames mentioned as @username
// tokens, in order of first appearance.
func ExtractMentions(text string) []string {
	seen := make(map[string]bool)
	var usernames []string
	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			usernames = append(usernames, match[1])
		}
	}
	return usernames
}

// CreateComment adds a comment to the task and fans out a mention
// notification to every @-mentioned project member except the author.
func (s *CommentService) CreateComment(taskID uint, text, userID string) (*models.Comment, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	var membership models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", task.ProjectID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	comment := models.Comment{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.clock.Now(),
	}

	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	for _, username := range ExtractMentions(text) {
		var mentioned models.User
		if err := s.db.Where("username = ?", username).First(&mentioned).Error; err != nil {
			continue
		}
		if mentioned.ID == userID {
			continue
		}

		// Only members of the task's project get mention notifications.
		var mentionedMembership models.ProjectUser
		err := s.db.Where("project_id = ? AND user_id = ?", task.ProjectID, mentioned.ID).
			First(&mentionedMembership).Error
		if err != nil {
			continue
		}

		if _, err := s.notifications.Mention(mentioned.ID, &comment); err != nil {
			return nil, err
		}
	}

	return &comment, nil
}

// ListComments returns the task's comments, oldest first. Project members
// only.
func (s *CommentService) ListComments(taskID uint, userID string) ([]models.Comment, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	var membership models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", task.ProjectID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	var comments []models.Comment
	if err := s.db.Where("task_id = ?", task.ID).Order("id").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, nil
}
