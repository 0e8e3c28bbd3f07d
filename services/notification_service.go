package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/zhenyapindos/TaskManagerService/constants"
	"github.com/zhenyapindos/TaskManagerService/models"
)

// NotificationService persists notification log entries and mirrors every
// write into the unread cache in the same logical operation.
type NotificationService struct {
	db    *gorm.DB
	cache *NotificationCache
	clock Clock
}

func NewNotificationService(db *gorm.DB, cache *NotificationCache, clock Clock) *NotificationService {
	return &NotificationService{db: db, cache: cache, clock: clock}
}

func (s *NotificationService) create(n models.Notification) (*models.Notification, error) {
	n.CreatedAt = s.clock.Now()
	n.IsRead = false

	if err := s.db.Create(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.cache.Add(n.UserID, n)
	return &n, nil
}

func (s *NotificationService) ProjectInvitation(userID string, projectID uint) (*models.Notification, error) {
	return s.create(models.Notification{
		UserID:    userID,
		ProjectID: &projectID,
		Type:      constants.NotificationProjectInvitation,
	})
}

func (s *NotificationService) ProjectKick(userID string, projectID uint) (*models.Notification, error) {
	return s.create(models.Notification{
		UserID:    userID,
		ProjectID: &projectID,
		Type:      constants.NotificationKickedFromProject,
	})
}

func (s *NotificationService) TaskAssignment(userID string, task *models.Task) (*models.Notification, error) {
	return s.create(models.Notification{
		UserID:    userID,
		ProjectID: &task.ProjectID,
		TaskID:    &task.ID,
		Type:      constants.NotificationTaskAssignment,
	})
}

func (s *NotificationService) Mention(userID string, comment *models.Comment) (*models.Notification, error) {
	return s.create(models.Notification{
		UserID:    userID,
		ProjectID: &comment.ProjectID,
		TaskID:    &comment.TaskID,
		CommentID: &comment.ID,
		Type:      constants.NotificationMention,
	})
}

func (s *NotificationService) EventCreated(userID string, event *models.Event) (*models.Notification, error) {
	return s.create(models.Notification{
		UserID:  userID,
		EventID: &event.ID,
		TaskID:  event.TaskID,
		Type:    constants.NotificationEventCreated,
	})
}

// MarkManyAsRead flips the given notifications to read in the log and drops
// them from the unread cache.
func (s *NotificationService) MarkManyAsRead(userID string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	s.cache.RemoveMany(userID, ids)
	return nil
}

// HasUnread answers the poll endpoint from the cache alone.
func (s *NotificationService) HasUnread(userID string) bool {
	return s.cache.HasUnread(userID)
}

// Unread returns the cached unread list.
func (s *NotificationService) Unread(userID string) []models.Notification {
	return s.cache.GetAll(userID)
}

// All returns the user's full notification history from the persisted log,
// read or not. The cache is never consulted here.
func (s *NotificationService) All(userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).Order("id").Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return notifications, nil
}
