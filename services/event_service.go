package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zhenyapindos/TaskManagerService/constants"
	"github.com/zhenyapindos/TaskManagerService/models"
)

type EventService struct {
	db            *gorm.DB
	clock         Clock
	notifications *NotificationService
}

func NewEventService(db *gorm.DB, clock Clock, notifications *NotificationService) *EventService {
	return &EventService{db: db, clock: clock, notifications: notifications}
}

type CreateEventRequest struct {
	ProjectID        uint      `json:"project_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	InvitedUsernames []string  `json:"invited_usernames"`
}

// CreateEvent creates a regular event on the project's calendar and
// notifies every invited member.
func (s *EventService) CreateEvent(req CreateEventRequest, userID string) (*models.Event, error) {
	var calendar models.Calendar
	err := s.db.Where("project_id = ?", req.ProjectID).First(&calendar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}

	if err := s.requireMember(req.ProjectID, userID); err != nil {
		return nil, err
	}

	if !req.End.After(req.Start) {
		return nil, ErrInvalidArgument
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		CalendarID:  calendar.ID,
		EventType:   constants.EventTypeRegular,
		Start:       req.Start,
		End:         req.End,
		CreatorID:   userID,
	}

	if err := s.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	creator := models.EventUser{EventID: event.ID, UserID: userID}
	if err := s.db.Create(&creator).Error; err != nil {
		return nil, fmt.Errorf("failed to create event user: %w", err)
	}

	for _, username := range req.InvitedUsernames {
		var user models.User
		if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
			continue
		}
		if user.ID == userID {
			continue
		}

		invitee := models.EventUser{EventID: event.ID, UserID: user.ID}
		if err := s.db.Create(&invitee).Error; err != nil {
			return nil, fmt.Errorf("failed to invite user %q: %w", username, err)
		}
		if _, err := s.notifications.EventCreated(user.ID, &event); err != nil {
			return nil, err
		}
	}

	return &event, nil
}

// DeleteEvent removes the event and its attendees. Allowed for the event's
// creator or a project admin/moderator.
func (s *EventService) DeleteEvent(eventID uint, userID string) error {
	var event models.Event
	if err := s.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load event: %w", err)
	}

	if event.CreatorID != userID {
		var calendar models.Calendar
		if err := s.db.First(&calendar, event.CalendarID).Error; err != nil {
			return fmt.Errorf("failed to load calendar: %w", err)
		}

		var membership models.ProjectUser
		err := s.db.Where("project_id = ? AND user_id = ?", calendar.ProjectID, userID).First(&membership).Error
		if err != nil || !canManageProject(membership.Role) {
			return ErrPermissionDenied
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventUser{}).Error; err != nil {
			return fmt.Errorf("failed to delete event users: %w", err)
		}
		if err := tx.Delete(&models.Event{}, event.ID).Error; err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
}

// PostTaskAsEvent projects a scheduled task onto the project calendar as a
// task event spanning start..deadline. Tasks without dates are rejected.
func (s *EventService) PostTaskAsEvent(taskID uint, userID string) (*models.Event, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	if err := s.requireMember(task.ProjectID, userID); err != nil {
		return nil, err
	}

	deadline := Deadline(task.StartDate, task.DurationHours)
	if task.StartDate == nil || deadline == nil {
		return nil, ErrInvalidArgument
	}

	var calendar models.Calendar
	if err := s.db.Where("project_id = ?", task.ProjectID).First(&calendar).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}

	event := models.Event{
		Title:      task.Title + "'s task event",
		CalendarID: calendar.ID,
		TaskID:     &task.ID,
		EventType:  constants.EventTypeTaskEvent,
		Start:      *task.StartDate,
		End:        *deadline,
		CreatorID:  userID,
	}

	if err := s.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create task event: %w", err)
	}

	attendee := models.EventUser{EventID: event.ID, UserID: userID}
	if err := s.db.Create(&attendee).Error; err != nil {
		return nil, fmt.Errorf("failed to create event user: %w", err)
	}

	if _, err := s.notifications.EventCreated(userID, &event); err != nil {
		return nil, err
	}

	return &event, nil
}

// ListEvents returns the project's calendar events, soonest first.
func (s *EventService) ListEvents(projectID uint, userID string) ([]models.Event, error) {
	if err := s.requireMember(projectID, userID); err != nil {
		return nil, err
	}

	var calendar models.Calendar
	if err := s.db.Where("project_id = ?", projectID).First(&calendar).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}

	var events []models.Event
	err := s.db.Where("calendar_id = ?", calendar.ID).Order("start").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return events, nil
}

func (s *EventService) requireMember(projectID uint, userID string) error {
	var membership models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}
	if membership.Role == constants.ProjectRoleKicked {
		return ErrPermissionDenied
	}
	return nil
}
