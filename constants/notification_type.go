package constants

// Notification types.
const (
	NotificationProjectInvitation = "project_invitation"
	NotificationKickedFromProject = "kicked_from_project"
	NotificationTaskAssignment    = "task_assignment"
	NotificationMention           = "mention"
	NotificationEventCreated      = "event_created"
)

// Event types. Task events are generated from a task's start date and
// deadline and are cleaned up together with the task.
const (
	EventTypeRegular   = "regular"
	EventTypeTaskEvent = "task_event"
)
