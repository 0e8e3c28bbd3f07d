package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhenyapindos/TaskManagerService/constants"
	"github.com/zhenyapindos/TaskManagerService/models"
)

func newProjectFixture(t *testing.T) (*ProjectService, *NotificationCache, *fixedClock, *TaskService) {
	t.Helper()

	db := setupTestDB(t)
	clock := &fixedClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewNotificationCache()
	notifications := NewNotificationService(db, cache, clock)
	return NewProjectService(db, clock, notifications), cache, clock, NewTaskService(db, clock, notifications)
}

func TestCreateProject_SetsUpAdminAndCalendar(t *testing.T) {
	svc, _, _, _ := newProjectFixture(t)
	db := svc.db

	user := seedUser(t, db, "creator")

	project, err := svc.CreateProject("p", "desc", user.ID)
	require.NoError(t, err)

	var membership models.ProjectUser
	require.NoError(t, db.Where("project_id = ? AND user_id = ?", project.ID, user.ID).First(&membership).Error)
	assert.Equal(t, constants.ProjectRoleAdmin, membership.Role)

	var calendar models.Calendar
	require.NoError(t, db.Where("project_id = ?", project.ID).First(&calendar).Error)
}

func TestInviteKickAccept(t *testing.T) {
	svc, cache, _, _ := newProjectFixture(t)
	db := svc.db

	admin := seedUser(t, db, "admin")
	guest := seedUser(t, db, "guest")
	project := seedProject(t, db, "p", admin)

	require.NoError(t, svc.InviteUser(project.ID, "guest", admin.ID))
	assert.True(t, cache.HasUnread(guest.ID))

	// Inviting twice is rejected.
	err := svc.InviteUser(project.ID, "guest", admin.ID)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	// Accepting promotes invited to worker.
	require.NoError(t, svc.AcceptInvitation(project.ID, guest.ID))
	var membership models.ProjectUser
	require.NoError(t, db.Where("project_id = ? AND user_id = ?", project.ID, guest.ID).First(&membership).Error)
	assert.Equal(t, constants.ProjectRoleWorker, membership.Role)

	// Accepting again fails: no longer invited.
	err = svc.AcceptInvitation(project.ID, guest.ID)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	require.NoError(t, svc.KickUser(project.ID, "guest", admin.ID))
	require.NoError(t, db.Where("project_id = ? AND user_id = ?", project.ID, guest.ID).First(&membership).Error)
	assert.Equal(t, constants.ProjectRoleKicked, membership.Role)

	kickNotifications := cache.GetAll(guest.ID)
	require.Len(t, kickNotifications, 2)
	assert.Equal(t, constants.NotificationKickedFromProject, kickNotifications[1].Type)
}

func TestInviteUser_ByEmail(t *testing.T) {
	svc, _, _, _ := newProjectFixture(t)
	db := svc.db

	admin := seedUser(t, db, "admin")
	guest := seedUser(t, db, "guest")
	project := seedProject(t, db, "p", admin)

	require.NoError(t, svc.InviteUser(project.ID, guest.Email, admin.ID))

	var membership models.ProjectUser
	require.NoError(t, db.Where("project_id = ? AND user_id = ?", project.ID, guest.ID).First(&membership).Error)
	assert.Equal(t, constants.ProjectRoleInvited, membership.Role)
}

func TestGetProject_RefreshesTaskStatuses(t *testing.T) {
	svc, _, clock, tasks := newProjectFixture(t)
	db := svc.db

	admin := seedUser(t, db, "admin")
	project := seedProject(t, db, "p", admin)

	start := clock.now
	_, err := tasks.CreateTask(CreateTaskRequest{
		ProjectID:     project.ID,
		Title:         "scheduled",
		StartDate:     &start,
		DurationHours: floatPtr(1),
	}, admin.ID)
	require.NoError(t, err)

	clock.now = start.Add(2 * time.Hour)
	info, err := svc.GetProject(project.ID, admin.ID)
	require.NoError(t, err)
	require.Len(t, info.Tasks, 1)
	assert.Equal(t, constants.TaskStatusOverdue, info.Tasks[0].Status)
}

func TestDeleteProject_RemovesScopedRecords(t *testing.T) {
	svc, cache, _, tasks := newProjectFixture(t)
	db := svc.db

	admin := seedUser(t, db, "admin")
	worker := seedUser(t, db, "worker")
	project := seedProject(t, db, "p", admin)
	seedMember(t, db, project, worker, constants.ProjectRoleWorker)

	task, err := tasks.CreateTask(CreateTaskRequest{ProjectID: project.ID, Title: "t"}, admin.ID)
	require.NoError(t, err)
	require.NoError(t, tasks.AssignUser(task.ID, "worker", admin.ID))
	require.True(t, cache.HasUnread(worker.ID))

	// Workers cannot delete the project.
	err = svc.DeleteProject(project.ID, worker.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	require.NoError(t, svc.DeleteProject(project.ID, admin.ID))

	var count int64
	db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ProjectUser{}).Where("project_id = ?", project.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Notification{}).Where("project_id = ?", project.ID).Count(&count)
	assert.Zero(t, count)
	assert.False(t, cache.HasUnread(worker.ID))
}
