package services

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zhenyapindos/TaskManagerService/constants"
	"github.com/zhenyapindos/TaskManagerService/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectUser{},
		&models.Task{},
		&models.TaskUser{},
		&models.Calendar{},
		&models.Event{},
		&models.EventUser{},
		&models.Comment{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedProject(t *testing.T, db *gorm.DB, title string, admin models.User) models.Project {
	t.Helper()

	project := models.Project{Title: title}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project %s: %v", title, err)
	}

	calendar := models.Calendar{ProjectID: project.ID, Name: title + " calendar"}
	if err := db.Create(&calendar).Error; err != nil {
		t.Fatalf("seed calendar for %s: %v", title, err)
	}

	membership := models.ProjectUser{
		ProjectID: project.ID,
		UserID:    admin.ID,
		Role:      constants.ProjectRoleAdmin,
	}
	if err := db.Create(&membership).Error; err != nil {
		t.Fatalf("seed project admin: %v", err)
	}
	return project
}

func seedMember(t *testing.T, db *gorm.DB, project models.Project, user models.User, role string) {
	t.Helper()

	membership := models.ProjectUser{ProjectID: project.ID, UserID: user.ID, Role: role}
	if err := db.Create(&membership).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}
}
