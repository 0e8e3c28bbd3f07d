package main

import (
	"log"

	"github.com/zhenyapindos/TaskManagerService/config"
	"github.com/zhenyapindos/TaskManagerService/models"
	"github.com/zhenyapindos/TaskManagerService/routes"
	"github.com/zhenyapindos/TaskManagerService/services"
	"github.com/zhenyapindos/TaskManagerService/utils"
)

func main() {
	cfg := config.Load()
	utils.SetJWTSecret(cfg.JWTSecret)

	db, err := config.ConnectDB(cfg.DSN)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
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
		log.Fatalf("failed to migrate: %v", err)
	}

	cache := services.NewNotificationCache()
	if cfg.WarmUnreadCache {
		if err := cache.Warm(db); err != nil {
			log.Fatalf("failed to warm notification cache: %v", err)
		}
	}

	clock := services.SystemClock()
	notifications := services.NewNotificationService(db, cache, clock)

	r := routes.SetupRouter(routes.Services{
		DB:            db,
		Tasks:         services.NewTaskService(db, clock, notifications),
		Projects:      services.NewProjectService(db, clock, notifications),
		Events:        services.NewEventService(db, clock, notifications),
		Comments:      services.NewCommentService(db, clock, notifications),
		Notifications: notifications,
	})

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
