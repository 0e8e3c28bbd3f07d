package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zhenyapindos/TaskManagerService/controllers"
	"github.com/zhenyapindos/TaskManagerService/middleware"
	"github.com/zhenyapindos/TaskManagerService/services"
)

// Services bundles everything the router needs.
type Services struct {
	DB            *gorm.DB
	Tasks         *services.TaskService
	Projects      *services.ProjectService
	Events        *services.EventService
	Comments      *services.CommentService
	Notifications *services.NotificationService
}

func SetupRouter(deps Services) *gin.Engine {
	r := gin.Default()

	authController := controllers.AuthController{DB: deps.DB}
	userController := controllers.UserController{DB: deps.DB}
	taskController := controllers.TaskController{Tasks: deps.Tasks, Events: deps.Events}
	projectController := controllers.ProjectController{Projects: deps.Projects, Events: deps.Events}
	eventController := controllers.EventController{Events: deps.Events}
	commentController := controllers.CommentController{Comments: deps.Comments}
	notificationController := controllers.NotificationController{Notifications: deps.Notifications}

	r.POST("/register", authController.Register)
	r.POST("/login", authController.Login)

	auth := r.Group("/", middleware.AuthMiddleware())

	auth.GET("/me", userController.Me)

	auth.POST("/projects", projectController.CreateProject)
	auth.GET("/projects", projectController.ListProjects)
	auth.GET("/projects/:id", projectController.GetProject)
	auth.PUT("/projects/:id", projectController.UpdateProject)
	auth.DELETE("/projects/:id", projectController.DeleteProject)
	auth.POST("/projects/:id/invite", projectController.InviteUser)
	auth.POST("/projects/:id/kick", projectController.KickUser)
	auth.POST("/projects/:id/accept", projectController.AcceptInvitation)
	auth.GET("/projects/:id/events", projectController.ListEvents)

	auth.POST("/tasks", taskController.CreateTask)
	auth.GET("/tasks/:id", taskController.GetTask)
	auth.PUT("/tasks/:id", taskController.UpdateTask)
	auth.DELETE("/tasks/:id", taskController.DeleteTask)
	auth.PUT("/tasks/:id/done", taskController.MarkDone)
	auth.POST("/tasks/:id/assign", taskController.AssignUser)
	auth.POST("/tasks/:id/unassign", taskController.UnassignUser)
	auth.POST("/tasks/:id/event", taskController.PostTaskAsEvent)
	auth.POST("/tasks/:id/comments", commentController.CreateComment)
	auth.GET("/tasks/:id/comments", commentController.ListComments)

	auth.POST("/events", eventController.CreateEvent)
	auth.DELETE("/events/:id", eventController.DeleteEvent)

	auth.GET("/notifications", notificationController.All)
	auth.GET("/notifications/unread", notificationController.Unread)
	auth.GET("/notifications/new", notificationController.HasUnread)
	auth.POST("/notifications/read", notificationController.MarkRead)

	return r
}
