package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zhenyapindos/TaskManagerService/services"
)

type TaskController struct {
	Tasks  *services.TaskService
	Events *services.EventService
}

func taskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return 0, false
	}
	return uint(id), true
}

func (tc *TaskController) CreateTask(c *gin.Context) {
	var req services.CreateTaskRequest

	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.Tasks.CreateTask(req, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	info, err := tc.Tasks.GetTaskInfo(id, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (tc *TaskController) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.Tasks.UpdateTask(id, req, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := tc.Tasks.DeleteTask(id, currentUserID(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

func (tc *TaskController) MarkDone(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := tc.Tasks.MarkDone(id, currentUserID(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Done"})
}

type taskUserRequest struct {
	Username string `json:"username" binding:"required"`
}

func (tc *TaskController) AssignUser(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req taskUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tc.Tasks.AssignUser(id, req.Username, currentUserID(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assigned"})
}

func (tc *TaskController) UnassignUser(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req taskUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tc.Tasks.UnassignUser(id, req.Username, currentUserID(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unassigned"})
}

func (tc *TaskController) PostTaskAsEvent(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	event, err := tc.Events.PostTaskAsEvent(id, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}
