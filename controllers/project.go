package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zhenyapindos/TaskManagerService/services"
)

type ProjectController struct {
	Projects *services.ProjectService
	Events   *services.EventService
}

func projectID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return 0, false
	}
	return uint(id), true
}

type projectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (pc *ProjectController) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := pc.Projects.CreateProject(req.Title, req.Description, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (pc *ProjectController) ListProjects(c *gin.Context) {
	infos, err := pc.Projects.ListProjects(currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, infos)
}

func (pc *ProjectController) GetProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	info, err := pc.Projects.GetProject(id, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (pc *ProjectController) UpdateProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := pc.Projects.UpdateProject(id, req.Title, req.Description, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (pc *ProjectController) DeleteProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if err := pc.Projects.DeleteProject(id, currentUserID(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

type inviteRequest struct {
	EmailOrUsername string `json:"email_or_username" binding:"required"`
}

func (pc *ProjectController) InviteUser(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	var req inviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := pc.Projects.InviteUser(id, req.EmailOrUsername, currentUserID(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invited"})
}

type kickRequest struct {
	Username string `json:"username" binding:"required"`
}

func (pc *ProjectController) KickUser(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	var req kickRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := pc.Projects.KickUser(id, req.Username, currentUserID(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Kicked"})
}

func (pc *ProjectController) AcceptInvitation(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if err := pc.Projects.AcceptInvitation(id, currentUserID(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Accepted"})
}

func (pc *ProjectController) ListEvents(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	events, err := pc.Events.ListEvents(id, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
