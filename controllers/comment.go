package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zhenyapindos/TaskManagerService/services"
)

type CommentController struct {
	Comments *services.CommentService
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (cc *CommentController) CreateComment(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := cc.Comments.CreateComment(id, req.Text, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (cc *CommentController) ListComments(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	comments, err := cc.Comments.ListComments(id, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}
