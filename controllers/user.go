package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zhenyapindos/TaskManagerService/models"
)

type UserController struct {
	DB *gorm.DB
}

func (uc *UserController) Me(c *gin.Context) {
	var user models.User

	if err := uc.DB.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, user)
}
