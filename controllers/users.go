package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant/api/database"
	"restaurant/api/models"
)

func (ctl *Controller) ListUsers(c *gin.Context) {
	users, err := ctl.store.ListUsers(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser is idempotent by email.
func (ctl *Controller) CreateUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to parse request body. Wrong json")
		return
	}
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		abortWithError(c, http.StatusBadRequest, "email is required")
		return
	}
	if !user.Role.Valid() {
		abortWithError(c, http.StatusBadRequest, "unknown role")
		return
	}

	res, err := ctl.store.CreateUser(c.Request.Context(), user)
	if errors.Is(err, database.ErrUserExists) {
		c.JSON(http.StatusOK, gin.H{"message": "user already exists"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CheckAdmin answers {admin:false} when asked about anyone but the caller.
func (ctl *Controller) CheckAdmin(c *gin.Context) {
	email := c.Param("email")
	if ClaimsFrom(c).Email() != email {
		c.JSON(http.StatusOK, gin.H{"admin": false})
		return
	}

	user, err := ctl.store.FindUserByEmail(c.Request.Context(), email)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"admin": false})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": user.Role.IsAdmin()})
}

func (ctl *Controller) PromoteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := ctl.store.PromoteUser(c.Request.Context(), id)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
