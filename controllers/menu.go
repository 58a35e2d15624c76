package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant/api/models"
)

func (ctl *Controller) ShowMenu(c *gin.Context) {
	items, err := ctl.store.ListMenu(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctl *Controller) AddToMenu(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to parse request body. Wrong json")
		return
	}
	res, err := ctl.store.CreateMenuItem(c.Request.Context(), item)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *Controller) RemoveFromMenu(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := ctl.store.DeleteMenuItem(c.Request.Context(), id)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *Controller) ListReviews(c *gin.Context) {
	reviews, err := ctl.store.ListReviews(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
