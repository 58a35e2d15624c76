package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant/api/models"
)

// ListCart only returns the caller's own cart. A request without an email
// gets an empty list.
func (ctl *Controller) ListCart(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusOK, []models.CartItem{})
		return
	}
	if email != ClaimsFrom(c).Email() {
		abortWithError(c, http.StatusForbidden, "forbidden access")
		return
	}

	items, err := ctl.store.ListCart(c.Request.Context(), email)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctl *Controller) AddToCart(c *gin.Context) {
	var item models.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to parse request body. Wrong json")
		return
	}
	res, err := ctl.store.CreateCartItem(c.Request.Context(), item)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *Controller) RemoveFromCart(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := ctl.store.DeleteCartItem(c.Request.Context(), id)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
