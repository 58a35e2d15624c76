package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/api/database"
	"restaurant/api/jwtService"
	"restaurant/api/payment"
)

// Controller holds the collaborators shared by every handler.
type Controller struct {
	store   database.Store
	tokens  *jwtService.Service
	gateway payment.Gateway
}

func New(store database.Store, tokens *jwtService.Service, gateway payment.Gateway) *Controller {
	return &Controller{store: store, tokens: tokens, gateway: gateway}
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": true, "message": message})
}

// internalError records err on the context for the request logger and
// answers with a generic 500.
func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	abortWithError(c, http.StatusInternalServerError, "internal server error")
}

func paramID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func Root(c *gin.Context) {
	c.String(http.StatusOK, "server is running")
}
