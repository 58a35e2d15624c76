package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/api/database"
	"restaurant/api/models"
	"restaurant/api/payment"
)

func (ctl *Controller) CreatePaymentIntent(c *gin.Context) {
	var dto struct {
		Price *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil || dto.Price == nil {
		abortWithError(c, http.StatusBadRequest, payment.ErrInvalidAmount.Error())
		return
	}
	amount, err := payment.ToMinorUnits(*dto.Price)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	secret, err := ctl.gateway.CreateIntent(c.Request.Context(), amount)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}

// paymentRequest takes the id lists as strings. primitive.ObjectID accepts any
// 12-byte JSON token as raw bytes, so the ids are parsed as hex here.
type paymentRequest struct {
	models.Payment
	CartItems []string `json:"cartItems"`
	MenuItems []string `json:"menuItems"`
}

func (r paymentRequest) payment() (models.Payment, error) {
	p := r.Payment
	var err error
	if p.CartItems, err = parseIDs(r.CartItems); err != nil {
		return p, err
	}
	if p.MenuItems, err = parseIDs(r.MenuItems); err != nil {
		return p, err
	}
	return p, nil
}

func parseIDs(hex []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hex))
	for _, h := range hex {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("id %q: %w", h, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RecordPayment stores the payment and clears the purchased cart items.
// If only the first write went through the client is told so, along with
// the id of the stored payment.
func (ctl *Controller) RecordPayment(c *gin.Context) {
	var dto paymentRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to parse request body. Wrong json")
		return
	}
	p, err := dto.payment()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := ctl.store.RecordPayment(c.Request.Context(), p)
	var partial *database.PartialPaymentError
	if errors.As(err, &partial) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":        true,
			"message":      "payment recorded but cart items were not cleared",
			"insertResult": partial.Insert,
		})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
