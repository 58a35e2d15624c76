package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant/api/models"
	"restaurant/api/stats"
)

func (ctl *Controller) AdminStats(c *gin.Context) {
	ctx := c.Request.Context()
	counts, err := ctl.store.Counts(ctx)
	if err != nil {
		internalError(c, err)
		return
	}
	payments, err := ctl.store.ListPayments(ctx)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AdminStats{Counts: counts, Revenue: stats.Revenue(payments)})
}

func (ctl *Controller) OrderStats(c *gin.Context) {
	rows, err := ctl.store.OrderedItems(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats.ByCategory(rows))
}
