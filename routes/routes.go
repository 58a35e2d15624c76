package routes

import (
	"github.com/gin-gonic/gin"

	"restaurant/api/controllers"
)

type Options struct {
	// LegacyOpenPromotion serves PATCH /users/admin/:id without any guard.
	LegacyOpenPromotion bool
}

// New builds an engine with the standard middleware and every route.
func New(ctl *controllers.Controller, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.CustomRecovery(recovery), RequestID())
	Setup(router, ctl, opts)
	return router
}

func Setup(router *gin.Engine, ctl *controllers.Controller, opts Options) {
	auth := ctl.Authenticate
	admin := ctl.RequireAdmin

	router.GET("/", controllers.Root)
	router.POST("/jwt", ctl.IssueToken)

	router.GET("/users", auth, admin, ctl.ListUsers)
	router.POST("/users", auth, admin, ctl.CreateUser)
	router.GET("/users/admin/:email", auth, ctl.CheckAdmin)
	if opts.LegacyOpenPromotion {
		router.PATCH("/users/admin/:id", ctl.PromoteUser)
	} else {
		router.PATCH("/users/admin/:id", auth, admin, ctl.PromoteUser)
	}

	router.GET("/menu", ctl.ShowMenu)
	router.POST("/menu", ctl.AddToMenu)
	router.DELETE("/menu/:id", auth, admin, ctl.RemoveFromMenu)

	router.GET("/reviews", ctl.ListReviews)

	router.GET("/carts", auth, ctl.ListCart)
	router.POST("/carts", ctl.AddToCart)
	router.DELETE("/carts/:id", ctl.RemoveFromCart)

	router.POST("/create-payment-intent", auth, ctl.CreatePaymentIntent)
	router.POST("/payments", auth, ctl.RecordPayment)

	router.GET("/admin-stats", auth, admin, ctl.AdminStats)
	router.GET("/order-stats", auth, admin, ctl.OrderStats)
}
