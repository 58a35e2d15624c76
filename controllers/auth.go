package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant/api/database"
	"restaurant/api/jwtService"
)

const claimsKey = "claims"

// IssueToken signs whatever JSON object the caller posts. Identity is
// established by the client's sign-in provider, not here.
func (ctl *Controller) IssueToken(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil || payload == nil {
		abortWithError(c, http.StatusBadRequest, "Failed to parse request body. Wrong json")
		return
	}

	token, err := ctl.tokens.GenerateJWT(payload)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Authenticate verifies the bearer token and stores its claims on the
// context.
func (ctl *Controller) Authenticate(c *gin.Context) {
	claims, err := ctl.tokens.Verify(c.GetHeader("Authorization"))
	if err != nil {
		if !errors.Is(err, jwtService.ErrNoToken) {
			err = jwtService.ErrInvalidToken
		}
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	c.Set(claimsKey, claims)
	c.Next()
}

// RequireAdmin must run after Authenticate.
func (ctl *Controller) RequireAdmin(c *gin.Context) {
	user, err := ctl.store.FindUserByEmail(c.Request.Context(), ClaimsFrom(c).Email())
	if errors.Is(err, database.ErrNotFound) {
		abortWithError(c, http.StatusForbidden, "forbidden message")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	if !user.Role.IsAdmin() {
		abortWithError(c, http.StatusForbidden, "forbidden message")
		return
	}
	c.Next()
}

// ClaimsFrom returns the claims stored by Authenticate, or nil.
func ClaimsFrom(c *gin.Context) jwtService.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(jwtService.Claims)
	return claims
}
