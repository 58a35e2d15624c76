package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing the caller's header when
// present, and logs the errors attached to failed requests.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError && len(c.Errors) > 0 {
			log.Printf("[%s] %s %s -> %d: %s", id, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.Errors.String())
		}
	}
}

func recovery(c *gin.Context, recovered interface{}) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": true, "message": "internal server error"})
}
