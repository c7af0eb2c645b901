package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequireID parses the named path parameter as a positive integer and stores
// it under the same key. Malformed ids are rejected before any handler runs.
func RequireID(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(param)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid " + param})
			return
		}

		c.Set(param, uint(id))
		c.Next()
	}
}
