package middleware

import (
	"errors"
	"log"
	"net/http"

	"jogakzip/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached with c.Error as a
// {"message": ...} envelope. Internal causes are logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *utils.AppError
		if !errors.As(err, &appErr) {
			appErr = utils.NewInternalError(c.FullPath(), err)
		}

		status := appErr.HTTPStatus()
		body := gin.H{"message": appErr.Message}
		if status == http.StatusInternalServerError {
			log.Printf("[%s] %s %s: %v", appErr.Op, c.Request.Method, c.Request.URL.Path, appErr.Err)
			if appErr.Op != "" {
				body["error"] = "operation " + appErr.Op + " failed"
			}
		}

		c.JSON(status, body)
	}
}
