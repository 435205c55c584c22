package apperror

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware renders the last error attached with c.Error as
// {"error": message}. Errors that are not *Error are reported as a generic 500.
func Middleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		appErr, ok := As(err)
		if !ok {
			appErr = Internal("Internal server error", err)
		}

		status := appErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			attrs := []any{
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"error", err,
			}
			for k, v := range appErr.Context {
				attrs = append(attrs, k, v)
			}
			logger.Error("request failed", attrs...)
		}

		c.AbortWithStatusJSON(status, gin.H{"error": appErr.Message})
	}
}
