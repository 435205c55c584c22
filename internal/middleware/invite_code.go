package middleware

import (
	"crypto/subtle"

	"ResumeSense/internal/apperror"

	"github.com/gin-gonic/gin"
)

// InviteCodeMiddleware gates sign-up behind the X-Invite-Code header. An
// empty code leaves sign-up open.
func InviteCodeMiddleware(inviteCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if inviteCode == "" {
			c.Next()
			return
		}

		clientKey := c.GetHeader("X-Invite-Code")
		if subtle.ConstantTimeCompare([]byte(clientKey), []byte(inviteCode)) != 1 {
			abort(c, apperror.Forbidden("Invalid invite code"))
			return
		}
		c.Next()
	}
}
