package middleware

import (
	"context"
	"strings"

	"ResumeSense/internal/apperror"
	"ResumeSense/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextClaims   = "claims"
)

// Authenticator validates a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

func AuthMiddleware(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperror.Unauthorized("Authorization header required"))
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, apperror.Unauthorized("Invalid authorization header format"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authn.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(ContextUserID, claims.UID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthMiddleware.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
