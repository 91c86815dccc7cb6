package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-admin-dashboard/pkg/errors"
	"github.com/noah-isme/sma-admin-dashboard/pkg/response"
)

// RequireRoles rejects requests whose JWT role is not one of roles. It must
// run after JWT.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
