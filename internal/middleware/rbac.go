package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
	"github.com/noah-isme/thesis-registry-api/pkg/response"
)

// ContextRolesKey is the gin context key storing the resolved RoleContext.
const ContextRolesKey = "currentRoles"

// RoleResolver turns authenticated claims into the actor's capabilities and
// reports whether they came from the role cache.
type RoleResolver interface {
	Resolve(ctx context.Context, claims *models.JWTClaims) (*models.RoleContext, bool, error)
}

// ResolveRoles loads the actor's role memberships once per request. It must
// run after JWT.
func ResolveRoles(resolver RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, _ := value.(*models.JWTClaims)
		roles, cached, err := resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		SetCacheHit(c, cached)
		c.Set(ContextRolesKey, roles)
		c.Next()
	}
}

// RequireAdmin limits a route to global administrators.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextRolesKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if roles, ok := value.(*models.RoleContext); !ok || !roles.IsAdmin {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
