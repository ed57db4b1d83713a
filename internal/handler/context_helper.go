package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-registry-api/internal/middleware"
	"github.com/noah-isme/thesis-registry-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func rolesFromContext(c *gin.Context) *models.RoleContext {
	value, exists := c.Get(middleware.ContextRolesKey)
	if !exists {
		return nil
	}
	roles, ok := value.(*models.RoleContext)
	if !ok {
		return nil
	}
	return roles
}
