package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-registry-api/internal/middleware"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
	"github.com/noah-isme/thesis-registry-api/pkg/response"
)

// AuthHandler exposes the identity of the calling actor.
type AuthHandler struct{}

// NewAuthHandler creates a new handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me godoc
// @Summary Current actor
// @Description Returns the resolved role memberships of the authenticated user
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	roles := rolesFromContext(c)
	if roles == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil, middleware.ExtractMeta(c))
}
