package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-registry-api/internal/middleware"
)

// Handlers groups the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Auth        *AuthHandler
	Theses      *ThesisHandler
	Export      *ExportHandler
	Attachments *AttachmentHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts the API. secured runs before every route that needs
// an authenticated actor and must leave a RoleContext on the request. audit
// is applied to mutating routes and may be nil.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, secured []gin.HandlerFunc, audit func(action string) gin.HandlerFunc) {
	if audit == nil {
		audit = func(string) gin.HandlerFunc { return func(c *gin.Context) { c.Next() } }
	}

	api.GET("/attachments/download", h.Attachments.Download)

	protected := api.Group("", secured...)
	protected.GET("/auth/me", h.Auth.Me)

	protected.GET("/theses", h.Theses.List)
	protected.GET("/theses/export", h.Export.Export)
	protected.POST("/theses", audit("create"), h.Theses.Create)
	protected.GET("/theses/:id", h.Theses.Get)
	protected.PUT("/theses/:id", audit("update"), h.Theses.Update)
	protected.DELETE("/theses/:id", audit("delete"), h.Theses.Delete)
	protected.GET("/theses/:id/events", h.Theses.Events)
	protected.GET("/theses/:id/attachments/:label", h.Attachments.Link)
	protected.GET("/departments/:id/theses", h.Theses.ListByDepartment)

	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.POST("/theses/complete", audit("complete"), h.Theses.Complete)
	if h.Metrics != nil {
		admin.GET("/metrics", h.Metrics.Summary)
	}
}
