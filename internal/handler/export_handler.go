package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	"github.com/noah-isme/thesis-registry-api/internal/service"
	"github.com/noah-isme/thesis-registry-api/pkg/response"
)

type thesisExporter interface {
	Export(ctx context.Context, roles *models.RoleContext, query dto.ThesisListQuery, format string) (*service.ExportFile, error)
}

// ExportHandler streams thesis listings as files.
type ExportHandler struct {
	exporter thesisExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(exporter thesisExporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// Export godoc
// @Summary Export visible theses
// @Tags Theses
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /theses/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), rolesFromContext(c), query, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
