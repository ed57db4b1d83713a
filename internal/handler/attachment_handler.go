package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
	"github.com/noah-isme/thesis-registry-api/pkg/response"
)

type attachmentService interface {
	Link(ctx context.Context, roles *models.RoleContext, thesisID string, label models.AttachmentLabel) (*dto.AttachmentLinkResponse, error)
	Open(ctx context.Context, token string) (*os.File, *models.Attachment, error)
}

// AttachmentHandler issues and serves signed attachment downloads.
type AttachmentHandler struct {
	attachments attachmentService
}

// NewAttachmentHandler constructs the handler.
func NewAttachmentHandler(attachments attachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Link godoc
// @Summary Signed download link for a thesis attachment
// @Tags Attachments
// @Produce json
// @Param id path string true "Thesis ID"
// @Param label path string true "researchPlan or waysOfWorking"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /theses/{id}/attachments/{label} [get]
func (h *AttachmentHandler) Link(c *gin.Context) {
	link, err := h.attachments.Link(c.Request.Context(), rolesFromContext(c), c.Param("id"), models.AttachmentLabel(c.Param("label")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download an attachment with a signed token
// @Tags Attachments
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /attachments/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	file, attachment, err := h.attachments.Open(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attachment"))
		return
	}
	if attachment.MimeType != "" {
		c.Header("Content-Type", attachment.MimeType)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.OriginalName))
	http.ServeContent(c.Writer, c.Request, attachment.OriginalName, info.ModTime(), file)
}
