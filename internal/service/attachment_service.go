package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
)

type thesisReader interface {
	Get(ctx context.Context, roles *models.RoleContext, id string) (*models.ThesisSnapshot, error)
}

type attachmentLookup interface {
	FindAttachment(ctx context.Context, id string) (*models.Attachment, error)
}

type objectOpener interface {
	Open(key string) (*os.File, error)
}

type urlSigner interface {
	Generate(attachmentID, objectKey string) (string, time.Time, error)
	Parse(token string) (attachmentID, objectKey string, expiresAt time.Time, err error)
}

// AttachmentService issues signed download links for attachments of visible theses.
type AttachmentService struct {
	theses      thesisReader
	attachments attachmentLookup
	objects     objectOpener
	signer      urlSigner
	apiPrefix   string
	logger      *zap.Logger
}

// NewAttachmentService constructs the service.
func NewAttachmentService(theses thesisReader, attachments attachmentLookup, objects objectOpener, signer urlSigner, apiPrefix string, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := strings.TrimRight(apiPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &AttachmentService{theses: theses, attachments: attachments, objects: objects, signer: signer, apiPrefix: prefix, logger: logger}
}

// Link returns a short-lived URL for the attachment in the labeled slot.
func (s *AttachmentService) Link(ctx context.Context, roles *models.RoleContext, thesisID string, label models.AttachmentLabel) (*dto.AttachmentLinkResponse, error) {
	if !label.Valid() {
		return nil, appErrors.WithFields(appErrors.ErrInvalidInput, map[string]string{"label": "unknown attachment slot"})
	}
	thesis, err := s.theses.Get(ctx, roles, thesisID)
	if err != nil {
		return nil, err
	}
	attachment := thesis.Attachment(label)
	if attachment == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}
	token, expiresAt, err := s.signer.Generate(attachment.ID, attachment.Filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign attachment link")
	}
	return &dto.AttachmentLinkResponse{
		URL:       fmt.Sprintf("%s/attachments/download?token=%s", s.apiPrefix, url.QueryEscape(token)),
		ExpiresAt: expiresAt,
	}, nil
}

// Open validates a download token and returns the stored file with its metadata.
func (s *AttachmentService) Open(ctx context.Context, token string) (*os.File, *models.Attachment, error) {
	attachmentID, key, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	attachment, err := s.attachments.FindAttachment(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachment")
	}
	if attachment.Filename != key {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}
	file, err := s.objects.Open(key)
	if err != nil {
		s.logger.Warn("attachment object missing", zap.String("attachment_id", attachmentID), zap.Error(err))
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}
	return file, attachment, nil
}
