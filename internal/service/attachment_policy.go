package service

import (
	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
)

// AttachmentAction is the outcome of reconciling one attachment slot.
type AttachmentAction string

const (
	AttachmentKeep    AttachmentAction = "KEEP"
	AttachmentCreate  AttachmentAction = "CREATE"
	AttachmentReplace AttachmentAction = "REPLACE"
	AttachmentDelete  AttachmentAction = "DELETE"
)

// DecideAttachment reconciles a slot from the stored record, an uploaded
// file and re-submitted metadata.
func DecideAttachment(existing *models.Attachment, file *dto.AttachmentUpload, descriptor *dto.AttachmentDescriptor) AttachmentAction {
	switch {
	case file != nil && existing != nil:
		return AttachmentReplace
	case file != nil:
		return AttachmentCreate
	case descriptor != nil:
		return AttachmentKeep
	case existing != nil:
		return AttachmentDelete
	default:
		return AttachmentKeep
	}
}
