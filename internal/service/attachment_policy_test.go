package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
)

func TestDecideAttachment(t *testing.T) {
	existing := &models.Attachment{ID: "a1", Label: models.AttachmentResearchPlan}
	file := &dto.AttachmentUpload{OriginalName: "plan.pdf"}
	descriptor := &dto.AttachmentDescriptor{ID: "a1"}

	cases := []struct {
		name       string
		existing   *models.Attachment
		file       *dto.AttachmentUpload
		descriptor *dto.AttachmentDescriptor
		want       AttachmentAction
	}{
		{"upload replaces stored", existing, file, nil, AttachmentReplace},
		{"upload wins over descriptor", existing, file, descriptor, AttachmentReplace},
		{"upload into empty slot", nil, file, nil, AttachmentCreate},
		{"descriptor keeps stored", existing, nil, descriptor, AttachmentKeep},
		{"omitted deletes stored", existing, nil, nil, AttachmentDelete},
		{"empty slot stays empty", nil, nil, nil, AttachmentKeep},
		{"stale descriptor on empty slot", nil, nil, descriptor, AttachmentKeep},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecideAttachment(tc.existing, tc.file, tc.descriptor))
		})
	}
}
