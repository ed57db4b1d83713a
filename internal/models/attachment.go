package models

import "time"

// AttachmentLabel names one of the fixed attachment slots of a thesis.
type AttachmentLabel string

const (
	AttachmentResearchPlan  AttachmentLabel = "researchPlan"
	AttachmentWaysOfWorking AttachmentLabel = "waysOfWorking"
)

// AttachmentLabels lists every slot.
var AttachmentLabels = []AttachmentLabel{AttachmentResearchPlan, AttachmentWaysOfWorking}

// Valid reports whether the label names a known slot.
func (l AttachmentLabel) Valid() bool {
	return l == AttachmentResearchPlan || l == AttachmentWaysOfWorking
}

// Attachment is the metadata row of a stored thesis document.
type Attachment struct {
	ID           string          `db:"id" json:"id"`
	ThesisID     string          `db:"thesis_id" json:"thesisId"`
	Label        AttachmentLabel `db:"label" json:"label"`
	Filename     string          `db:"filename" json:"filename"`
	OriginalName string          `db:"original_name" json:"originalName"`
	MimeType     string          `db:"mimetype" json:"mimetype"`
	SizeBytes    int64           `db:"size_bytes" json:"size"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}
