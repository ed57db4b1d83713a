package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/noah-isme/thesis-registry-api/internal/models"
)

const dateLayout = "2006-01-02"

// Date accepts either a plain calendar date or an RFC3339 timestamp.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(raw []byte) error {
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			d.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", value)
}

// MarshalJSON renders the calendar date.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(dateLayout))
}

// SupervisionPayload is one supervisor entry of a thesis payload.
type SupervisionPayload struct {
	UserID              string                 `json:"userId"`
	Percentage          int                    `json:"percentage" validate:"gte=0,lte=100"`
	IsPrimarySupervisor bool                   `json:"isPrimarySupervisor"`
	IsExternal          bool                   `json:"isExternal"`
	ExternalUser        *models.ExternalPerson `json:"externalUser,omitempty"`
}

// GraderPayload is one grader entry of a thesis payload.
type GraderPayload struct {
	UserID          string                 `json:"userId"`
	IsPrimaryGrader bool                   `json:"isPrimaryGrader"`
	IsExternal      bool                   `json:"isExternal"`
	ExternalUser    *models.ExternalPerson `json:"externalUser,omitempty"`
}

// PersonRef references an existing user.
type PersonRef struct {
	UserID string `json:"userId" validate:"required"`
}

// AttachmentDescriptor is attachment metadata re-submitted by the client to keep a slot.
type AttachmentDescriptor struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
}

// ThesisPayload is the body of create and update requests.
type ThesisPayload struct {
	ProgramID     string                `json:"programId" validate:"required"`
	StudyTrackID  string                `json:"studyTrackId" validate:"required"`
	Topic         string                `json:"topic" validate:"required,max=500"`
	Status        models.ThesisStatus   `json:"status" validate:"required,thesis_status"`
	StartDate     *Date                 `json:"startDate" validate:"required"`
	TargetDate    *Date                 `json:"targetDate" validate:"required"`
	EthesisDate   *Date                 `json:"ethesisDate,omitempty"`
	Supervisions  []SupervisionPayload  `json:"supervisions" validate:"dive"`
	Graders       []GraderPayload       `json:"graders" validate:"dive"`
	Authors       []PersonRef           `json:"authors" validate:"dive"`
	Approvers     []PersonRef           `json:"approvers" validate:"dive"`
	ResearchPlan  *AttachmentDescriptor `json:"researchPlan,omitempty"`
	WaysOfWorking *AttachmentDescriptor `json:"waysOfWorking,omitempty"`
}

// Descriptor returns the re-submitted metadata for a slot.
func (p *ThesisPayload) Descriptor(label models.AttachmentLabel) *AttachmentDescriptor {
	switch label {
	case models.AttachmentResearchPlan:
		return p.ResearchPlan
	case models.AttachmentWaysOfWorking:
		return p.WaysOfWorking
	}
	return nil
}

// AttachmentUpload is an incoming file for one slot. Content is owned by the caller.
type AttachmentUpload struct {
	OriginalName string
	MimeType     string
	Size         int64
	Content      io.Reader
}

// ThesisMutation bundles a payload with the files uploaded alongside it.
type ThesisMutation struct {
	Payload ThesisPayload
	Files   map[models.AttachmentLabel]*AttachmentUpload
}

// File returns the upload for a slot or nil.
func (m *ThesisMutation) File(label models.AttachmentLabel) *AttachmentUpload {
	if m == nil || m.Files == nil {
		return nil
	}
	return m.Files[label]
}

// ThesisListQuery mirrors the supported listing filters.
type ThesisListQuery struct {
	ProgramID    string
	DepartmentID string
	Statuses     []models.ThesisStatus
	Topic        string
	Author       string
	ProgramName  string
	Language     string
	OnlyMine     bool
	Sort         string
	Page         int
	PageSize     int
}

// AttachmentLinkResponse carries a short-lived download URL.
type AttachmentLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CompleteThesesRequest lists theses whose study attainment has been registered.
type CompleteThesesRequest struct {
	ThesisIDs []string `json:"thesisIds" validate:"required,min=1,dive,uuid"`
}

// CompleteThesesResponse reports how many theses changed status.
type CompleteThesesResponse struct {
	Completed int `json:"completed"`
}
