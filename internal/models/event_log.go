package models

import (
	"encoding/json"
	"time"
)

// EventType enumerates audit entry kinds.
type EventType string

const (
	EventThesisCreated             EventType = "THESIS_CREATED"
	EventThesisDeleted             EventType = "THESIS_DELETED"
	EventThesisStatusChanged       EventType = "THESIS_STATUS_CHANGED"
	EventThesisGradersChanged      EventType = "THESIS_GRADERS_CHANGED"
	EventThesisSupervisionsChanged EventType = "THESIS_SUPERVISIONS_CHANGED"
)

// EventLogEntry is an append-only audit record. ThesisID and UserID carry no
// foreign keys so entries outlive the rows they mention. UserID is nil for
// system-triggered changes.
type EventLogEntry struct {
	ID        string          `db:"id" json:"id"`
	ThesisID  *string         `db:"thesis_id" json:"thesisId"`
	UserID    *string         `db:"user_id" json:"userId"`
	Type      EventType       `db:"type" json:"type"`
	Data      json.RawMessage `db:"data" json:"data"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// StatusChangeData is the payload of THESIS_STATUS_CHANGED.
type StatusChangeData struct {
	From ThesisStatus `json:"from"`
	To   ThesisStatus `json:"to"`
}

// GradersChangeData is the payload of THESIS_GRADERS_CHANGED.
type GradersChangeData struct {
	OriginalGraders []Grader `json:"originalGraders"`
	UpdatedGraders  []Grader `json:"updatedGraders"`
}

// SupervisionsChangeData is the payload of THESIS_SUPERVISIONS_CHANGED.
type SupervisionsChangeData struct {
	OriginalSupervisions []Supervision `json:"originalSupervisions"`
	UpdatedSupervisions  []Supervision `json:"updatedSupervisions"`
}

// ThesisEventData is the payload of THESIS_CREATED and THESIS_DELETED.
type ThesisEventData struct {
	Thesis ThesisSnapshot `json:"thesis"`
}
