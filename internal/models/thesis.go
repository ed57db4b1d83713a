package models

import "time"

// ThesisStatus enumerates the workflow stages of a thesis.
type ThesisStatus string

const (
	ThesisStatusPlanning    ThesisStatus = "PLANNING"
	ThesisStatusStarted     ThesisStatus = "STARTED"
	ThesisStatusInProgress  ThesisStatus = "IN_PROGRESS"
	ThesisStatusCompleted   ThesisStatus = "COMPLETED"
	ThesisStatusCancelled   ThesisStatus = "CANCELLED"
	ThesisStatusEthesis     ThesisStatus = "ETHESIS"
	ThesisStatusEthesisSent ThesisStatus = "ETHESIS_SENT"
)

// ThesisStatuses lists every known status in workflow order.
var ThesisStatuses = []ThesisStatus{
	ThesisStatusPlanning,
	ThesisStatusStarted,
	ThesisStatusInProgress,
	ThesisStatusCompleted,
	ThesisStatusCancelled,
	ThesisStatusEthesis,
	ThesisStatusEthesisSent,
}

// Valid reports whether the status is one of the known workflow stages.
func (s ThesisStatus) Valid() bool {
	for _, known := range ThesisStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Thesis is the persisted thesis row.
type Thesis struct {
	ID           string       `db:"id" json:"id"`
	ProgramID    string       `db:"program_id" json:"programId"`
	StudyTrackID string       `db:"study_track_id" json:"studyTrackId"`
	Topic        string       `db:"topic" json:"topic"`
	Status       ThesisStatus `db:"status" json:"status"`
	StartDate    time.Time    `db:"start_date" json:"startDate"`
	TargetDate   time.Time    `db:"target_date" json:"targetDate"`
	EthesisDate  *time.Time   `db:"ethesis_date" json:"ethesisDate,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// Supervision links a supervisor to a thesis with a workload share.
type Supervision struct {
	ID                  string `db:"id" json:"id,omitempty"`
	ThesisID            string `db:"thesis_id" json:"thesisId,omitempty"`
	UserID              string `db:"user_id" json:"userId"`
	Percentage          int    `db:"percentage" json:"percentage"`
	IsPrimarySupervisor bool   `db:"is_primary_supervisor" json:"isPrimarySupervisor"`
	IsExternal          bool   `db:"is_external" json:"isExternal"`
	User                *User  `db:"-" json:"user,omitempty"`
}

// Grader links an evaluator to a thesis.
type Grader struct {
	ID              string `db:"id" json:"id,omitempty"`
	ThesisID        string `db:"thesis_id" json:"thesisId,omitempty"`
	UserID          string `db:"user_id" json:"userId"`
	IsPrimaryGrader bool   `db:"is_primary_grader" json:"isPrimaryGrader"`
	IsExternal      bool   `db:"is_external" json:"isExternal"`
	User            *User  `db:"-" json:"user,omitempty"`
}

// Author links a student to a thesis.
type Author struct {
	ThesisID string `db:"thesis_id" json:"thesisId,omitempty"`
	UserID   string `db:"user_id" json:"userId"`
	User     *User  `db:"-" json:"user,omitempty"`
}

// Approver grants a user approval rights on one specific thesis.
type Approver struct {
	ThesisID string `db:"thesis_id" json:"thesisId,omitempty"`
	UserID   string `db:"user_id" json:"userId"`
	User     *User  `db:"-" json:"user,omitempty"`
}

// ThesisSnapshot is the full in-memory view of a thesis and its relation lists.
type ThesisSnapshot struct {
	Thesis
	Program      *Program      `json:"program,omitempty"`
	Supervisions []Supervision `json:"supervisions"`
	Graders      []Grader      `json:"graders"`
	Authors      []Author      `json:"authors"`
	Approvers    []Approver    `json:"approvers"`
	Attachments  []Attachment  `json:"attachments"`
}

// Attachment returns the attachment occupying the labeled slot, if any.
func (s *ThesisSnapshot) Attachment(label AttachmentLabel) *Attachment {
	if s == nil {
		return nil
	}
	for i := range s.Attachments {
		if s.Attachments[i].Label == label {
			return &s.Attachments[i]
		}
	}
	return nil
}

// HasSupervisor reports whether the user supervises the thesis.
func (s *ThesisSnapshot) HasSupervisor(userID string) bool {
	for _, sup := range s.Supervisions {
		if sup.UserID == userID {
			return true
		}
	}
	return false
}

// HasApprover reports whether the user is registered as an approver of the thesis.
func (s *ThesisSnapshot) HasApprover(userID string) bool {
	for _, a := range s.Approvers {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
