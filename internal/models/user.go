package models

import "time"

// User represents a person known to the registry; external supervisors and
// graders are users synthesized from inline contact data.
type User struct {
	ID            string    `db:"id" json:"id"`
	Username      *string   `db:"username" json:"username,omitempty"`
	Email         string    `db:"email" json:"email"`
	FirstNames    string    `db:"first_names" json:"firstNames"`
	LastName      string    `db:"last_name" json:"lastName"`
	StudentNumber *string   `db:"student_number" json:"studentNumber,omitempty"`
	Affiliation   *string   `db:"affiliation" json:"affiliation,omitempty"`
	DepartmentID  *string   `db:"department_id" json:"departmentId,omitempty"`
	IsAdmin       bool      `db:"is_admin" json:"isAdmin"`
	IsExternal    bool      `db:"is_external" json:"isExternal"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
	UpdatedAt     time.Time `db:"updated_at" json:"-"`
}

// ExternalPerson carries the contact data for a supervisor or grader without an account.
type ExternalPerson struct {
	FirstNames  string `json:"firstNames" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Affiliation string `json:"affiliation"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
