package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Supported translation keys for localized names.
const (
	LanguageFinnish = "fi"
	LanguageEnglish = "en"
	LanguageSwedish = "sv"
)

// SupportedLanguages lists the keys accepted for localized name lookups.
var SupportedLanguages = []string{LanguageFinnish, LanguageEnglish, LanguageSwedish}

// IsSupportedLanguage reports whether lang is a known translation key.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// LocalizedName maps a language key to a display name. Stored as JSONB.
type LocalizedName map[string]string

// Value implements driver.Valuer.
func (n LocalizedName) Value() (driver.Value, error) {
	if n == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(n)
}

// Scan implements sql.Scanner.
func (n *LocalizedName) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*n = LocalizedName{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan localized name: unsupported type %T", src)
	}
	out := LocalizedName{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan localized name: %w", err)
	}
	*n = out
	return nil
}

// Program is a study program theses belong to.
type Program struct {
	ID           string        `db:"id" json:"id"`
	DepartmentID string        `db:"department_id" json:"departmentId"`
	Name         LocalizedName `db:"name" json:"name"`
}

// StudyTrack is a specialisation inside a program.
type StudyTrack struct {
	ID        string        `db:"id" json:"id"`
	ProgramID string        `db:"program_id" json:"programId"`
	Name      LocalizedName `db:"name" json:"name"`
}

// ProgramManagement grants program-scoped management and, optionally, approval rights.
type ProgramManagement struct {
	ID               string `db:"id" json:"id"`
	ProgramID        string `db:"program_id" json:"programId"`
	UserID           string `db:"user_id" json:"userId"`
	IsThesisApprover bool   `db:"is_thesis_approver" json:"isThesisApprover"`
}
