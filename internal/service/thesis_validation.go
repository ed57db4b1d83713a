package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
)

// AttachmentRules limits uploaded files.
type AttachmentRules struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

func registerThesisValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("thesis_status", func(fl validator.FieldLevel) bool {
		return models.ThesisStatus(fl.Field().String()).Valid()
	})
}

// validateThesisPayload checks struct tags and the relation invariants.
// External people are normalized in place first. Exactly one grader ends
// up primary: when none is flagged the first grader is promoted.
func validateThesisPayload(v *validator.Validate, p *dto.ThesisPayload) error {
	normalizeExternalPeople(p)
	fields := map[string]string{}
	if err := v.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
		}
		for _, fe := range verrs {
			ns := fe.Namespace()
			if idx := strings.Index(ns, "."); idx >= 0 {
				ns = ns[idx+1:]
			}
			fields[ns] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}

	if p.StartDate != nil && p.TargetDate != nil && p.TargetDate.Before(p.StartDate.Time) {
		fields["targetDate"] = "must not precede start date"
	}
	if p.EthesisDate != nil {
		switch p.Status {
		case models.ThesisStatusEthesis, models.ThesisStatusEthesisSent, models.ThesisStatusCompleted:
		default:
			fields["ethesisDate"] = "only allowed for e-thesis or completed theses"
		}
	}

	validateSupervisions(p.Supervisions, fields)
	validateGraders(p.Graders, fields)

	if len(p.Authors) == 0 {
		fields["authors"] = "at least one author is required"
	} else if dup := firstDuplicate(authorIDs(p.Authors)); dup != "" {
		fields["authors"] = "duplicate author " + dup
	}
	if dup := firstDuplicate(authorIDs(p.Approvers)); dup != "" {
		fields["approvers"] = "duplicate approver " + dup
	}

	if len(fields) > 0 {
		return appErrors.WithFields(appErrors.ErrValidation, fields)
	}
	return nil
}

func validateSupervisions(list []dto.SupervisionPayload, fields map[string]string) {
	if len(list) == 0 {
		return
	}
	keys := make([]string, 0, len(list))
	sum, primaries, internal := 0, 0, 0
	for i, s := range list {
		key, msg := personKey(s.UserID, s.IsExternal, s.ExternalUser)
		if msg != "" {
			fields[fmt.Sprintf("supervisions[%d]", i)] = msg
			continue
		}
		keys = append(keys, key)
		sum += s.Percentage
		if s.IsPrimarySupervisor {
			primaries++
		}
		if !s.IsExternal {
			internal++
		}
	}
	if dup := firstDuplicate(keys); dup != "" {
		fields["supervisions"] = "duplicate supervisor " + dup
		return
	}
	if sum != 100 {
		fields["supervisions"] = fmt.Sprintf("percentages must sum to 100, got %d", sum)
		return
	}
	if internal > 0 && primaries != 1 {
		fields["supervisions"] = "exactly one primary supervisor is required"
	} else if primaries > 1 {
		fields["supervisions"] = "at most one primary supervisor is allowed"
	}
}

func validateGraders(list []dto.GraderPayload, fields map[string]string) {
	if len(list) == 0 {
		return
	}
	keys := make([]string, 0, len(list))
	primaries := 0
	for i, g := range list {
		key, msg := personKey(g.UserID, g.IsExternal, g.ExternalUser)
		if msg != "" {
			fields[fmt.Sprintf("graders[%d]", i)] = msg
			continue
		}
		keys = append(keys, key)
		if g.IsPrimaryGrader {
			primaries++
		}
	}
	if dup := firstDuplicate(keys); dup != "" {
		fields["graders"] = "duplicate grader " + dup
		return
	}
	switch {
	case primaries > 1:
		fields["graders"] = "at most one primary grader is allowed"
	case primaries == 0:
		list[0].IsPrimaryGrader = true
	}
}

func normalizeExternalPeople(p *dto.ThesisPayload) {
	for i := range p.Supervisions {
		if ext := p.Supervisions[i].ExternalUser; ext != nil {
			n := normalizePerson(*ext)
			p.Supervisions[i].ExternalUser = &n
		}
	}
	for i := range p.Graders {
		if ext := p.Graders[i].ExternalUser; ext != nil {
			n := normalizePerson(*ext)
			p.Graders[i].ExternalUser = &n
		}
	}
}

func normalizePerson(p models.ExternalPerson) models.ExternalPerson {
	return models.ExternalPerson{
		FirstNames:  strings.TrimSpace(p.FirstNames),
		LastName:    strings.TrimSpace(p.LastName),
		Email:       strings.ToLower(strings.TrimSpace(p.Email)),
		Affiliation: strings.TrimSpace(p.Affiliation),
	}
}

// personKey identifies internal people by user id and external people by email.
func personKey(userID string, external bool, person *models.ExternalPerson) (string, string) {
	if external {
		if person == nil {
			return "", "external person details are required"
		}
		if person.FirstNames == "" || person.LastName == "" || person.Email == "" {
			return "", "external person requires first names, last name and email"
		}
		return "email:" + person.Email, ""
	}
	if strings.TrimSpace(userID) == "" {
		return "", "userId is required"
	}
	return "id:" + userID, ""
}

func authorIDs(refs []dto.PersonRef) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.UserID
	}
	return ids
}

func firstDuplicate(keys []string) string {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			return strings.TrimPrefix(strings.TrimPrefix(k, "id:"), "email:")
		}
		seen[k] = struct{}{}
	}
	return ""
}

func validateUploads(rules AttachmentRules, files map[models.AttachmentLabel]*dto.AttachmentUpload) error {
	for label, file := range files {
		if file == nil {
			continue
		}
		if !label.Valid() {
			return appErrors.WithFields(appErrors.ErrValidation, map[string]string{string(label): "unknown attachment slot"})
		}
		if rules.MaxFileSizeBytes > 0 && file.Size > rules.MaxFileSizeBytes {
			return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("%s exceeds %d bytes", label, rules.MaxFileSizeBytes))
		}
		if len(rules.AllowedMIMEs) > 0 && !containsString(rules.AllowedMIMEs, file.MimeType) {
			return appErrors.WithFields(appErrors.ErrValidation, map[string]string{string(label): "unsupported file type " + file.MimeType})
		}
	}
	return nil
}
