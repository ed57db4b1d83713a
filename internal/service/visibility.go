package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
)

// DefaultLanguage is used for program-name matching when no language is given.
const DefaultLanguage = models.LanguageFinnish

// ThesisScope narrows a listing beyond the actor's ownership rules.
type ThesisScope struct {
	ProgramID    string
	DepartmentID string
	Statuses     []models.ThesisStatus
	Topic        string
	Author       string
	ProgramName  string
	Language     string
	OnlyMine     bool
}

// OwnershipCondition returns the theses an actor may address at all.
//
// Global and e-thesis admins are unrestricted. Everyone else sees theses
// they supervise, theses listing them as approver, and theses of programs
// they manage. A department admin listing their own department is
// unrestricted within that department.
func OwnershipCondition(roles *models.RoleContext, scope ThesisScope) models.Condition {
	if roles == nil {
		return models.Nothing()
	}
	if scope.OnlyMine {
		return models.SupervisedBy(roles.UserID)
	}
	if roles.Unrestricted() {
		return models.All()
	}
	if scope.DepartmentID != "" && roles.AdministersDepartment(scope.DepartmentID) {
		return models.All()
	}
	ownership := []models.Condition{
		models.SupervisedBy(roles.UserID),
		models.ApprovedBy(roles.UserID),
	}
	if len(roles.ManagedProgramIDs) > 0 {
		ownership = append(ownership, models.ProgramIn(roles.ManagedProgramIDs...))
	}
	return models.Any(ownership...)
}

// BuildVisibility combines the ownership rules with the explicit scope into
// one condition. Malformed scope fields are rejected.
func BuildVisibility(roles *models.RoleContext, scope ThesisScope) (models.Condition, error) {
	conds := []models.Condition{OwnershipCondition(roles, scope)}

	if scope.ProgramID != "" {
		if _, err := uuid.Parse(scope.ProgramID); err != nil {
			return models.Condition{}, appErrors.WithFields(appErrors.ErrInvalidInput, map[string]string{"programId": "must be a valid identifier"})
		}
		conds = append(conds, models.ProgramIn(scope.ProgramID))
	}
	if scope.DepartmentID != "" {
		if _, err := uuid.Parse(scope.DepartmentID); err != nil {
			return models.Condition{}, appErrors.WithFields(appErrors.ErrInvalidInput, map[string]string{"departmentId": "must be a valid identifier"})
		}
		conds = append(conds, models.SupervisorInDepartment(scope.DepartmentID))
	}
	if len(scope.Statuses) > 0 {
		for _, status := range scope.Statuses {
			if !status.Valid() {
				return models.Condition{}, appErrors.WithFields(appErrors.ErrInvalidInput, map[string]string{"status": "unknown status " + string(status)})
			}
		}
		conds = append(conds, models.StatusIn(scope.Statuses...))
	}

	language := strings.TrimSpace(scope.Language)
	if language == "" {
		language = DefaultLanguage
	}
	if !models.IsSupportedLanguage(language) {
		return models.Condition{}, appErrors.WithFields(appErrors.ErrInvalidInput, map[string]string{"language": "unsupported language " + language})
	}

	if topic := strings.TrimSpace(scope.Topic); topic != "" {
		conds = append(conds, models.TopicContains(topic))
	}
	if name := strings.TrimSpace(scope.ProgramName); name != "" {
		conds = append(conds, models.ProgramNameContains(name, language))
	}
	if author := authorCondition(scope.Author); author != nil {
		conds = append(conds, *author)
	}
	return models.All(conds...), nil
}

// authorCondition interprets a name fragment by its word count. One word
// matches a prefix of any identifying user field. Two words match
// "first last", a first-name phrase, or "last first". Longer fragments try
// every split into a first-name phrase and a last-name prefix, in both orders.
func authorCondition(fragment string) *models.Condition {
	words := strings.Fields(fragment)
	var user models.Condition
	switch len(words) {
	case 0:
		return nil
	case 1:
		w := words[0]
		user = models.Any(
			models.UserFieldPrefix(models.UserFieldUsername, w),
			models.UserFieldPrefix(models.UserFieldFirstNames, w),
			models.UserFieldPrefix(models.UserFieldLastName, w),
			models.UserFieldPrefix(models.UserFieldEmail, w),
			models.UserFieldPrefix(models.UserFieldStudentNumber, w),
		)
	case 2:
		user = models.Any(
			firstLast(words[0], words[1]),
			models.UserFieldPrefix(models.UserFieldFirstNames, words[0]+" "+words[1]),
			firstLast(words[1], words[0]),
		)
	default:
		options := []models.Condition{models.UserFieldPrefix(models.UserFieldFirstNames, strings.Join(words, " "))}
		for split := 1; split < len(words); split++ {
			head := strings.Join(words[:split], " ")
			tail := strings.Join(words[split:], " ")
			options = append(options, firstLast(head, tail), firstLast(tail, head))
		}
		user = models.Any(options...)
	}
	cond := models.AuthorMatches(user)
	return &cond
}

func firstLast(first, last string) models.Condition {
	return models.All(
		models.UserFieldPrefix(models.UserFieldFirstNames, first),
		models.UserFieldPrefix(models.UserFieldLastName, last),
	)
}

// ConditionMatches evaluates a condition against a loaded snapshot. It is
// the in-memory counterpart of the SQL compilation and is used for
// single-thesis checks.
func ConditionMatches(cond models.Condition, s *models.ThesisSnapshot) bool {
	if s == nil {
		return false
	}
	switch cond.Kind {
	case models.ConditionAll, "":
		for _, child := range cond.Children {
			if !ConditionMatches(child, s) {
				return false
			}
		}
		return true
	case models.ConditionAny:
		for _, child := range cond.Children {
			if ConditionMatches(child, s) {
				return true
			}
		}
		return false
	case models.ConditionNone:
		return false
	case models.ConditionSupervisor:
		return cond.UserID != "" && s.HasSupervisor(cond.UserID)
	case models.ConditionApprover:
		return cond.UserID != "" && s.HasApprover(cond.UserID)
	case models.ConditionProgramIn:
		return containsString(cond.IDs, s.ProgramID)
	case models.ConditionSupervisorDepartment:
		for _, sup := range s.Supervisions {
			if sup.User != nil && sup.User.DepartmentID != nil && containsString(cond.IDs, *sup.User.DepartmentID) {
				return true
			}
		}
		return false
	case models.ConditionStatusIn:
		for _, status := range cond.Statuses {
			if status == s.Status {
				return true
			}
		}
		return false
	case models.ConditionTopicContains:
		return containsFold(s.Topic, cond.Text)
	case models.ConditionProgramNameContains:
		return s.Program != nil && containsFold(s.Program.Name[cond.Language], cond.Text)
	case models.ConditionAuthor:
		for _, author := range s.Authors {
			if author.User != nil && userMatches(models.All(cond.Children...), author.User) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func userMatches(cond models.Condition, u *models.User) bool {
	switch cond.Kind {
	case models.ConditionAll, "":
		for _, child := range cond.Children {
			if !userMatches(child, u) {
				return false
			}
		}
		return true
	case models.ConditionAny:
		for _, child := range cond.Children {
			if userMatches(child, u) {
				return true
			}
		}
		return false
	case models.ConditionUserFieldPrefix:
		var value string
		switch cond.Field {
		case models.UserFieldUsername:
			value = derefString(u.Username)
		case models.UserFieldFirstNames:
			value = u.FirstNames
		case models.UserFieldLastName:
			value = u.LastName
		case models.UserFieldEmail:
			value = u.Email
		case models.UserFieldStudentNumber:
			value = derefString(u.StudentNumber)
		}
		return strings.HasPrefix(strings.ToLower(value), strings.ToLower(cond.Text))
	default:
		return false
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
