package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/noah-isme/thesis-registry-api/internal/models"
)

var userFieldColumns = map[models.UserField]string{
	models.UserFieldUsername:      "username",
	models.UserFieldFirstNames:    "first_names",
	models.UserFieldLastName:      "last_name",
	models.UserFieldEmail:         "email",
	models.UserFieldStudentNumber: "student_number",
}

var sortColumns = map[models.ThesisSortField]string{
	models.SortByTargetDate: "t.target_date",
	models.SortByStartDate:  "t.start_date",
	models.SortByTopic:      "t.topic",
	models.SortByStatus:     "t.status",
	models.SortByCreatedAt:  "t.created_at",
	models.SortByUpdatedAt:  "t.updated_at",
}

// conditionCompiler turns a models.Condition tree into a WHERE fragment over
// the theses table aliased as t. Arguments are bound as $n placeholders.
type conditionCompiler struct {
	args      []interface{}
	userAlias string
}

func (c *conditionCompiler) bind(value interface{}) string {
	c.args = append(c.args, value)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *conditionCompiler) compile(cond models.Condition) (string, error) {
	switch cond.Kind {
	case models.ConditionAll, "":
		return c.join(cond.Children, " AND ", "TRUE")
	case models.ConditionAny:
		return c.join(cond.Children, " OR ", "FALSE")
	case models.ConditionNone:
		return "FALSE", nil
	case models.ConditionSupervisor:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM supervisions vs WHERE vs.thesis_id = t.id AND vs.user_id = %s)", c.bind(cond.UserID)), nil
	case models.ConditionApprover:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM approvers va WHERE va.thesis_id = t.id AND va.user_id = %s)", c.bind(cond.UserID)), nil
	case models.ConditionProgramIn:
		if len(cond.IDs) == 0 {
			return "FALSE", nil
		}
		return fmt.Sprintf("t.program_id = ANY(%s)", c.bind(pq.Array(cond.IDs))), nil
	case models.ConditionSupervisorDepartment:
		if len(cond.IDs) == 0 {
			return "FALSE", nil
		}
		return fmt.Sprintf(`EXISTS (SELECT 1 FROM supervisions ds JOIN users du ON du.id = ds.user_id
	WHERE ds.thesis_id = t.id AND du.department_id = ANY(%s))`, c.bind(pq.Array(cond.IDs))), nil
	case models.ConditionStatusIn:
		if len(cond.Statuses) == 0 {
			return "FALSE", nil
		}
		statuses := make([]string, len(cond.Statuses))
		for i, s := range cond.Statuses {
			statuses[i] = string(s)
		}
		return fmt.Sprintf("t.status = ANY(%s)", c.bind(pq.Array(statuses))), nil
	case models.ConditionTopicContains:
		return fmt.Sprintf("t.topic ILIKE %s", c.bind(containsPattern(cond.Text))), nil
	case models.ConditionProgramNameContains:
		if !models.IsSupportedLanguage(cond.Language) {
			return "", fmt.Errorf("unsupported language %q", cond.Language)
		}
		lang := c.bind(cond.Language)
		return fmt.Sprintf("EXISTS (SELECT 1 FROM programs vp WHERE vp.id = t.program_id AND vp.name->>%s ILIKE %s)",
			lang, c.bind(containsPattern(cond.Text))), nil
	case models.ConditionAuthor:
		if c.userAlias != "" {
			return "", fmt.Errorf("nested author condition")
		}
		c.userAlias = "au"
		inner, err := c.join(cond.Children, " AND ", "TRUE")
		c.userAlias = ""
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("EXISTS (SELECT 1 FROM authors aa JOIN users au ON au.id = aa.user_id WHERE aa.thesis_id = t.id AND %s)", inner), nil
	case models.ConditionUserFieldPrefix:
		if c.userAlias == "" {
			return "", fmt.Errorf("user field condition outside author scope")
		}
		column, ok := userFieldColumns[cond.Field]
		if !ok {
			return "", fmt.Errorf("unknown user field %q", cond.Field)
		}
		return fmt.Sprintf("%s.%s ILIKE %s", c.userAlias, column, c.bind(prefixPattern(cond.Text))), nil
	default:
		return "", fmt.Errorf("unknown condition kind %q", cond.Kind)
	}
}

func (c *conditionCompiler) join(children []models.Condition, op, empty string) (string, error) {
	if len(children) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(children))
	for _, child := range children {
		part, err := c.compile(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, op) + ")", nil
}

// orderBy renders the ORDER BY clause, binding the approver id when the
// default ordering applies.
func (c *conditionCompiler) orderBy(query models.ThesisQuery) (string, error) {
	clauses := make([]string, 0, len(query.Sort)+2)
	if len(query.Sort) == 0 {
		if query.ApproverFirstUserID != "" {
			clauses = append(clauses, fmt.Sprintf("EXISTS (SELECT 1 FROM approvers oa WHERE oa.thesis_id = t.id AND oa.user_id = %s) DESC",
				c.bind(query.ApproverFirstUserID)))
		}
		clauses = append(clauses, "t.target_date ASC")
	}
	for _, s := range query.Sort {
		column, ok := sortColumns[s.Field]
		if !ok {
			return "", fmt.Errorf("unknown sort field %q", s.Field)
		}
		direction := "ASC"
		if s.Descending {
			direction = "DESC"
		}
		clauses = append(clauses, column+" "+direction)
	}
	clauses = append(clauses, "t.id ASC")
	return " ORDER BY " + strings.Join(clauses, ", "), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

func prefixPattern(text string) string {
	return likeEscaper.Replace(text) + "%"
}
