package models

// ConditionKind discriminates the nodes of a thesis filter expression.
type ConditionKind string

const (
	// ConditionAll is satisfied when every child is satisfied. An empty All matches everything.
	ConditionAll ConditionKind = "ALL"
	// ConditionAny is satisfied when at least one child is. An empty Any matches nothing.
	ConditionAny ConditionKind = "ANY"
	// ConditionNone never matches.
	ConditionNone                 ConditionKind = "NONE"
	ConditionSupervisor           ConditionKind = "SUPERVISOR"
	ConditionApprover             ConditionKind = "APPROVER"
	ConditionProgramIn            ConditionKind = "PROGRAM_IN"
	ConditionSupervisorDepartment ConditionKind = "SUPERVISOR_DEPARTMENT"
	ConditionStatusIn             ConditionKind = "STATUS_IN"
	ConditionTopicContains        ConditionKind = "TOPIC_CONTAINS"
	ConditionProgramNameContains  ConditionKind = "PROGRAM_NAME_CONTAINS"
	ConditionAuthor               ConditionKind = "AUTHOR"
	ConditionUserFieldPrefix      ConditionKind = "USER_FIELD_PREFIX"
)

// UserField names a user column author-name fragments are matched against.
type UserField string

const (
	UserFieldUsername      UserField = "username"
	UserFieldFirstNames    UserField = "first_names"
	UserFieldLastName      UserField = "last_name"
	UserFieldEmail         UserField = "email"
	UserFieldStudentNumber UserField = "student_number"
)

// Condition is a declarative, persistence-independent filter over theses.
// Author conditions hold a sub-tree of user-field conditions that must be
// satisfied by a single author of the thesis.
type Condition struct {
	Kind     ConditionKind  `json:"kind"`
	Children []Condition    `json:"children,omitempty"`
	UserID   string         `json:"userId,omitempty"`
	IDs      []string       `json:"ids,omitempty"`
	Statuses []ThesisStatus `json:"statuses,omitempty"`
	Field    UserField      `json:"field,omitempty"`
	Text     string         `json:"text,omitempty"`
	Language string         `json:"language,omitempty"`
}

// All combines conditions with AND, flattening nested All nodes.
func All(conds ...Condition) Condition {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c.Kind == ConditionAll {
			out = append(out, c.Children...)
			continue
		}
		out = append(out, c)
	}
	return Condition{Kind: ConditionAll, Children: out}
}

// Any combines conditions with OR.
func Any(conds ...Condition) Condition {
	return Condition{Kind: ConditionAny, Children: conds}
}

// Nothing returns a condition that matches no thesis.
func Nothing() Condition { return Condition{Kind: ConditionNone} }

// SupervisedBy matches theses the user supervises.
func SupervisedBy(userID string) Condition {
	return Condition{Kind: ConditionSupervisor, UserID: userID}
}

// ApprovedBy matches theses listing the user as an approver.
func ApprovedBy(userID string) Condition {
	return Condition{Kind: ConditionApprover, UserID: userID}
}

// ProgramIn matches theses belonging to any of the programs.
func ProgramIn(ids ...string) Condition {
	return Condition{Kind: ConditionProgramIn, IDs: ids}
}

// SupervisorInDepartment matches theses with a supervisor whose home department is departmentID.
func SupervisorInDepartment(departmentID string) Condition {
	return Condition{Kind: ConditionSupervisorDepartment, IDs: []string{departmentID}}
}

// StatusIn matches theses in any of the statuses.
func StatusIn(statuses ...ThesisStatus) Condition {
	return Condition{Kind: ConditionStatusIn, Statuses: statuses}
}

// TopicContains is a case-insensitive substring match on the topic.
func TopicContains(text string) Condition {
	return Condition{Kind: ConditionTopicContains, Text: text}
}

// ProgramNameContains is a case-insensitive substring match on the program name in language.
func ProgramNameContains(text, language string) Condition {
	return Condition{Kind: ConditionProgramNameContains, Text: text, Language: language}
}

// AuthorMatches matches theses with at least one author satisfying userCond.
func AuthorMatches(userCond Condition) Condition {
	return Condition{Kind: ConditionAuthor, Children: []Condition{userCond}}
}

// UserFieldPrefix is a case-insensitive prefix match on a user column.
func UserFieldPrefix(field UserField, text string) Condition {
	return Condition{Kind: ConditionUserFieldPrefix, Field: field, Text: text}
}

// ThesisSortField names a column callers may order listings by.
type ThesisSortField string

const (
	SortByTargetDate ThesisSortField = "targetDate"
	SortByStartDate  ThesisSortField = "startDate"
	SortByTopic      ThesisSortField = "topic"
	SortByStatus     ThesisSortField = "status"
	SortByCreatedAt  ThesisSortField = "createdAt"
	SortByUpdatedAt  ThesisSortField = "updatedAt"
)

// Valid reports whether the sort field is whitelisted.
func (f ThesisSortField) Valid() bool {
	switch f {
	case SortByTargetDate, SortByStartDate, SortByTopic, SortByStatus, SortByCreatedAt, SortByUpdatedAt:
		return true
	}
	return false
}

// SortClause orders a listing by one field.
type SortClause struct {
	Field      ThesisSortField
	Descending bool
}

// ThesisQuery is a compiled visibility predicate plus ordering and paging.
// When Sort is empty, theses approved by ApproverFirstUserID come first and
// the rest follow by ascending target date.
type ThesisQuery struct {
	Where               Condition
	Sort                []SortClause
	ApproverFirstUserID string
	Limit               int
	Offset              int
}
