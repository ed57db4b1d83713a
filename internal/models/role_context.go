package models

// RoleContext is the set of capabilities of one actor relevant to access
// decisions. It is resolved once per request.
type RoleContext struct {
	UserID             string   `json:"userId"`
	Email              string   `json:"email"`
	IsAdmin            bool     `json:"isAdmin"`
	IsEthesisAdmin     bool     `json:"isEthesisAdmin"`
	ManagedProgramIDs  []string `json:"managedProgramIds"`
	ApproverProgramIDs []string `json:"approverProgramIds"`
	AdminDepartmentIDs []string `json:"adminDepartmentIds"`
}

// ManagesProgram reports whether the actor has a management row for the program.
func (r *RoleContext) ManagesProgram(programID string) bool {
	return r != nil && contains(r.ManagedProgramIDs, programID)
}

// ApprovesProgram reports whether the actor may approve status changes in the program.
func (r *RoleContext) ApprovesProgram(programID string) bool {
	return r != nil && contains(r.ApproverProgramIDs, programID)
}

// AdministersDepartment reports whether the actor is a department admin of departmentID.
func (r *RoleContext) AdministersDepartment(departmentID string) bool {
	return r != nil && contains(r.AdminDepartmentIDs, departmentID)
}

// Unrestricted reports whether no ownership restriction applies to the actor's reads.
func (r *RoleContext) Unrestricted() bool {
	return r != nil && (r.IsAdmin || r.IsEthesisAdmin)
}

func contains(values []string, target string) bool {
	if target == "" {
		return false
	}
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
