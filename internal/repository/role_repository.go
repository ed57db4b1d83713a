package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/thesis-registry-api/internal/models"
)

// RoleRepository reads the role membership tables an actor's capabilities derive from.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository constructs the repository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// LoadRoleContext gathers admin flags, program management rows and
// department admin rows for the user. sql.ErrNoRows is returned unwrapped
// when the user does not exist.
func (r *RoleRepository) LoadRoleContext(ctx context.Context, userID string) (*models.RoleContext, error) {
	var user struct {
		Email          string `db:"email"`
		IsAdmin        bool   `db:"is_admin"`
		IsEthesisAdmin bool   `db:"is_ethesis_admin"`
	}
	const userQuery = `SELECT u.email, u.is_admin,
	EXISTS (SELECT 1 FROM ethesis_admins ea WHERE ea.user_id = u.id) AS is_ethesis_admin
FROM users u WHERE u.id = $1`
	if err := r.db.GetContext(ctx, &user, userQuery, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("load actor: %w", err)
	}

	var managements []models.ProgramManagement
	const managementQuery = `SELECT id, program_id, user_id, is_thesis_approver FROM program_managements WHERE user_id = $1 ORDER BY program_id`
	if err := r.db.SelectContext(ctx, &managements, managementQuery, userID); err != nil {
		return nil, fmt.Errorf("load program managements: %w", err)
	}

	var departments []string
	const departmentQuery = `SELECT department_id FROM department_admins WHERE user_id = $1 ORDER BY department_id`
	if err := r.db.SelectContext(ctx, &departments, departmentQuery, userID); err != nil {
		return nil, fmt.Errorf("load department admins: %w", err)
	}

	roles := &models.RoleContext{
		UserID:             userID,
		Email:              user.Email,
		IsAdmin:            user.IsAdmin,
		IsEthesisAdmin:     user.IsEthesisAdmin,
		ManagedProgramIDs:  make([]string, 0, len(managements)),
		ApproverProgramIDs: make([]string, 0),
		AdminDepartmentIDs: departments,
	}
	for _, m := range managements {
		roles.ManagedProgramIDs = append(roles.ManagedProgramIDs, m.ProgramID)
		if m.IsThesisApprover {
			roles.ApproverProgramIDs = append(roles.ApproverProgramIDs, m.ProgramID)
		}
	}
	if roles.AdminDepartmentIDs == nil {
		roles.AdminDepartmentIDs = []string{}
	}
	return roles, nil
}
