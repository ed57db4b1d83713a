package service

import (
	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
)

// AuthorizeTransition decides whether the actor may move a thesis from its
// persisted status to target. original is nil for new theses. Edit rights
// on the thesis are checked by the caller.
func AuthorizeTransition(roles *models.RoleContext, original *models.ThesisSnapshot, target models.ThesisStatus, programID string) error {
	if roles != nil && roles.IsAdmin {
		return nil
	}
	if target == models.ThesisStatusPlanning {
		return nil
	}
	if target == models.ThesisStatusCompleted && (original == nil || original.Status != models.ThesisStatusCompleted) {
		return transitionDenied("only the system may mark a thesis completed")
	}
	if original != nil && original.Status != models.ThesisStatusPlanning {
		return nil
	}
	if roles != nil && roles.ApprovesProgram(programID) {
		return nil
	}
	if roles != nil && original != nil && original.ProgramID == programID && original.HasApprover(roles.UserID) {
		return nil
	}
	return transitionDenied("leaving planning requires thesis approver rights in the program")
}

func transitionDenied(message string) error {
	return appErrors.WithFields(appErrors.Clone(appErrors.ErrTransitionDenied, message), map[string]string{
		"programId": message,
	})
}
