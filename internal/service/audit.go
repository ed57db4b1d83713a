package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noah-isme/thesis-registry-api/internal/models"
)

// identityKey matches relation entries across snapshots by user email,
// falling back to the user id when no email is known.
func identityKey(userID string, user *models.User) string {
	if user != nil {
		if email := strings.ToLower(strings.TrimSpace(user.Email)); email != "" {
			return email
		}
	}
	return "id:" + userID
}

// GradersChanged reports whether graders were added, removed, or had their
// primary flag changed.
func GradersChanged(original, updated []models.Grader) bool {
	if len(original) != len(updated) {
		return true
	}
	before := make(map[string]models.Grader, len(original))
	for _, g := range original {
		before[identityKey(g.UserID, g.User)] = g
	}
	for _, g := range updated {
		prev, ok := before[identityKey(g.UserID, g.User)]
		if !ok || prev.IsPrimaryGrader != g.IsPrimaryGrader {
			return true
		}
		delete(before, identityKey(g.UserID, g.User))
	}
	return len(before) > 0
}

// SupervisionsChanged reports whether supervisors were added or removed, or
// a matched supervisor changed primary flag or percentage.
func SupervisionsChanged(original, updated []models.Supervision) bool {
	if len(original) != len(updated) {
		return true
	}
	before := make(map[string]models.Supervision, len(original))
	for _, s := range original {
		before[identityKey(s.UserID, s.User)] = s
	}
	for _, s := range updated {
		key := identityKey(s.UserID, s.User)
		prev, ok := before[key]
		if !ok || prev.IsPrimarySupervisor != s.IsPrimarySupervisor || prev.Percentage != s.Percentage {
			return true
		}
		delete(before, key)
	}
	return len(before) > 0
}

// StartNotificationDue reports whether the update is the PLANNING to
// IN_PROGRESS transition that informs supervisors and authors.
func StartNotificationDue(original, updated *models.ThesisSnapshot) bool {
	return original != nil && updated != nil &&
		original.Status == models.ThesisStatusPlanning &&
		updated.Status == models.ThesisStatusInProgress
}

// UpdateEvents diffs two snapshots and returns the audit entries to record.
// actorID is nil for system-triggered changes.
func UpdateEvents(actorID *string, original, updated *models.ThesisSnapshot) ([]models.EventLogEntry, error) {
	thesisID := updated.ID
	events := make([]models.EventLogEntry, 0, 3)
	if original.Status != updated.Status {
		entry, err := newEvent(&thesisID, actorID, models.EventThesisStatusChanged, models.StatusChangeData{
			From: original.Status,
			To:   updated.Status,
		})
		if err != nil {
			return nil, err
		}
		events = append(events, entry)
	}
	if GradersChanged(original.Graders, updated.Graders) {
		entry, err := newEvent(&thesisID, actorID, models.EventThesisGradersChanged, models.GradersChangeData{
			OriginalGraders: nonNilGraders(original.Graders),
			UpdatedGraders:  nonNilGraders(updated.Graders),
		})
		if err != nil {
			return nil, err
		}
		events = append(events, entry)
	}
	if SupervisionsChanged(original.Supervisions, updated.Supervisions) {
		entry, err := newEvent(&thesisID, actorID, models.EventThesisSupervisionsChanged, models.SupervisionsChangeData{
			OriginalSupervisions: nonNilSupervisions(original.Supervisions),
			UpdatedSupervisions:  nonNilSupervisions(updated.Supervisions),
		})
		if err != nil {
			return nil, err
		}
		events = append(events, entry)
	}
	return events, nil
}

// CreatedEvent records the initial snapshot of a new thesis.
func CreatedEvent(actorID *string, created *models.ThesisSnapshot) (models.EventLogEntry, error) {
	thesisID := created.ID
	return newEvent(&thesisID, actorID, models.EventThesisCreated, models.ThesisEventData{Thesis: *created})
}

// DeletedEvent keeps the full pre-deletion snapshot under the id of the
// removed thesis.
func DeletedEvent(actorID *string, deleted *models.ThesisSnapshot) (models.EventLogEntry, error) {
	thesisID := deleted.ID
	return newEvent(&thesisID, actorID, models.EventThesisDeleted, models.ThesisEventData{Thesis: *deleted})
}

func newEvent(thesisID, actorID *string, eventType models.EventType, payload interface{}) (models.EventLogEntry, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return models.EventLogEntry{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return models.EventLogEntry{
		ThesisID: thesisID,
		UserID:   actorID,
		Type:     eventType,
		Data:     data,
	}, nil
}

func nonNilGraders(list []models.Grader) []models.Grader {
	if list == nil {
		return []models.Grader{}
	}
	return list
}

func nonNilSupervisions(list []models.Supervision) []models.Supervision {
	if list == nil {
		return []models.Supervision{}
	}
	return list
}
