package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/thesis-registry-api/internal/models"
)

func TestGradersChanged(t *testing.T) {
	a := models.Grader{UserID: graderAID, IsPrimaryGrader: true, User: testUsers[graderAID]}
	b := models.Grader{UserID: graderBID, User: testUsers[graderBID]}

	assert.False(t, GradersChanged(nil, nil))
	assert.False(t, GradersChanged([]models.Grader{a, b}, []models.Grader{b, a}))
	assert.True(t, GradersChanged([]models.Grader{a}, []models.Grader{a, b}))
	assert.True(t, GradersChanged([]models.Grader{a, b}, []models.Grader{a}))

	demoted, promoted := a, b
	demoted.IsPrimaryGrader, promoted.IsPrimaryGrader = false, true
	assert.True(t, GradersChanged([]models.Grader{a, b}, []models.Grader{demoted, promoted}))

	// Same person re-created under a new user row is still the same grader.
	reissued := a
	reissued.UserID = "aaaaaaaa-0000-4000-8000-0000000000aa"
	reissued.User = &models.User{ID: reissued.UserID, Email: "ANNA.grader@uni.fi"}
	assert.False(t, GradersChanged([]models.Grader{a}, []models.Grader{reissued}))
}

func TestSupervisionsChanged(t *testing.T) {
	s := models.Supervision{UserID: supervisorID, Percentage: 100, IsPrimarySupervisor: true, User: testUsers[supervisorID]}

	assert.False(t, SupervisionsChanged([]models.Supervision{s}, []models.Supervision{s}))

	share := s
	share.Percentage = 80
	assert.True(t, SupervisionsChanged([]models.Supervision{s}, []models.Supervision{share}))

	flag := s
	flag.IsPrimarySupervisor = false
	assert.True(t, SupervisionsChanged([]models.Supervision{s}, []models.Supervision{flag}))

	other := models.Supervision{UserID: approverID, Percentage: 100, IsPrimarySupervisor: true, User: testUsers[approverID]}
	assert.True(t, SupervisionsChanged([]models.Supervision{s}, []models.Supervision{other}))

	noUser := models.Supervision{UserID: supervisorID, Percentage: 100, IsPrimarySupervisor: true}
	assert.False(t, SupervisionsChanged([]models.Supervision{noUser}, []models.Supervision{noUser}))
}

func TestUpdateEventsOrderAndPayload(t *testing.T) {
	original := seedThesis(models.ThesisStatusPlanning)
	updated := seedThesis(models.ThesisStatusInProgress)
	updated.Graders = updated.Graders[:1]
	updated.Supervisions[0].Percentage = 100
	updated.Supervisions = append(updated.Supervisions, models.Supervision{UserID: approverID, User: testUsers[approverID]})
	actor := supervisorID

	events, err := UpdateEvents(&actor, original, updated)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventThesisStatusChanged, events[0].Type)
	assert.Equal(t, models.EventThesisGradersChanged, events[1].Type)
	assert.Equal(t, models.EventThesisSupervisionsChanged, events[2].Type)
	for _, e := range events {
		require.NotNil(t, e.ThesisID)
		assert.Equal(t, thesisX, *e.ThesisID)
		assert.Equal(t, &actor, e.UserID)
	}

	var graders models.GradersChangeData
	require.NoError(t, json.Unmarshal(events[1].Data, &graders))
	assert.Len(t, graders.OriginalGraders, 2)
	assert.Len(t, graders.UpdatedGraders, 1)
}

func TestUpdateEventsEmptyListsSerializeAsArrays(t *testing.T) {
	original := seedThesis(models.ThesisStatusPlanning)
	original.Graders = nil
	updated := seedThesis(models.ThesisStatusPlanning)

	events, err := UpdateEvents(nil, original, updated)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].UserID)
	assert.Contains(t, string(events[0].Data), `"originalGraders":[]`)
}

func TestStartNotificationDue(t *testing.T) {
	planning := seedThesis(models.ThesisStatusPlanning)
	started := seedThesis(models.ThesisStatusStarted)
	inProgress := seedThesis(models.ThesisStatusInProgress)

	assert.True(t, StartNotificationDue(planning, inProgress))
	assert.False(t, StartNotificationDue(planning, started))
	assert.False(t, StartNotificationDue(started, inProgress))
	assert.False(t, StartNotificationDue(inProgress, inProgress))
	assert.False(t, StartNotificationDue(nil, inProgress))
}
