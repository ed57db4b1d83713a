package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
)

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return appErrors.FromError(err).Code
}

func TestThesisServiceSupervisorCannotLeavePlanning(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusPlanning))
	roles := &models.RoleContext{UserID: supervisorID}

	_, err := h.svc.Update(context.Background(), roles, thesisX, dto.ThesisMutation{Payload: basePayload(models.ThesisStatusInProgress)})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTransitionDenied.Code, errorCode(err))
	assert.Contains(t, appErrors.FromError(err).Fields, "programId")
	assert.Zero(t, h.store.txCount)
	assert.Empty(t, h.store.events)
	assert.Equal(t, models.ThesisStatusPlanning, h.store.theses[thesisX].Status)
	assert.Empty(t, h.notifier.started)
}

func TestThesisServiceProgramApproverStartsThesis(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusPlanning))
	roles := &models.RoleContext{UserID: approverID, ManagedProgramIDs: []string{programP}, ApproverProgramIDs: []string{programP}}

	updated, err := h.svc.Update(context.Background(), roles, thesisX, dto.ThesisMutation{Payload: basePayload(models.ThesisStatusInProgress)})

	require.NoError(t, err)
	assert.Equal(t, models.ThesisStatusInProgress, updated.Status)
	assert.Equal(t, models.ThesisStatusInProgress, h.store.theses[thesisX].Status)
	require.Len(t, h.store.events, 1)
	entry := h.store.events[0]
	assert.Equal(t, models.EventThesisStatusChanged, entry.Type)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, approverID, *entry.UserID)
	assert.JSONEq(t, `{"from":"PLANNING","to":"IN_PROGRESS"}`, string(entry.Data))

	require.Len(t, h.notifier.started, 1)
	assert.Equal(t, []string{"sirkka.supervisor@uni.fi", "maija.meikalainen@uni.fi"}, startRecipients(h.notifier.started[0]))
}

func TestThesisServiceManagerReopensCancelledThesis(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusCancelled))
	roles := &models.RoleContext{UserID: managerID, ManagedProgramIDs: []string{programP}}

	_, err := h.svc.Update(context.Background(), roles, thesisX, dto.ThesisMutation{Payload: basePayload(models.ThesisStatusInProgress)})

	require.NoError(t, err)
	require.Len(t, h.store.events, 1)
	var data models.StatusChangeData
	require.NoError(t, json.Unmarshal(h.store.events[0].Data, &data))
	assert.Equal(t, models.ThesisStatusCancelled, data.From)
	assert.Equal(t, models.ThesisStatusInProgress, data.To)
	assert.Empty(t, h.notifier.started)
}

func TestThesisServiceRejectsDuplicateSupervisor(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusPlanning))
	payload := basePayload(models.ThesisStatusPlanning)
	payload.Supervisions = []dto.SupervisionPayload{
		{UserID: supervisorID, Percentage: 50, IsPrimarySupervisor: true},
		{UserID: supervisorID, Percentage: 50},
	}

	_, err := h.svc.Update(context.Background(), &models.RoleContext{UserID: supervisorID}, thesisX, dto.ThesisMutation{Payload: payload})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))
	assert.Contains(t, appErrors.FromError(err).Fields["supervisions"], supervisorID)
	assert.Zero(t, h.store.txCount)
	assert.Empty(t, h.store.events)
}

func TestThesisServicePrimaryGraderReassignment(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusPlanning))
	payload := basePayload(models.ThesisStatusPlanning)
	payload.Graders = []dto.GraderPayload{
		{UserID: graderAID},
		{UserID: graderBID, IsPrimaryGrader: true},
	}

	_, err := h.svc.Update(context.Background(), &models.RoleContext{UserID: supervisorID}, thesisX, dto.ThesisMutation{Payload: payload})

	require.NoError(t, err)
	require.Len(t, h.store.events, 1)
	assert.Equal(t, models.EventThesisGradersChanged, h.store.events[0].Type)
	var data models.GradersChangeData
	require.NoError(t, json.Unmarshal(h.store.events[0].Data, &data))
	require.Len(t, data.OriginalGraders, 2)
	require.Len(t, data.UpdatedGraders, 2)
	assert.True(t, data.OriginalGraders[0].IsPrimaryGrader)
	assert.Equal(t, graderAID, data.OriginalGraders[0].UserID)
	assert.False(t, data.UpdatedGraders[0].IsPrimaryGrader)
	assert.True(t, data.UpdatedGraders[1].IsPrimaryGrader)
	assert.Equal(t, graderBID, data.UpdatedGraders[1].UserID)
}

func TestThesisServiceUnchangedUpdateRecordsNothing(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusInProgress))
	roles := &models.RoleContext{UserID: supervisorID}

	_, err := h.svc.Update(context.Background(), roles, thesisX, dto.ThesisMutation{Payload: basePayload(models.ThesisStatusInProgress)})
	require.NoError(t, err)
	_, err = h.svc.Update(context.Background(), roles, thesisX, dto.ThesisMutation{Payload: basePayload(models.ThesisStatusInProgress)})
	require.NoError(t, err)

	assert.Equal(t, 2, h.store.commits)
	assert.Empty(t, h.store.events)
	assert.Empty(t, h.notifier.started)
}

func TestThesisServiceRelationResubmitRecordsOnce(t *testing.T) {
	ctx := context.Background()
	roles := &models.RoleContext{UserID: supervisorID}

	t.Run("graders", func(t *testing.T) {
		h := newThesisHarness(seedThesis(models.ThesisStatusInProgress))
		payload := basePayload(models.ThesisStatusInProgress)
		payload.Graders = []dto.GraderPayload{
			{UserID: graderBID, IsPrimaryGrader: true},
			{UserID: graderAID},
		}

		_, err := h.svc.Update(ctx, roles, thesisX, dto.ThesisMutation{Payload: payload})
		require.NoError(t, err)
		resubmit := basePayload(models.ThesisStatusInProgress)
		resubmit.Graders = []dto.GraderPayload{
			{UserID: graderBID, IsPrimaryGrader: true},
			{UserID: graderAID},
		}
		_, err = h.svc.Update(ctx, roles, thesisX, dto.ThesisMutation{Payload: resubmit})
		require.NoError(t, err)

		require.Len(t, h.store.events, 1)
		assert.Equal(t, models.EventThesisGradersChanged, h.store.events[0].Type)
	})

	t.Run("supervisions", func(t *testing.T) {
		h := newThesisHarness(seedThesis(models.ThesisStatusInProgress))
		supervisions := func() []dto.SupervisionPayload {
			return []dto.SupervisionPayload{
				{UserID: supervisorID, Percentage: 70, IsPrimarySupervisor: true},
				{IsExternal: true, Percentage: 30, ExternalUser: &models.ExternalPerson{FirstNames: "Eero", LastName: "Ulkoinen", Email: "EERO@company.example "}},
			}
		}

		for i := 0; i < 2; i++ {
			payload := basePayload(models.ThesisStatusInProgress)
			payload.Supervisions = supervisions()
			_, err := h.svc.Update(ctx, roles, thesisX, dto.ThesisMutation{Payload: payload})
			require.NoError(t, err)
		}

		require.Len(t, h.store.externals, 1)
		require.Len(t, h.store.events, 1)
		assert.Equal(t, models.EventThesisSupervisionsChanged, h.store.events[0].Type)
	})
}

func TestThesisServiceSupervisionShareChange(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusStarted))
	payload := basePayload(models.ThesisStatusStarted)
	payload.Supervisions = []dto.SupervisionPayload{
		{UserID: supervisorID, Percentage: 60, IsPrimarySupervisor: true},
		{IsExternal: true, Percentage: 40, ExternalUser: &models.ExternalPerson{FirstNames: "Eero", LastName: "Ulkoinen", Email: " Eero@Company.example "}},
	}

	updated, err := h.svc.Update(context.Background(), &models.RoleContext{UserID: supervisorID}, thesisX, dto.ThesisMutation{Payload: payload})

	require.NoError(t, err)
	require.Len(t, h.store.externals, 1)
	external := h.store.externals["eero@company.example"]
	require.NotNil(t, external)
	assert.Equal(t, external.ID, updated.Supervisions[1].UserID)

	require.Len(t, h.store.events, 1)
	assert.Equal(t, models.EventThesisSupervisionsChanged, h.store.events[0].Type)
	var data models.SupervisionsChangeData
	require.NoError(t, json.Unmarshal(h.store.events[0].Data, &data))
	assert.Len(t, data.OriginalSupervisions, 1)
	assert.Len(t, data.UpdatedSupervisions, 2)
}

func TestThesisServiceCreate(t *testing.T) {
	h := newThesisHarness()
	roles := &models.RoleContext{UserID: managerID, IsAdmin: true}
	mutation := dto.ThesisMutation{
		Payload: basePayload(models.ThesisStatusInProgress),
		Files:   map[models.AttachmentLabel]*dto.AttachmentUpload{models.AttachmentResearchPlan: pdfUpload("%PDF-1.4 plan")},
	}

	created, err := h.svc.Create(context.Background(), roles, mutation)

	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	stored := h.store.theses[created.ID]
	require.NotNil(t, stored)
	require.Len(t, stored.Attachments, 1)
	assert.Equal(t, models.AttachmentResearchPlan, stored.Attachments[0].Label)
	assert.True(t, strings.HasPrefix(stored.Attachments[0].Filename, "theses/"+created.ID+"/researchPlan/"))
	assert.Equal(t, []byte("%PDF-1.4 plan"), h.objects.saved[stored.Attachments[0].Filename])

	require.Len(t, h.store.events, 1)
	assert.Equal(t, models.EventThesisCreated, h.store.events[0].Type)
	var data models.ThesisEventData
	require.NoError(t, json.Unmarshal(h.store.events[0].Data, &data))
	assert.Equal(t, created.ID, data.Thesis.ID)
	assert.Empty(t, h.notifier.started)
}

func TestThesisServiceCreateRules(t *testing.T) {
	cases := []struct {
		name   string
		roles  *models.RoleContext
		status models.ThesisStatus
		code   string
	}{
		{name: "supervisor creates planning", roles: &models.RoleContext{UserID: supervisorID}, status: models.ThesisStatusPlanning},
		{name: "supervisor cannot create started", roles: &models.RoleContext{UserID: supervisorID}, status: models.ThesisStatusStarted, code: appErrors.ErrTransitionDenied.Code},
		{name: "program approver creates started", roles: &models.RoleContext{UserID: approverID, ApproverProgramIDs: []string{programP}}, status: models.ThesisStatusStarted},
		{name: "approver of other program", roles: &models.RoleContext{UserID: approverID, ApproverProgramIDs: []string{programQ}}, status: models.ThesisStatusStarted, code: appErrors.ErrTransitionDenied.Code},
		{name: "approver cannot create completed", roles: &models.RoleContext{UserID: approverID, ApproverProgramIDs: []string{programP}}, status: models.ThesisStatusCompleted, code: appErrors.ErrTransitionDenied.Code},
		{name: "admin creates completed", roles: &models.RoleContext{UserID: managerID, IsAdmin: true}, status: models.ThesisStatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newThesisHarness()
			_, err := h.svc.Create(context.Background(), tc.roles, dto.ThesisMutation{Payload: basePayload(tc.status)})
			if tc.code == "" {
				require.NoError(t, err)
				assert.Len(t, h.store.theses, 1)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.code, errorCode(err))
			assert.Empty(t, h.store.theses)
		})
	}
}

func TestThesisServiceCreateReferenceChecks(t *testing.T) {
	roles := &models.RoleContext{UserID: supervisorID}

	unknownProgram := basePayload(models.ThesisStatusPlanning)
	unknownProgram.ProgramID = programQ
	_, err := newThesisHarness().svc.Create(context.Background(), roles, dto.ThesisMutation{Payload: unknownProgram})
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))

	unknownUser := basePayload(models.ThesisStatusPlanning)
	unknownUser.Authors = []dto.PersonRef{{UserID: "aaaaaaaa-0000-4000-8000-0000000000ff"}}
	_, err = newThesisHarness().svc.Create(context.Background(), roles, dto.ThesisMutation{Payload: unknownUser})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))
	assert.Contains(t, appErrors.FromError(err).Fields, "users")
}

func TestThesisServiceUploadLimits(t *testing.T) {
	roles := &models.RoleContext{UserID: supervisorID}

	h := newThesisHarness()
	big := pdfUpload("x")
	big.Size = 2 << 20
	_, err := h.svc.Create(context.Background(), roles, dto.ThesisMutation{
		Payload: basePayload(models.ThesisStatusPlanning),
		Files:   map[models.AttachmentLabel]*dto.AttachmentUpload{models.AttachmentResearchPlan: big},
	})
	assert.Equal(t, appErrors.ErrPayloadTooLarge.Code, errorCode(err))
	assert.Empty(t, h.objects.saved)

	exe := pdfUpload("MZ")
	exe.MimeType = "application/x-msdownload"
	_, err = h.svc.Create(context.Background(), roles, dto.ThesisMutation{
		Payload: basePayload(models.ThesisStatusPlanning),
		Files:   map[models.AttachmentLabel]*dto.AttachmentUpload{models.AttachmentWaysOfWorking: exe},
	})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))
	assert.Empty(t, h.objects.saved)
	assert.Zero(t, h.store.txCount)
}

func seedWithPlan() *models.ThesisSnapshot {
	seed := seedThesis(models.ThesisStatusPlanning)
	seed.Attachments = []models.Attachment{{
		ID:       "55555555-5555-4555-8555-555555555555",
		ThesisID: thesisX,
		Label:    models.AttachmentResearchPlan,
		Filename: "theses/" + thesisX + "/researchPlan/old",
		MimeType: "application/pdf",
	}}
	return seed
}

func TestThesisServiceAttachmentReconciliation(t *testing.T) {
	roles := &models.RoleContext{UserID: supervisorID}
	oldKey := "theses/" + thesisX + "/researchPlan/old"

	t.Run("kept when descriptor resubmitted", func(t *testing.T) {
		h := newThesisHarness(seedWithPlan())
		payload := basePayload(models.ThesisStatusPlanning)
		payload.ResearchPlan = &dto.AttachmentDescriptor{ID: "55555555-5555-4555-8555-555555555555", Filename: oldKey}

		_, err := h.svc.Update(context.Background(), roles, thesisX, dto.ThesisMutation{Payload: payload})
		require.NoError(t, err)
		require.Len(t, h.store.theses[thesisX].Attachments, 1)
		assert.Empty(t, h.objects.deleted)
	})

	t.Run("deleted when omitted", func(t *testing.T) {
		h := newThesisHarness(seedWithPlan())

		_, err := h.svc.Update(context.Background(), roles, thesisX, dto.ThesisMutation{Payload: basePayload(models.ThesisStatusPlanning)})
		require.NoError(t, err)
		assert.Empty(t, h.store.theses[thesisX].Attachments)
		assert.Equal(t, []string{oldKey}, h.objects.deleted)
	})

	t.Run("replaced by upload", func(t *testing.T) {
		h := newThesisHarness(seedWithPlan())
		mutation := dto.ThesisMutation{
			Payload: basePayload(models.ThesisStatusPlanning),
			Files:   map[models.AttachmentLabel]*dto.AttachmentUpload{models.AttachmentResearchPlan: pdfUpload("%PDF new")},
		}

		_, err := h.svc.Update(context.Background(), roles, thesisX, mutation)
		require.NoError(t, err)
		attachments := h.store.theses[thesisX].Attachments
		require.Len(t, attachments, 1)
		assert.NotEqual(t, oldKey, attachments[0].Filename)
		assert.Equal(t, []string{oldKey}, h.objects.deleted)
		assert.Contains(t, h.objects.saved, attachments[0].Filename)
	})

	t.Run("staged upload discarded on failure", func(t *testing.T) {
		h := newThesisHarness(seedWithPlan())
		h.store.appendErr = errors.New("connection reset")
		payload := basePayload(models.ThesisStatusPlanning)
		payload.Topic = "Changed topic"
		payload.Graders = payload.Graders[:1]
		mutation := dto.ThesisMutation{
			Payload: payload,
			Files:   map[models.AttachmentLabel]*dto.AttachmentUpload{models.AttachmentWaysOfWorking: pdfUpload("%PDF wow")},
		}

		_, err := h.svc.Update(context.Background(), roles, thesisX, mutation)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInternal.Code, errorCode(err))
		assert.Empty(t, h.objects.saved)
		require.Len(t, h.objects.deleted, 1)
		assert.Contains(t, h.objects.deleted[0], "/waysOfWorking/")
		assert.Equal(t, "Formal verification of distributed schedulers", h.store.theses[thesisX].Topic)
		assert.Len(t, h.store.theses[thesisX].Attachments, 1)
	})
}

func TestThesisServiceVisibility(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusPlanning))
	ctx := context.Background()

	_, err := h.svc.Get(ctx, &models.RoleContext{UserID: outsiderID}, thesisX)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))

	_, err = h.svc.Get(ctx, &models.RoleContext{UserID: supervisorID}, "not-a-uuid")
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))

	_, err = h.svc.Update(ctx, &models.RoleContext{UserID: outsiderID}, thesisX, dto.ThesisMutation{Payload: basePayload(models.ThesisStatusPlanning)})
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))

	for _, roles := range []*models.RoleContext{
		{UserID: supervisorID},
		{UserID: managerID, ManagedProgramIDs: []string{programP}},
		{UserID: outsiderID, IsEthesisAdmin: true},
		{UserID: outsiderID, IsAdmin: true},
	} {
		snapshot, err := h.svc.Get(ctx, roles, thesisX)
		require.NoError(t, err)
		assert.Equal(t, thesisX, snapshot.ID)
	}
}

func TestThesisServiceList(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusPlanning))
	ctx := context.Background()

	items, pagination, err := h.svc.List(ctx, &models.RoleContext{UserID: outsiderID}, dto.ThesisListQuery{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, outsiderID, h.store.lastQuery.ApproverFirstUserID)

	items, pagination, err = h.svc.List(ctx, &models.RoleContext{UserID: supervisorID}, dto.ThesisListQuery{Author: "maija mei", PageSize: 1000})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 200, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)

	items, _, err = h.svc.List(ctx, &models.RoleContext{UserID: supervisorID}, dto.ThesisListQuery{Statuses: []models.ThesisStatus{models.ThesisStatusCompleted}})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, _, err = h.svc.List(ctx, &models.RoleContext{UserID: supervisorID}, dto.ThesisListQuery{Sort: "targetDate,-popularity"})
	assert.Equal(t, appErrors.ErrInvalidInput.Code, errorCode(err))

	_, _, err = h.svc.List(ctx, &models.RoleContext{UserID: supervisorID}, dto.ThesisListQuery{Sort: "-startDate,topic"})
	require.NoError(t, err)
	assert.Equal(t, []models.SortClause{
		{Field: models.SortByStartDate, Descending: true},
		{Field: models.SortByTopic},
	}, h.store.lastQuery.Sort)
}

func TestThesisServiceDepartmentListing(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusPlanning))
	roles := &models.RoleContext{UserID: outsiderID, AdminDepartmentIDs: []string{departmentD}}

	items, _, err := h.svc.List(context.Background(), roles, dto.ThesisListQuery{DepartmentID: departmentD})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, _, err = h.svc.List(context.Background(), roles, dto.ThesisListQuery{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestThesisServiceEvents(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusPlanning))
	roles := &models.RoleContext{UserID: approverID, ApproverProgramIDs: []string{programP}, ManagedProgramIDs: []string{programP}}
	_, err := h.svc.Update(context.Background(), roles, thesisX, dto.ThesisMutation{Payload: basePayload(models.ThesisStatusStarted)})
	require.NoError(t, err)

	entries, err := h.svc.Events(context.Background(), roles, thesisX, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EventThesisStatusChanged, entries[0].Type)

	_, err = h.svc.Events(context.Background(), &models.RoleContext{UserID: outsiderID}, thesisX, 10)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}

func TestThesisServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("supervisor deletes planning thesis", func(t *testing.T) {
		h := newThesisHarness(seedWithPlan())
		require.NoError(t, h.svc.Delete(ctx, &models.RoleContext{UserID: supervisorID}, thesisX))

		assert.Empty(t, h.store.theses)
		require.Len(t, h.store.events, 1)
		entry := h.store.events[0]
		assert.Equal(t, models.EventThesisDeleted, entry.Type)
		require.NotNil(t, entry.ThesisID)
		assert.Equal(t, thesisX, *entry.ThesisID)
		var data models.ThesisEventData
		require.NoError(t, json.Unmarshal(entry.Data, &data))
		assert.Equal(t, thesisX, data.Thesis.ID)
		assert.Equal(t, []string{"theses/" + thesisX + "/researchPlan/old"}, h.objects.deleted)
	})

	t.Run("supervisor cannot delete started thesis", func(t *testing.T) {
		h := newThesisHarness(seedThesis(models.ThesisStatusStarted))
		err := h.svc.Delete(ctx, &models.RoleContext{UserID: supervisorID}, thesisX)
		assert.Equal(t, appErrors.ErrForbidden.Code, errorCode(err))
		assert.Len(t, h.store.theses, 1)
	})

	t.Run("manager deletes started thesis", func(t *testing.T) {
		h := newThesisHarness(seedThesis(models.ThesisStatusStarted))
		require.NoError(t, h.svc.Delete(ctx, &models.RoleContext{UserID: managerID, ManagedProgramIDs: []string{programP}}, thesisX))
		assert.Empty(t, h.store.theses)
	})

	t.Run("outsider sees not found", func(t *testing.T) {
		h := newThesisHarness(seedThesis(models.ThesisStatusPlanning))
		err := h.svc.Delete(ctx, &models.RoleContext{UserID: outsiderID}, thesisX)
		assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
		assert.Zero(t, h.store.txCount)
	})
}

func TestThesisServiceCompleteFromAttainment(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusInProgress))

	n, err := h.svc.CompleteFromAttainment(context.Background(), []string{thesisX})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.ThesisStatusCompleted, h.store.theses[thesisX].Status)
	require.Len(t, h.store.events, 1)
	assert.Nil(t, h.store.events[0].UserID)
	assert.JSONEq(t, `{"from":"IN_PROGRESS","to":"COMPLETED"}`, string(h.store.events[0].Data))
	assert.Empty(t, h.notifier.started)

	n, err = h.svc.CompleteFromAttainment(context.Background(), []string{thesisX})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, h.store.events, 1)

	_, err = h.svc.CompleteFromAttainment(context.Background(), []string{"33333333-3333-4333-8333-000000000000"})
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}

func TestThesisServiceCompletedStaysEditable(t *testing.T) {
	h := newThesisHarness(seedThesis(models.ThesisStatusCompleted))
	payload := basePayload(models.ThesisStatusCompleted)
	payload.Topic = "Formal verification of distributed schedulers, revised"

	_, err := h.svc.Update(context.Background(), &models.RoleContext{UserID: supervisorID}, thesisX, dto.ThesisMutation{Payload: payload})
	require.NoError(t, err)
	assert.Empty(t, h.store.events)
	assert.Equal(t, payload.Topic, h.store.theses[thesisX].Topic)
}
