package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	"github.com/noah-isme/thesis-registry-api/internal/repository"
)

const (
	programP    = "11111111-1111-4111-8111-111111111111"
	programQ    = "11111111-1111-4111-8111-222222222222"
	trackT      = "22222222-2222-4222-8222-222222222222"
	thesisX     = "33333333-3333-4333-8333-333333333333"
	departmentD = "44444444-4444-4444-8444-444444444444"

	supervisorID = "aaaaaaaa-0000-4000-8000-000000000001"
	approverID   = "aaaaaaaa-0000-4000-8000-000000000002"
	studentID    = "aaaaaaaa-0000-4000-8000-000000000003"
	graderAID    = "aaaaaaaa-0000-4000-8000-000000000004"
	graderBID    = "aaaaaaaa-0000-4000-8000-000000000005"
	managerID    = "aaaaaaaa-0000-4000-8000-000000000006"
	outsiderID   = "aaaaaaaa-0000-4000-8000-000000000007"
)

func stringRef(v string) *string { return &v }

var testUsers = map[string]*models.User{
	supervisorID: {ID: supervisorID, Email: "sirkka.supervisor@uni.fi", FirstNames: "Sirkka", LastName: "Ohjaaja", DepartmentID: stringRef(departmentD)},
	approverID:   {ID: approverID, Email: "aapo.approver@uni.fi", FirstNames: "Aapo", LastName: "Hyvaksyja"},
	studentID:    {ID: studentID, Email: "maija.meikalainen@uni.fi", FirstNames: "Maija Liisa", LastName: "Meikalainen", Username: stringRef("mmeikal"), StudentNumber: stringRef("0123456")},
	graderAID:    {ID: graderAID, Email: "anna.grader@uni.fi", FirstNames: "Anna", LastName: "Arvioija"},
	graderBID:    {ID: graderBID, Email: "bertta.grader@uni.fi", FirstNames: "Bertta", LastName: "Arvioija"},
	managerID:    {ID: managerID, Email: "manu.manager@uni.fi", FirstNames: "Manu", LastName: "Johtaja"},
	outsiderID:   {ID: outsiderID, Email: "olli.outsider@uni.fi", FirstNames: "Olli", LastName: "Ulkopuolinen"},
}

var testProgram = &models.Program{ID: programP, DepartmentID: departmentD, Name: models.LocalizedName{"fi": "Tietojenkasittelytiede", "en": "Computer Science"}}

func cloneSnapshot(s *models.ThesisSnapshot) *models.ThesisSnapshot {
	c := *s
	c.Supervisions = append([]models.Supervision(nil), s.Supervisions...)
	c.Graders = append([]models.Grader(nil), s.Graders...)
	c.Authors = append([]models.Author(nil), s.Authors...)
	c.Approvers = append([]models.Approver(nil), s.Approvers...)
	c.Attachments = append([]models.Attachment(nil), s.Attachments...)
	return &c
}

// fakeThesisStore keeps committed state in memory and applies a transaction
// to a copy that is only published when the callback succeeds.
type fakeThesisStore struct {
	theses    map[string]*models.ThesisSnapshot
	events    []models.EventLogEntry
	externals map[string]*models.User
	lastQuery models.ThesisQuery
	appendErr error
	txCount   int
	commits   int
}

func newFakeThesisStore(seed ...*models.ThesisSnapshot) *fakeThesisStore {
	store := &fakeThesisStore{theses: map[string]*models.ThesisSnapshot{}, externals: map[string]*models.User{}}
	for _, s := range seed {
		store.theses[s.ID] = cloneSnapshot(s)
	}
	return store
}

func (f *fakeThesisStore) GetSnapshot(ctx context.Context, id string) (*models.ThesisSnapshot, error) {
	s, ok := f.theses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneSnapshot(s), nil
}

func (f *fakeThesisStore) List(ctx context.Context, query models.ThesisQuery) ([]models.ThesisSnapshot, int, error) {
	f.lastQuery = query
	var out []models.ThesisSnapshot
	for _, s := range f.theses {
		if ConditionMatches(query.Where, s) {
			out = append(out, *cloneSnapshot(s))
		}
	}
	total := len(out)
	if query.Offset >= len(out) {
		return []models.ThesisSnapshot{}, total, nil
	}
	out = out[query.Offset:]
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, total, nil
}

func (f *fakeThesisStore) WithinTx(ctx context.Context, fn func(repository.ThesisWriter) error) error {
	f.txCount++
	tx := &fakeThesisTx{store: f, theses: map[string]*models.ThesisSnapshot{}}
	for id, s := range f.theses {
		tx.theses[id] = cloneSnapshot(s)
	}
	if err := fn(tx); err != nil {
		return err
	}
	f.theses = tx.theses
	f.events = append(f.events, tx.events...)
	f.commits++
	return nil
}

func (f *fakeThesisStore) ListByThesis(ctx context.Context, thesisID string, limit int) ([]models.EventLogEntry, error) {
	var out []models.EventLogEntry
	for i := len(f.events) - 1; i >= 0; i-- {
		if e := f.events[i]; e.ThesisID != nil && *e.ThesisID == thesisID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeThesisTx struct {
	store  *fakeThesisStore
	theses map[string]*models.ThesisSnapshot
	events []models.EventLogEntry
}

func (t *fakeThesisTx) LockSnapshot(ctx context.Context, id string) (*models.ThesisSnapshot, error) {
	s, ok := t.theses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneSnapshot(s), nil
}

func (t *fakeThesisTx) InsertThesis(ctx context.Context, thesis *models.Thesis) error {
	t.theses[thesis.ID] = &models.ThesisSnapshot{Thesis: *thesis, Program: testProgram}
	return nil
}

func (t *fakeThesisTx) UpdateThesis(ctx context.Context, thesis *models.Thesis) error {
	s, ok := t.theses[thesis.ID]
	if !ok {
		return sql.ErrNoRows
	}
	s.Thesis = *thesis
	return nil
}

func (t *fakeThesisTx) DeleteThesis(ctx context.Context, id string) error {
	delete(t.theses, id)
	return nil
}

func (t *fakeThesisTx) ReplaceRelations(ctx context.Context, snapshot *models.ThesisSnapshot) error {
	s, ok := t.theses[snapshot.ID]
	if !ok {
		return sql.ErrNoRows
	}
	c := cloneSnapshot(snapshot)
	s.Supervisions, s.Graders, s.Authors, s.Approvers = c.Supervisions, c.Graders, c.Authors, c.Approvers
	return nil
}

func (t *fakeThesisTx) UpsertExternalUser(ctx context.Context, person models.ExternalPerson) (*models.User, error) {
	if u, ok := t.store.externals[person.Email]; ok {
		return u, nil
	}
	u := &models.User{ID: uuid.NewString(), Email: person.Email, FirstNames: person.FirstNames, LastName: person.LastName, IsExternal: true}
	t.store.externals[person.Email] = u
	return u, nil
}

func (t *fakeThesisTx) SaveAttachment(ctx context.Context, attachment *models.Attachment) error {
	s, ok := t.theses[attachment.ThesisID]
	if !ok {
		return sql.ErrNoRows
	}
	s.Attachments = append(s.Attachments, *attachment)
	return nil
}

func (t *fakeThesisTx) DeleteAttachment(ctx context.Context, id string) error {
	for _, s := range t.theses {
		for i, a := range s.Attachments {
			if a.ID == id {
				s.Attachments = append(s.Attachments[:i], s.Attachments[i+1:]...)
				return nil
			}
		}
	}
	return sql.ErrNoRows
}

func (t *fakeThesisTx) AppendEvents(ctx context.Context, entries []models.EventLogEntry) error {
	if t.store.appendErr != nil {
		return t.store.appendErr
	}
	t.events = append(t.events, entries...)
	return nil
}

type fakePrograms struct{}

func (fakePrograms) FindByID(ctx context.Context, id string) (*models.Program, error) {
	if id == programP {
		return testProgram, nil
	}
	return nil, sql.ErrNoRows
}

func (fakePrograms) FindStudyTrack(ctx context.Context, id string) (*models.StudyTrack, error) {
	if id == trackT {
		return &models.StudyTrack{ID: trackT, ProgramID: programP}, nil
	}
	return nil, sql.ErrNoRows
}

type fakeUsers struct{}

func (fakeUsers) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := testUsers[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeObjects struct {
	saved   map[string][]byte
	deleted []string
	failOn  string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{saved: map[string][]byte{}}
}

func (f *fakeObjects) SaveStream(key string, r io.Reader) (string, error) {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return "", errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.saved[key] = data
	return "/var/lib/theses/" + key, nil
}

func (f *fakeObjects) Delete(key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.saved, key)
	return nil
}

type recordingNotifier struct {
	started []*models.ThesisSnapshot
}

func (n *recordingNotifier) NotifyThesisStarted(ctx context.Context, snapshot *models.ThesisSnapshot) error {
	n.started = append(n.started, snapshot)
	return nil
}

type thesisHarness struct {
	store    *fakeThesisStore
	objects  *fakeObjects
	notifier *recordingNotifier
	svc      *ThesisService
}

func newThesisHarness(seed ...*models.ThesisSnapshot) *thesisHarness {
	h := &thesisHarness{
		store:    newFakeThesisStore(seed...),
		objects:  newFakeObjects(),
		notifier: &recordingNotifier{},
	}
	h.svc = NewThesisService(h.store, fakePrograms{}, fakeUsers{}, h.store, nil, nil,
		WithObjectStore(h.objects),
		WithStartNotifier(h.notifier),
		WithAttachmentRules(AttachmentRules{MaxFileSizeBytes: 1 << 20, AllowedMIMEs: []string{"application/pdf"}}),
	)
	return h
}

func testDate(year int, month time.Month, day int) *dto.Date {
	return &dto.Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// basePayload describes thesisX as seeded by seedThesis.
func basePayload(status models.ThesisStatus) dto.ThesisPayload {
	return dto.ThesisPayload{
		ProgramID:    programP,
		StudyTrackID: trackT,
		Topic:        "Formal verification of distributed schedulers",
		Status:       status,
		StartDate:    testDate(2026, time.January, 10),
		TargetDate:   testDate(2026, time.December, 15),
		Supervisions: []dto.SupervisionPayload{{UserID: supervisorID, Percentage: 100, IsPrimarySupervisor: true}},
		Graders: []dto.GraderPayload{
			{UserID: graderAID, IsPrimaryGrader: true},
			{UserID: graderBID},
		},
		Authors: []dto.PersonRef{{UserID: studentID}},
	}
}

func seedThesis(status models.ThesisStatus) *models.ThesisSnapshot {
	return &models.ThesisSnapshot{
		Thesis: models.Thesis{
			ID:           thesisX,
			ProgramID:    programP,
			StudyTrackID: trackT,
			Topic:        "Formal verification of distributed schedulers",
			Status:       status,
			StartDate:    time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
			TargetDate:   time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC),
		},
		Program:      testProgram,
		Supervisions: []models.Supervision{{UserID: supervisorID, Percentage: 100, IsPrimarySupervisor: true, User: testUsers[supervisorID]}},
		Graders: []models.Grader{
			{UserID: graderAID, IsPrimaryGrader: true, User: testUsers[graderAID]},
			{UserID: graderBID, User: testUsers[graderBID]},
		},
		Authors:     []models.Author{{UserID: studentID, User: testUsers[studentID]}},
		Approvers:   []models.Approver{},
		Attachments: []models.Attachment{},
	}
}

func pdfUpload(content string) *dto.AttachmentUpload {
	return &dto.AttachmentUpload{
		OriginalName: "plan.pdf",
		MimeType:     "application/pdf",
		Size:         int64(len(content)),
		Content:      bytes.NewBufferString(content),
	}
}
