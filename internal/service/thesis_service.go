package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	"github.com/noah-isme/thesis-registry-api/internal/repository"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
)

type thesisStore interface {
	GetSnapshot(ctx context.Context, id string) (*models.ThesisSnapshot, error)
	List(ctx context.Context, query models.ThesisQuery) ([]models.ThesisSnapshot, int, error)
	WithinTx(ctx context.Context, fn func(repository.ThesisWriter) error) error
}

type programLookup interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
	FindStudyTrack(ctx context.Context, id string) (*models.StudyTrack, error)
}

type userLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type eventReader interface {
	ListByThesis(ctx context.Context, thesisID string, limit int) ([]models.EventLogEntry, error)
}

type objectWriter interface {
	SaveStream(key string, r io.Reader) (string, error)
	Delete(key string) error
}

type startNotifier interface {
	NotifyThesisStarted(ctx context.Context, snapshot *models.ThesisSnapshot) error
}

// ThesisService authorizes and applies thesis mutations and serves visible listings.
type ThesisService struct {
	store     thesisStore
	programs  programLookup
	users     userLookup
	events    eventReader
	objects   objectWriter
	notifier  startNotifier
	metrics   *MetricsService
	validator *validator.Validate
	rules     AttachmentRules
	logger    *zap.Logger
	now       func() time.Time
}

// ThesisServiceOption configures the service.
type ThesisServiceOption func(*ThesisService)

// WithObjectStore sets where attachment files are stored.
func WithObjectStore(objects objectWriter) ThesisServiceOption {
	return func(s *ThesisService) { s.objects = objects }
}

// WithStartNotifier sets the dispatcher for PLANNING to IN_PROGRESS notifications.
func WithStartNotifier(notifier startNotifier) ThesisServiceOption {
	return func(s *ThesisService) { s.notifier = notifier }
}

// WithThesisMetrics enables workflow metrics.
func WithThesisMetrics(metrics *MetricsService) ThesisServiceOption {
	return func(s *ThesisService) { s.metrics = metrics }
}

// WithAttachmentRules limits uploaded files.
func WithAttachmentRules(rules AttachmentRules) ThesisServiceOption {
	return func(s *ThesisService) { s.rules = rules }
}

// NewThesisService constructs the service.
func NewThesisService(store thesisStore, programs programLookup, users userLookup, events eventReader, validate *validator.Validate, logger *zap.Logger, opts ...ThesisServiceOption) *ThesisService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerThesisValidations(validate)
	svc := &ThesisService{
		store:     store,
		programs:  programs,
		users:     users,
		events:    events,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

func thesisNotFound() *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, "thesis not found")
}

// List returns the page of theses visible to the actor.
func (s *ThesisService) List(ctx context.Context, roles *models.RoleContext, query dto.ThesisListQuery) ([]models.ThesisSnapshot, *models.Pagination, error) {
	if roles == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	where, err := BuildVisibility(roles, ThesisScope{
		ProgramID:    strings.TrimSpace(query.ProgramID),
		DepartmentID: strings.TrimSpace(query.DepartmentID),
		Statuses:     query.Statuses,
		Topic:        query.Topic,
		Author:       query.Author,
		ProgramName:  query.ProgramName,
		Language:     query.Language,
		OnlyMine:     query.OnlyMine,
	})
	if err != nil {
		return nil, nil, err
	}
	sort, err := parseSort(query.Sort)
	if err != nil {
		return nil, nil, err
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = 20
	}
	if size > 200 {
		size = 200
	}

	start := time.Now()
	items, total, err := s.store.List(ctx, models.ThesisQuery{
		Where:               where,
		Sort:                sort,
		ApproverFirstUserID: roles.UserID,
		Limit:               size,
		Offset:              (page - 1) * size,
	})
	s.metrics.ObserveDBQuery("thesis_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list theses")
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// parseSort reads a comma separated field list; a leading "-" sorts descending.
func parseSort(raw string) ([]models.SortClause, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	clauses := make([]models.SortClause, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clause := models.SortClause{Field: models.ThesisSortField(strings.TrimPrefix(part, "-")), Descending: strings.HasPrefix(part, "-")}
		if !clause.Field.Valid() {
			return nil, appErrors.WithFields(appErrors.ErrInvalidInput, map[string]string{"sort": "unknown sort field " + string(clause.Field)})
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

// Get returns a thesis when the actor may see it. Invisible theses are reported as not found.
func (s *ThesisService) Get(ctx context.Context, roles *models.RoleContext, id string) (*models.ThesisSnapshot, error) {
	return s.loadVisible(ctx, roles, id)
}

// Events returns the audit entries of a visible thesis, newest first.
func (s *ThesisService) Events(ctx context.Context, roles *models.RoleContext, id string, limit int) ([]models.EventLogEntry, error) {
	if _, err := s.loadVisible(ctx, roles, id); err != nil {
		return nil, err
	}
	entries, err := s.events.ListByThesis(ctx, id, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load thesis events")
	}
	return entries, nil
}

func (s *ThesisService) loadVisible(ctx context.Context, roles *models.RoleContext, id string) (*models.ThesisSnapshot, error) {
	if roles == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, thesisNotFound()
	}
	snapshot, err := s.store.GetSnapshot(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, thesisNotFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load thesis")
	}
	if !ConditionMatches(OwnershipCondition(roles, ThesisScope{}), snapshot) {
		s.metrics.RecordDenied("visibility")
		return nil, thesisNotFound()
	}
	return snapshot, nil
}

// Create validates and stores a new thesis with its relations and attachments.
func (s *ThesisService) Create(ctx context.Context, roles *models.RoleContext, mutation dto.ThesisMutation) (*models.ThesisSnapshot, error) {
	if roles == nil {
		return nil, appErrors.ErrUnauthorized
	}
	proposed, err := s.prepare(ctx, &mutation)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeTransition(roles, nil, proposed.Status, proposed.ProgramID); err != nil {
		s.metrics.RecordDenied("transition")
		return nil, err
	}

	proposed.ID = uuid.NewString()
	staged, err := s.stageUploads(proposed.ID, mutation.Files)
	if err != nil {
		return nil, err
	}

	actorID := roles.UserID
	var events []models.EventLogEntry
	err = s.store.WithinTx(ctx, func(tx repository.ThesisWriter) error {
		if err := resolveExternalPeople(ctx, tx, proposed, &mutation.Payload); err != nil {
			return err
		}
		if err := tx.InsertThesis(ctx, &proposed.Thesis); err != nil {
			return err
		}
		if err := tx.ReplaceRelations(ctx, proposed); err != nil {
			return err
		}
		attachments, _, err := reconcileAttachments(ctx, tx, nil, &mutation, staged)
		if err != nil {
			return err
		}
		proposed.Attachments = attachments
		created, err := CreatedEvent(&actorID, proposed)
		if err != nil {
			return err
		}
		events = []models.EventLogEntry{created}
		return tx.AppendEvents(ctx, events)
	})
	if err != nil {
		s.discardObjects(stagedKeys(staged))
		return nil, storeError(err, "failed to create thesis")
	}
	s.metrics.RecordAuditEntries(events)
	s.logger.Info("thesis created", zap.String("thesis_id", proposed.ID), zap.String("actor_id", actorID))
	return proposed, nil
}

// Update authorizes and applies a full replacement of a visible thesis.
func (s *ThesisService) Update(ctx context.Context, roles *models.RoleContext, id string, mutation dto.ThesisMutation) (*models.ThesisSnapshot, error) {
	original, err := s.loadVisible(ctx, roles, id)
	if err != nil {
		return nil, err
	}
	proposed, err := s.prepare(ctx, &mutation)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeTransition(roles, original, proposed.Status, proposed.ProgramID); err != nil {
		s.metrics.RecordDenied("transition")
		return nil, err
	}

	proposed.ID = id
	proposed.CreatedAt = original.CreatedAt
	staged, err := s.stageUploads(id, mutation.Files)
	if err != nil {
		return nil, err
	}

	actorID := roles.UserID
	var (
		events    []models.EventLogEntry
		discarded []string
		notify    bool
	)
	err = s.store.WithinTx(ctx, func(tx repository.ThesisWriter) error {
		locked, err := tx.LockSnapshot(ctx, id)
		if err != nil {
			return err
		}
		if err := AuthorizeTransition(roles, locked, proposed.Status, proposed.ProgramID); err != nil {
			return err
		}
		if err := resolveExternalPeople(ctx, tx, proposed, &mutation.Payload); err != nil {
			return err
		}
		if err := tx.UpdateThesis(ctx, &proposed.Thesis); err != nil {
			return err
		}
		if err := tx.ReplaceRelations(ctx, proposed); err != nil {
			return err
		}
		attachments, removed, err := reconcileAttachments(ctx, tx, locked, &mutation, staged)
		if err != nil {
			return err
		}
		proposed.Attachments = attachments
		discarded = removed

		events, err = UpdateEvents(&actorID, locked, proposed)
		if err != nil {
			return err
		}
		if len(events) > 0 {
			if err := tx.AppendEvents(ctx, events); err != nil {
				return err
			}
		}
		notify = StartNotificationDue(locked, proposed)
		return nil
	})
	if err != nil {
		s.discardObjects(stagedKeys(staged))
		return nil, storeError(err, "failed to update thesis")
	}

	s.discardObjects(discarded)
	s.metrics.RecordAuditEntries(events)
	if notify && s.notifier != nil {
		if err := s.notifier.NotifyThesisStarted(ctx, proposed); err != nil {
			s.logger.Warn("thesis start notification failed", zap.String("thesis_id", id), zap.Error(err))
		}
	}
	return proposed, nil
}

// Delete removes a visible thesis, keeping its last snapshot in the audit log.
// Admins, managers of the thesis program, and supervisors of a thesis still
// in planning may delete.
func (s *ThesisService) Delete(ctx context.Context, roles *models.RoleContext, id string) error {
	original, err := s.loadVisible(ctx, roles, id)
	if err != nil {
		return err
	}
	if !canDelete(roles, original) {
		s.metrics.RecordDenied("delete")
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to delete this thesis")
	}

	actorID := roles.UserID
	var (
		events    []models.EventLogEntry
		discarded []string
	)
	err = s.store.WithinTx(ctx, func(tx repository.ThesisWriter) error {
		locked, err := tx.LockSnapshot(ctx, id)
		if err != nil {
			return err
		}
		if !canDelete(roles, locked) {
			return appErrors.Clone(appErrors.ErrForbidden, "not allowed to delete this thesis")
		}
		deleted, err := DeletedEvent(&actorID, locked)
		if err != nil {
			return err
		}
		events = []models.EventLogEntry{deleted}
		if err := tx.AppendEvents(ctx, events); err != nil {
			return err
		}
		if err := tx.DeleteThesis(ctx, id); err != nil {
			return err
		}
		for _, a := range locked.Attachments {
			discarded = append(discarded, a.Filename)
		}
		return nil
	})
	if err != nil {
		return storeError(err, "failed to delete thesis")
	}
	s.discardObjects(discarded)
	s.metrics.RecordAuditEntries(events)
	s.logger.Info("thesis deleted", zap.String("thesis_id", id), zap.String("actor_id", actorID))
	return nil
}

func canDelete(roles *models.RoleContext, snapshot *models.ThesisSnapshot) bool {
	if roles.IsAdmin || roles.ManagesProgram(snapshot.ProgramID) {
		return true
	}
	return snapshot.Status == models.ThesisStatusPlanning && snapshot.HasSupervisor(roles.UserID)
}

// CompleteFromAttainment marks theses completed on behalf of the system.
// Status changes are audited without an actor and trigger no notification.
// It returns how many theses changed status.
func (s *ThesisService) CompleteFromAttainment(ctx context.Context, ids []string) (int, error) {
	completed := 0
	for _, id := range ids {
		var events []models.EventLogEntry
		err := s.store.WithinTx(ctx, func(tx repository.ThesisWriter) error {
			locked, err := tx.LockSnapshot(ctx, id)
			if err != nil {
				return err
			}
			if locked.Status == models.ThesisStatusCompleted {
				return nil
			}
			updated := *locked
			updated.Status = models.ThesisStatusCompleted
			if err := tx.UpdateThesis(ctx, &updated.Thesis); err != nil {
				return err
			}
			events, err = UpdateEvents(nil, locked, &updated)
			if err != nil {
				return err
			}
			return tx.AppendEvents(ctx, events)
		})
		if err != nil {
			return completed, storeError(err, fmt.Sprintf("failed to complete thesis %s", id))
		}
		if len(events) > 0 {
			completed++
			s.metrics.RecordAuditEntries(events)
		}
	}
	return completed, nil
}

// prepare validates the payload, checks references, and builds the proposed
// snapshot. External people are resolved later inside the transaction.
func (s *ThesisService) prepare(ctx context.Context, mutation *dto.ThesisMutation) (*models.ThesisSnapshot, error) {
	p := &mutation.Payload
	if err := validateThesisPayload(s.validator, p); err != nil {
		return nil, err
	}
	if err := validateUploads(s.rules, mutation.Files); err != nil {
		return nil, err
	}

	program, err := s.programs.FindByID(ctx, p.ProgramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrNotFound, "program not found"), map[string]string{"programId": "unknown program"})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	track, err := s.programs.FindStudyTrack(ctx, p.StudyTrackID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrNotFound, "study track not found"), map[string]string{"studyTrackId": "unknown study track"})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study track")
	}
	if track.ProgramID != program.ID {
		return nil, appErrors.WithFields(appErrors.ErrValidation, map[string]string{"studyTrackId": "study track does not belong to the program"})
	}

	users, err := s.lookupUsers(ctx, p)
	if err != nil {
		return nil, err
	}

	snapshot := &models.ThesisSnapshot{
		Thesis: models.Thesis{
			ProgramID:    p.ProgramID,
			StudyTrackID: p.StudyTrackID,
			Topic:        strings.TrimSpace(p.Topic),
			Status:       p.Status,
			StartDate:    p.StartDate.Time,
			TargetDate:   p.TargetDate.Time,
		},
		Program:      program,
		Supervisions: make([]models.Supervision, len(p.Supervisions)),
		Graders:      make([]models.Grader, len(p.Graders)),
		Authors:      make([]models.Author, len(p.Authors)),
		Approvers:    make([]models.Approver, len(p.Approvers)),
		Attachments:  []models.Attachment{},
	}
	if p.EthesisDate != nil {
		date := p.EthesisDate.Time
		snapshot.EthesisDate = &date
	}
	for i, sp := range p.Supervisions {
		snapshot.Supervisions[i] = models.Supervision{
			Percentage:          sp.Percentage,
			IsPrimarySupervisor: sp.IsPrimarySupervisor,
			IsExternal:          sp.IsExternal,
		}
		if !sp.IsExternal {
			snapshot.Supervisions[i].UserID = sp.UserID
			snapshot.Supervisions[i].User = users[sp.UserID]
		}
	}
	for i, gp := range p.Graders {
		snapshot.Graders[i] = models.Grader{IsPrimaryGrader: gp.IsPrimaryGrader, IsExternal: gp.IsExternal}
		if !gp.IsExternal {
			snapshot.Graders[i].UserID = gp.UserID
			snapshot.Graders[i].User = users[gp.UserID]
		}
	}
	for i, a := range p.Authors {
		snapshot.Authors[i] = models.Author{UserID: a.UserID, User: users[a.UserID]}
	}
	for i, a := range p.Approvers {
		snapshot.Approvers[i] = models.Approver{UserID: a.UserID, User: users[a.UserID]}
	}
	return snapshot, nil
}

// lookupUsers loads every internal user the payload references and rejects unknown ids.
func (s *ThesisService) lookupUsers(ctx context.Context, p *dto.ThesisPayload) (map[string]*models.User, error) {
	seen := map[string]struct{}{}
	ids := make([]string, 0)
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, sp := range p.Supervisions {
		if !sp.IsExternal {
			add(sp.UserID)
		}
	}
	for _, gp := range p.Graders {
		if !gp.IsExternal {
			add(gp.UserID)
		}
	}
	for _, a := range p.Authors {
		add(a.UserID)
	}
	for _, a := range p.Approvers {
		add(a.UserID)
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, appErrors.WithFields(appErrors.ErrValidation, map[string]string{"users": "unknown user " + id})
		}
	}

	found, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	byID := make(map[string]*models.User, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, appErrors.WithFields(appErrors.ErrValidation, map[string]string{"users": "unknown user " + id})
		}
	}
	return byID, nil
}

// resolveExternalPeople upserts external supervisors and graders by email and
// points the snapshot relations at the resolved users.
func resolveExternalPeople(ctx context.Context, tx repository.ThesisWriter, snapshot *models.ThesisSnapshot, p *dto.ThesisPayload) error {
	for i, sp := range p.Supervisions {
		if !sp.IsExternal || sp.ExternalUser == nil {
			continue
		}
		user, err := tx.UpsertExternalUser(ctx, *sp.ExternalUser)
		if err != nil {
			return err
		}
		snapshot.Supervisions[i].UserID = user.ID
		snapshot.Supervisions[i].User = user
	}
	for i, gp := range p.Graders {
		if !gp.IsExternal || gp.ExternalUser == nil {
			continue
		}
		user, err := tx.UpsertExternalUser(ctx, *gp.ExternalUser)
		if err != nil {
			return err
		}
		snapshot.Graders[i].UserID = user.ID
		snapshot.Graders[i].User = user
	}

	supervisors := make([]string, len(snapshot.Supervisions))
	for i, sup := range snapshot.Supervisions {
		supervisors[i] = sup.UserID
	}
	if dup := firstDuplicate(supervisors); dup != "" {
		return appErrors.WithFields(appErrors.ErrValidation, map[string]string{"supervisions": "duplicate supervisor " + dup})
	}
	graders := make([]string, len(snapshot.Graders))
	for i, g := range snapshot.Graders {
		graders[i] = g.UserID
	}
	if dup := firstDuplicate(graders); dup != "" {
		return appErrors.WithFields(appErrors.ErrValidation, map[string]string{"graders": "duplicate grader " + dup})
	}
	return nil
}

// stageUploads writes incoming files before the transaction starts so the
// transaction only records metadata.
func (s *ThesisService) stageUploads(thesisID string, files map[models.AttachmentLabel]*dto.AttachmentUpload) (map[models.AttachmentLabel]*models.Attachment, error) {
	staged := make(map[models.AttachmentLabel]*models.Attachment)
	for _, label := range models.AttachmentLabels {
		file := files[label]
		if file == nil {
			continue
		}
		if s.objects == nil {
			s.discardObjects(stagedKeys(staged))
			return nil, appErrors.Clone(appErrors.ErrInternal, "attachment storage not configured")
		}
		key := fmt.Sprintf("theses/%s/%s/%s", thesisID, label, uuid.NewString())
		if _, err := s.objects.SaveStream(key, file.Content); err != nil {
			s.discardObjects(stagedKeys(staged))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
		}
		staged[label] = &models.Attachment{
			ID:           uuid.NewString(),
			ThesisID:     thesisID,
			Label:        label,
			Filename:     key,
			OriginalName: file.OriginalName,
			MimeType:     file.MimeType,
			SizeBytes:    file.Size,
			CreatedAt:    s.now().UTC(),
		}
	}
	return staged, nil
}

// reconcileAttachments applies the slot decisions and returns the resulting
// attachments plus the object keys to remove after commit.
func reconcileAttachments(ctx context.Context, tx repository.ThesisWriter, original *models.ThesisSnapshot, mutation *dto.ThesisMutation, staged map[models.AttachmentLabel]*models.Attachment) ([]models.Attachment, []string, error) {
	result := make([]models.Attachment, 0, len(models.AttachmentLabels))
	var discarded []string
	for _, label := range models.AttachmentLabels {
		existing := original.Attachment(label)
		action := DecideAttachment(existing, mutation.File(label), mutation.Payload.Descriptor(label))
		if action == AttachmentReplace || action == AttachmentDelete {
			if err := tx.DeleteAttachment(ctx, existing.ID); err != nil {
				return nil, nil, err
			}
			discarded = append(discarded, existing.Filename)
		}
		switch action {
		case AttachmentReplace, AttachmentCreate:
			attachment := staged[label]
			if err := tx.SaveAttachment(ctx, attachment); err != nil {
				return nil, nil, err
			}
			result = append(result, *attachment)
		case AttachmentKeep:
			if existing != nil {
				result = append(result, *existing)
			}
		}
	}
	return result, discarded, nil
}

func stagedKeys(staged map[models.AttachmentLabel]*models.Attachment) []string {
	keys := make([]string, 0, len(staged))
	for _, a := range staged {
		keys = append(keys, a.Filename)
	}
	return keys
}

func (s *ThesisService) discardObjects(keys []string) {
	if s.objects == nil {
		return
	}
	for _, key := range keys {
		if err := s.objects.Delete(key); err != nil {
			s.logger.Warn("attachment cleanup failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// storeError keeps domain errors raised inside a transaction and maps the rest.
func storeError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return thesisNotFound()
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
