package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/thesis-registry-api/internal/models"
)

const thesisColumns = `t.id, t.program_id, t.study_track_id, t.topic, t.status, t.start_date, t.target_date, t.ethesis_date, t.created_at, t.updated_at`

// ThesisWriter is the set of writes available inside a thesis transaction.
type ThesisWriter interface {
	LockSnapshot(ctx context.Context, id string) (*models.ThesisSnapshot, error)
	InsertThesis(ctx context.Context, thesis *models.Thesis) error
	UpdateThesis(ctx context.Context, thesis *models.Thesis) error
	DeleteThesis(ctx context.Context, id string) error
	ReplaceRelations(ctx context.Context, snapshot *models.ThesisSnapshot) error
	UpsertExternalUser(ctx context.Context, person models.ExternalPerson) (*models.User, error)
	SaveAttachment(ctx context.Context, attachment *models.Attachment) error
	DeleteAttachment(ctx context.Context, id string) error
	AppendEvents(ctx context.Context, entries []models.EventLogEntry) error
}

// ThesisRepository persists theses together with their relation sets.
type ThesisRepository struct {
	db *sqlx.DB
}

// NewThesisRepository constructs the repository.
func NewThesisRepository(db *sqlx.DB) *ThesisRepository {
	return &ThesisRepository{db: db}
}

// GetSnapshot loads a thesis and every relation list. sql.ErrNoRows is returned unwrapped.
func (r *ThesisRepository) GetSnapshot(ctx context.Context, id string) (*models.ThesisSnapshot, error) {
	return getSnapshot(ctx, r.db, id, false)
}

// List returns the page of theses matching the query and the total match count.
func (r *ThesisRepository) List(ctx context.Context, query models.ThesisQuery) ([]models.ThesisSnapshot, int, error) {
	compiler := &conditionCompiler{}
	where, err := compiler.compile(query.Where)
	if err != nil {
		return nil, 0, fmt.Errorf("compile thesis filter: %w", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM theses t WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, compiler.args...); err != nil {
		return nil, 0, fmt.Errorf("count theses: %w", err)
	}

	order, err := compiler.orderBy(query)
	if err != nil {
		return nil, 0, fmt.Errorf("compile thesis ordering: %w", err)
	}
	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	listQuery := fmt.Sprintf("SELECT %s FROM theses t WHERE %s%s LIMIT %d OFFSET %d", thesisColumns, where, order, limit, offset)

	var rows []models.Thesis
	if err := r.db.SelectContext(ctx, &rows, listQuery, compiler.args...); err != nil {
		return nil, 0, fmt.Errorf("list theses: %w", err)
	}
	snapshots, err := loadSnapshots(ctx, r.db, rows)
	if err != nil {
		return nil, 0, err
	}
	return snapshots, total, nil
}

// WithinTx runs fn inside a database transaction, committing when fn succeeds.
func (r *ThesisRepository) WithinTx(ctx context.Context, fn func(ThesisWriter) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin thesis transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(&thesisTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit thesis transaction: %w", err)
	}
	return nil
}

type thesisTx struct {
	tx *sqlx.Tx
}

func (t *thesisTx) LockSnapshot(ctx context.Context, id string) (*models.ThesisSnapshot, error) {
	return getSnapshot(ctx, t.tx, id, true)
}

func (t *thesisTx) InsertThesis(ctx context.Context, thesis *models.Thesis) error {
	if thesis.ID == "" {
		thesis.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	thesis.CreatedAt = now
	thesis.UpdatedAt = now
	const query = `INSERT INTO theses (id, program_id, study_track_id, topic, status, start_date, target_date, ethesis_date, created_at, updated_at)
VALUES (:id, :program_id, :study_track_id, :topic, :status, :start_date, :target_date, :ethesis_date, :created_at, :updated_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, thesis); err != nil {
		return fmt.Errorf("insert thesis: %w", err)
	}
	return nil
}

func (t *thesisTx) UpdateThesis(ctx context.Context, thesis *models.Thesis) error {
	thesis.UpdatedAt = time.Now().UTC()
	const query = `UPDATE theses SET program_id = :program_id, study_track_id = :study_track_id, topic = :topic, status = :status,
	start_date = :start_date, target_date = :target_date, ethesis_date = :ethesis_date, updated_at = :updated_at
WHERE id = :id`
	result, err := t.tx.NamedExecContext(ctx, query, thesis)
	if err != nil {
		return fmt.Errorf("update thesis: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (t *thesisTx) DeleteThesis(ctx context.Context, id string) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM theses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete thesis: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceRelations deletes every supervision, grader, author and approver row
// of the thesis and recreates them from the snapshot in list order.
func (t *thesisTx) ReplaceRelations(ctx context.Context, snapshot *models.ThesisSnapshot) error {
	for _, table := range []string{"supervisions", "graders", "authors", "approvers"} {
		if _, err := t.tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE thesis_id = $1", table), snapshot.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i := range snapshot.Supervisions {
		s := &snapshot.Supervisions[i]
		s.ID = uuid.NewString()
		s.ThesisID = snapshot.ID
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO supervisions (id, thesis_id, user_id, percentage, is_primary_supervisor, is_external, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, s.ID, s.ThesisID, s.UserID, s.Percentage, s.IsPrimarySupervisor, s.IsExternal, i); err != nil {
			return fmt.Errorf("insert supervision: %w", err)
		}
	}
	for i := range snapshot.Graders {
		g := &snapshot.Graders[i]
		g.ID = uuid.NewString()
		g.ThesisID = snapshot.ID
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO graders (id, thesis_id, user_id, is_primary_grader, is_external, position)
VALUES ($1, $2, $3, $4, $5, $6)`, g.ID, g.ThesisID, g.UserID, g.IsPrimaryGrader, g.IsExternal, i); err != nil {
			return fmt.Errorf("insert grader: %w", err)
		}
	}
	for i := range snapshot.Authors {
		a := &snapshot.Authors[i]
		a.ThesisID = snapshot.ID
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO authors (thesis_id, user_id, position) VALUES ($1, $2, $3)`, a.ThesisID, a.UserID, i); err != nil {
			return fmt.Errorf("insert author: %w", err)
		}
	}
	for i := range snapshot.Approvers {
		a := &snapshot.Approvers[i]
		a.ThesisID = snapshot.ID
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO approvers (thesis_id, user_id, position) VALUES ($1, $2, $3)`, a.ThesisID, a.UserID, i); err != nil {
			return fmt.Errorf("insert approver: %w", err)
		}
	}
	return nil
}

// UpsertExternalUser resolves an external person by email, creating the user
// row when missing and refreshing its contact data otherwise. An internal
// user owning the email is returned as stored.
func (t *thesisTx) UpsertExternalUser(ctx context.Context, person models.ExternalPerson) (*models.User, error) {
	const query = `INSERT INTO users (id, email, first_names, last_name, affiliation, is_external, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
ON CONFLICT (email) DO UPDATE SET first_names = EXCLUDED.first_names, last_name = EXCLUDED.last_name,
	affiliation = EXCLUDED.affiliation, updated_at = NOW()
WHERE users.is_external
RETURNING ` + userColumns
	var affiliation *string
	if person.Affiliation != "" {
		affiliation = &person.Affiliation
	}
	var user models.User
	err := t.tx.GetContext(ctx, &user, query, uuid.NewString(), person.Email, person.FirstNames, person.LastName, affiliation)
	if errors.Is(err, sql.ErrNoRows) {
		err = t.tx.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, person.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert external user: %w", err)
	}
	return &user, nil
}

func (t *thesisTx) SaveAttachment(ctx context.Context, attachment *models.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attachments (id, thesis_id, label, filename, original_name, mimetype, size_bytes, created_at)
VALUES (:id, :thesis_id, :label, :filename, :original_name, :mimetype, :size_bytes, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, attachment); err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (t *thesisTx) DeleteAttachment(ctx context.Context, id string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}

func (t *thesisTx) AppendEvents(ctx context.Context, entries []models.EventLogEntry) error {
	const query = `INSERT INTO event_logs (id, thesis_id, user_id, type, data, created_at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6)`
	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now().UTC()
		}
		if len(entry.Data) == 0 {
			entry.Data = []byte("{}")
		}
		if _, err := t.tx.ExecContext(ctx, query, entry.ID, entry.ThesisID, entry.UserID, entry.Type, string(entry.Data), entry.CreatedAt); err != nil {
			return fmt.Errorf("append event %s: %w", entry.Type, err)
		}
	}
	return nil
}

func getSnapshot(ctx context.Context, q sqlx.QueryerContext, id string, lock bool) (*models.ThesisSnapshot, error) {
	query := "SELECT " + thesisColumns + " FROM theses t WHERE t.id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	var thesis models.Thesis
	if err := sqlx.GetContext(ctx, q, &thesis, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get thesis: %w", err)
	}
	snapshots, err := loadSnapshots(ctx, q, []models.Thesis{thesis})
	if err != nil {
		return nil, err
	}
	return &snapshots[0], nil
}

// relationRow is the shared shape of the supervision, grader, author and
// approver queries joined with the related user.
type relationRow struct {
	ThesisID       string         `db:"thesis_id"`
	RelationID     sql.NullString `db:"relation_id"`
	UserID         string         `db:"user_id"`
	Percentage     int            `db:"percentage"`
	IsPrimary      bool           `db:"is_primary"`
	IsExternal     bool           `db:"is_external"`
	Username       *string        `db:"username"`
	Email          string         `db:"email"`
	FirstNames     string         `db:"first_names"`
	LastName       string         `db:"last_name"`
	StudentNumber  *string        `db:"student_number"`
	Affiliation    *string        `db:"affiliation"`
	DepartmentID   *string        `db:"department_id"`
	UserIsExternal bool           `db:"user_is_external"`
}

func (r relationRow) user() *models.User {
	return &models.User{
		ID:            r.UserID,
		Username:      r.Username,
		Email:         r.Email,
		FirstNames:    r.FirstNames,
		LastName:      r.LastName,
		StudentNumber: r.StudentNumber,
		Affiliation:   r.Affiliation,
		DepartmentID:  r.DepartmentID,
		IsExternal:    r.UserIsExternal,
	}
}

const relationUserColumns = `u.username, u.email, u.first_names, u.last_name, u.student_number, u.affiliation, u.department_id, u.is_external AS user_is_external`

var (
	supervisionRowsQuery = `SELECT s.thesis_id, s.id AS relation_id, s.user_id, s.percentage, s.is_primary_supervisor AS is_primary, s.is_external, ` +
		relationUserColumns + ` FROM supervisions s JOIN users u ON u.id = s.user_id WHERE s.thesis_id = ANY($1) ORDER BY s.thesis_id, s.position`
	graderRowsQuery = `SELECT g.thesis_id, g.id AS relation_id, g.user_id, 0 AS percentage, g.is_primary_grader AS is_primary, g.is_external, ` +
		relationUserColumns + ` FROM graders g JOIN users u ON u.id = g.user_id WHERE g.thesis_id = ANY($1) ORDER BY g.thesis_id, g.position`
	authorRowsQuery = `SELECT a.thesis_id, NULL AS relation_id, a.user_id, 0 AS percentage, FALSE AS is_primary, FALSE AS is_external, ` +
		relationUserColumns + ` FROM authors a JOIN users u ON u.id = a.user_id WHERE a.thesis_id = ANY($1) ORDER BY a.thesis_id, a.position`
	approverRowsQuery = `SELECT a.thesis_id, NULL AS relation_id, a.user_id, 0 AS percentage, FALSE AS is_primary, FALSE AS is_external, ` +
		relationUserColumns + ` FROM approvers a JOIN users u ON u.id = a.user_id WHERE a.thesis_id = ANY($1) ORDER BY a.thesis_id, a.position`
)

const (
	attachmentRowsQuery = `SELECT id, thesis_id, label, filename, original_name, mimetype, size_bytes, created_at
FROM attachments WHERE thesis_id = ANY($1) ORDER BY created_at`
	programRowsQuery = `SELECT id, department_id, name FROM programs WHERE id = ANY($1)`
)

// loadSnapshots attaches relation lists, attachments and programs to the rows, preserving order.
func loadSnapshots(ctx context.Context, q sqlx.QueryerContext, theses []models.Thesis) ([]models.ThesisSnapshot, error) {
	snapshots := make([]models.ThesisSnapshot, len(theses))
	if len(theses) == 0 {
		return snapshots, nil
	}
	index := make(map[string]int, len(theses))
	ids := make([]string, len(theses))
	programIDs := make([]string, 0, len(theses))
	seenPrograms := make(map[string]struct{})
	for i, thesis := range theses {
		snapshots[i] = models.ThesisSnapshot{
			Thesis:       thesis,
			Supervisions: []models.Supervision{},
			Graders:      []models.Grader{},
			Authors:      []models.Author{},
			Approvers:    []models.Approver{},
			Attachments:  []models.Attachment{},
		}
		index[thesis.ID] = i
		ids[i] = thesis.ID
		if _, ok := seenPrograms[thesis.ProgramID]; !ok {
			seenPrograms[thesis.ProgramID] = struct{}{}
			programIDs = append(programIDs, thesis.ProgramID)
		}
	}

	var rows []relationRow
	if err := sqlx.SelectContext(ctx, q, &rows, supervisionRowsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load supervisions: %w", err)
	}
	for _, row := range rows {
		s := &snapshots[index[row.ThesisID]]
		s.Supervisions = append(s.Supervisions, models.Supervision{
			ID: row.RelationID.String, ThesisID: row.ThesisID, UserID: row.UserID, Percentage: row.Percentage,
			IsPrimarySupervisor: row.IsPrimary, IsExternal: row.IsExternal, User: row.user(),
		})
	}

	rows = nil
	if err := sqlx.SelectContext(ctx, q, &rows, graderRowsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load graders: %w", err)
	}
	for _, row := range rows {
		s := &snapshots[index[row.ThesisID]]
		s.Graders = append(s.Graders, models.Grader{
			ID: row.RelationID.String, ThesisID: row.ThesisID, UserID: row.UserID,
			IsPrimaryGrader: row.IsPrimary, IsExternal: row.IsExternal, User: row.user(),
		})
	}

	rows = nil
	if err := sqlx.SelectContext(ctx, q, &rows, authorRowsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	for _, row := range rows {
		s := &snapshots[index[row.ThesisID]]
		s.Authors = append(s.Authors, models.Author{ThesisID: row.ThesisID, UserID: row.UserID, User: row.user()})
	}

	rows = nil
	if err := sqlx.SelectContext(ctx, q, &rows, approverRowsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load approvers: %w", err)
	}
	for _, row := range rows {
		s := &snapshots[index[row.ThesisID]]
		s.Approvers = append(s.Approvers, models.Approver{ThesisID: row.ThesisID, UserID: row.UserID, User: row.user()})
	}

	var attachments []models.Attachment
	if err := sqlx.SelectContext(ctx, q, &attachments, attachmentRowsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load attachments: %w", err)
	}
	for _, a := range attachments {
		s := &snapshots[index[a.ThesisID]]
		s.Attachments = append(s.Attachments, a)
	}

	var programs []models.Program
	if err := sqlx.SelectContext(ctx, q, &programs, programRowsQuery, pq.Array(programIDs)); err != nil {
		return nil, fmt.Errorf("load programs: %w", err)
	}
	byID := make(map[string]*models.Program, len(programs))
	for i := range programs {
		byID[programs[i].ID] = &programs[i]
	}
	for i := range snapshots {
		snapshots[i].Program = byID[snapshots[i].ProgramID]
	}
	return snapshots, nil
}

// FindAttachment returns attachment metadata by identifier.
func (r *ThesisRepository) FindAttachment(ctx context.Context, id string) (*models.Attachment, error) {
	const query = `SELECT id, thesis_id, label, filename, original_name, mimetype, size_bytes, created_at FROM attachments WHERE id = $1`
	var attachment models.Attachment
	if err := r.db.GetContext(ctx, &attachment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attachment: %w", err)
	}
	return &attachment, nil
}
