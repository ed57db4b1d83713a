package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/thesis-registry-api/internal/models"
)

// EventLogRepository reads the append-only thesis audit log. Writes only
// happen inside thesis transactions.
type EventLogRepository struct {
	db *sqlx.DB
}

// NewEventLogRepository constructs the repository.
func NewEventLogRepository(db *sqlx.DB) *EventLogRepository {
	return &EventLogRepository{db: db}
}

// ListByThesis returns the entries of a thesis, newest first.
func (r *EventLogRepository) ListByThesis(ctx context.Context, thesisID string, limit int) ([]models.EventLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const query = `SELECT id, thesis_id, user_id, type, data, created_at FROM event_logs
WHERE thesis_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	var entries []models.EventLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, thesisID, limit); err != nil {
		return nil, fmt.Errorf("list event logs: %w", err)
	}
	return entries, nil
}
