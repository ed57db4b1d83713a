package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/thesis-registry-api/internal/models"
)

func TestEventLogRepositoryListByThesis(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventLogRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM event_logs\nWHERE thesis_id = $1")).
		WithArgs("t1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "thesis_id", "user_id", "type", "data", "created_at"}).
			AddRow("e2", "t1", nil, "THESIS_STATUS_CHANGED", []byte(`{"from":"IN_PROGRESS","to":"COMPLETED"}`), now).
			AddRow("e1", "t1", "u1", "THESIS_CREATED", []byte(`{}`), now.Add(-time.Hour)))

	entries, err := repo.ListByThesis(context.Background(), "t1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.EventThesisStatusChanged, entries[0].Type)
	assert.Nil(t, entries[0].UserID)
	require.NotNil(t, entries[1].UserID)
	assert.Equal(t, "u1", *entries[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventLogRepositoryClampsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM event_logs")).
		WithArgs("t1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "thesis_id", "user_id", "type", "data", "created_at"}))

	_, err := repo.ListByThesis(context.Background(), "t1", 10000)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
