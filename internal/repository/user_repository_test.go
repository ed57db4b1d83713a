package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "first_names", "last_name", "student_number", "affiliation", "department_id", "is_admin", "is_external", "created_at", "updated_at"}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("teacher@example.edu").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "tcher", "teacher@example.edu", "Tea", "Cher", nil, nil, "d1", false, false, now, now))

	user, err := repo.FindByEmail(context.Background(), "teacher@example.edu")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	require.NotNil(t, user.DepartmentID)
	assert.Equal(t, "d1", *user.DepartmentID)
	assert.Nil(t, user.StudentNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ANY($1)")).
		WithArgs(pq.Array([]string{"u1", "u2"})).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", nil, "a@example.edu", "A", "One", "1001", nil, nil, false, false, now, now).
			AddRow("u2", nil, "b@example.org", "B", "Two", nil, "Elsewhere", nil, false, true, now, now))

	users, err := repo.FindByIDs(context.Background(), []string{"u1", "u2"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[1].IsExternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
