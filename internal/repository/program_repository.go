package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/thesis-registry-api/internal/models"
)

// ProgramRepository provides read access to programs and study tracks.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// FindByID returns a program by identifier.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, department_id, name FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return &program, nil
}

// FindStudyTrack returns a study track by identifier.
func (r *ProgramRepository) FindStudyTrack(ctx context.Context, id string) (*models.StudyTrack, error) {
	const query = `SELECT id, program_id, name FROM study_tracks WHERE id = $1`
	var track models.StudyTrack
	if err := r.db.GetContext(ctx, &track, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find study track: %w", err)
	}
	return &track, nil
}
