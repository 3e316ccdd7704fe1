package repository

import (
	"context"
	"errors"
	"time"

	"skillgap/internal/database"
	"skillgap/internal/domain/curriculum"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrCurriculumNotFound = errors.New("curriculum not found")

type CurriculumRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (curriculum.Curriculum, error)
	ListIDs(ctx context.Context, limit, offset int) ([]uuid.UUID, error)
	SaveEmbedding(ctx context.Context, id uuid.UUID, embedding []float64, version string) error
	SetEmbeddingError(ctx context.Context, id uuid.UUID, message string) error
}

type PostgresCurriculumRepository struct {
	db database.DB
}

func NewPostgresCurriculumRepository(db database.DB) *PostgresCurriculumRepository {
	return &PostgresCurriculumRepository{db: db}
}

func (r *PostgresCurriculumRepository) GetByID(ctx context.Context, id uuid.UUID) (curriculum.Curriculum, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, COALESCE(program_name, ''), COALESCE(description, ''),
		        COALESCE(target_industries, '{}'), COALESCE(course_skills, '{}'),
		        COALESCE(embedding, '{}'), embedding_generated,
		        COALESCE(embedding_version, ''), COALESCE(embedding_error, ''),
		        created_at
		 FROM curricula
		 WHERE id = $1`,
		id,
	)

	var c curriculum.Curriculum
	err := row.Scan(
		&c.ID, &c.ProgramName, &c.Description,
		&c.TargetIndustries, &c.CourseSkills,
		&c.Embedding, &c.EmbeddingGenerated,
		&c.EmbeddingVersion, &c.EmbeddingError,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return curriculum.Curriculum{}, ErrCurriculumNotFound
		}
		return curriculum.Curriculum{}, err
	}
	return c, nil
}

func (r *PostgresCurriculumRepository) ListIDs(ctx context.Context, limit, offset int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT id FROM curricula ORDER BY created_at ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresCurriculumRepository) SaveEmbedding(ctx context.Context, id uuid.UUID, embedding []float64, version string) error {
	now := time.Now().UTC()
	affected, err := r.db.Exec(ctx,
		`UPDATE curricula
		 SET embedding = $2, embedding_generated = $3, embedding_version = $4, embedding_error = NULL
		 WHERE id = $1`,
		id, embedding, now, version,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCurriculumNotFound
	}
	return nil
}

func (r *PostgresCurriculumRepository) SetEmbeddingError(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE curricula SET embedding_error = $2 WHERE id = $1`,
		id, message,
	)
	return err
}
