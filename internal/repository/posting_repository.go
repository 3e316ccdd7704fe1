package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"skillgap/internal/database"
	"skillgap/internal/domain/posting"

	"github.com/google/uuid"
)

type PostingFilter struct {
	DaysBack   int
	Industries []string
	Limit      int
}

type PostingRepository interface {
	ListRecent(ctx context.Context, filter PostingFilter) ([]posting.Posting, error)
	ListMissingEmbeddings(ctx context.Context, limit, offset int) ([]posting.Posting, error)
	SaveEmbedding(ctx context.Context, id uuid.UUID, embedding []float64, version string) error
	SetEmbeddingError(ctx context.Context, id uuid.UUID, message string) error
}

type PostgresPostingRepository struct {
	db database.DB
}

func NewPostgresPostingRepository(db database.DB) *PostgresPostingRepository {
	return &PostgresPostingRepository{db: db}
}

const postingColumns = `id, COALESCE(title, ''), COALESCE(company, ''), COALESCE(location, ''),
	COALESCE(industry, ''), COALESCE(description, ''), COALESCE(url, ''),
	COALESCE(skills, '[]'::jsonb), posted_at, created_at,
	COALESCE(embedding, '{}'), embedding_generated,
	COALESCE(embedding_version, ''), COALESCE(embedding_error, '')`

func (r *PostgresPostingRepository) ListRecent(ctx context.Context, filter PostingFilter) ([]posting.Posting, error) {
	daysBack := filter.DaysBack
	if daysBack <= 0 {
		daysBack = 90
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 2000 {
		limit = 2000
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)

	patterns := make([]string, 0, len(filter.Industries))
	for _, ind := range filter.Industries {
		ind = strings.TrimSpace(ind)
		if ind == "" {
			continue
		}
		patterns = append(patterns, "%"+ind+"%")
	}

	var (
		rows database.Rows
		err  error
	)
	if len(patterns) > 0 {
		rows, err = r.db.Query(ctx,
			`SELECT `+postingColumns+`
			 FROM job_postings
			 WHERE posted_at >= $1 AND industry ILIKE ANY($2)
			 ORDER BY posted_at DESC
			 LIMIT $3`,
			cutoff, patterns, limit,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+postingColumns+`
			 FROM job_postings
			 WHERE posted_at >= $1
			 ORDER BY posted_at DESC
			 LIMIT $2`,
			cutoff, limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPostings(rows)
}

func (r *PostgresPostingRepository) ListMissingEmbeddings(ctx context.Context, limit, offset int) ([]posting.Posting, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+postingColumns+`
		 FROM job_postings
		 WHERE (embedding IS NULL OR cardinality(embedding) = 0)
		   AND embedding_error IS NULL
		   AND length(COALESCE(description, '')) >= 20
		 ORDER BY created_at ASC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPostings(rows)
}

func (r *PostgresPostingRepository) SaveEmbedding(ctx context.Context, id uuid.UUID, embedding []float64, version string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`UPDATE job_postings
		 SET embedding = $2, embedding_generated = $3, embedding_version = $4, embedding_error = NULL
		 WHERE id = $1`,
		id, embedding, now, version,
	)
	return err
}

func (r *PostgresPostingRepository) SetEmbeddingError(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE job_postings SET embedding_error = $2 WHERE id = $1`,
		id, message,
	)
	return err
}

func scanPostings(rows database.Rows) ([]posting.Posting, error) {
	out := make([]posting.Posting, 0)
	for rows.Next() {
		var (
			p         posting.Posting
			skillsRaw []byte
		)
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Company, &p.Location,
			&p.Industry, &p.Description, &p.URL,
			&skillsRaw, &p.PostedAt, &p.CreatedAt,
			&p.Embedding, &p.EmbeddingGenerated,
			&p.EmbeddingVersion, &p.EmbeddingError,
		); err != nil {
			return nil, err
		}
		if len(skillsRaw) > 0 {
			if err := json.Unmarshal(skillsRaw, &p.Skills); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
