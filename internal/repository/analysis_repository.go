package repository

import (
	"context"
	"encoding/json"
	"errors"

	"skillgap/internal/database"
	"skillgap/internal/domain/analysis"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type AnalysisRepository interface {
	Insert(ctx context.Context, snap analysis.Snapshot) error
	GetLatestByCurriculum(ctx context.Context, curriculumID uuid.UUID) (analysis.Snapshot, error)
}

type PostgresAnalysisRepository struct {
	db database.DB
}

func NewPostgresAnalysisRepository(db database.DB) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

func (r *PostgresAnalysisRepository) Insert(ctx context.Context, snap analysis.Snapshot) error {
	metrics, err := json.Marshal(snap.Metrics)
	if err != nil {
		return err
	}
	recs, err := json.Marshal(snap.Recommendations)
	if err != nil {
		return err
	}
	var mlStats []byte
	if snap.MLStats != nil {
		mlStats, err = json.Marshal(snap.MLStats)
		if err != nil {
			return err
		}
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO gap_analysis_snapshots
		 (id, curriculum_id, analysis_date, target_industry, job_sample_size, metrics, recommendations, ml_stats)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		snap.ID, snap.CurriculumID, snap.AnalysisDate, snap.TargetIndustry,
		snap.JobSampleSize, metrics, recs, mlStats,
	)
	return err
}

func (r *PostgresAnalysisRepository) GetLatestByCurriculum(ctx context.Context, curriculumID uuid.UUID) (analysis.Snapshot, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, curriculum_id, analysis_date, COALESCE(target_industry, ''), job_sample_size,
		        metrics, recommendations, ml_stats
		 FROM gap_analysis_snapshots
		 WHERE curriculum_id = $1
		 ORDER BY analysis_date DESC
		 LIMIT 1`,
		curriculumID,
	)

	var (
		snap       analysis.Snapshot
		metricsRaw []byte
		recsRaw    []byte
		mlStatsRaw []byte
	)
	err := row.Scan(
		&snap.ID, &snap.CurriculumID, &snap.AnalysisDate, &snap.TargetIndustry,
		&snap.JobSampleSize, &metricsRaw, &recsRaw, &mlStatsRaw,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return analysis.Snapshot{}, ErrSnapshotNotFound
		}
		return analysis.Snapshot{}, err
	}

	if len(metricsRaw) > 0 {
		if err := json.Unmarshal(metricsRaw, &snap.Metrics); err != nil {
			return analysis.Snapshot{}, err
		}
	}
	if len(recsRaw) > 0 {
		if err := json.Unmarshal(recsRaw, &snap.Recommendations); err != nil {
			return analysis.Snapshot{}, err
		}
	}
	if len(mlStatsRaw) > 0 {
		var stats analysis.MLStats
		if err := json.Unmarshal(mlStatsRaw, &stats); err != nil {
			return analysis.Snapshot{}, err
		}
		snap.MLStats = &stats
	}
	return snap, nil
}
