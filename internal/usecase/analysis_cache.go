package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// analyzeLockTTL bounds how long a crashed run can hold its lock.
const analyzeLockTTL = 2 * time.Minute

type AnalysisCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// SetIfNotExists acquires a short-lived lock key. A bypassed cache
	// reports the lock as acquired so analyses still run without Redis.
	SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// InvalidateCurriculum drops every cached artifact for a curriculum.
	InvalidateCurriculum(ctx context.Context, curriculumID string) error
}

func latestSnapshotKey(curriculumID uuid.UUID) string {
	return "analysis:latest:" + curriculumID.String()
}

func analyzeLockKey(curriculumID uuid.UUID) string {
	return "analysis:lock:" + curriculumID.String()
}
