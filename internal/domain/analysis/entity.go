package analysis

import (
	"time"

	"github.com/google/uuid"

	"skillgap/internal/domain/gap"
)

const (
	MaxCriticalGaps   = 10
	MaxEmergingSkills = 15
	MaxCoveredSkills  = 10
)

type Metrics struct {
	OverallMatchRate  float64             `json:"overall_match_rate"`
	CriticalGaps      []gap.Entry         `json:"critical_gaps"`
	EmergingSkills    []gap.EmergingSkill `json:"emerging_skills"`
	WellCoveredSkills []gap.CoveredSkill  `json:"well_covered_skills"`
}

// MLStats describes the semantic-filtering leg of one analysis run. A nil
// MLStats on a snapshot means the run fell back to category/date
// filtering only.
type MLStats struct {
	CandidatesConsidered int     `json:"candidates_considered"`
	EmbeddedCandidates   int     `json:"embedded_candidates"`
	SkippedEmbeddings    int     `json:"skipped_embeddings"`
	SupplementedJobs     int     `json:"supplemented_jobs"`
	RequestedThreshold   float64 `json:"requested_threshold"`
	EffectiveThreshold   float64 `json:"effective_threshold"`
	ThresholdAdjusted    bool    `json:"threshold_adjusted"`
}

// Snapshot is the persisted, immutable result of one gap analysis run.
// A new run always creates a new snapshot, preserving the trend line.
type Snapshot struct {
	ID              uuid.UUID
	CurriculumID    uuid.UUID
	AnalysisDate    time.Time
	TargetIndustry  string
	JobSampleSize   int
	Metrics         Metrics
	Recommendations []gap.Recommendation
	MLStats         *MLStats
}

// Truncated returns metrics with each list cut to its persisted top-N.
func (m Metrics) Truncated() Metrics {
	out := m
	if len(out.CriticalGaps) > MaxCriticalGaps {
		out.CriticalGaps = out.CriticalGaps[:MaxCriticalGaps]
	}
	if len(out.EmergingSkills) > MaxEmergingSkills {
		out.EmergingSkills = out.EmergingSkills[:MaxEmergingSkills]
	}
	if len(out.WellCoveredSkills) > MaxCoveredSkills {
		out.WellCoveredSkills = out.WellCoveredSkills[:MaxCoveredSkills]
	}
	return out
}
