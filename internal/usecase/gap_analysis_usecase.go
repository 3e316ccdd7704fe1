package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"skillgap/internal/domain/analysis"
	"skillgap/internal/domain/curriculum"
	"skillgap/internal/domain/extract"
	"skillgap/internal/domain/gap"
	"skillgap/internal/domain/skill"
	"skillgap/internal/embedding"
	"skillgap/internal/repository"

	"github.com/google/uuid"
)

// Stable failure reason codes for runs that halt without a snapshot.
// These are expected outcomes on sparse data, not system faults.
const (
	FailureInsufficientText = "insufficient_curriculum_text"
	FailureNoRelevantJobs   = "no_relevant_jobs"
	FailureNoMarketSkills   = "no_market_skills"
)

type AnalyzeOptions struct {
	TargetIndustry      string
	Limit               int
	DaysBack            int
	SimilarityThreshold float64
	FetchMultiplier     int
}

// AnalyzeOutcome is the orchestrator's result. Success=false with a
// Reason code means the pipeline halted on insufficient input; no
// snapshot was persisted.
type AnalyzeOutcome struct {
	Success  bool
	Reason   string
	Message  string
	Snapshot *analysis.Snapshot
}

type GapAnalysisUsecase interface {
	Analyze(ctx context.Context, curriculumID uuid.UUID, opts AnalyzeOptions) (AnalyzeOutcome, error)
	LatestSnapshot(ctx context.Context, curriculumID uuid.UUID) (analysis.Snapshot, error)
}

type GapAnalysis struct {
	curricula repository.CurriculumRepository
	snapshots repository.AnalysisRepository
	relevance *JobRelevanceFilter
	embedder  Embedder
	cache     AnalysisCache
	log       *log.Logger
	now       func() time.Time

	// onCompleted, when set, fires after a snapshot is persisted.
	onCompleted func(curriculumID uuid.UUID, matchRate float64)
}

func NewGapAnalysisUsecase(
	curricula repository.CurriculumRepository,
	snapshots repository.AnalysisRepository,
	relevance *JobRelevanceFilter,
	embedder Embedder,
	cache AnalysisCache,
	logger *log.Logger,
) *GapAnalysis {
	if logger == nil {
		logger = log.Default()
	}
	return &GapAnalysis{
		curricula: curricula,
		snapshots: snapshots,
		relevance: relevance,
		embedder:  embedder,
		cache:     cache,
		log:       logger,
		now:       time.Now,
	}
}

// SetCompletionHook registers a callback fired after each persisted run.
func (u *GapAnalysis) SetCompletionHook(hook func(curriculumID uuid.UUID, matchRate float64)) {
	u.onCompleted = hook
}

func (u *GapAnalysis) Analyze(ctx context.Context, curriculumID uuid.UUID, opts AnalyzeOptions) (AnalyzeOutcome, error) {
	if curriculumID == uuid.Nil {
		return AnalyzeOutcome{}, ErrInvalidInput
	}

	cur, err := u.curricula.GetByID(ctx, curriculumID)
	if err != nil {
		if errors.Is(err, repository.ErrCurriculumNotFound) {
			return AnalyzeOutcome{}, ErrCurriculumNotFound
		}
		u.log.Printf("pipeline=gap_analysis stage=load_curriculum curriculum_id=%s err=%v", curriculumID, err)
		return AnalyzeOutcome{}, ErrInternal
	}

	if u.cache != nil {
		acquired, lerr := u.cache.SetIfNotExists(ctx, analyzeLockKey(curriculumID), "1", analyzeLockTTL)
		switch {
		case lerr != nil:
			// A broken lock backend should not block analyses.
			u.log.Printf("pipeline=gap_analysis stage=lock curriculum_id=%s err=%v", curriculumID, lerr)
		case !acquired:
			return AnalyzeOutcome{}, ErrAnalysisInProgress
		default:
			defer func() {
				if derr := u.cache.Delete(ctx, analyzeLockKey(curriculumID)); derr != nil {
					u.log.Printf("pipeline=gap_analysis stage=unlock curriculum_id=%s err=%v", curriculumID, derr)
				}
			}()
		}
	}

	curEmbedding, outcome, err := u.ensureEmbedding(ctx, &cur)
	if err != nil || outcome != nil {
		if outcome != nil {
			return *outcome, nil
		}
		return AnalyzeOutcome{}, err
	}

	rel, err := u.relevance.GetRelevantJobs(ctx, cur, curEmbedding, RelevanceOptions{
		Limit:               opts.Limit,
		DaysBack:            opts.DaysBack,
		TargetIndustry:      opts.TargetIndustry,
		SimilarityThreshold: opts.SimilarityThreshold,
		FetchMultiplier:     opts.FetchMultiplier,
	})
	if err != nil {
		u.log.Printf("pipeline=gap_analysis stage=select_jobs curriculum_id=%s err=%v", curriculumID, err)
		return AnalyzeOutcome{}, ErrInternal
	}
	if len(rel.Jobs) == 0 {
		return AnalyzeOutcome{
			Success: false,
			Reason:  FailureNoRelevantJobs,
			Message: "no job postings matched the date and industry filters",
		}, nil
	}

	jobInputs := make([]extract.JobInput, 0, len(rel.Jobs))
	for _, p := range rel.Jobs {
		in := extract.JobInput{Description: p.Description, Industry: p.Industry}
		for _, s := range p.Skills {
			in.Skills = append(in.Skills, extract.JobSkill{Name: s.Name, Importance: s.Importance})
		}
		jobInputs = append(jobInputs, in)
	}

	marketSkills := extract.ExtractFromJobs(jobInputs)
	if len(marketSkills) == 0 {
		return AnalyzeOutcome{
			Success: false,
			Reason:  FailureNoMarketSkills,
			Message: "no skills could be extracted from the job sample",
		}, nil
	}

	curriculumSkills := u.curriculumSkills(cur)
	res := gap.Calculate(curriculumSkills, marketSkills)
	recommendations := gap.GenerateRecommendations(res)

	snap := analysis.Snapshot{
		ID:             uuid.New(),
		CurriculumID:   cur.ID,
		AnalysisDate:   u.now().UTC(),
		TargetIndustry: strings.TrimSpace(opts.TargetIndustry),
		JobSampleSize:  len(rel.Jobs),
		Metrics: analysis.Metrics{
			OverallMatchRate:  res.OverallMatchRate,
			CriticalGaps:      res.CriticalGaps,
			EmergingSkills:    res.EmergingSkills,
			WellCoveredSkills: res.WellCoveredSkills,
		}.Truncated(),
		Recommendations: recommendations,
		MLStats:         rel.Stats,
	}

	if err := u.snapshots.Insert(ctx, snap); err != nil {
		u.log.Printf("pipeline=gap_analysis stage=persist curriculum_id=%s err=%v", curriculumID, err)
		return AnalyzeOutcome{}, ErrInternal
	}

	if u.cache != nil {
		if err := u.cache.InvalidateCurriculum(ctx, cur.ID.String()); err != nil {
			u.log.Printf("pipeline=gap_analysis stage=invalidate curriculum_id=%s err=%v", curriculumID, err)
		}
		if err := u.cache.SetJSON(ctx, latestSnapshotKey(cur.ID), snap, 0); err != nil {
			u.log.Printf("pipeline=gap_analysis stage=cache curriculum_id=%s err=%v", curriculumID, err)
		}
	}
	if u.onCompleted != nil {
		u.onCompleted(cur.ID, snap.Metrics.OverallMatchRate)
	}

	u.log.Printf("pipeline=gap_analysis status=ok curriculum_id=%s jobs=%d market_skills=%d match_rate=%.2f",
		cur.ID, len(rel.Jobs), len(marketSkills), snap.Metrics.OverallMatchRate)

	return AnalyzeOutcome{Success: true, Snapshot: &snap}, nil
}

// ensureEmbedding returns the curriculum embedding to rank against,
// generating and persisting one when the stored embedding is absent or
// stale. A persisted embedding survives even if the caller later
// abandons the run; the next attempt reuses it.
func (u *GapAnalysis) ensureEmbedding(ctx context.Context, cur *curriculum.Curriculum) ([]float64, *AnalyzeOutcome, error) {
	if cur.HasUsableEmbedding(u.embedder.Version()) {
		return cur.Embedding, nil, nil
	}

	text := strings.TrimSpace(cur.EmbeddingText())
	if len(text) < embedding.MinTextLength {
		return nil, &AnalyzeOutcome{
			Success: false,
			Reason:  FailureInsufficientText,
			Message: "curriculum has too little text to embed",
		}, nil
	}

	vec, err := u.embedder.Embed(ctx, text)
	if err != nil {
		u.log.Printf("pipeline=gap_analysis stage=ensure_embedding curriculum_id=%s err=%v", cur.ID, err)
		if serr := u.curricula.SetEmbeddingError(ctx, cur.ID, err.Error()); serr != nil {
			u.log.Printf("pipeline=gap_analysis stage=record_embed_error curriculum_id=%s err=%v", cur.ID, serr)
		}
		return nil, nil, ErrInternal
	}

	if err := u.curricula.SaveEmbedding(ctx, cur.ID, vec, u.embedder.Version()); err != nil {
		// The in-memory vector still serves this run.
		u.log.Printf("pipeline=gap_analysis stage=save_embedding curriculum_id=%s err=%v", cur.ID, err)
	}
	cur.Embedding = vec
	cur.EmbeddingVersion = u.embedder.Version()
	return vec, nil, nil
}

// curriculumSkills mirrors the job-side source priority: declared course
// skills win; otherwise the description is scanned.
func (u *GapAnalysis) curriculumSkills(cur curriculum.Curriculum) []skill.Record {
	if len(cur.CourseSkills) > 0 {
		return extract.FromNames(cur.CourseSkills, "")
	}
	return extract.ExtractSkills(cur.Description, "")
}

func (u *GapAnalysis) LatestSnapshot(ctx context.Context, curriculumID uuid.UUID) (analysis.Snapshot, error) {
	if curriculumID == uuid.Nil {
		return analysis.Snapshot{}, ErrInvalidInput
	}

	if u.cache != nil {
		var cached analysis.Snapshot
		hit, err := u.cache.GetJSON(ctx, latestSnapshotKey(curriculumID), &cached)
		if err == nil && hit {
			return cached, nil
		}
	}

	snap, err := u.snapshots.GetLatestByCurriculum(ctx, curriculumID)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return analysis.Snapshot{}, ErrSnapshotNotFound
		}
		return analysis.Snapshot{}, ErrInternal
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, latestSnapshotKey(curriculumID), snap, 0); err != nil {
			u.log.Printf("pipeline=gap_analysis stage=cache curriculum_id=%s err=%v", curriculumID, err)
		}
	}
	return snap, nil
}
