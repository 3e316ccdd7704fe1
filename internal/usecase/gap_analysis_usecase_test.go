package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"skillgap/internal/domain/analysis"
	"skillgap/internal/domain/curriculum"
	"skillgap/internal/domain/posting"
	"skillgap/internal/domain/skill"

	"github.com/google/uuid"
)

type gapAnalysisFixture struct {
	usecase   *GapAnalysis
	curricula *fakeCurriculumRepo
	postings  *fakePostingRepo
	snapshots *fakeAnalysisRepo
	embedder  *fakeEmbedder
	cache     *fakeCache
}

func newGapAnalysisFixture(curricula []curriculum.Curriculum, postings []posting.Posting) gapAnalysisFixture {
	curRepo := newFakeCurriculumRepo(curricula...)
	postRepo := newFakePostingRepo(postings...)
	snapRepo := newFakeAnalysisRepo()
	embedder := &fakeEmbedder{version: "test-v1", vec: []float64{1, 0}}
	cache := newFakeCache()

	relevance := NewJobRelevanceFilter(postRepo, embedder, testLogger())
	u := NewGapAnalysisUsecase(curRepo, snapRepo, relevance, embedder, cache, testLogger())

	return gapAnalysisFixture{
		usecase:   u,
		curricula: curRepo,
		postings:  postRepo,
		snapshots: snapRepo,
		embedder:  embedder,
		cache:     cache,
	}
}

func embeddedCurriculum() curriculum.Curriculum {
	return curriculum.Curriculum{
		ID:               uuid.New(),
		ProgramName:      "Software Engineering BSc",
		Description:      "A four year program covering software construction and data management.",
		CourseSkills:     []string{"python", "sql"},
		Embedding:        []float64{1, 0},
		EmbeddingVersion: "test-v1",
	}
}

func skilledPosting(names ...string) posting.Posting {
	p := embeddedPosting([]float64{1, 0}, "test-v1")
	for _, n := range names {
		p.Skills = append(p.Skills, posting.Skill{Name: n, Importance: skill.ImportanceRequired})
	}
	return p
}

func TestAnalyzeHappyPath(t *testing.T) {
	cur := embeddedCurriculum()
	fx := newGapAnalysisFixture(
		[]curriculum.Curriculum{cur},
		[]posting.Posting{
			skilledPosting("python", "kubernetes"),
			skilledPosting("python", "sql"),
		},
	)

	var hookCurriculum uuid.UUID
	var hookRate float64
	fx.usecase.SetCompletionHook(func(id uuid.UUID, rate float64) {
		hookCurriculum = id
		hookRate = rate
	})

	outcome, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Success {
		t.Fatalf("outcome = %+v, want success", outcome)
	}

	snap := outcome.Snapshot
	if snap == nil {
		t.Fatal("success outcome carries no snapshot")
	}
	if snap.CurriculumID != cur.ID {
		t.Errorf("snapshot curriculum = %s, want %s", snap.CurriculumID, cur.ID)
	}
	if snap.JobSampleSize != 2 {
		t.Errorf("job sample size = %d, want 2", snap.JobSampleSize)
	}
	// python and sql covered, kubernetes gapped: 2 of 3 market skills.
	if snap.Metrics.OverallMatchRate != 66.67 {
		t.Errorf("match rate = %v, want 66.67", snap.Metrics.OverallMatchRate)
	}
	if len(snap.Metrics.CriticalGaps) != 1 || snap.Metrics.CriticalGaps[0].SkillName != "kubernetes" {
		t.Errorf("gaps = %v, want kubernetes only", snap.Metrics.CriticalGaps)
	}
	if snap.MLStats == nil {
		t.Error("semantic run lost its ML stats")
	}

	if len(fx.snapshots.inserted) != 1 {
		t.Fatalf("inserted %d snapshots, want 1", len(fx.snapshots.inserted))
	}
	if _, ok := fx.cache.data[latestSnapshotKey(cur.ID)]; !ok {
		t.Error("latest snapshot was not cached")
	}
	if hookCurriculum != cur.ID || hookRate != 66.67 {
		t.Errorf("completion hook got (%s, %v)", hookCurriculum, hookRate)
	}
}

func TestAnalyzeReleasesLock(t *testing.T) {
	cur := embeddedCurriculum()
	fx := newGapAnalysisFixture([]curriculum.Curriculum{cur}, []posting.Posting{skilledPosting("python")})

	if _, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, held := fx.cache.data[analyzeLockKey(cur.ID)]; held {
		t.Error("lock still held after the run")
	}

	// A second run must be able to take the lock again.
	if _, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{}); err != nil {
		t.Fatal(err)
	}
}

func TestAnalyzeRejectedWhileLockHeld(t *testing.T) {
	cur := embeddedCurriculum()
	fx := newGapAnalysisFixture([]curriculum.Curriculum{cur}, []posting.Posting{skilledPosting("python")})
	fx.cache.data[analyzeLockKey(cur.ID)] = []byte("1")

	_, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{})
	if !errors.Is(err, ErrAnalysisInProgress) {
		t.Fatalf("err = %v, want ErrAnalysisInProgress", err)
	}
	if len(fx.snapshots.inserted) != 0 {
		t.Error("locked run persisted a snapshot")
	}
}

func TestAnalyzeNilCurriculumID(t *testing.T) {
	fx := newGapAnalysisFixture(nil, nil)

	_, err := fx.usecase.Analyze(context.Background(), uuid.Nil, AnalyzeOptions{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzeCurriculumNotFound(t *testing.T) {
	fx := newGapAnalysisFixture(nil, nil)

	_, err := fx.usecase.Analyze(context.Background(), uuid.New(), AnalyzeOptions{})
	if !errors.Is(err, ErrCurriculumNotFound) {
		t.Fatalf("err = %v, want ErrCurriculumNotFound", err)
	}
}

func TestAnalyzeInsufficientCurriculumText(t *testing.T) {
	cur := curriculum.Curriculum{ID: uuid.New(), ProgramName: "X"}
	fx := newGapAnalysisFixture([]curriculum.Curriculum{cur}, nil)

	outcome, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Success || outcome.Reason != FailureInsufficientText {
		t.Fatalf("outcome = %+v, want halt with %s", outcome, FailureInsufficientText)
	}
	if len(fx.snapshots.inserted) != 0 {
		t.Error("halted run must not persist a snapshot")
	}
}

func TestAnalyzeNoRelevantJobs(t *testing.T) {
	cur := embeddedCurriculum()
	fx := newGapAnalysisFixture([]curriculum.Curriculum{cur}, nil)

	outcome, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Success || outcome.Reason != FailureNoRelevantJobs {
		t.Fatalf("outcome = %+v, want halt with %s", outcome, FailureNoRelevantJobs)
	}
}

func TestAnalyzeNoMarketSkills(t *testing.T) {
	cur := embeddedCurriculum()
	bare := embeddedPosting([]float64{1, 0}, "test-v1")
	bare.Description = "short"
	fx := newGapAnalysisFixture([]curriculum.Curriculum{cur}, []posting.Posting{bare})

	outcome, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Success || outcome.Reason != FailureNoMarketSkills {
		t.Fatalf("outcome = %+v, want halt with %s", outcome, FailureNoMarketSkills)
	}
}

func TestAnalyzeGeneratesAndPersistsCurriculumEmbedding(t *testing.T) {
	cur := embeddedCurriculum()
	cur.Embedding = nil
	cur.EmbeddingVersion = ""
	fx := newGapAnalysisFixture([]curriculum.Curriculum{cur}, []posting.Posting{skilledPosting("python")})

	outcome, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Success {
		t.Fatalf("outcome = %+v", outcome)
	}

	if _, ok := fx.curricula.saved[cur.ID]; !ok {
		t.Error("curriculum embedding was not persisted")
	}
	if fx.curricula.savedVer[cur.ID] != "test-v1" {
		t.Errorf("persisted version = %s", fx.curricula.savedVer[cur.ID])
	}
}

func TestAnalyzeEmbeddingFailure(t *testing.T) {
	cur := embeddedCurriculum()
	cur.Embedding = nil
	fx := newGapAnalysisFixture([]curriculum.Curriculum{cur}, nil)
	fx.embedder.embedErr = errors.New("provider down")

	_, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal", err)
	}
	if fx.curricula.embedErrors[cur.ID] == "" {
		t.Error("embedding failure was not recorded on the curriculum")
	}
}

func TestAnalyzeTruncatesMetrics(t *testing.T) {
	cur := embeddedCurriculum()
	cur.CourseSkills = []string{"basket weaving"}

	names := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		names = append(names, fmt.Sprintf("market skill %d", i))
	}
	fx := newGapAnalysisFixture([]curriculum.Curriculum{cur}, []posting.Posting{skilledPosting(names...)})

	outcome, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Success {
		t.Fatalf("outcome = %+v", outcome)
	}
	if got := len(outcome.Snapshot.Metrics.CriticalGaps); got != analysis.MaxCriticalGaps {
		t.Errorf("critical gaps persisted = %d, want cap %d", got, analysis.MaxCriticalGaps)
	}
}

func TestLatestSnapshotCacheMissThenHit(t *testing.T) {
	cur := embeddedCurriculum()
	fx := newGapAnalysisFixture([]curriculum.Curriculum{cur}, []posting.Posting{skilledPosting("python")})

	if _, err := fx.usecase.Analyze(context.Background(), cur.ID, AnalyzeOptions{}); err != nil {
		t.Fatal(err)
	}

	// Simulate cache eviction; the repo backs the first read and the cache
	// the second.
	fx.cache.data = map[string][]byte{}
	first, err := fx.usecase.LatestSnapshot(context.Background(), cur.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fx.cache.data[latestSnapshotKey(cur.ID)]; !ok {
		t.Error("repo hit was not written back to the cache")
	}

	fx.snapshots.latest = map[uuid.UUID]analysis.Snapshot{}
	second, err := fx.usecase.LatestSnapshot(context.Background(), cur.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("cache served a different snapshot: %s vs %s", first.ID, second.ID)
	}
}

func TestLatestSnapshotNotFound(t *testing.T) {
	fx := newGapAnalysisFixture(nil, nil)

	_, err := fx.usecase.LatestSnapshot(context.Background(), uuid.New())
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("err = %v, want ErrSnapshotNotFound", err)
	}
}
