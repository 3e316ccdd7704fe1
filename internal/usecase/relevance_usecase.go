package usecase

import (
	"context"
	"log"
	"strings"

	"skillgap/internal/domain/analysis"
	"skillgap/internal/domain/curriculum"
	"skillgap/internal/domain/posting"
	"skillgap/internal/domain/similarity"
	"skillgap/internal/embedding"
	"skillgap/internal/repository"
)

const (
	DefaultJobLimit        = 100
	DefaultDaysBack        = 90
	DefaultThreshold       = 0.3
	DefaultFetchMultiplier = 3
)

type RelevanceOptions struct {
	Limit               int
	DaysBack            int
	TargetIndustry      string
	SimilarityThreshold float64
	FetchMultiplier     int
}

func (o RelevanceOptions) withDefaults() RelevanceOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultJobLimit
	}
	if o.DaysBack <= 0 {
		o.DaysBack = DefaultDaysBack
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultThreshold
	}
	if o.FetchMultiplier <= 0 {
		o.FetchMultiplier = DefaultFetchMultiplier
	}
	return o
}

// RelevantJobs is the relevance filter's output. Stats is nil when the
// run fell through to the category/date-only strategy.
type RelevantJobs struct {
	Jobs  []posting.Posting
	Stats *analysis.MLStats
}

// Embedder is the slice of the embedding service the relevance filter
// needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	Version() string
}

// JobRelevanceFilter selects the job postings an analysis run should
// consider, trying an ordered list of strategies: semantic similarity
// first, then plain category/date filtering.
type JobRelevanceFilter struct {
	postings repository.PostingRepository
	embedder Embedder
	log      *log.Logger
}

func NewJobRelevanceFilter(postings repository.PostingRepository, embedder Embedder, logger *log.Logger) *JobRelevanceFilter {
	if logger == nil {
		logger = log.Default()
	}
	return &JobRelevanceFilter{postings: postings, embedder: embedder, log: logger}
}

type relevanceInput struct {
	curriculum curriculum.Curriculum
	embedding  []float64
	opts       RelevanceOptions
}

type relevanceStrategy interface {
	name() string
	canAttempt(in relevanceInput) bool
	run(ctx context.Context, in relevanceInput) (RelevantJobs, error)
}

// GetRelevantJobs runs each strategy in order, advancing on an empty or
// failed result. An error is returned only when every strategy failed.
func (f *JobRelevanceFilter) GetRelevantJobs(ctx context.Context, cur curriculum.Curriculum, curEmbedding []float64, opts RelevanceOptions) (RelevantJobs, error) {
	in := relevanceInput{curriculum: cur, embedding: curEmbedding, opts: opts.withDefaults()}

	strategies := []relevanceStrategy{
		&semanticStrategy{filter: f},
		&categoryStrategy{filter: f},
	}

	var lastErr error
	for _, s := range strategies {
		if !s.canAttempt(in) {
			continue
		}
		res, err := s.run(ctx, in)
		if err != nil {
			f.log.Printf("filter=relevance strategy=%s status=error err=%v", s.name(), err)
			lastErr = err
			continue
		}
		if len(res.Jobs) == 0 {
			f.log.Printf("filter=relevance strategy=%s status=empty", s.name())
			continue
		}
		f.log.Printf("filter=relevance strategy=%s status=ok jobs=%d", s.name(), len(res.Jobs))
		return res, nil
	}

	if lastErr != nil {
		return RelevantJobs{}, lastErr
	}
	return RelevantJobs{Jobs: []posting.Posting{}}, nil
}

func (f *JobRelevanceFilter) industriesFor(in relevanceInput) []string {
	if s := strings.TrimSpace(in.opts.TargetIndustry); s != "" {
		return []string{s}
	}
	return in.curriculum.TargetIndustries
}

type semanticStrategy struct {
	filter *JobRelevanceFilter
}

func (s *semanticStrategy) name() string { return "semantic" }

func (s *semanticStrategy) canAttempt(in relevanceInput) bool {
	return len(in.embedding) > 0
}

func (s *semanticStrategy) run(ctx context.Context, in relevanceInput) (RelevantJobs, error) {
	f := s.filter
	limit := in.opts.Limit

	candidates, err := f.postings.ListRecent(ctx, repository.PostingFilter{
		DaysBack:   in.opts.DaysBack,
		Industries: f.industriesFor(in),
		Limit:      limit * in.opts.FetchMultiplier,
	})
	if err != nil {
		return RelevantJobs{}, err
	}
	if len(candidates) == 0 {
		return RelevantJobs{Jobs: []posting.Posting{}}, nil
	}

	version := f.embedder.Version()
	embedded := make([]posting.Posting, 0, len(candidates))
	unembedded := make([]posting.Posting, 0)
	for _, c := range candidates {
		if c.HasUsableEmbedding(version) {
			embedded = append(embedded, c)
		} else {
			unembedded = append(unembedded, c)
		}
	}

	embedded, unembedded, skipped := f.embedMissing(ctx, embedded, unembedded)

	if len(embedded) == 0 {
		// Nothing to rank; hand over to the category strategy.
		return RelevantJobs{Jobs: []posting.Posting{}}, nil
	}

	vectors := make([][]float64, len(embedded))
	for i := range embedded {
		vectors[i] = embedded[i].Embedding
	}
	ranked, mismatched := similarity.Rank(in.embedding, vectors)
	skipped += len(mismatched)

	scores := make([]float64, len(ranked))
	for i, r := range ranked {
		scores[i] = r.Score
	}
	threshold, adjusted := similarity.EffectiveThreshold(scores, in.opts.SimilarityThreshold)
	if adjusted {
		f.log.Printf("filter=relevance strategy=semantic threshold_adjusted=true requested=%.2f effective=%.2f", in.opts.SimilarityThreshold, threshold)
	}

	admitted := similarity.FilterByThreshold(ranked, threshold)
	if len(admitted) > limit {
		admitted = admitted[:limit]
	}

	jobs := make([]posting.Posting, 0, limit)
	for _, r := range admitted {
		p := embedded[r.Index]
		score := r.Score
		p.SimilarityScore = &score
		jobs = append(jobs, p)
	}

	// Below-limit shortfall is topped up with date/industry-filtered jobs
	// that never entered semantic ranking. They carry no similarity score
	// and are lower confidence by construction.
	supplemented := 0
	for _, p := range unembedded {
		if len(jobs) >= limit {
			break
		}
		jobs = append(jobs, p)
		supplemented++
	}

	stats := &analysis.MLStats{
		CandidatesConsidered: len(candidates),
		EmbeddedCandidates:   len(embedded),
		SkippedEmbeddings:    skipped,
		SupplementedJobs:     supplemented,
		RequestedThreshold:   in.opts.SimilarityThreshold,
		EffectiveThreshold:   threshold,
		ThresholdAdjusted:    adjusted,
	}
	return RelevantJobs{Jobs: jobs, Stats: stats}, nil
}

// embedMissing attempts on-the-fly embeddings for candidates that lack
// one, in bounded chunks. A failing chunk is retried item by item so a
// single bad candidate is skipped and counted rather than failing the
// batch. Fresh embeddings are persisted best-effort to warm later runs.
func (f *JobRelevanceFilter) embedMissing(ctx context.Context, embedded, unembedded []posting.Posting) (nowEmbedded, stillUnembedded []posting.Posting, skipped int) {
	version := f.embedder.Version()
	candidates := make([]int, 0, len(unembedded))
	texts := make([]string, 0, len(unembedded))
	for i, p := range unembedded {
		desc := strings.TrimSpace(p.Description)
		if len(desc) < embedding.MinTextLength {
			continue
		}
		candidates = append(candidates, i)
		texts = append(texts, desc)
	}

	embeddedNow := make(map[int]bool, len(candidates))
	if len(candidates) > 0 {
		vectors, err := f.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			for k, idx := range candidates {
				unembedded[idx].Embedding = vectors[k]
				unembedded[idx].EmbeddingVersion = version
				embeddedNow[idx] = true
				if perr := f.postings.SaveEmbedding(ctx, unembedded[idx].ID, vectors[k], version); perr != nil {
					f.log.Printf("filter=relevance op=save_embedding job_id=%s err=%v", unembedded[idx].ID, perr)
				}
			}
		} else {
			for k, idx := range candidates {
				vec, ierr := f.embedder.Embed(ctx, texts[k])
				if ierr != nil {
					skipped++
					f.log.Printf("filter=relevance op=embed_candidate job_id=%s status=skipped err=%v", unembedded[idx].ID, ierr)
					if perr := f.postings.SetEmbeddingError(ctx, unembedded[idx].ID, ierr.Error()); perr != nil {
						f.log.Printf("filter=relevance op=record_embed_error job_id=%s err=%v", unembedded[idx].ID, perr)
					}
					continue
				}
				unembedded[idx].Embedding = vec
				unembedded[idx].EmbeddingVersion = version
				embeddedNow[idx] = true
				if perr := f.postings.SaveEmbedding(ctx, unembedded[idx].ID, vec, version); perr != nil {
					f.log.Printf("filter=relevance op=save_embedding job_id=%s err=%v", unembedded[idx].ID, perr)
				}
			}
		}
	}

	nowEmbedded = embedded
	stillUnembedded = make([]posting.Posting, 0, len(unembedded))
	for i, p := range unembedded {
		if embeddedNow[i] {
			nowEmbedded = append(nowEmbedded, p)
		} else {
			stillUnembedded = append(stillUnembedded, p)
		}
	}
	return nowEmbedded, stillUnembedded, skipped
}

type categoryStrategy struct {
	filter *JobRelevanceFilter
}

func (s *categoryStrategy) name() string { return "category" }

func (s *categoryStrategy) canAttempt(relevanceInput) bool { return true }

func (s *categoryStrategy) run(ctx context.Context, in relevanceInput) (RelevantJobs, error) {
	f := s.filter
	jobs, err := f.postings.ListRecent(ctx, repository.PostingFilter{
		DaysBack:   in.opts.DaysBack,
		Industries: f.industriesFor(in),
		Limit:      in.opts.Limit,
	})
	if err != nil {
		return RelevantJobs{}, err
	}
	return RelevantJobs{Jobs: jobs, Stats: nil}, nil
}
