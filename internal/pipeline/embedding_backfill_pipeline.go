package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"skillgap/internal/domain/posting"
	"skillgap/internal/embedding"
	"skillgap/internal/repository"
	"skillgap/internal/usecase"
)

const embedChunkSize = 10

// EmbeddingBackfillPipeline walks job postings that have no stored
// embedding and generates one for each, so that analysis runs find
// most candidates pre-embedded instead of paying the provider cost
// inline.
type EmbeddingBackfillPipeline struct {
	postings repository.PostingRepository
	embedder usecase.Embedder
	log      *log.Logger
	limit    int
}

func NewEmbeddingBackfillPipeline(postings repository.PostingRepository, embedder usecase.Embedder, logger *log.Logger) *EmbeddingBackfillPipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &EmbeddingBackfillPipeline{postings: postings, embedder: embedder, log: logger, limit: 100}
}

type BackfillParams struct {
	Workers int
	Limit   int
}

type BackfillSummary struct {
	Embedded int
	Skipped  int
	Failed   int
}

func (p *EmbeddingBackfillPipeline) Run(ctx context.Context, params BackfillParams) (BackfillSummary, error) {
	var summary BackfillSummary
	if p == nil || p.postings == nil || p.embedder == nil {
		return summary, nil
	}
	workers := params.Workers
	if workers <= 0 {
		workers = 3
	}
	limit := params.Limit
	if limit <= 0 {
		limit = p.limit
	}

	start := time.Now()
	p.log.Printf("pipeline=embedding_backfill status=started limit=%d workers=%d", limit, workers)
	defer func() {
		p.log.Printf("pipeline=embedding_backfill status=finished embedded=%d skipped=%d failed=%d duration=%s",
			summary.Embedded, summary.Skipped, summary.Failed, time.Since(start))
	}()

	for {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		batch, err := p.postings.ListMissingEmbeddings(ctx, limit, 0)
		if err != nil {
			return summary, err
		}
		if len(batch) == 0 {
			return summary, nil
		}

		pool := NewWorkerPool(workers, workers*2)
		results := pool.Run(ctx)

		partials := make(chan BackfillSummary, len(batch)/embedChunkSize+1)
		for off := 0; off < len(batch); off += embedChunkSize {
			end := off + embedChunkSize
			if end > len(batch) {
				end = len(batch)
			}
			chunk := batch[off:end]
			pool.Submit(func(ctx context.Context) error {
				s, err := p.embedChunk(ctx, chunk)
				partials <- s
				return err
			})
		}

		pool.Close()
		for r := range results {
			_ = r
		}
		close(partials)

		var progressed int
		for s := range partials {
			summary.Embedded += s.Embedded
			summary.Skipped += s.Skipped
			summary.Failed += s.Failed
			progressed += s.Embedded + s.Skipped + s.Failed
		}

		// Failed and skipped postings get an embedding_error recorded,
		// which removes them from the next ListMissingEmbeddings page.
		// Zero progress would otherwise loop forever.
		if progressed == 0 {
			return summary, nil
		}
	}
}

// embedChunk embeds up to embedChunkSize postings with one batched call,
// falling back to per-posting calls when the batch fails so one bad
// description cannot sink its neighbours.
func (p *EmbeddingBackfillPipeline) embedChunk(ctx context.Context, chunk []posting.Posting) (BackfillSummary, error) {
	var s BackfillSummary

	texts := make([]string, len(chunk))
	for i, job := range chunk {
		texts[i] = strings.TrimSpace(job.Description)
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vectors) == len(chunk) {
		for i, job := range chunk {
			p.persist(ctx, job, vectors[i], &s)
		}
		return s, nil
	}

	var lastErr error
	for i, job := range chunk {
		vec, err := p.embedder.Embed(ctx, texts[i])
		if err != nil {
			s.Failed++
			lastErr = err
			p.log.Printf("pipeline=embedding_backfill status=error posting_id=%s err=%v", job.ID, err)
			if serr := p.postings.SetEmbeddingError(ctx, job.ID, err.Error()); serr != nil {
				p.log.Printf("pipeline=embedding_backfill status=error posting_id=%s err=%v", job.ID, serr)
			}
			continue
		}
		p.persist(ctx, job, vec, &s)
	}
	return s, lastErr
}

func (p *EmbeddingBackfillPipeline) persist(ctx context.Context, job posting.Posting, vec []float64, s *BackfillSummary) {
	if len(vec) == 0 {
		s.Skipped++
		if err := p.postings.SetEmbeddingError(ctx, job.ID, embedding.ErrEmptyText.Error()); err != nil {
			p.log.Printf("pipeline=embedding_backfill status=error posting_id=%s err=%v", job.ID, err)
		}
		return
	}
	if err := p.postings.SaveEmbedding(ctx, job.ID, vec, p.embedder.Version()); err != nil {
		s.Failed++
		p.log.Printf("pipeline=embedding_backfill status=error posting_id=%s err=%v", job.ID, err)
		return
	}
	s.Embedded++
	p.log.Printf("pipeline=embedding_backfill status=ok posting_id=%s dims=%d", job.ID, len(vec))
}
