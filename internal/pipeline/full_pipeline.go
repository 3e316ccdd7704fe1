package pipeline

import (
	"context"
	"log"
	"time"

	"skillgap/internal/repository"
	"skillgap/internal/usecase"
)

// ScrapeFunc runs one ingestion pass and reports how many postings it
// stored. The pipeline treats scraping as optional; a nil func skips
// the step.
type ScrapeFunc func(ctx context.Context) (int, error)

// FullPipeline chains ingestion, embedding backfill and gap analysis
// so a single scheduled run refreshes every curriculum snapshot.
type FullPipeline struct {
	scrape   ScrapeFunc
	backfill *EmbeddingBackfillPipeline
	analysis usecase.GapAnalysisUsecase

	curricula repository.CurriculumRepository

	log *log.Logger
}

type FullPipelineParams struct {
	BackfillWorkers int
	BackfillLimit   int

	AnalyzeOptions usecase.AnalyzeOptions
}

func NewFullPipeline(
	scrape ScrapeFunc,
	backfill *EmbeddingBackfillPipeline,
	analysis usecase.GapAnalysisUsecase,
	curricula repository.CurriculumRepository,
	logger *log.Logger,
) *FullPipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &FullPipeline{
		scrape:    scrape,
		backfill:  backfill,
		analysis:  analysis,
		curricula: curricula,
		log:       logger,
	}
}

func (p *FullPipeline) Run(ctx context.Context, params FullPipelineParams) error {
	if p == nil {
		return nil
	}
	start := time.Now()

	p.log.Printf("pipeline=full status=started")
	defer func() {
		p.log.Printf("pipeline=full status=finished duration=%s", time.Since(start))
	}()

	if err := p.RunScraper(ctx); err != nil {
		p.log.Printf("pipeline=full step=scraper status=error err=%v", err)
	}

	if err := p.RunBackfill(ctx, params); err != nil {
		p.log.Printf("pipeline=full step=embedding_backfill status=error err=%v", err)
	}

	if err := p.RunAnalyses(ctx, params); err != nil {
		p.log.Printf("pipeline=full step=gap_analysis status=error err=%v", err)
		return err
	}

	return nil
}

func (p *FullPipeline) RunScraper(ctx context.Context) error {
	if p == nil || p.scrape == nil {
		return nil
	}

	stepStart := time.Now()
	p.log.Printf("pipeline=full step=scraper status=started")

	stored, err := p.scrape(ctx)

	p.log.Printf("pipeline=full step=scraper status=finished stored=%d duration=%s", stored, time.Since(stepStart))
	return err
}

func (p *FullPipeline) RunBackfill(ctx context.Context, params FullPipelineParams) error {
	if p == nil || p.backfill == nil {
		return nil
	}

	stepStart := time.Now()
	p.log.Printf("pipeline=full step=embedding_backfill status=started")
	defer func() {
		p.log.Printf("pipeline=full step=embedding_backfill status=finished duration=%s", time.Since(stepStart))
	}()

	_, err := p.backfill.Run(ctx, BackfillParams{Workers: params.BackfillWorkers, Limit: params.BackfillLimit})
	return err
}

// RunAnalyses refreshes the snapshot of every curriculum. A halted
// analysis (too little data) is logged and skipped; only transport or
// storage errors abort the walk.
func (p *FullPipeline) RunAnalyses(ctx context.Context, params FullPipelineParams) error {
	if p == nil || p.analysis == nil || p.curricula == nil {
		return nil
	}

	stepStart := time.Now()
	p.log.Printf("pipeline=full step=gap_analysis status=started")
	defer func() {
		p.log.Printf("pipeline=full step=gap_analysis status=finished duration=%s", time.Since(stepStart))
	}()

	var analyzed, halted int
	for off := 0; ; {
		ids, err := p.curricula.ListIDs(ctx, 200, off)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			outcome, err := p.analysis.Analyze(ctx, id, params.AnalyzeOptions)
			if err != nil {
				p.log.Printf("pipeline=full step=gap_analysis status=error curriculum_id=%s err=%v", id, err)
				return err
			}
			if !outcome.Success {
				halted++
				p.log.Printf("pipeline=full step=gap_analysis status=halted curriculum_id=%s reason=%s", id, outcome.Reason)
				continue
			}
			analyzed++
			p.log.Printf("pipeline=full step=gap_analysis status=ok curriculum_id=%s match_rate=%.2f", id, outcome.Snapshot.Metrics.OverallMatchRate)
		}

		off += len(ids)
	}

	p.log.Printf("pipeline=full step=gap_analysis summary analyzed=%d halted=%d", analyzed, halted)
	return nil
}
