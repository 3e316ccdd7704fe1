package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"skillgap/internal/app"
	"skillgap/internal/config"
	"skillgap/internal/database/seeder"
	"skillgap/internal/pipeline"
	"skillgap/internal/scraper"
	"skillgap/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	curriculumID := flag.String("curriculum", "", "curriculum id to analyze (empty analyzes all)")
	industry := flag.String("industry", "", "target industry override")
	limit := flag.Int("limit", 0, "job sample size (0 uses config)")
	daysBack := flag.Int("days_back", 0, "posting recency window in days (0 uses config)")
	threshold := flag.Float64("threshold", 0, "similarity threshold (0 uses config)")
	scrape := flag.Bool("scrape", false, "run job board ingestion first")
	backfillWorkers := flag.Int("backfill_workers", 3, "embedding backfill workers")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg, log.Default())
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer seedCancel()
	if err := (seeder.Runner{Seeders: seeder.Defaults()}).Run(seedCtx, c.DB); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	opts := usecase.AnalyzeOptions{
		TargetIndustry:      strings.TrimSpace(*industry),
		Limit:               *limit,
		DaysBack:            *daysBack,
		SimilarityThreshold: *threshold,
	}
	if opts.Limit <= 0 {
		opts.Limit = cfg.Analysis.JobLimit
	}
	if opts.DaysBack <= 0 {
		opts.DaysBack = cfg.Analysis.DaysBack
	}
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = cfg.Analysis.SimilarityThreshold
	}

	var scrapeFn pipeline.ScrapeFunc
	if *scrape {
		runner := scraper.NewRunner(c.DB, nil, c.Logger)
		scrapeFn = runner.Run
	}

	id := strings.TrimSpace(*curriculumID)
	if id == "" {
		full := pipeline.NewFullPipeline(scrapeFn, c.Backfill, c.Analysis, c.Curricula, c.Logger)
		if err := full.Run(ctx, pipeline.FullPipelineParams{
			BackfillWorkers: *backfillWorkers,
			AnalyzeOptions:  opts,
		}); err != nil {
			log.Fatalf("pipeline failed: %v", err)
		}
		return
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		log.Fatalf("invalid curriculum id: %v", err)
	}

	if scrapeFn != nil {
		if _, err := scrapeFn(ctx); err != nil {
			log.Printf("scrape failed: %v", err)
		}
	}
	if _, err := c.Backfill.Run(ctx, pipeline.BackfillParams{Workers: *backfillWorkers}); err != nil {
		log.Printf("backfill failed: %v", err)
	}

	outcome, err := c.Analysis.Analyze(ctx, parsed, opts)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}
	if !outcome.Success {
		log.Printf("analysis halted reason=%s message=%q", outcome.Reason, outcome.Message)
		return
	}
	log.Printf("analysis complete snapshot_id=%s match_rate=%.2f jobs=%d",
		outcome.Snapshot.ID, outcome.Snapshot.Metrics.OverallMatchRate, outcome.Snapshot.JobSampleSize)
}
