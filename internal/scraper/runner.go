package scraper

import (
	"context"
	"log"

	"skillgap/internal/database"
)

// Runner fans one ingestion pass across every configured source and is
// wired into the full pipeline as its scrape step.
type Runner struct {
	remotive *RemotiveScraper
	careers  *CareersScraper
	targets  []CareersTarget
	log      *log.Logger

	RemotiveLimit int
	Pages         int
	Workers       int
}

func NewRunner(db database.DB, targets []CareersTarget, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		remotive:      NewRemotiveScraper(db, logger),
		careers:       NewCareersScraper(db, logger),
		targets:       targets,
		log:           logger,
		RemotiveLimit: 100,
		Pages:         2,
		Workers:       4,
	}
}

func (r *Runner) Run(ctx context.Context) (int, error) {
	if r == nil {
		return 0, nil
	}

	var total int
	var lastErr error

	n, err := r.remotive.Scrape(ctx, r.RemotiveLimit, r.Workers)
	total += n
	if err != nil {
		lastErr = err
		r.log.Printf("scraper=runner source=remotive status=error err=%v", err)
	}

	if len(r.targets) > 0 {
		n, err = r.careers.Scrape(ctx, r.targets, r.Pages, r.Workers)
		total += n
		if err != nil {
			lastErr = err
			r.log.Printf("scraper=runner source=careers status=error err=%v", err)
		}
	}

	if total > 0 {
		return total, nil
	}
	return total, lastErr
}
