package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"skillgap/internal/database"
	"skillgap/internal/pipeline"

	"github.com/gocolly/colly/v2"
)

// CareersScraper crawls company careers boards described by targets.
// Each target supplies the selectors for its board layout; boards that
// render listings with JavaScript can opt into a headless pass for the
// link collection step.
type CareersScraper struct {
	db  database.DB
	log *log.Logger
}

func NewCareersScraper(db database.DB, logger *log.Logger) *CareersScraper {
	if logger == nil {
		logger = log.Default()
	}
	return &CareersScraper{db: db, log: logger}
}

type CareersTarget struct {
	SourceName         string
	Industry           string
	BaseURL            string
	ListURL            string
	LinkSelector       string
	TitleSelector      string
	LocationSelector   string
	DetailBodySelector string
	Headless           bool
}

type careersListItem struct {
	Link     string
	Title    string
	Location string
}

type careersDetail struct {
	Title       string
	Location    string
	Description string
	URL         string
}

func (s *CareersScraper) Scrape(ctx context.Context, targets []CareersTarget, pages int, workers int) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("nil scraper/db")
	}
	if len(targets) == 0 {
		return 0, nil
	}
	if workers <= 0 {
		workers = 4
	}
	if pages <= 0 {
		pages = 1
	}

	var stored int
	for _, t := range targets {
		t := t
		if strings.TrimSpace(t.SourceName) == "" || strings.TrimSpace(t.ListURL) == "" {
			continue
		}
		t.applyDefaults()

		n, err := s.scrapeTarget(ctx, t, pages, workers)
		stored += n
		if err != nil {
			s.log.Printf("scraper=careers source=%s status=error err=%v", t.SourceName, err)
			continue
		}
		s.log.Printf("scraper=careers source=%s status=finished stored=%d", t.SourceName, n)
	}
	return stored, nil
}

func (t *CareersTarget) applyDefaults() {
	if strings.TrimSpace(t.BaseURL) == "" {
		t.BaseURL = t.ListURL
	}
	if strings.TrimSpace(t.LinkSelector) == "" {
		t.LinkSelector = "a"
	}
	if strings.TrimSpace(t.TitleSelector) == "" {
		t.TitleSelector = "title"
	}
	if strings.TrimSpace(t.DetailBodySelector) == "" {
		t.DetailBodySelector = "body"
	}
	if strings.TrimSpace(t.Industry) == "" {
		t.Industry = "technology"
	}
}

func (s *CareersScraper) scrapeTarget(ctx context.Context, t CareersTarget, pages, workers int) (int, error) {
	pool := pipeline.NewWorkerPool(workers, workers*2)
	pool.SetRateLimit(3)
	results := pool.Run(ctx)

	inserted := make(chan bool, pages*64)
	var listErr error
	for page := 1; page <= pages; page++ {
		listURL := t.ListURL
		if strings.Contains(listURL, "%d") {
			listURL = fmt.Sprintf(listURL, page)
		}

		items, err := s.collectListing(ctx, t, listURL)
		if err != nil {
			listErr = err
			s.log.Printf("scraper=careers source=%s page=%d status=error err=%v", t.SourceName, page, err)
			continue
		}

		for _, it := range items {
			it := it
			if strings.TrimSpace(it.Link) == "" {
				continue
			}
			pool.Submit(func(ctx context.Context) error {
				d, err := s.scrapeDetailPage(ctx, t, it.Link)
				if err != nil {
					return err
				}
				existed, err := postingExists(ctx, s.db, d.URL)
				if err != nil {
					return err
				}
				err = upsertPosting(ctx, s.db, rawPostingInput{
					Title:       pickNonEmpty(d.Title, it.Title),
					Company:     t.SourceName,
					Location:    pickNonEmpty(d.Location, it.Location),
					Industry:    t.Industry,
					Description: d.Description,
					URL:         d.URL,
				})
				if err != nil {
					return err
				}
				select {
				case inserted <- !existed:
				default:
				}
				return nil
			})
		}
	}

	pool.Close()
	for res := range results {
		if res.Err != nil {
			s.log.Printf("scraper=careers source=%s status=error err=%v", t.SourceName, res.Err)
		}
	}
	close(inserted)

	var stored int
	for created := range inserted {
		if created {
			stored++
		}
	}
	if stored == 0 && listErr != nil {
		return 0, listErr
	}
	return stored, nil
}

func (s *CareersScraper) collectListing(ctx context.Context, t CareersTarget, listURL string) ([]careersListItem, error) {
	if t.Headless {
		links, err := fetchLinksHeadless(ctx, listURL, t.LinkSelector)
		if err != nil {
			return nil, err
		}
		items := make([]careersListItem, 0, len(links))
		for _, l := range links {
			items = append(items, careersListItem{Link: l})
		}
		return items, nil
	}
	return s.scrapeListingPage(ctx, t, listURL)
}

func (s *CareersScraper) scrapeListingPage(ctx context.Context, t CareersTarget, listURL string) ([]careersListItem, error) {
	c := newCollector(listURL)

	items := make([]careersListItem, 0)
	dedup := map[string]struct{}{}

	c.OnHTML(t.LinkSelector, func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" {
			return
		}
		abs := normalizeURL(e.Request.AbsoluteURL(href))
		if abs == "" {
			return
		}
		if _, ok := dedup[abs]; ok {
			return
		}
		dedup[abs] = struct{}{}

		title := ""
		if strings.TrimSpace(t.TitleSelector) != "" {
			title = strings.TrimSpace(e.DOM.Find(t.TitleSelector).Text())
		}
		location := ""
		if strings.TrimSpace(t.LocationSelector) != "" {
			location = strings.TrimSpace(e.DOM.Find(t.LocationSelector).Text())
		}

		items = append(items, careersListItem{Link: abs, Title: title, Location: location})
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.Visit(listURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	return items, nil
}

func (s *CareersScraper) scrapeDetailPage(ctx context.Context, t CareersTarget, jobURL string) (careersDetail, error) {
	c := newCollector(jobURL)

	var out careersDetail
	out.URL = jobURL
	var reqErr error

	c.OnHTML(t.TitleSelector, func(e *colly.HTMLElement) {
		if strings.TrimSpace(out.Title) == "" {
			out.Title = strings.TrimSpace(e.Text)
		}
	})

	if strings.TrimSpace(t.LocationSelector) != "" {
		c.OnHTML(t.LocationSelector, func(e *colly.HTMLElement) {
			if strings.TrimSpace(out.Location) == "" {
				out.Location = strings.TrimSpace(e.Text)
			}
		})
	}

	c.OnHTML(t.DetailBodySelector, func(e *colly.HTMLElement) {
		out.Description = strings.TrimSpace(e.Text)
	})

	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return careersDetail{}, ctx.Err()
	}
	if err := c.Visit(jobURL); err != nil {
		return careersDetail{}, err
	}
	c.Wait()
	if reqErr != nil {
		return careersDetail{}, reqErr
	}
	return out, nil
}

func newCollector(target string) *colly.Collector {
	allowed := hostFromURL(target)
	var c *colly.Collector
	if allowed == "" {
		c = colly.NewCollector()
	} else {
		c = colly.NewCollector(colly.AllowedDomains(allowed))
	}
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: 850 * time.Millisecond, Delay: 450 * time.Millisecond})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "SkillGapScraper/0.1")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
	})
	return c
}
