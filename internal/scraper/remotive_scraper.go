package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"skillgap/internal/database"
	"skillgap/internal/domain/posting"
	"skillgap/internal/domain/skill"
	"skillgap/internal/pipeline"
)

// RemotiveScraper pulls software jobs from the Remotive public API.
// The API carries tags alongside each listing, which become declared
// posting skills.
type RemotiveScraper struct {
	db      database.DB
	client  *http.Client
	apiBase string
	log     *log.Logger
}

func NewRemotiveScraper(db database.DB, logger *log.Logger) *RemotiveScraper {
	if logger == nil {
		logger = log.Default()
	}
	return &RemotiveScraper{
		db: db,
		client: &http.Client{
			Timeout: 25 * time.Second,
		},
		apiBase: "https://remotive.com",
		log:     logger,
	}
}

type remotiveJob struct {
	ID          int      `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Company     string   `json:"company_name"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Location    string   `json:"candidate_required_location"`
	PublishedAt string   `json:"publication_date"`
	Description string   `json:"description"`
}

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

func (s *RemotiveScraper) Scrape(ctx context.Context, limit int, workers int) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("nil scraper/db")
	}
	if limit <= 0 {
		limit = 100
	}

	jobs, err := s.fetchJobs(ctx, limit)
	if err != nil {
		return 0, err
	}

	pool := pipeline.NewWorkerPool(workers, workers*2)
	pool.SetRateLimit(10)
	results := pool.Run(ctx)

	inserted := make(chan bool, len(jobs))
	for _, j := range jobs {
		j := j
		if strings.TrimSpace(j.URL) == "" {
			continue
		}
		pool.Submit(func(ctx context.Context) error {
			existed, err := postingExists(ctx, s.db, j.URL)
			if err != nil {
				return err
			}
			err = upsertPosting(ctx, s.db, rawPostingInput{
				Title:       j.Title,
				Company:     j.Company,
				Location:    j.Location,
				Industry:    inferIndustry(j.Title, j.Category+" "+j.Description),
				Description: stripHTML(j.Description),
				URL:         j.URL,
				Skills:      tagsToSkills(j.Tags),
				PostedAt:    parseTimeOrNil(j.PublishedAt),
			})
			if err != nil {
				return err
			}
			inserted <- !existed
			return nil
		})
	}

	pool.Close()
	var failed int
	for res := range results {
		if res.Err != nil {
			failed++
			s.log.Printf("scraper=remotive status=error err=%v", res.Err)
		}
	}
	close(inserted)

	var stored int
	for created := range inserted {
		if created {
			stored++
		}
	}

	s.log.Printf("scraper=remotive status=finished fetched=%d stored=%d failed=%d", len(jobs), stored, failed)
	return stored, nil
}

func (s *RemotiveScraper) fetchJobs(ctx context.Context, limit int) ([]remotiveJob, error) {
	url := fmt.Sprintf("%s/api/remote-jobs?category=software-dev&limit=%d", strings.TrimRight(s.apiBase, "/"), limit)
	body, err := httpGetWithRetry(ctx, s.client, url, 3)
	if err != nil {
		return nil, err
	}
	var out remotiveResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

func tagsToSkills(tags []string) []posting.Skill {
	out := make([]posting.Skill, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, posting.Skill{Name: t, Importance: skill.ImportanceRequired})
	}
	return out
}

// stripHTML flattens the HTML descriptions the API returns into plain
// text good enough for term scanning.
func stripHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	out := b.String()
	out = strings.ReplaceAll(out, "&nbsp;", " ")
	out = strings.ReplaceAll(out, "&amp;", "&")
	out = strings.ReplaceAll(out, "&lt;", "<")
	out = strings.ReplaceAll(out, "&gt;", ">")
	return strings.Join(strings.Fields(out), " ")
}
