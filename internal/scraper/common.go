package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"skillgap/internal/database"
	"skillgap/internal/domain/posting"

	"github.com/google/uuid"
)

type rawPostingInput struct {
	Title       string
	Company     string
	Location    string
	Industry    string
	Description string
	URL         string
	Skills      []posting.Skill
	PostedAt    *time.Time
}

// upsertPosting stores one scraped posting keyed by URL. Re-scraping the
// same board refreshes the stored fields instead of duplicating rows.
func upsertPosting(ctx context.Context, db database.DB, in rawPostingInput) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	u := normalizeURL(in.URL)
	if u == "" {
		return fmt.Errorf("empty posting url")
	}

	skillsJSON, err := json.Marshal(in.Skills)
	if err != nil {
		return err
	}
	if in.Skills == nil {
		skillsJSON = []byte("[]")
	}

	_, err = db.Exec(ctx,
		`INSERT INTO job_postings (
			id, title, company, location, industry, description, url, skills, posted_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (url) DO UPDATE SET
			title = COALESCE(NULLIF(EXCLUDED.title, ''), job_postings.title),
			company = COALESCE(NULLIF(EXCLUDED.company, ''), job_postings.company),
			location = COALESCE(NULLIF(EXCLUDED.location, ''), job_postings.location),
			industry = COALESCE(NULLIF(EXCLUDED.industry, ''), job_postings.industry),
			description = COALESCE(NULLIF(EXCLUDED.description, ''), job_postings.description),
			skills = EXCLUDED.skills,
			posted_at = COALESCE(EXCLUDED.posted_at, job_postings.posted_at)`,
		uuid.New(),
		strings.TrimSpace(in.Title),
		strings.TrimSpace(in.Company),
		strings.TrimSpace(in.Location),
		strings.TrimSpace(in.Industry),
		strings.TrimSpace(in.Description),
		u,
		skillsJSON,
		in.PostedAt,
		time.Now().UTC(),
	)
	return err
}

func postingExists(ctx context.Context, db database.DB, rawURL string) (bool, error) {
	if db == nil {
		return false, fmt.Errorf("nil db")
	}
	row := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM job_postings WHERE url = $1)`,
		normalizeURL(rawURL),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

var industryKeywords = []struct {
	industry string
	terms    []string
}{
	{"fintech", []string{"fintech", "banking", "payment", "finance", "trading"}},
	{"healthcare", []string{"healthcare", "health tech", "medical", "clinical", "pharma"}},
	{"e-commerce", []string{"e-commerce", "ecommerce", "marketplace", "retail"}},
	{"education", []string{"edtech", "education", "learning platform", "university"}},
	{"gaming", []string{"gaming", "game studio", "game developer"}},
	{"logistics", []string{"logistics", "supply chain", "delivery", "freight"}},
}

// inferIndustry picks a coarse industry label from posting text when the
// source board does not carry one. Falls back to "technology".
func inferIndustry(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, group := range industryKeywords {
		for _, term := range group.terms {
			if strings.Contains(text, term) {
				return group.industry
			}
		}
	}
	return "technology"
}

func httpGetWithRetry(ctx context.Context, client *http.Client, url string, attempts int) ([]byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var body []byte
	var lastErr error
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "SkillGapScraper/0.1")
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			continue
		}
		func() {
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("status %d", resp.StatusCode)
				return
			}
			b, err := readAllLimit(resp.Body, 5<<20)
			if err != nil {
				lastErr = err
				return
			}
			lastErr = nil
			body = b
		}()
		if lastErr == nil {
			return body, nil
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return nil, lastErr
}

func readAllLimit(r io.Reader, max int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: max}
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if lr.N <= 0 {
		return nil, fmt.Errorf("response too large")
	}
	return b, nil
}

func normalizeURL(u string) string {
	return strings.TrimSpace(u)
}

func pickNonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}

func parseTimeOrNil(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if tm, err := time.Parse(layout, s); err == nil {
			tm = tm.UTC()
			return &tm
		}
	}
	return nil
}

func hostFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := u.Host
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
