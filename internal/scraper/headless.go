package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// fetchLinksHeadless renders a listing page in headless Chrome and
// collects the hrefs matching selector. Boards that build their DOM
// with JavaScript never expose listings to a plain HTTP crawl.
func fetchLinksHeadless(ctx context.Context, pageURL, selector string) ([]string, error) {
	if strings.TrimSpace(pageURL) == "" {
		return nil, fmt.Errorf("empty page url")
	}
	if strings.TrimSpace(selector) == "" {
		selector = "a[href]"
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, 25*time.Second)
	defer reqCancel()

	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%q))
		.map(a => a.getAttribute('href'))
		.filter(h => h)`, selector)

	var hrefs []string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(script, &hrefs),
	)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(pageURL, "/")
	if host := hostFromURL(pageURL); host != "" {
		if idx := strings.Index(pageURL, host); idx >= 0 {
			base = pageURL[:idx+len(host)]
		}
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(hrefs))
	for _, h := range hrefs {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		switch {
		case strings.HasPrefix(h, "http://"), strings.HasPrefix(h, "https://"):
		case strings.HasPrefix(h, "/"):
			h = base + h
		default:
			h = base + "/" + h
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no links found (headless)")
	}
	return out, nil
}
