package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/job"
)

const (
	browserName       = "LinkedIn"
	defaultLoginURL   = "https://www.linkedin.com/login"
	defaultBrowserURL = "https://www.linkedin.com/jobs/search"

	browserTimeout  = 90 * time.Second
	defaultMaxSteps = 5
)

// BrowserConfig configures the authenticated browser-driven adapter.
type BrowserConfig struct {
	LoginURL  string
	SearchURL string
	Email     string
	Password  string
	// MaxSteps bounds the scroll/load loop so a non-terminating page cannot
	// hang the pipeline.
	MaxSteps int
	Headless bool
}

// Browser drives a headless Chrome session against the authenticated search
// page. It is the least reliable adapter and runs late in the chain.
type Browser struct {
	cfg    BrowserConfig
	logger *zap.Logger
	delay  delayFunc

	// render is swapped out in tests to avoid launching Chrome.
	render func(ctx context.Context, keyword, location string) (string, error)
}

// NewBrowser creates the browser-driven adapter.
func NewBrowser(cfg BrowserConfig, logger *zap.Logger) *Browser {
	if strings.TrimSpace(cfg.LoginURL) == "" {
		cfg.LoginURL = defaultLoginURL
	}
	if strings.TrimSpace(cfg.SearchURL) == "" {
		cfg.SearchURL = defaultBrowserURL
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}

	b := &Browser{cfg: cfg, logger: logger, delay: defaultDelay}
	b.render = b.renderSearch
	return b
}

func (b *Browser) Name() string { return browserName }

func (b *Browser) Fetch(ctx context.Context, q Query) []job.Posting {
	if b.cfg.Email == "" || b.cfg.Password == "" {
		b.logger.Debug("browser adapter skipped", zap.String("reason", "credentials not configured"))
		return nil
	}

	var postings []job.Posting

	for _, keyword := range limit(q.Keywords, searchFanout) {
		for _, location := range limit(q.Locations, searchFanout) {
			html, err := b.render(ctx, keyword, location)
			if err != nil {
				b.logger.Warn("browser search failed",
					zap.String("keyword", keyword),
					zap.String("location", location),
					zap.Error(err),
				)
				continue
			}

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
			if err != nil {
				b.logger.Warn("parsing rendered page failed", zap.Error(err))
				continue
			}

			postings = append(postings, extractCards(doc, keyword, location, searchCardsPerPage)...)

			if q.Quota > 0 && len(postings) >= q.Quota {
				return postings
			}

			b.delay(minRequestDelay, maxRequestDelay)
		}
	}

	return postings
}

// renderSearch logs in, navigates to the search results, scrolls a bounded
// number of times to trigger lazy loading, and returns the rendered HTML.
func (b *Browser) renderSearch(ctx context.Context, keyword, location string) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", b.cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, browserTimeout)
	defer cancel()

	searchURL := fmt.Sprintf("%s?keywords=%s&location=%s&f_TPR=r604800",
		b.cfg.SearchURL, url.QueryEscape(keyword), url.QueryEscape(location))

	var html string

	actions := []chromedp.Action{
		chromedp.Navigate(b.cfg.LoginURL),
		chromedp.WaitVisible("#username"),
		chromedp.SendKeys("#username", b.cfg.Email),
		chromedp.SendKeys("#password", b.cfg.Password),
		chromedp.Click(`button[type="submit"]`),
		chromedp.Sleep(3 * time.Second),
		chromedp.Navigate(searchURL),
		chromedp.WaitReady("body"),
	}

	for range b.cfg.MaxSteps {
		actions = append(actions,
			chromedp.Evaluate("window.scrollTo(0, document.body.scrollHeight);", nil),
			chromedp.Sleep(2*time.Second),
		)
	}

	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	return html, nil
}
