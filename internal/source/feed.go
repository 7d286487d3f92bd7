package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/job"
)

const (
	feedName       = "Indeed"
	defaultFeedURL = "https://www.indeed.com/rss"
	feedUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	// Per-search and per-run caps keep the feed polite.
	feedItemsPerSearch   = 5
	feedSearchFanout     = 2
	feedDescriptionLimit = 500
)

type feedDocument struct {
	Channel struct {
		Items []feedItem `xml:"item"`
	} `xml:"channel"`
}

type feedItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// Feed retrieves postings from an RSS job feed. It is the most structurally
// reliable adapter and runs first.
type Feed struct {
	BaseURL string
	Client  *http.Client

	logger *zap.Logger
	delay  delayFunc
}

// NewFeed creates the RSS feed adapter.
func NewFeed(baseURL string, logger *zap.Logger) *Feed {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultFeedURL
	}
	return &Feed{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		delay:   defaultDelay,
	}
}

func (f *Feed) Name() string { return feedName }

// Fetch queries the feed per keyword/location pair, bounded by the fan-out
// caps and the run quota. Errors are logged and skipped.
func (f *Feed) Fetch(ctx context.Context, q Query) []job.Posting {
	var postings []job.Posting

	for _, keyword := range limit(q.Keywords, feedSearchFanout) {
		for _, location := range limit(q.Locations, feedSearchFanout) {
			items, err := f.search(ctx, keyword, location)
			if err != nil {
				f.logger.Warn("feed search failed",
					zap.String("keyword", keyword),
					zap.String("location", location),
					zap.Error(err),
				)
				continue
			}

			for _, item := range limit(items, feedItemsPerSearch) {
				postings = append(postings, f.toPosting(item, location))
			}

			if q.Quota > 0 && len(postings) >= q.Quota {
				return postings
			}

			f.delay(minRequestDelay, maxRequestDelay)
		}
	}

	return postings
}

func (f *Feed) search(ctx context.Context, keyword, location string) ([]feedItem, error) {
	searchURL := fmt.Sprintf("%s?q=%s&l=%s&sort=date",
		f.BaseURL, url.QueryEscape(keyword), url.QueryEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", feedUserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var doc feedDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	return doc.Channel.Items, nil
}

func (f *Feed) toPosting(item feedItem, location string) job.Posting {
	title := strings.TrimSpace(item.Title)
	company := "Unknown Company"

	// Feed titles arrive as "Job Title - Company".
	if idx := strings.Index(title, " - "); idx > 0 {
		company = strings.TrimSpace(title[idx+3:])
		title = strings.TrimSpace(title[:idx])
	}

	postedDate := time.Now().Format("2006-01-02")
	if item.PubDate != "" {
		if parsed, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
			postedDate = parsed.Format("2006-01-02")
		}
	}

	return job.Posting{
		Title:       title,
		Company:     company,
		Location:    location,
		Description: truncate(stripHTML(item.Description), feedDescriptionLimit),
		URL:         item.Link,
		PostedDate:  postedDate,
		Source:      CanonicalSource(feedName, item.Link),
	}
}

// stripHTML reduces feed description markup to plain text.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
