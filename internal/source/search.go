package source

import (
	"context"
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
	searchName       = "LinkedIn"
	defaultSearchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"

	searchCardsPerPage = 5
	searchFanout       = 2
)

// Search retrieves postings from the public guest search pages of a job
// board. No authentication; results carry only card-level detail.
type Search struct {
	BaseURL string
	Client  *http.Client

	logger *zap.Logger
	delay  delayFunc
}

// NewSearch creates the public search adapter.
func NewSearch(baseURL string, logger *zap.Logger) *Search {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultSearchURL
	}
	return &Search{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
		delay:   defaultDelay,
	}
}

func (s *Search) Name() string { return searchName }

func (s *Search) Fetch(ctx context.Context, q Query) []job.Posting {
	var postings []job.Posting

	for _, keyword := range limit(q.Keywords, searchFanout) {
		for _, location := range limit(q.Locations, searchFanout) {
			found, err := s.search(ctx, keyword, location)
			if err != nil {
				s.logger.Warn("public search failed",
					zap.String("keyword", keyword),
					zap.String("location", location),
					zap.Error(err),
				)
				continue
			}

			postings = append(postings, found...)

			if q.Quota > 0 && len(postings) >= q.Quota {
				return postings
			}

			s.delay(minRequestDelay, maxRequestDelay)
		}
	}

	return postings
}

func (s *Search) search(ctx context.Context, keyword, location string) ([]job.Posting, error) {
	// f_TPR=r604800 restricts results to the last week.
	searchURL := fmt.Sprintf("%s?keywords=%s&location=%s&f_TPR=r604800&start=0",
		s.BaseURL, url.QueryEscape(keyword), url.QueryEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	return extractCards(doc, keyword, location, searchCardsPerPage), nil
}

// extractCards pulls postings out of guest search result markup. Shared with
// the browser adapter, which renders the same card structure.
func extractCards(doc *goquery.Document, keyword, location string, max int) []job.Posting {
	var postings []job.Posting

	doc.Find("div.base-card, div.job-search-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := strings.TrimSpace(card.Find("h3.base-search-card__title").First().Text())
		if title == "" {
			title = titleCase(keyword)
		}

		company := strings.TrimSpace(card.Find("h4.base-search-card__subtitle").First().Text())
		if company == "" {
			return true
		}

		cardLocation := strings.TrimSpace(card.Find("span.job-search-card__location").First().Text())
		if cardLocation == "" {
			cardLocation = location
		}

		jobURL, _ := card.Find("a[href]").First().Attr("href")
		if jobURL != "" && !strings.HasPrefix(jobURL, "http") {
			jobURL = "https://www.linkedin.com" + jobURL
		}

		postedDate := time.Now().Format("2006-01-02")
		if datetime, ok := card.Find("time").First().Attr("datetime"); ok && len(datetime) >= 10 {
			postedDate = datetime[:10]
		}

		postings = append(postings, job.Posting{
			Title:        title,
			Company:      company,
			Location:     cardLocation,
			Description:  fmt.Sprintf("%s posting for %s at %s. Visit the job page for full details.", searchName, title, company),
			Requirements: fmt.Sprintf("Experience in %s, relevant qualifications preferred", keyword),
			URL:          jobURL,
			PostedDate:   postedDate,
			Source:       CanonicalSource(searchName, jobURL),
		})

		return len(postings) < max
	})

	return postings
}
