package linkedin

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jobsift/internal/utils"
)

const (
	searchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	referer   = "https://www.linkedin.com/"
	// Cap on cards inspected and postings yielded per search run.
	maxPostings = 3000
)

// wait is swapped out in tests.
var wait = utils.WaitFor

// userAgents is the pool rotated across requests so traffic does not carry a
// single fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// Client talks to the job board's guest search endpoint and posting pages.
type Client struct {
	logger  *zap.Logger
	limiter *rate.Limiter

	HTTPClient *http.Client
	SearchURL  string
	// UserAgent pins a single user agent. When empty, one is picked from the
	// pool per request.
	UserAgent string
	// MaxPostings caps both how many cards a run may inspect and how many
	// postings it may yield.
	MaxPostings int
	// Schemes and Strategies control how cards and description pages are
	// interpreted.
	Schemes    []CardScheme
	Strategies []DescriptionStrategy
	// BrowserRendering enables a headless browser fallback for description
	// pages that come back nearly empty.
	BrowserRendering bool
}

// New returns a client with the defaults a normal search run needs. Requests
// are spaced out by an internal limiter on top of the explicit sleeps the
// search loop performs.
func New(logger *zap.Logger) *Client {
	return &Client{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		SearchURL:   searchURL,
		MaxPostings: maxPostings,
		Schemes:     DefaultCardSchemes(),
		Strategies:  DefaultDescriptionStrategies(),
	}
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}

	return userAgents[rand.Intn(len(userAgents))]
}

// get fetches a single page and parses it. Errors are typed so callers can
// tell retryable transport failures from everything else.
func (c *Client) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}

	c.setHeaders(req)

	c.logger.Debug("make request", zap.String("url", rawURL))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &ParseError{URL: rawURL, Cause: err}
	}

	return doc, nil
}

// setHeaders makes the request look like ordinary browser traffic. The guest
// endpoint rejects bare clients.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", referer)
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
