package linkedin

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"jobsift/internal/utils"
)

// NoDescription is stored on a posting when its description page cannot be
// fetched or nothing recognizable can be extracted from it.
const NoDescription = "Detailed description not available"

// DescriptionStrategy extracts a job description from a fetched posting page.
// Strategies are tried in order until one returns text.
type DescriptionStrategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Extract returns the description text, or an empty string when the
	// strategy does not apply to the page.
	Extract(doc *goquery.Document) string
}

type selectorStrategy struct {
	name      string
	selectors []string
}

func (s *selectorStrategy) Name() string { return s.name }

func (s *selectorStrategy) Extract(doc *goquery.Document) string {
	for _, selector := range s.selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}

	return ""
}

type keywordStrategy struct {
	name     string
	keywords []string
}

func (s *keywordStrategy) Name() string { return s.name }

func (s *keywordStrategy) Extract(doc *goquery.Document) string {
	var text string
	for _, keyword := range s.keywords {
		doc.Find("div, section").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if strings.Contains(strings.ToLower(sel.Text()), keyword) {
				text = strings.TrimSpace(sel.Text())
				return false
			}

			return true
		})
		if text != "" {
			break
		}
	}

	return text
}

// DefaultDescriptionStrategies returns the known content selectors first and
// a keyword scan of generic containers as the fallback.
func DefaultDescriptionStrategies() []DescriptionStrategy {
	return []DescriptionStrategy{
		&selectorStrategy{
			name: "content-selectors",
			selectors: []string{
				"div.description__text",
				"div.show-more-less-html__markup",
				"div.job-description",
				"div.description",
			},
		},
		&keywordStrategy{
			name:     "keyword-scan",
			keywords: []string{"job description", "position description", "role description"},
		},
	}
}

// Description fetches the posting page and extracts its full description. It
// never fails: any transport or parse problem is logged and the placeholder
// text returned, so a single broken posting page cannot abort the caller's
// pagination loop. A short pause follows every successful fetch to stay
// within polite scraping norms.
func (c *Client) Description(ctx context.Context, rawURL string) string {
	doc, err := c.get(ctx, rawURL)
	if err != nil {
		c.logger.Warn("fetching job description failed", zap.String("url", rawURL), zap.Error(err))
		return NoDescription
	}

	text := c.extractDescription(doc)
	if c.BrowserRendering && shouldRender(text) {
		text = c.renderDescription(ctx, rawURL, text)
	}

	_ = wait(ctx, utils.JitterBetween(time.Second, 2*time.Second))

	if text == "" {
		return NoDescription
	}

	return text
}

func (c *Client) extractDescription(doc *goquery.Document) string {
	for _, strategy := range c.Strategies {
		if text := strategy.Extract(doc); text != "" {
			c.logger.Debug("description extracted", zap.String("strategy", strategy.Name()))
			return text
		}
	}

	return ""
}
