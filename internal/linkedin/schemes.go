package linkedin

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Card holds the raw fields extracted from a single search results card.
type Card struct {
	Title     string
	Company   string
	Location  string
	PostedRaw string
	DetailURL string
}

func (c Card) complete() bool {
	return c.Title != "" && c.Company != "" && c.Location != "" && c.PostedRaw != "" && c.DetailURL != ""
}

// CardScheme extracts card fields for one generation of the search results
// markup. The board serves several markup generations at once, so schemes are
// tried in order and merged per field.
type CardScheme interface {
	// Name identifies the scheme in logs.
	Name() string
	// Selector matches the card container elements this scheme understands.
	Selector() string
	// Extract pulls the card fields out of a single card element.
	Extract(sel *goquery.Selection) Card
}

type selectorScheme struct {
	name     string
	card     string
	title    string
	company  string
	location string
	posted   string
	link     string
}

func (s *selectorScheme) Name() string { return s.name }

func (s *selectorScheme) Selector() string { return s.card }

func (s *selectorScheme) Extract(sel *goquery.Selection) Card {
	card := Card{
		Title:    strings.TrimSpace(sel.Find(s.title).First().Text()),
		Company:  strings.TrimSpace(sel.Find(s.company).First().Text()),
		Location: strings.TrimSpace(sel.Find(s.location).First().Text()),
	}

	if raw, ok := sel.Find(s.posted).First().Attr("datetime"); ok {
		card.PostedRaw = strings.TrimSpace(raw)
	}

	if href, ok := sel.Find(s.link).First().Attr("href"); ok {
		card.DetailURL = strings.TrimSpace(href)
	}

	return card
}

// DefaultCardSchemes returns the known markup generations in the order they
// should be tried.
func DefaultCardSchemes() []CardScheme {
	return []CardScheme{
		&selectorScheme{
			name:     "base-card",
			card:     "div.base-card",
			title:    "h3.base-search-card__title, h4.base-search-card__title",
			company:  "h4.base-search-card__subtitle, h5.base-search-card__subtitle",
			location: "span.job-search-card__location",
			posted:   "time.job-search-card__listdate",
			link:     "a.base-card__full-link",
		},
		&selectorScheme{
			name:     "job-search-card",
			card:     "div.job-search-card",
			title:    "h3.job-search-card__title, h4.job-search-card__title",
			company:  "h4.job-search-card__subtitle, h5.job-search-card__subtitle",
			location: "span.job-result-card__location",
			posted:   "time.job-result-card__listdate",
			link:     "a.job-card-container__link",
		},
	}
}

// cardSelector joins the schemes' container selectors so a single Find call
// matches cards of every known generation.
func cardSelector(schemes []CardScheme) string {
	selectors := make([]string, 0, len(schemes))
	for _, scheme := range schemes {
		selectors = append(selectors, scheme.Selector())
	}

	return strings.Join(selectors, ", ")
}

// extractCard runs the schemes in order and keeps the first non-empty value
// per field. Cards that mix classes from different markup generations still
// extract fully this way.
func extractCard(sel *goquery.Selection, schemes []CardScheme) Card {
	var merged Card
	for _, scheme := range schemes {
		card := scheme.Extract(sel)
		if merged.Title == "" {
			merged.Title = card.Title
		}
		if merged.Company == "" {
			merged.Company = card.Company
		}
		if merged.Location == "" {
			merged.Location = card.Location
		}
		if merged.PostedRaw == "" {
			merged.PostedRaw = card.PostedRaw
		}
		if merged.DetailURL == "" {
			merged.DetailURL = card.DetailURL
		}

		if merged.complete() {
			break
		}
	}

	return merged
}

// postedAtLayouts covers the timestamp shapes seen in the card's datetime
// attribute, from full RFC3339 down to a bare date.
var postedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parsePostedAt(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range postedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
