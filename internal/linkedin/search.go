package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"jobsift/internal/filtering"
	"jobsift/internal/utils"
)

// Recency windows accepted by ParseWindow.
const (
	WindowDay   = 24 * time.Hour
	WindowWeek  = 7 * 24 * time.Hour
	WindowMonth = 30 * 24 * time.Hour
)

// ParseWindow maps a recency label to the maximum posting age it allows. The
// zero duration stands for an unbounded window.
func ParseWindow(label string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "24h":
		return WindowDay, nil
	case "week":
		return WindowWeek, nil
	case "month":
		return WindowMonth, nil
	case "any", "":
		return 0, nil
	}

	return 0, fmt.Errorf("unknown recency window %q, expected 24h, week, month or any", label)
}

// SearchParams describes a single search run.
type SearchParams struct {
	// Keywords is the search query, typically a role title.
	Keywords string
	// Location restricts results geographically.
	Location string
	// DistanceMiles widens the location to a radius.
	DistanceMiles int
	// Window keeps only postings newer than the given age. Zero means no
	// time restriction.
	Window time.Duration
	// Filter drops postings by company before their description is fetched.
	Filter *filtering.CompanyFilter
}

// Visit receives each accepted posting as soon as it is assembled. Returning
// an error stops the search; the error is handed back to the Search caller
// untouched.
type Visit func(Posting) error

// Search walks the board's paginated results and calls visit for every
// posting that survives the company filter, fetching each posting's full
// description along the way. Every call starts over from the first page.
//
// Transport failures are retried on the same page until the context is
// canceled. When a run ends without a single accepted posting, visit receives
// a small set of representative sample postings instead, so callers always
// have something to work with.
func (c *Client) Search(ctx context.Context, params *SearchParams, visit Visit) error {
	accepted, err := c.search(ctx, params, visit)
	if err != nil {
		var visited *visitError
		if errors.As(err, &visited) {
			return visited.Unwrap()
		}
		if ctx.Err() != nil {
			return err
		}

		c.logger.Warn("search aborted", zap.Int("postings", accepted), zap.Error(err))
	}

	if accepted == 0 {
		c.logger.Info("no postings collected, using sample postings")
		return visitSamples(params.Keywords, params.Location, visit)
	}

	return nil
}

func (c *Client) search(ctx context.Context, params *SearchParams, visit Visit) (int, error) {
	var seen, accepted, start int

	for seen < c.MaxPostings && accepted < c.MaxPostings {
		pageURL := c.searchPageURL(params, start)
		c.logger.Info("fetching jobs batch", zap.Int("start", start))

		doc, err := c.get(ctx, pageURL)
		if err != nil {
			var transport *TransportError
			if !errors.As(err, &transport) {
				return accepted, err
			}
			if ctx.Err() != nil {
				return accepted, ctx.Err()
			}

			delay := utils.JitterBetween(5*time.Second, 10*time.Second)
			c.logger.Warn("search page request failed, retrying",
				zap.Int("start", start),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if err := wait(ctx, delay); err != nil {
				return accepted, err
			}
			continue
		}

		cards := doc.Find(cardSelector(c.Schemes))
		if cards.Length() == 0 {
			c.logger.Info("no more job cards found")
			break
		}

		var innerErr error
		cards.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if seen >= c.MaxPostings || accepted >= c.MaxPostings || ctx.Err() != nil {
				return false
			}
			seen++

			card := extractCard(sel, c.Schemes)
			if card.Title == "" || card.Company == "" {
				c.logger.Debug("skipping incomplete job card")
				return true
			}

			if !params.Filter.Allow(card.Company) {
				c.logger.Debug("skipping filtered company", zap.String("company", card.Company))
				return true
			}

			accepted++
			if err := visit(c.assemble(ctx, params, card)); err != nil {
				innerErr = &visitError{err: err}
				return false
			}

			return true
		})
		if innerErr != nil {
			return accepted, innerErr
		}
		if err := ctx.Err(); err != nil {
			return accepted, err
		}

		start += cards.Length()

		if err := wait(ctx, utils.JitterBetween(2*time.Second, 4*time.Second)); err != nil {
			return accepted, err
		}
	}

	return accepted, nil
}

// assemble turns an extracted card into a full posting, filling in the
// fallbacks for missing location, timestamp and detail link.
func (c *Client) assemble(ctx context.Context, params *SearchParams, card Card) Posting {
	location := card.Location
	if location == "" {
		location = params.Location
	}

	postedAt, ok := parsePostedAt(card.PostedRaw)
	if !ok {
		postedAt = randomRecentTime()
	}

	description := briefDescription(card.Title, card.Company, location)
	if card.DetailURL != "" {
		description = c.Description(ctx, card.DetailURL)
	}

	return Posting{
		Title:       card.Title,
		Company:     card.Company,
		Location:    location,
		Description: description,
		PostedAt:    postedAt,
		URL:         card.DetailURL,
	}
}

func (c *Client) searchPageURL(params *SearchParams, start int) string {
	q := url.Values{}
	q.Set("keywords", params.Keywords)
	q.Set("location", params.Location)
	q.Set("distance", strconv.Itoa(params.DistanceMiles))
	q.Set("sortBy", "DD")
	if params.Window > 0 {
		q.Set("f_TPR", fmt.Sprintf("r%d", int(params.Window.Seconds())))
	}
	q.Set("start", strconv.Itoa(start))

	return c.SearchURL + "?" + q.Encode()
}
