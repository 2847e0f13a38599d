package linkedin

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// minDescriptionRunes is the shortest extraction considered a real
// description. Anything shorter suggests a script-rendered page.
const minDescriptionRunes = 500

const browserTimeout = 30 * time.Second

func shouldRender(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < minDescriptionRunes
}

// renderDescription re-fetches the posting page through a headless browser
// and extracts again. The plain extraction is kept when rendering fails or
// yields nothing better.
func (c *Client) renderDescription(ctx context.Context, rawURL, fallback string) string {
	html, err := c.render(ctx, rawURL)
	if err != nil {
		c.logger.Debug("browser rendering failed", zap.String("url", rawURL), zap.Error(err))
		return fallback
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		c.logger.Debug("parsing rendered page failed", zap.String("url", rawURL), zap.Error(err))
		return fallback
	}

	if text := c.extractDescription(doc); text != "" {
		return text
	}

	return fallback
}

// render loads the page in a headless browser and returns the rendered HTML.
// Requires a Chrome or Chromium binary on the host.
func (c *Client) render(ctx context.Context, rawURL string) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
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

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		// Give client side scripts a moment to fill the page in.
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &TransportError{URL: rawURL, Cause: err}
	}

	return html, nil
}
