package scraper

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"profilescraper/pkg/errors"
	"profilescraper/pkg/logger"
)

// consecutiveEmptyLimit stops discovery once this many reveal attempts
// in a row produce no new candidates.
const consecutiveEmptyLimit = 2

// Discovery collects candidate profile URLs from a listing page. It
// scrolls to reveal lazily loaded results, canonicalizes every link
// matching the profile path marker, dedups against itself and the
// ledger, and preserves first-seen order.
type Discovery struct {
	marker string
	budget int
	ledger LedgerView
	log    logger.Logger
}

// NewDiscovery creates a Discovery. budget is the maximum number of
// reveal (scroll) attempts per call.
func NewDiscovery(marker string, budget int, led LedgerView, log logger.Logger) *Discovery {
	if budget < 1 {
		budget = 1
	}
	return &Discovery{
		marker: marker,
		budget: budget,
		ledger: led,
		log:    log,
	}
}

// Discover navigates to location and returns candidate identifiers in
// first-seen order, none of which are in the ledger. Any session
// failure during the pass returns an empty sequence with a discovery
// error; missing link elements are not errors.
func (d *Discovery) Discover(ctx context.Context, page PageSession, location string) ([]string, error) {
	if err := page.Navigate(ctx, location); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeDiscovery, "failed to load listing page", err)
	}

	var candidates []string
	seen := make(map[string]bool)
	emptyStreak := 0

	for attempt := 0; attempt < d.budget; attempt++ {
		if err := page.ScrollToBottom(ctx); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeDiscovery, "failed to reveal more results", err)
		}

		html, err := page.OuterHTML()
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeDiscovery, "failed to capture listing page", err)
		}

		added := 0
		for _, id := range d.extractLinks(html, location) {
			if seen[id] || d.ledger.Contains(id) {
				continue
			}
			seen[id] = true
			candidates = append(candidates, id)
			added++
		}

		if added == 0 {
			emptyStreak++
			if emptyStreak >= consecutiveEmptyLimit {
				d.log.WithField("attempts", attempt+1).Debug("listing exhausted, stopping discovery early")
				break
			}
		} else {
			emptyStreak = 0
		}
	}

	d.log.InfoWithFields("Discovery pass complete", map[string]interface{}{
		"location":   location,
		"candidates": len(candidates),
	})

	return candidates, nil
}

// extractLinks pulls canonicalized profile URLs out of listing HTML in
// document order. Unparseable HTML yields no links rather than failing
// the discovery pass.
func (d *Discovery) extractLinks(html, base string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		d.log.WithError(err).Warn("Failed to parse listing page")
		return nil
	}

	baseURL, _ := url.Parse(base)

	var links []string
	doc.Find("a[href*='" + d.marker + "']").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !strings.Contains(href, d.marker) {
			return
		}
		if baseURL != nil {
			if ref, err := url.Parse(href); err == nil {
				href = baseURL.ResolveReference(ref).String()
			}
		}
		links = append(links, CanonicalURL(href))
	})
	return links
}

// CanonicalURL derives the record identifier for a profile URL: query
// string and fragment stripped, trailing slash removed. Two URLs that
// differ only in tracking parameters canonicalize to the same
// identifier.
func CanonicalURL(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSuffix(raw, "/")
}
