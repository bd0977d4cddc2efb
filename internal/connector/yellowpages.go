package connector

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/leadgen/internal/fetch"
	"github.com/jonathan/leadgen/internal/types"
)

// Yellow Pages source constants
const (
	YellowPagesName    = "yellowpages"
	YellowPagesLabel   = "Yellow Pages"
	YellowPagesBaseURL = "https://www.yellowpages.com/search"
	yellowPagesDelay   = 1200 * time.Millisecond
)

var (
	ypListingSelectors  = []string{".result", ".search-result", ".listing", ".business-listing", ".srp-listing"}
	ypNameSelectors     = []string{"h2 a", ".business-name a", "h3 a", ".listing-name a", ".result-title a", `a[data-track="listing-name"]`}
	ypAddressSelectors  = []string{".adr", ".street-address", ".address", ".location", ".result-address", ".listing-address"}
	ypPhoneSelectors    = []string{`[href^="tel:"]`, ".phone", ".phone-number", ".result-phone", ".listing-phone"}
	ypWebsiteSelectors  = []string{`a[href*="http"]:not([href*="yellowpages.com"])`, ".website-link a", ".result-website a", ".listing-website a"}
	ypEmailSelectors    = []string{`[href^="mailto:"]`, ".email", ".email-address"}
	ypCategorySelectors = []string{".categories a", ".business-categories a", ".listing-categories a", ".result-categories a"}
	ypNextSelectors     = []string{`a[aria-label="Next"]`, `.pagination a[href*="page="]`, ".next-page a", `a[href*="page="]`}
)

// YellowPages reads listings from a classic business directory, following one next page.
type YellowPages struct {
	fetch.Requester
	baseURL string
}

// NewYellowPages creates the Yellow Pages connector.
func NewYellowPages(opts Options) *YellowPages {
	return &YellowPages{
		Requester: opts.requester(YellowPagesLabel, yellowPagesDelay),
		baseURL:   opts.baseURL(YellowPagesBaseURL),
	}
}

func (y *YellowPages) Name() string  { return YellowPagesName }
func (y *YellowPages) Label() string { return YellowPagesLabel }

// Fetch searches search_terms=<niche [business]> in "<city>, <country>".
func (y *YellowPages) Fetch(ctx context.Context, criteria types.SearchCriteria, limit int) ([]types.Candidate, error) {
	criteria = criteria.Trimmed()
	log := zap.L().With(zap.String("source", YellowPagesName))

	params := url.Values{
		"search_terms":       {searchTerms(criteria)},
		"geo_location_terms": {location(criteria)},
	}

	log.Info("searching", zap.String("query", searchTerms(criteria)), zap.String("location", location(criteria)))
	result, cfg, err := y.Get(ctx, y.Identity(), y.baseURL, params)
	if err != nil {
		return nil, err
	}

	doc, err := result.Document(YellowPagesLabel)
	if err != nil {
		return nil, err
	}

	col := newCollector(criteria, YellowPagesLabel, limit)
	collectYellowPages(doc, col)

	if !col.full() {
		if next := nextPageHref(doc, ypNextSelectors...); next != "" {
			nextURL := fetch.Resolve(siteRoot(y.baseURL), next)
			page, _, err := y.Get(ctx, cfg, nextURL, nil)
			if err == nil {
				doc, err = page.Document(YellowPagesLabel)
			}
			if err != nil {
				log.Warn("failed to fetch additional page", zap.String("url", nextURL), zap.Error(err))
			} else {
				collectYellowPages(doc, col)
			}
		}
	}

	log.Info("fetched", zap.Int("count", len(col.candidates())))
	return col.candidates(), nil
}

func collectYellowPages(doc *goquery.Document, col *collector) {
	listingsFor(doc, ".v-card", ypListingSelectors...).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		l, ok := yellowPagesListing(el)
		if !ok {
			return true
		}
		return !col.add(l)
	})
}

func yellowPagesListing(el *goquery.Selection) (listing, bool) {
	name := firstText(el, ypNameSelectors...)
	if name == "" {
		return listing{}, false
	}

	l := listing{
		name:       name,
		address:    addressText(el, 10, ypAddressSelectors...),
		phone:      textOrHref(firstMatch(el, ypPhoneSelectors...), "tel:"),
		email:      textOrHref(firstMatch(el, ypEmailSelectors...), "mailto:"),
		categories: categoryTags(el, ypCategorySelectors...),
	}

	for _, selector := range ypWebsiteSelectors {
		if site := el.Find(selector); site.Length() > 0 {
			if href := hrefWithout(site.First(), ""); href != "" && !strings.HasPrefix(href, "#") {
				l.website = href
				break
			}
		}
	}
	return l, true
}
