package connector

import (
	"context"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/leadgen/internal/fetch"
	"github.com/jonathan/leadgen/internal/types"
)

// Yelp source constants
const (
	YelpName    = "yelp"
	YelpLabel   = "Yelp"
	YelpBaseURL = "https://www.yelp.com/search"
	yelpDelay   = 1500 * time.Millisecond
)

var (
	yelpListingSelectors  = []string{`[data-testid="serp-ia-card"]`, ".container__09f24__mpR8_", ".mainAttributes__09f24__mrQp8", ".businessName__09f24__3Ml0X"}
	yelpNameSelectors     = []string{"h3 a", ".businessName__09f24__3Ml0X a", "h4 a", ".css-1m051bw a", `a[href*="/biz/"]`}
	yelpAddressSelectors  = []string{".css-1e4fdj9", ".css-1e4fdj9 p", ".secondaryAttributes__09f24__3Ml0X", ".address__09f24__3Ml0X"}
	yelpPhoneSelectors    = []string{`[href^="tel:"]`, `.css-1e4fdj9 a[href^="tel:"]`}
	yelpWebsiteSelectors  = []string{`a[href*="biz.yelp.com"]`, `a[href*="yelp.com/biz"]`}
	yelpCategorySelectors = []string{".css-1e4fdj9 span", ".css-1e4fdj9 a"}
	yelpNextSelectors     = []string{`a[aria-label="Next"]`, `.css-1m051bw a[href*="start="]`, `a[href*="start="]`}
)

// Yelp reads listings from a reviews-directory search, following one next page.
type Yelp struct {
	fetch.Requester
	baseURL string
}

// NewYelp creates the Yelp connector.
func NewYelp(opts Options) *Yelp {
	return &Yelp{
		Requester: opts.requester(YelpLabel, yelpDelay),
		baseURL:   opts.baseURL(YelpBaseURL),
	}
}

func (y *Yelp) Name() string  { return YelpName }
func (y *Yelp) Label() string { return YelpLabel }

// Fetch searches find_desc=<niche [business]> near "<city>, <country>".
func (y *Yelp) Fetch(ctx context.Context, criteria types.SearchCriteria, limit int) ([]types.Candidate, error) {
	criteria = criteria.Trimmed()
	log := zap.L().With(zap.String("source", YelpName))

	params := url.Values{
		"find_desc": {searchTerms(criteria)},
		"find_loc":  {location(criteria)},
		"ns":        {"1"},
	}

	log.Info("searching", zap.String("query", searchTerms(criteria)), zap.String("location", location(criteria)))
	result, cfg, err := y.Get(ctx, y.Identity(), y.baseURL, params)
	if err != nil {
		return nil, err
	}

	doc, err := result.Document(YelpLabel)
	if err != nil {
		return nil, err
	}

	col := newCollector(criteria, YelpLabel, limit)
	y.collect(doc, col)

	if !col.full() {
		if next := nextPageHref(doc, yelpNextSelectors...); next != "" {
			nextURL := fetch.Resolve(siteRoot(y.baseURL), next)
			page, _, err := y.Get(ctx, cfg, nextURL, nil)
			if err == nil {
				doc, err = page.Document(YelpLabel)
			}
			if err != nil {
				log.Warn("failed to fetch additional page", zap.String("url", nextURL), zap.Error(err))
			} else {
				y.collect(doc, col)
			}
		}
	}

	log.Info("fetched", zap.Int("count", len(col.candidates())))
	return col.candidates(), nil
}

func (y *Yelp) collect(doc *goquery.Document, col *collector) {
	root := siteRoot(y.baseURL)
	listingsFor(doc, ".searchResult", yelpListingSelectors...).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		l, ok := yelpListing(el, root)
		if !ok {
			return true
		}
		return !col.add(l)
	})
}

func yelpListing(el *goquery.Selection, root string) (listing, bool) {
	name := firstText(el, yelpNameSelectors...)
	if name == "" {
		return listing{}, false
	}

	l := listing{
		name:       name,
		address:    addressText(el, 10, yelpAddressSelectors...),
		phone:      hrefWithout(firstMatch(el, yelpPhoneSelectors...), "tel:"),
		categories: categoryTags(el, yelpCategorySelectors...),
	}
	if site := hrefWithout(firstMatch(el, yelpWebsiteSelectors...), ""); site != "" {
		l.website = fetch.Resolve(root, site)
	}
	return l, true
}
