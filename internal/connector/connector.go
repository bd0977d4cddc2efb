// Package connector defines the contract every external lead source implements
// and the catalog of built-in sources.
package connector

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/leadgen/internal/fetch"
	"github.com/jonathan/leadgen/internal/normalize"
	"github.com/jonathan/leadgen/internal/types"
)

// Connector turns search criteria into validated candidates for one source.
// Fetch returns at most limit candidates; failures come back as typed errors
// from the fetch package, never as panics.
type Connector interface {
	Name() string
	Label() string
	Fetch(ctx context.Context, criteria types.SearchCriteria, limit int) ([]types.Candidate, error)
}

// Info describes a source for catalog listings.
type Info struct {
	Name        string        `json:"name"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	RateLimit   time.Duration `json:"-"`
	Delay       string        `json:"rate_limit"` // e.g. "1.5s"
	Reliability string        `json:"reliability"`
	Enabled     bool          `json:"enabled"`
}

// Options tunes how a connector reaches its target.
// Zero values select the source's defaults.
type Options struct {
	BaseURL string
	Client  *http.Client
	Retry   *fetch.RetryPolicy
	// Delay overrides the source's inter-request delay.
	Delay *fetch.Delay
	// Renderer enables headless rendering when the plain body has no listings.
	Renderer fetch.Renderer
}

func (o Options) requester(source string, baseDelay time.Duration) fetch.Requester {
	req := fetch.NewRequester(source, baseDelay)
	if o.Client != nil {
		req.Client = o.Client
	}
	if o.Retry != nil {
		req.Retry = o.Retry
	}
	if o.Delay != nil {
		req.Delay = *o.Delay
	}
	return req
}

func (o Options) baseURL(def string) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return def
}

// siteRoot returns scheme://host of rawURL, used to absolutize relative links.
func siteRoot(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Scheme + "://" + parsed.Host
}

// searchTerms joins the niche with the optional business name.
func searchTerms(c types.SearchCriteria) string {
	if c.BusinessName != "" {
		return c.Niche + " " + c.BusinessName
	}
	return c.Niche
}

// location is the "city, country" form used by directory searches.
func location(c types.SearchCriteria) string {
	return c.City + ", " + c.Country
}

// listing holds the raw fields scraped from one result before normalization.
type listing struct {
	name       string
	address    string
	phone      string
	email      string
	website    string
	categories []string
	niche      string // set directly when the source refines without categories
}

// candidate normalizes l into a Candidate for source.
func (l listing) candidate(c types.SearchCriteria, source string) types.Candidate {
	address := normalize.CleanText(l.address)
	if address == "" {
		address = normalize.FallbackAddress(c.City, c.Country)
	}

	niche := l.niche
	if niche == "" {
		niche = normalize.RefineNiche(c.Niche, l.categories)
	}

	candidate := types.Candidate{
		Name:      normalize.CleanText(l.name),
		Address:   address,
		City:      c.City,
		Country:   c.Country,
		Niche:     niche,
		Website:   strings.TrimSpace(l.website),
		Source:    source,
		ScrapedAt: time.Now().UTC(),
	}
	if l.phone != "" {
		candidate.Phone = normalize.ExtractPhone(l.phone)
	}
	if l.email != "" {
		candidate.Email = normalize.ExtractEmail(l.email)
	}
	return candidate
}

// collector accumulates valid candidates up to a limit.
type collector struct {
	criteria types.SearchCriteria
	source   string
	limit    int
	out      []types.Candidate
}

func newCollector(c types.SearchCriteria, source string, limit int) *collector {
	return &collector{criteria: c, source: source, limit: limit}
}

// add normalizes and keeps l if it validates. It reports whether the limit has been reached.
func (col *collector) add(l listing) bool {
	if col.full() {
		return true
	}
	candidate := l.candidate(col.criteria, col.source)
	if normalize.IsValid(candidate) {
		col.out = append(col.out, candidate)
	}
	return col.full()
}

func (col *collector) full() bool {
	return len(col.out) >= col.limit
}

func (col *collector) candidates() []types.Candidate {
	return col.out
}
