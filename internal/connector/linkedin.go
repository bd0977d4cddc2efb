package connector

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/leadgen/internal/fetch"
	"github.com/jonathan/leadgen/internal/normalize"
	"github.com/jonathan/leadgen/internal/types"
)

// LinkedIn source constants
const (
	LinkedInName    = "linkedin"
	LinkedInLabel   = "LinkedIn"
	LinkedInBaseURL = "https://www.bing.com/search"
	linkedInDelay   = 2500 * time.Millisecond
	companyPathPart = "linkedin.com/company/"
)

var (
	bingResultSelectors      = []string{".b_algo h2 a", ".b_title a", ".b_caption a", `h2 a[href*="linkedin.com/company"]`, `a[href*="linkedin.com/company"]`}
	companyNameSelectors     = []string{"h1", ".org-top-card-summary__title", ".org-top-card-summary__title h1", ".top-card-layout__title", ".company-name"}
	companyDescSelectors     = []string{".org-top-card-summary__tagline", ".org-top-card-summary__info-item", ".company-description", ".top-card-layout__headline"}
	companyWebsiteSelectors  = []string{`a[href^="http"]:not([href*="linkedin.com"])`, ".org-top-card-summary__website a", ".company-website a"}
	companyLocationSelectors = []string{".org-top-card-summary__info-item", ".company-location", ".top-card-layout__first-subline"}
	companyInfoSelector      = ".org-top-card-summary__info-item, .company-info, .top-card-layout__second-subline"
)

// locationWords mark a company-page line as a location.
var locationWords = []string{"city", "state", "country", "united states", "usa", "canada", "uk", "australia"}

// industryKeywords refine the niche when found in a company description, in priority order.
var industryKeywords = []string{"technology", "software", "healthcare", "finance", "retail", "manufacturing", "consulting", "services"}

// LinkedIn finds company pages through a web search restricted to
// linkedin.com/company and reads each page.
type LinkedIn struct {
	fetch.Requester
	baseURL string
}

// NewLinkedIn creates the professional-network connector.
func NewLinkedIn(opts Options) *LinkedIn {
	return &LinkedIn{
		Requester: opts.requester(LinkedInLabel, linkedInDelay),
		baseURL:   opts.baseURL(LinkedInBaseURL),
	}
}

func (l *LinkedIn) Name() string  { return LinkedInName }
func (l *LinkedIn) Label() string { return LinkedInLabel }

// Fetch searches for company pages then fetches up to limit of them.
// A company page that fails is skipped; if every page fails the last error is returned.
func (l *LinkedIn) Fetch(ctx context.Context, criteria types.SearchCriteria, limit int) ([]types.Candidate, error) {
	criteria = criteria.Trimmed()
	log := zap.L().With(zap.String("source", LinkedInName))

	query := strings.Join([]string{"site:linkedin.com/company", searchTerms(criteria), criteria.City, criteria.Country}, " ")
	params := url.Values{
		"q":     {query},
		"count": {"50"},
		"first": {"1"},
	}

	log.Info("searching", zap.String("query", query))
	result, cfg, err := l.Get(ctx, l.Identity(), l.baseURL, params)
	if err != nil {
		return nil, err
	}

	doc, err := result.Document(LinkedInLabel)
	if err != nil {
		return nil, err
	}

	links := companyLinks(doc)
	if len(links) > limit {
		links = links[:limit]
	}

	col := newCollector(criteria, LinkedInLabel, limit)
	var lastErr error
	failed := 0
	for _, link := range links {
		page, next, err := l.Get(ctx, cfg, link, nil)
		cfg = next
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("failed to fetch company page", zap.String("url", link), zap.Error(err))
			lastErr = err
			failed++
			continue
		}
		pageDoc, err := page.Document(LinkedInLabel)
		if err != nil {
			log.Warn("failed to parse company page", zap.String("url", link), zap.Error(err))
			lastErr = err
			failed++
			continue
		}
		if company, ok := companyListing(pageDoc, criteria.Niche); ok {
			col.add(company)
		}
	}

	if len(links) > 0 && failed == len(links) {
		return nil, lastErr
	}

	log.Info("fetched", zap.Int("count", len(col.candidates())))
	return col.candidates(), nil
}

// companyLinks collects distinct company page URLs, query strings removed, in result order.
func companyLinks(doc *goquery.Document) []string {
	var links []string
	seen := make(map[string]bool)
	for _, selector := range bingResultSelectors {
		doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if !strings.Contains(href, companyPathPart) {
				return
			}
			if i := strings.Index(href, "?"); i >= 0 {
				href = href[:i]
			}
			if !seen[href] {
				seen[href] = true
				links = append(links, href)
			}
		})
	}
	return links
}

func companyListing(doc *goquery.Document, niche string) (listing, bool) {
	name := firstText(doc.Selection, companyNameSelectors...)
	if name == "" {
		return listing{}, false
	}

	description := firstText(doc.Selection, companyDescSelectors...)
	website := hrefWithout(firstMatch(doc.Selection, companyWebsiteSelectors...), "")

	location := ""
	for _, selector := range companyLocationSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		text := normalize.CleanText(found.First().Text())
		if containsAny(strings.ToLower(text), locationWords) {
			location = text
			break
		}
	}

	var info []string
	doc.Find(companyInfoSelector).Each(func(_ int, el *goquery.Selection) {
		if text := normalize.CleanText(el.Text()); len(text) > 5 {
			info = append(info, text)
		}
	})
	companyInfo := strings.Join(info, " ")

	return listing{
		name:    name,
		address: location,
		phone:   companyInfo,
		email:   companyInfo,
		website: website,
		niche:   industryNiche(description, niche),
	}, true
}

// industryNiche returns the title-cased first industry keyword found in description, or niche.
func industryNiche(description, niche string) string {
	lower := strings.ToLower(description)
	for _, keyword := range industryKeywords {
		if strings.Contains(lower, keyword) {
			return strings.ToUpper(keyword[:1]) + keyword[1:]
		}
	}
	return niche
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
