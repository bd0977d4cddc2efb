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

// Google Maps source constants
const (
	GoogleMapsName    = "google_maps"
	GoogleMapsLabel   = "Google Maps"
	GoogleMapsBaseURL = "https://www.google.com/maps/search"
	googleMapsDelay   = 2 * time.Second
)

var (
	mapsCardSelectors    = strings.Join([]string{"[data-result-index]", ".Nv2PK", ".THOPZb", ".VkpGBb", ".lI9IFe"}, ", ")
	mapsNameSelectors    = []string{".fontHeadlineSmall", ".fontHeadlineMedium", ".fontHeadlineLarge", "h3", ".qBF1Pd", ".fontTitleMedium"}
	mapsAddressSelectors = []string{".W4Efsd", ".W4Efsd:last-child", ".fontBodyMedium", ".fontBodySmall"}
)

// GoogleMaps reads business listings from a maps search page,
// preferring embedded JSON-LD and then listing cards.
type GoogleMaps struct {
	fetch.Requester
	baseURL  string
	renderer fetch.Renderer
}

// NewGoogleMaps creates the maps connector.
func NewGoogleMaps(opts Options) *GoogleMaps {
	return &GoogleMaps{
		Requester: opts.requester(GoogleMapsLabel, googleMapsDelay),
		baseURL:   opts.baseURL(GoogleMapsBaseURL),
		renderer:  opts.Renderer,
	}
}

func (g *GoogleMaps) Name() string  { return GoogleMapsName }
func (g *GoogleMaps) Label() string { return GoogleMapsLabel }

// Fetch searches for "<niche> [business] <city> <country>".
func (g *GoogleMaps) Fetch(ctx context.Context, criteria types.SearchCriteria, limit int) ([]types.Candidate, error) {
	criteria = criteria.Trimmed()
	log := zap.L().With(zap.String("source", GoogleMapsName))

	query := strings.Join([]string{searchTerms(criteria), criteria.City, criteria.Country}, " ")
	params := url.Values{
		"q":  {query},
		"hl": {"en"},
		"gl": {strings.ToLower(criteria.Country)},
	}

	log.Info("searching", zap.String("query", query))
	result, cfg, err := g.Get(ctx, g.Identity(), g.baseURL, params)
	if err != nil {
		return nil, err
	}

	doc, err := result.Document(GoogleMapsLabel)
	if err != nil {
		return nil, err
	}

	col := newCollector(criteria, GoogleMapsLabel, limit)
	g.collect(doc, col)

	if len(col.candidates()) == 0 && g.renderer != nil {
		log.Debug("no listings in plain response, rendering")
		html, renderErr := g.renderer.Render(ctx, result.URL, cfg)
		if renderErr != nil {
			log.Warn("headless render failed", zap.Error(renderErr))
		} else {
			rendered := &fetch.Result{URL: result.URL, HTML: html}
			if doc, err = rendered.Document(GoogleMapsLabel); err == nil {
				g.collect(doc, col)
			}
		}
	}

	log.Info("fetched", zap.Int("count", len(col.candidates())))
	return col.candidates(), nil
}

func (g *GoogleMaps) collect(doc *goquery.Document, col *collector) {
	for _, l := range jsonLDListings(doc) {
		if col.add(l) {
			return
		}
	}

	doc.Find(mapsCardSelectors).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		l, ok := mapsCard(card)
		if !ok {
			return true
		}
		return !col.add(l)
	})
}

// mapsCard parses one listing card.
func mapsCard(card *goquery.Selection) (listing, bool) {
	name := firstNonEmptyText(card, mapsNameSelectors...)
	if name == "" {
		return listing{}, false
	}

	address := ""
	for _, selector := range mapsAddressSelectors {
		found := card.Find(selector)
		if found.Length() == 0 {
			continue
		}
		if text := normalize.CleanText(found.First().Text()); normalize.LooksLikeAddress(text) {
			address = text
			break
		}
	}

	l := listing{name: name, address: address}
	if tel := card.Find(`[href^="tel:"]`); tel.Length() > 0 {
		l.phone = hrefWithout(tel.First(), "tel:")
	}
	if site := card.Find(`[href^="http"]`); site.Length() > 0 {
		l.website = hrefWithout(site.First(), "")
	}
	return l, true
}
