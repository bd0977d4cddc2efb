package connector

import (
	"fmt"
	"strings"
	"time"
)

// RegistryConfig configures the built-in catalog.
type RegistryConfig struct {
	// Sources holds per-source options keyed by source name.
	Sources map[string]Options
	// EnableLinkedIn makes the linkedin source resolvable and part of the default set.
	EnableLinkedIn bool
}

type entry struct {
	connector Connector
	info      Info
}

// Registry resolves source names and aliases to connectors.
type Registry struct {
	entries map[string]*entry
	order   []string
	aliases map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		aliases: make(map[string]string),
	}
}

// DefaultRegistry creates the catalog of built-in sources.
func DefaultRegistry(cfg RegistryConfig) *Registry {
	opts := func(name string) Options { return cfg.Sources[name] }

	r := NewRegistry()
	r.Register(NewGoogleMaps(opts(GoogleMapsName)), Info{
		Description: "Business listings from Google Maps",
		RateLimit:   googleMapsDelay,
		Reliability: "High",
	}, "google maps", "google")
	r.Register(NewYelp(opts(YelpName)), Info{
		Description: "Business reviews and listings from Yelp",
		RateLimit:   yelpDelay,
		Reliability: "High",
	})
	r.Register(NewYellowPages(opts(YellowPagesName)), Info{
		Description: "Traditional business directory listings",
		RateLimit:   yellowPagesDelay,
		Reliability: "Medium",
	}, "yellow pages", "yellow_pages")
	r.Register(NewTest(opts(TestName)), Info{
		Description: "Mock data for testing (always works)",
		RateLimit:   testDelay,
		Reliability: "High",
	}, "test scraper", "test_scraper")
	r.register(NewLinkedIn(opts(LinkedInName)), Info{
		Description: "Company pages from LinkedIn via web search",
		RateLimit:   linkedInDelay,
		Reliability: "Low",
	}, cfg.EnableLinkedIn)
	return r
}

// Register adds an enabled connector. Its name and label always resolve;
// aliases add further case-insensitive names.
func (r *Registry) Register(c Connector, info Info, aliases ...string) {
	r.register(c, info, true, aliases...)
}

func (r *Registry) register(c Connector, info Info, enabled bool, aliases ...string) {
	name := c.Name()
	info.Name = name
	info.Label = c.Label()
	info.Enabled = enabled
	info.Delay = RateLimitLabel(info.RateLimit)

	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = &entry{connector: c, info: info}

	for _, alias := range append([]string{name, c.Label()}, aliases...) {
		r.aliases[aliasKey(alias)] = name
	}
}

// Get returns the enabled connector registered under name or one of its aliases.
func (r *Registry) Get(name string) (Connector, bool) {
	key, ok := r.aliases[aliasKey(name)]
	if !ok {
		return nil, false
	}
	e := r.entries[key]
	if !e.info.Enabled {
		return nil, false
	}
	return e.connector, true
}

// Resolve maps requested names to connectors in request order, dropping unknown,
// disabled and repeated names. If nothing remains, every enabled connector is returned.
func (r *Registry) Resolve(names []string) []Connector {
	var resolved []Connector
	seen := make(map[string]bool)
	for _, name := range names {
		c, ok := r.Get(name)
		if !ok || seen[c.Name()] {
			continue
		}
		seen[c.Name()] = true
		resolved = append(resolved, c)
	}
	if len(resolved) == 0 {
		return r.Defaults()
	}
	return resolved
}

// Defaults returns every enabled connector in registration order.
func (r *Registry) Defaults() []Connector {
	var out []Connector
	for _, name := range r.order {
		if e := r.entries[name]; e.info.Enabled {
			out = append(out, e.connector)
		}
	}
	return out
}

// Sources describes every registered source, enabled or not, in registration order.
func (r *Registry) Sources() []Info {
	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].info)
	}
	return out
}

func aliasKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RateLimitLabel formats a delay the way the catalog displays it, e.g. "2.0s".
func RateLimitLabel(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
