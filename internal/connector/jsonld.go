package connector

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// businessTypes are the schema.org types treated as a business listing.
var businessTypes = map[string]bool{
	"LocalBusiness": true,
	"Organization":  true,
	"Store":         true,
}

// jsonLDListings extracts business listings from application/ld+json scripts.
// Scripts that fail to decode are skipped.
func jsonLDListings(doc *goquery.Document) []listing {
	var listings []listing
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
			return
		}
		for _, item := range jsonLDItems(data) {
			if l, ok := jsonLDBusiness(item); ok {
				listings = append(listings, l)
			}
		}
	})
	return listings
}

// jsonLDItems flattens a decoded document into its objects, descending into lists and @graph.
func jsonLDItems(data any) []map[string]any {
	switch v := data.(type) {
	case map[string]any:
		items := []map[string]any{v}
		if graph, ok := v["@graph"]; ok {
			items = append(items, jsonLDItems(graph)...)
		}
		return items
	case []any:
		var items []map[string]any
		for _, entry := range v {
			items = append(items, jsonLDItems(entry)...)
		}
		return items
	}
	return nil
}

func jsonLDBusiness(item map[string]any) (listing, bool) {
	if !isBusinessType(item["@type"]) {
		return listing{}, false
	}

	name := stringValue(item["name"])
	if name == "" {
		return listing{}, false
	}

	address := ""
	switch addr := item["address"].(type) {
	case map[string]any:
		var parts []string
		for _, field := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode"} {
			if value := stringValue(addr[field]); value != "" {
				parts = append(parts, value)
			}
		}
		address = strings.Join(parts, ", ")
	case string:
		address = addr
	}

	if address == "" {
		if geo, ok := item["geo"].(map[string]any); ok {
			lat, hasLat := geo["latitude"]
			lon, hasLon := geo["longitude"]
			if hasLat && hasLon {
				address = fmt.Sprintf("Coordinates: %v, %v", lat, lon)
			}
		}
	}

	return listing{
		name:    name,
		address: address,
		phone:   stringValue(item["telephone"]),
		email:   stringValue(item["email"]),
		website: stringValue(item["url"]),
	}, true
}

func isBusinessType(v any) bool {
	switch t := v.(type) {
	case string:
		return businessTypes[t]
	case []any:
		for _, entry := range t {
			if s, ok := entry.(string); ok && businessTypes[s] {
				return true
			}
		}
	}
	return false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64, bool:
		return fmt.Sprintf("%v", s)
	}
	return ""
}
