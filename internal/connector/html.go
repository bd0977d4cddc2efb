package connector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/leadgen/internal/normalize"
)

// firstMatch returns the first element matched by the first selector that matches anything.
func firstMatch(s *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if found := s.Find(selector); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

// firstNonEmptyText returns the text of the first selector whose first match has text.
func firstNonEmptyText(s *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if text := normalize.CleanText(s.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstText returns the text of the first element found by firstMatch, even if empty.
func firstText(s *goquery.Selection, selectors ...string) string {
	if found := firstMatch(s, selectors...); found != nil {
		return normalize.CleanText(found.Text())
	}
	return ""
}

// textOrHref returns an element's text, falling back to its href with prefix stripped.
func textOrHref(s *goquery.Selection, prefix string) string {
	if s == nil {
		return ""
	}
	if text := normalize.CleanText(s.Text()); text != "" {
		return text
	}
	href, _ := s.Attr("href")
	return strings.TrimPrefix(strings.TrimSpace(href), prefix)
}

// hrefWithout returns the href of s with prefix removed.
func hrefWithout(s *goquery.Selection, prefix string) string {
	if s == nil {
		return ""
	}
	href, _ := s.Attr("href")
	return strings.TrimPrefix(strings.TrimSpace(href), prefix)
}

// addressText returns the first candidate text longer than minLen characters.
func addressText(s *goquery.Selection, minLen int, selectors ...string) string {
	for _, selector := range selectors {
		found := s.Find(selector)
		if found.Length() == 0 {
			continue
		}
		if text := normalize.CleanText(found.First().Text()); len(text) > minLen {
			return text
		}
	}
	return ""
}

// categoryTags collects distinct category texts from every element matched by selectors.
func categoryTags(s *goquery.Selection, selectors ...string) []string {
	var categories []string
	for _, selector := range selectors {
		s.Find(selector).Each(func(_ int, el *goquery.Selection) {
			categories = normalize.AppendCategory(categories, el.Text())
		})
	}
	return categories
}

// listingsFor returns the elements matched by the first selector with results, or the fallback.
func listingsFor(doc *goquery.Document, fallback string, selectors ...string) *goquery.Selection {
	if found := firstSelection(doc.Selection, selectors...); found != nil {
		return found
	}
	return doc.Find(fallback)
}

func firstSelection(s *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if found := s.Find(selector); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// nextPageHref returns the href of the first pagination link found.
func nextPageHref(doc *goquery.Document, selectors ...string) string {
	if link := firstMatch(doc.Selection, selectors...); link != nil {
		href, _ := link.Attr("href")
		return strings.TrimSpace(href)
	}
	return ""
}
