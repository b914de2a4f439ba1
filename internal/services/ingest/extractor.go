package ingest

// extractor.go parses free-form pasted text and HTML fragments for candidate
// URLs. This is a best-effort convenience for the paste flow, not validation
// of record: malformed candidates are silently dropped.

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// urlPattern matches bare http(s) URLs in plain text up to the next
// whitespace or quoting/bracket character.
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>()\[\]{}]+`)

// ExtractURLs produces a deduplicated list of syntactically valid absolute
// URLs from raw text and an optional HTML fragment (e.g. a clipboard
// payload). HTML-derived URLs come first, then plain-text matches, in
// insertion order.
func ExtractURLs(text, html string) []string {
	seen := make(map[string]struct{})
	var urls []string

	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		if !isValidAbsoluteURL(candidate) {
			return
		}
		urls = append(urls, candidate)
	}

	if html != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
				href, _ := s.Attr("href")
				if strings.HasPrefix(href, "http") {
					add(href)
				}
			})
		}
	}

	for _, match := range urlPattern.FindAllString(text, -1) {
		add(match)
	}

	return urls
}

// isValidAbsoluteURL reports whether a candidate parses as an absolute
// http(s) URL with a host.
func isValidAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsPDFURL reports whether a URL points at a PDF document: a ".pdf" path
// suffix, case-insensitive, optionally followed by a query string.
func IsPDFURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Fall back to a string check so obviously-PDF URLs still route
		// correctly even when the queue holds an unparseable entry.
		trimmed := rawURL
		if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
			trimmed = trimmed[:i]
		}
		return strings.HasSuffix(strings.ToLower(trimmed), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}
