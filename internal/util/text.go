package util

import (
	"strings"
	"unicode"
)

// SanitizeText removes bytes and control characters that Postgres text columns
// reject (especially NUL / 0x00 from some PDF extractors).
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"for": {}, "is": {}, "are": {}, "was": {}, "were": {}, "what": {}, "how": {}, "why": {},
	"which": {}, "that": {}, "this": {}, "these": {}, "those": {}, "with": {}, "from": {}, "across": {},
	"does": {}, "did": {}, "do": {}, "be": {}, "by": {}, "as": {}, "at": {}, "it": {}, "its": {},
	"their": {}, "they": {}, "paper": {}, "authors": {}, "author": {},
}

// SignificantTerms lowercases, strips punctuation, and drops stopwords and
// short tokens, returning the unique terms in first-seen order.
func SignificantTerms(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	uniq := map[string]struct{}{}
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.;:!?()[]{}\"'`")
		if len(f) < 3 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		if _, ok := uniq[f]; ok {
			continue
		}
		uniq[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// KeywordOverlap returns the fraction of query terms that occur in text,
// in [0, 1]. An empty term set scores zero.
func KeywordOverlap(text string, queryTerms []string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	low := strings.ToLower(text)
	hits := 0
	for _, term := range queryTerms {
		if strings.Contains(low, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTerms))
}

// NormalizeForDedup collapses a unit's text to a canonical form so that
// near-identical units compare equal.
func NormalizeForDedup(s string) string {
	s = strings.ToLower(SanitizeText(s))
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	return strings.Join(strings.Fields(string(out)), " ")
}

// NormalizeLocator canonicalizes human locator labels ("Figure  3", "fig. 3")
// so that classifier output and stored unit locators compare equal.
func NormalizeLocator(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	switch strings.TrimSuffix(fields[0], ".") {
	case "fig", "figure":
		fields[0] = "figure"
	case "tab", "table":
		fields[0] = "table"
	case "eq", "equation":
		fields[0] = "equation"
	case "sec", "section":
		fields[0] = "section"
	case "page", "p":
		fields[0] = "page"
	}
	return strings.Join(fields, " ")
}

// Snippet trims text to maxRunes for display, collapsing whitespace.
func Snippet(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 420
	}
	s = strings.Join(strings.Fields(SanitizeText(s)), " ")
	runes := []rune(s)
	if len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "..."
	}
	return s
}
