package search

import (
	"sort"
	"strings"
	"unicode"
)

// Rank scores snippets against the query and returns them in descending
// score order, deduplicated by source+content. The score blends keyword
// overlap (dominant) with the upstream position so upstream relevance still
// breaks near-ties.
func Rank(query string, snippets []Snippet) []Snippet {
	terms := tokenize(query)

	seen := make(map[string]bool, len(snippets))
	out := make([]Snippet, 0, len(snippets))
	for i, sn := range snippets {
		dedupe := sn.Source + "\x00" + sn.Content
		if seen[dedupe] {
			continue
		}
		seen[dedupe] = true

		positional := 1.0 / float64(1+i)
		sn.Score = 0.8*overlap(terms, sn.Content) + 0.2*positional
		out = append(out, sn)
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Source < out[b].Source
	})
	return out
}

// overlap returns the fraction of query terms present in the content.
func overlap(terms []string, content string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	hits := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
