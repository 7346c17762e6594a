package util

import (
	"github.com/sahilm/fuzzy"

	"github.com/lawbridge/lawbridge/pkg/api"
)

// ScoreCompletions returns the top n fuzzy matches for input, best first.
// An empty input returns candidates unchanged.
func ScoreCompletions(input string, candidates []string, n int) []string {
	if input == "" {
		return candidates
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return nil
	}
	limit := n
	if n <= 0 || len(matches) < limit {
		limit = len(matches)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].Str
	}
	return out
}

// summarySource lets fuzzy search titles and bot names together.
type summarySource []api.Summary

func (s summarySource) String(i int) string { return s[i].Title + " " + s[i].Bot }
func (s summarySource) Len() int            { return len(s) }

// MatchSummaries keeps conversations whose title or bot fuzzily matches
// pattern, best match first.
func MatchSummaries(pattern string, items []api.Summary) []api.Summary {
	if pattern == "" {
		return items
	}
	matches := fuzzy.FindFrom(pattern, summarySource(items))
	out := make([]api.Summary, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}
