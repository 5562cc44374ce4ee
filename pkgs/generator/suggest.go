package generator

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	maxSuggestions  = 3
	maxEditDistance = 2
	minSuggestLen   = 3
)

// suggest returns the keywords closest to a word that failed to start a
// statement, best match first.
func (g *Generator) suggest(word string) []string {
	if len(word) < minSuggestLen {
		return nil
	}

	var keywords []string
	for _, kw := range g.tables.AllKeywords() {
		if wordPattern.MatchString(kw) && kw != word {
			keywords = append(keywords, kw)
		}
	}

	scores := map[string]int{}
	for _, kw := range keywords {
		if d := fuzzy.LevenshteinDistance(word, kw); d <= maxEditDistance {
			scores[kw] = d
		}
	}
	// abbreviations such as "func" or "proc"
	for _, rank := range fuzzy.RankFindFold(word, keywords) {
		if _, ok := scores[rank.Target]; !ok {
			scores[rank.Target] = rank.Distance + maxEditDistance
		}
	}

	out := make([]string, 0, len(scores))
	for kw := range scores {
		out = append(out, kw)
	}
	sort.Slice(out, func(i, j int) bool {
		if scores[out[i]] != scores[out[j]] {
			return scores[out[i]] < scores[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
