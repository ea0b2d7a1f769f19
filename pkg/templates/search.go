package templates

import (
	"sort"
	"strings"
)

// Match tiers for name/label scoring. Synonym hits add a smaller boost on
// top, so a direct label match always outranks a synonym-only one.
const (
	scoreExact     = 400
	scorePrefix    = 300
	scoreSubstring = 200
	scoreFuzzy     = 100
	synonymDivisor = 4
)

// Search ranks the catalog against a free-text query and an optional category
// filter. Ranking: exact match > prefix > substring > fuzzy character-subset,
// with a synonym boost; ties break by label. An empty query returns the whole
// (filtered) catalog in label order. Deterministic and stable under identical
// input, not bit-exact across releases.
func Search(query, category string) []Template {
	query = strings.ToLower(strings.TrimSpace(query))

	type scored struct {
		tmpl  Template
		score int
	}

	var results []scored

	for _, tmpl := range catalog {
		if category != "" && tmpl.Category != category {
			continue
		}

		if query == "" {
			results = append(results, scored{tmpl, 0})

			continue
		}

		score := scoreText(query, tmpl.Name)
		if s := scoreText(query, tmpl.Label); s > score {
			score = s
		}

		for _, synonym := range tmpl.Synonyms {
			if boost := scoreText(query, synonym) / synonymDivisor; boost > 0 {
				score += boost

				break
			}
		}

		if score == 0 {
			continue
		}

		results = append(results, scored{tmpl, score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}

		return results[i].tmpl.Label < results[j].tmpl.Label
	})

	out := make([]Template, 0, len(results))
	for _, r := range results {
		out = append(out, r.tmpl)
	}

	return out
}

func scoreText(query, text string) int {
	text = strings.ToLower(text)

	switch {
	case text == query:
		return scoreExact
	case strings.HasPrefix(text, query):
		return scorePrefix
	case strings.Contains(text, query):
		return scoreSubstring
	case isSubsequence(query, text):
		return scoreFuzzy
	default:
		return 0
	}
}

// isSubsequence reports whether every character of query appears in text in
// order, spaces ignored.
func isSubsequence(query, text string) bool {
	query = strings.ReplaceAll(query, " ", "")
	if query == "" {
		return false
	}

	i := 0

	for _, r := range text {
		if i < len(query) && rune(query[i]) == r {
			i++
		}
	}

	return i == len(query)
}
