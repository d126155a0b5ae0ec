// Package knowledge picks the reference passages that ground a generation
// call, either by explicit identifier or by token-overlap scoring.
package knowledge

import (
	"sort"
	"strings"

	"github.com/tdlm/content-bot/internal/domain"
)

const (
	// minTokenLength filters out short filler words before scoring.
	minTokenLength = 4

	// maxSelected caps how many entries ground a single generation call.
	maxSelected = 2
)

// Select returns up to two knowledge entries supporting the given topic.
//
// An explicit identifier that matches an entry exactly (after trimming)
// short-circuits the scoring and returns that single entry. Otherwise every
// entry is scored by the number of 4+-letter tokens it shares with the
// topic and keywords; entries with a positive score are returned best first,
// ties keeping their original order. Never fails on empty input.
func Select(entries []domain.KnowledgeEntry, topic, keywords, explicitID string) []domain.KnowledgeEntry {
	if id := strings.TrimSpace(explicitID); id != "" {
		for _, e := range entries {
			if strings.TrimSpace(e.ID) == id {
				return []domain.KnowledgeEntry{e}
			}
		}
	}

	query := tokenize(topic + " " + keywords)
	if len(query) == 0 {
		return nil
	}

	type scored struct {
		entry domain.KnowledgeEntry
		score int
	}
	var candidates []scored
	for _, e := range entries {
		tokens := tokenize(e.Title + " " + e.Keywords + " " + e.Content)
		score := 0
		for tok := range query {
			if _, ok := tokens[tok]; ok {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{entry: e, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxSelected {
		candidates = candidates[:maxSelected]
	}
	result := make([]domain.KnowledgeEntry, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.entry)
	}
	return result
}

// tokenize lower-cases the text, treats commas as separators, and keeps
// tokens of at least minTokenLength runes.
func tokenize(text string) map[string]struct{} {
	text = strings.ToLower(strings.ReplaceAll(text, ",", " "))
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		if len([]rune(tok)) >= minTokenLength {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}
