package command

import (
	"strings"
	"unicode"

	"example.com/household-assistant/internal/format"
)

const (
	searchNothingFound = "I didn't find anything matching that."
	minSearchTermLen   = 3
)

var searchStopWords = map[string]bool{
	"where": true, "what": true, "which": true, "when": true, "who": true, "how": true,
	"did": true, "does": true, "the": true, "and": true, "for": true, "our": true,
	"put": true, "find": true, "show": true, "have": true, "with": true, "about": true,
	"any": true, "all": true, "are": true, "was": true, "you": true, "can": true,
	"this": true, "that": true, "there": true, "from": true, "into": true, "keep": true,
}

type SearchCount struct {
	Kind     string `json:"kind"`
	Singular string `json:"-"`
	Plural   string `json:"-"`
	Count    int    `json:"count"`
}

// BuildSearchResultAnswer формирует ответ по количеству найденных записей
// в порядке источников, например "I found 2 bills, 1 pet.".
func BuildSearchResultAnswer(counts []SearchCount) string {
	parts := make([]string, 0, len(counts))
	for _, count := range counts {
		if count.Count <= 0 {
			continue
		}
		parts = append(parts, format.Count(count.Count, count.Singular, count.Plural))
	}

	if len(parts) == 0 {
		return searchNothingFound
	}

	return "I found " + strings.Join(parts, ", ") + "."
}

// SearchTerms выделяет из запроса значимые слова для поиска по записям.
// Служебные и короткие слова отбрасываются, повторы схлопываются.
func SearchTerms(query string) []string {
	words := strings.FieldsFunc(Normalize(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	seen := make(map[string]bool, len(words))
	terms := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.Trim(word, "-")
		if len([]rune(word)) < minSearchTermLen || searchStopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		terms = append(terms, word)
	}
	return terms
}
