// Package validation checks generated and fetched text before it is used:
// forbidden topics in letters, prompt injection in scraped pages.
package validation

import (
	"strings"
	"unicode"
)

// CheckForbiddenTopics returns the topics mentioned in text, in the order
// given. Matching ignores case and collapses runs of whitespace, so a topic
// split over a line break still matches.
func CheckForbiddenTopics(text string, topics []string) []string {
	if len(topics) == 0 {
		return nil
	}

	normalized := normalizeForMatching(text)
	var found []string
	for _, topic := range topics {
		t := normalizeForMatching(topic)
		if t == "" {
			continue
		}
		if strings.Contains(normalized, t) {
			found = append(found, topic)
		}
	}
	return found
}

// normalizeForMatching lower-cases text and collapses whitespace to single spaces.
func normalizeForMatching(text string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(text), unicode.IsSpace), " ")
}
