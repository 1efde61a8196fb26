package quiz

import (
	"regexp"
	"strings"
)

var (
	jsonFence = regexp.MustCompile("(?i)```json\\s*")
	bareFence = regexp.MustCompile("```\\s*")
)

// Repair strips markdown fences and surrounding commentary from generator
// output, leaving the span from the first '[' to the last ']' when both are
// present in that order. It never fails; validation happens in
// ParseQuestions.
func Repair(raw string) string {
	cleaned := jsonFence.ReplaceAllString(raw, "")
	cleaned = bareFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.IndexByte(cleaned, '[')
	end := strings.LastIndexByte(cleaned, ']')
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}
