package services

import (
	"regexp"
	"strings"
)

// ordinalPrefix matches leading list markers like "1. ", "12) " or "- "
var ordinalPrefix = regexp.MustCompile(`^(\d+[.)]|[-*])\s*`)

// ParseCompletionLines splits raw completion output into ordered,
// non-empty, trimmed lines with leading ordinal markers removed.
// Input: raw text; output: one entry per usable line, original order.
func ParseCompletionLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	parsed := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = strings.TrimSpace(ordinalPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}

		parsed = append(parsed, line)
	}

	return parsed
}
