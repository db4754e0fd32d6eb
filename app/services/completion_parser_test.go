package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCompletionLines(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "numbered list with dots",
			raw:      "1. What is the product?\n2. How much does it cost?\n3. Where do I buy it?",
			expected: []string{"What is the product?", "How much does it cost?", "Where do I buy it?"},
		},
		{
			name:     "numbered list with parentheses",
			raw:      "1) First question\n12) Twelfth question",
			expected: []string{"First question", "Twelfth question"},
		},
		{
			name:     "bullet markers",
			raw:      "- What is it?\n* How does it work?",
			expected: []string{"What is it?", "How does it work?"},
		},
		{
			name:     "blank and whitespace-only lines dropped",
			raw:      "\nFirst\n\n   \nSecond\n",
			expected: []string{"First", "Second"},
		},
		{
			name:     "surrounding whitespace trimmed",
			raw:      "  1.   Padded question   ",
			expected: []string{"Padded question"},
		},
		{
			name:     "marker-only line dropped",
			raw:      "1.\n2. Real question",
			expected: []string{"Real question"},
		},
		{
			name:     "plain lines pass through in order",
			raw:      "alpha\nbeta\ngamma",
			expected: []string{"alpha", "beta", "gamma"},
		},
		{
			name:     "empty input",
			raw:      "",
			expected: []string{},
		},
		{
			name:     "number inside the line is kept",
			raw:      "What are the top 5 features?",
			expected: []string{"What are the top 5 features?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCompletionLines(tt.raw))
		})
	}
}
