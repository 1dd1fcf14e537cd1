package mapreduce

import (
	"strings"

	"github.com/dtnitsch/wiki-triage/pkg/analytics"
)

// Map generates a frequency map of the meaningful words of one document.
func Map(content string, a *analytics.Analytics) map[string]int {
	counts := make(map[string]int)
	for _, w := range a.MeaningfulWords(content) {
		counts[strings.ToLower(w)]++
	}
	return counts
}

// Count builds a frequency map from a list of labels such as rule or macro names.
func Count(items []string) map[string]int {
	counts := make(map[string]int, len(items))
	for _, it := range items {
		if it != "" {
			counts[it]++
		}
	}
	return counts
}

// Reduce aggregates a slice of frequency maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for word, count := range counts {
			finalResults[word] += count
		}
	}

	return finalResults
}
