package mapreduce

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// isValidKeyword checks if a keyword should be included in results.
// Filters malformed tokens (unmatched delimiters, trailing special chars, unmatched quotes).
func isValidKeyword(word string) bool {
	if strings.HasSuffix(word, ":") || strings.HasSuffix(word, "=") {
		return false
	}

	if strings.Contains(word, "(") && !strings.Contains(word, ")") {
		return false
	}
	if strings.Contains(word, "[") && !strings.Contains(word, "]") {
		return false
	}
	if strings.Contains(word, "{") && !strings.Contains(word, "}") {
		return false
	}

	if strings.Count(word, "\"")%2 != 0 {
		return false
	}
	return strings.Count(word, "'")%2 == 0
}

type kv struct {
	Key   string
	Value int
}

// topN sorts valid keys by count, then alphabetically, and keeps at most n.
func topN(counts map[string]int, n int) []kv {
	var ss []kv
	for k, v := range counts {
		if isValidKeyword(k) {
			ss = append(ss, kv{k, v})
		}
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	if n < 0 {
		n = 0
	}
	if len(ss) > n {
		ss = ss[:n]
	}
	return ss
}

// TopKeywords returns the top N keys as "key:count" strings (e.g., "header-only:12").
func TopKeywords(counts map[string]int, n int) []string {
	top := topN(counts, n)
	keywords := make([]string, len(top))
	for i, e := range top {
		keywords[i] = fmt.Sprintf("%s:%d", e.Key, e.Value)
	}
	return keywords
}

// PrintTopKeywords writes the top N keys as a numbered list.
func PrintTopKeywords(w io.Writer, counts map[string]int, n int) {
	for i, e := range topN(counts, n) {
		fmt.Fprintf(w, "%d. %s: %d\n", i+1, e.Key, e.Value)
	}
}
