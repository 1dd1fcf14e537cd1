package mapreduce

import (
	"bytes"
	"testing"

	"github.com/dtnitsch/wiki-triage/models"
	"github.com/dtnitsch/wiki-triage/pkg/analytics"
	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	a := analytics.New(models.DefaultConfig())
	got := Map("Deploy the Service, then deploy again. TBD 42", a)
	assert.Equal(t, map[string]int{"deploy": 2, "the": 1, "service": 1, "then": 1, "again": 1}, got)
}

func TestReduceAndTop(t *testing.T) {
	total := Reduce([]map[string]int{
		Count([]string{"gadget", "roadmap", "gadget"}),
		Count([]string{"gadget", "", "chart"}),
	})
	assert.Equal(t, map[string]int{"gadget": 3, "roadmap": 1, "chart": 1}, total)

	assert.Equal(t, []string{"gadget:3", "chart:1"}, TopKeywords(total, 2))
	assert.Empty(t, TopKeywords(total, -1))
}

func TestTopKeywords_FiltersMalformed(t *testing.T) {
	counts := map[string]int{"ok": 1, "broken(": 5, "key:": 5, `quote"`: 5}
	assert.Equal(t, []string{"ok:1"}, TopKeywords(counts, 10))
}

func TestPrintTopKeywords(t *testing.T) {
	var buf bytes.Buffer
	PrintTopKeywords(&buf, map[string]int{"a-rule": 2, "b-rule": 1}, 5)
	assert.Equal(t, "1. a-rule: 2\n2. b-rule: 1\n", buf.String())
}
