package analytics

import (
	"testing"

	"github.com/dtnitsch/wiki-triage/models"
	"github.com/stretchr/testify/assert"
)

func TestExtractSignals(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		signals models.Signals
	}{
		{"labelled link keeps label", "see [the docs](https://x.io/a)", "see the docs", models.Signals{Links: 1}},
		{"url label is one link", "[https://example.com/a](https://example.com/a)", "", models.Signals{Links: 1}},
		{"url label with text", "[go https://example.com/a](https://example.com/a)", "go", models.Signals{Links: 1}},
		{"bare url", "visit https://example.com now", "visit now", models.Signals{Links: 1}},
		{"image", "![diagram](arch.png)", "", models.Signals{Images: 1}},
		{"mention and file", "[~bob] sent [PDF: plan.pdf]", "sent", models.Signals{Mentions: 1, Files: 1}},
		{"empty", "", "", models.Signals{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, sig := ExtractSignals(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.signals, sig)
		})
	}
}
