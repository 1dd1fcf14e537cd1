package quality

import (
	"fmt"

	"github.com/dtnitsch/wiki-triage/models"
)

// PageClassifier decides the document verdict from table verdicts and the
// metrics of prose outside tables.
type PageClassifier struct {
	cfg models.Config
}

// NewPageClassifier returns a classifier for cfg.
func NewPageClassifier(cfg models.Config) *PageClassifier {
	return &PageClassifier{cfg: cfg}
}

// Classify short-circuits on the first condition that holds. UNDECIDED tables
// never make a page useful.
func (c *PageClassifier) Classify(tables []models.Verdict, outside models.OutsideMetrics) models.Verdict {
	v := c.classify(tables, outside)
	v.Metrics = map[string]any{
		"tables":                   len(tables),
		"useful_tables":            countClass(tables, models.Useful),
		"outside_meaningful_words": outside.MeaningfulWords,
		"outside_links":            outside.Links,
		"outside_files":            outside.Files,
		"outside_images":           outside.Images,
		"outside_mentions":         outside.Mentions,
	}
	return v
}

func (c *PageClassifier) classify(tables []models.Verdict, outside models.OutsideMetrics) models.Verdict {
	for i, t := range tables {
		if t.IsUseful() {
			return useful(RuleUsefulTable, fmt.Sprintf("table %d is useful: %s", i+1, t.Reason))
		}
	}
	if outside.MeaningfulWords >= c.cfg.OutsideWordThreshold {
		return useful(RuleOutsideWords, fmt.Sprintf("%d words outside tables", outside.MeaningfulWords))
	}
	if reason, ok := signalReason(outside.Signals, "outside tables"); ok {
		return useful(RuleOutsideRefs, reason)
	}

	reason := fmt.Sprintf("no useful tables and only %d words outside tables", outside.MeaningfulWords)
	if len(tables) == 0 {
		reason = fmt.Sprintf("no tables and only %d words outside tables", outside.MeaningfulWords)
	}
	return gibberish(RuleNoContent, reason)
}

func countClass(vs []models.Verdict, class models.Classification) int {
	n := 0
	for _, v := range vs {
		if v.Classification == class {
			n++
		}
	}
	return n
}
