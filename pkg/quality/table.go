// Package quality classifies tables and pages as useful or gibberish with
// ordered, short-circuiting rules.
package quality

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/wiki-triage/models"
)

// Rule names recorded in verdicts.
const (
	RulePriorityContent = "priority-content"
	RuleRichCell        = "rich-cell"
	RuleHeaderOnly      = "header-only"
	RuleFirstColumnOnly = "first-column-only"
	RuleSingleRow       = "single-row"
	RuleSingleColumn    = "single-column"
	RuleMeaningfulWords = "meaningful-words"
	RuleFewWords        = "few-meaningful-words"
	RuleNoWords         = "no-meaningful-words"

	RuleUsefulTable  = "useful-table"
	RuleOutsideWords = "outside-words"
	RuleOutsideRefs  = "outside-signals"
	RuleNoContent    = "no-content"
)

type tableRule func(c *TableClassifier, t models.TableModel, m models.TableMetrics) (models.Verdict, bool)

// tableRules run in order; the first match wins.
var tableRules = []tableRule{
	priorityContent,
	richCell,
	headerOnly,
	firstColumnOnly,
	singleRowOrColumn,
	wordThreshold,
}

// TableClassifier applies the table rules with the thresholds of one Config.
type TableClassifier struct {
	cfg models.Config
}

// NewTableClassifier returns a classifier for cfg.
func NewTableClassifier(cfg models.Config) *TableClassifier {
	return &TableClassifier{cfg: cfg}
}

// Classify returns the verdict of the first matching rule. GIBBERISH reasons note
// how many placeholder words were ignored.
func (c *TableClassifier) Classify(t models.TableModel, m models.TableMetrics) models.Verdict {
	for _, rule := range tableRules {
		v, ok := rule(c, t, m)
		if !ok {
			continue
		}
		if v.Classification == models.Gibberish && m.PlaceholderWords > 0 {
			v.Reason += fmt.Sprintf(" (%d placeholder words excluded)", m.PlaceholderWords)
		}
		v.Metrics = tableSnapshot(m)
		return v
	}
	// wordThreshold always matches.
	return models.Verdict{Classification: models.Gibberish, Reason: "no rule matched", Rule: RuleNoWords}
}

func priorityContent(_ *TableClassifier, _ models.TableModel, m models.TableMetrics) (models.Verdict, bool) {
	if reason, ok := signalReason(m.Signals, "found"); ok {
		return useful(RulePriorityContent, reason), true
	}
	return models.Verdict{}, false
}

func richCell(c *TableClassifier, _ models.TableModel, m models.TableMetrics) (models.Verdict, bool) {
	for r, row := range m.CellWords {
		for col, n := range row {
			if n > c.cfg.RichCellWords {
				return useful(RuleRichCell, fmt.Sprintf("rich cell with %d meaningful words (row %d, column %d)", n, r+1, col+1)), true
			}
		}
	}
	return models.Verdict{}, false
}

func headerOnly(_ *TableClassifier, t models.TableModel, m models.TableMetrics) (models.Verdict, bool) {
	if !t.HasHeader || m.DataRows == 0 || !hasText(t.Header()) {
		return models.Verdict{}, false
	}
	for _, row := range m.CellFilled {
		for _, f := range row {
			if f {
				return models.Verdict{}, false
			}
		}
	}
	return gibberish(RuleHeaderOnly, "only header row filled"), true
}

func firstColumnOnly(_ *TableClassifier, _ models.TableModel, m models.TableMetrics) (models.Verdict, bool) {
	if m.Cols < 2 {
		return models.Verdict{}, false
	}
	first := false
	for _, row := range m.CellFilled {
		for c, f := range row {
			if !f {
				continue
			}
			if c > 0 {
				return models.Verdict{}, false
			}
			first = true
		}
	}
	if !first {
		return models.Verdict{}, false
	}
	return gibberish(RuleFirstColumnOnly, "only first column filled"), true
}

func singleRowOrColumn(_ *TableClassifier, t models.TableModel, m models.TableMetrics) (models.Verdict, bool) {
	// The header counts towards the row minimum, so a header plus one data row still qualifies.
	if t.NumRows < 2 || m.Cols < 2 {
		return models.Verdict{}, false
	}
	rows := map[int]bool{}
	cols := map[int]bool{}
	for r, row := range m.CellFilled {
		for c, f := range row {
			if f {
				rows[r] = true
				cols[c] = true
			}
		}
	}
	switch {
	case len(rows) == 1:
		return gibberish(RuleSingleRow, fmt.Sprintf("only one of %d rows has content", m.DataRows)), true
	case len(cols) == 1:
		return gibberish(RuleSingleColumn, fmt.Sprintf("only one of %d columns has content", m.Cols)), true
	}
	return models.Verdict{}, false
}

func wordThreshold(c *TableClassifier, _ models.TableModel, m models.TableMetrics) (models.Verdict, bool) {
	n := m.MeaningfulWords
	scope := ""
	if m.IsKeyValue {
		scope = " in values column"
	}
	switch {
	case n >= c.cfg.MeaningfulWordThreshold:
		return useful(RuleMeaningfulWords, fmt.Sprintf("%d meaningful words%s", n, scope)), true
	case n > 0:
		return models.Verdict{
			Classification: models.Undecided,
			Reason:         fmt.Sprintf("only %d meaningful word(s)%s", n, scope),
			Rule:           RuleFewWords,
		}, true
	default:
		return gibberish(RuleNoWords, "no meaningful words"+scope), true
	}
}

// signalReason names the first present signal in priority order.
func signalReason(s models.Signals, suffix string) (string, bool) {
	switch {
	case s.Links > 0:
		return fmt.Sprintf("%d link(s) %s", s.Links, suffix), true
	case s.Files > 0:
		return fmt.Sprintf("%d file(s) %s", s.Files, suffix), true
	case s.Images > 0:
		return fmt.Sprintf("%d image(s) %s", s.Images, suffix), true
	case s.Mentions > 0:
		return fmt.Sprintf("%d mention(s) %s", s.Mentions, suffix), true
	}
	return "", false
}

func hasText(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

func useful(rule, reason string) models.Verdict {
	return models.Verdict{Classification: models.Useful, Reason: reason, Rule: rule}
}

func gibberish(rule, reason string) models.Verdict {
	return models.Verdict{Classification: models.Gibberish, Reason: reason, Rule: rule}
}

func tableSnapshot(m models.TableMetrics) map[string]any {
	return map[string]any{
		"meaningful_words":  m.MeaningfulWords,
		"placeholder_words": m.PlaceholderWords,
		"links":             m.Links,
		"files":             m.Files,
		"images":            m.Images,
		"mentions":          m.Mentions,
		"fill_percentage":   m.FillPercentage,
		"tier":              string(m.Tier),
		"data_rows":         m.DataRows,
		"cols":              m.Cols,
	}
}
