// Package analytics counts words and reference signals in converted markdown text.
package analytics

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dtnitsch/wiki-triage/models"
)

// Analytics classifies tokens as meaningful, placeholder or index words.
// It holds only read-only lookup tables and is safe for concurrent use.
type Analytics struct {
	placeholders map[string]struct{}
}

// New builds an Analytics from the placeholder list of cfg.
func New(cfg models.Config) *Analytics {
	a := &Analytics{placeholders: make(map[string]struct{}, len(cfg.PlaceholderWords))}
	for _, w := range cfg.PlaceholderWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			a.placeholders[w] = struct{}{}
		}
	}
	return a
}

var (
	tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+(?:[-/'][\p{L}\p{N}_]+)*`)
	partRe  = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	romanRe = regexp.MustCompile(`^m{0,4}(cm|cd|d?c{0,3})(xc|xl|l?x{0,3})(ix|iv|v?i{0,3})$`)
)

// Tokens splits text into word tokens. Hyphen, slash and apostrophe joined
// runs stay together so "n/a" and "medium-high" are single tokens.
func Tokens(text string) []string {
	return tokenRe.FindAllString(text, -1)
}

// IsPlaceholder reports whether the token only fills space ("tbd", "n/a", "yes").
func (a *Analytics) IsPlaceholder(token string) bool {
	t := strings.ToLower(strings.Trim(token, "*_"))
	if _, ok := a.placeholders[t]; ok {
		return true
	}
	parts := partRe.FindAllString(t, -1)
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if _, ok := a.placeholders[p]; !ok && !IsIndex(p) {
			return false
		}
	}
	return true
}

// IsIndex reports whether the token is a counter: digits, a roman numeral,
// a single letter or a short run of one repeated letter.
// Compound tokens are index words when every part is.
func IsIndex(token string) bool {
	t := strings.ToLower(token)
	if t == "" {
		return false
	}
	parts := partRe.FindAllString(t, -1)
	if len(parts) > 1 {
		for _, p := range parts {
			if !IsIndex(p) {
				return false
			}
		}
		return true
	}

	if isDigits(t) {
		return true
	}
	if strings.Trim(t, "ivxlcdm") == "" && romanRe.MatchString(t) {
		return true
	}
	r := []rune(t)
	if len(r) <= 3 && unicode.IsLetter(r[0]) {
		for _, c := range r[1:] {
			if c != r[0] {
				return false
			}
		}
		return true
	}
	return false
}

// Words classifies every token of text. Signals must already be stripped.
func (a *Analytics) Words(text string) models.WordStats {
	var ws models.WordStats
	for _, tok := range Tokens(text) {
		ws.Total++
		switch {
		case IsIndex(tok):
			ws.Index++
		case a.IsPlaceholder(tok):
			ws.Placeholder++
		default:
			ws.Meaningful++
		}
	}
	return ws
}

// Count strips reference signals out of text, counts them, and classifies the remaining words.
func (a *Analytics) Count(text string) models.TextStats {
	rest, sig := ExtractSignals(text)
	return models.TextStats{Words: a.Words(rest), Signals: sig}
}

// MeaningfulWords returns the meaningful tokens of text in order.
func (a *Analytics) MeaningfulWords(text string) []string {
	rest, _ := ExtractSignals(text)
	var out []string
	for _, tok := range Tokens(rest) {
		if !IsIndex(tok) && !a.IsPlaceholder(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
