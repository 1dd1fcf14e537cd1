package markup

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const months = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`

type datePattern struct {
	re      *regexp.Regexp
	layouts []string
}

// datePatterns are tried in order; the first one that matches decides.
var datePatterns = []datePattern{
	{regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`), []string{"2006-1-2"}},
	{regexp.MustCompile(`\b\d{4}/\d{1,2}/\d{1,2}\b`), []string{"2006/1/2"}},
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), []string{"1/2/2006"}},
	{regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{4}\b`), []string{"1-2-2006"}},
	{regexp.MustCompile(`(?i)\b` + months + ` \d{1,2}(?:st|nd|rd|th)?,? \d{4}\b`), []string{"Jan 2 2006", "January 2 2006"}},
	{regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)? ` + months + `,? \d{4}\b`), []string{"2 Jan 2006", "2 January 2006"}},
}

var (
	ordinalRe = regexp.MustCompile(`(?i)(\d)(?:st|nd|rd|th)\b`)
	septRe    = regexp.MustCompile(`(?i)\bsept\b`)
	// Link destinations and bare URLs are addresses, not dates.
	addressRe = regexp.MustCompile(`\]\([^)]*\)|https?://[^\s)\]|]+`)
)

// normalizeDates rewrites the first recognised date in text as YYYY-MM-DD.
// Text without a recognisable date is returned unchanged.
func normalizeDates(text string) string {
	addresses := addressRe.FindAllStringIndex(text, -1)
	for _, p := range datePatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if within(loc, addresses) {
				continue
			}
			d, ok := formatDate(text[loc[0]:loc[1]], p.layouts...)
			if !ok {
				return text
			}
			return text[:loc[0]] + d + text[loc[1]:]
		}
	}
	return text
}

func within(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && loc[1] > s[0] {
			return true
		}
	}
	return false
}

// formatDate parses s with the given layouts, then with dateparse, and
// formats the result as YYYY-MM-DD.
func formatDate(s string, layouts ...string) (string, bool) {
	clean := ordinalRe.ReplaceAllString(s, "$1")
	clean = strings.NewReplacer(",", "", ".", "").Replace(clean)
	clean = septRe.ReplaceAllString(clean, "Sep")
	clean = strings.Join(strings.Fields(clean), " ")

	for _, layout := range layouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
