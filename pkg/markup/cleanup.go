package markup

import (
	"regexp"
	"strings"
)

var (
	oddSpace = strings.NewReplacer(
		"\u00a0", " ", "\u2007", " ", "\u202f", " ",
		"\u200b", " ", "\u200c", " ", "\u200d", " ", "\u2060", " ", "\ufeff", " ",
		"\r\n", "\n", "\r", "\n",
	)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	trailingWSRe = regexp.MustCompile(`[ \t]+\n`)
)

// Cleanup is the final formatting pass: odd whitespace becomes plain spaces,
// trailing spaces are stripped, blank lines are capped at one and the text
// ends with exactly one newline. Cleanup(Cleanup(s)) == Cleanup(s).
func Cleanup(s string) string {
	s = oddSpace.Replace(s)
	s = trailingWSRe.ReplaceAllString(s+"\n", "\n")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	s = strings.TrimLeft(s, "\n")
	s = strings.TrimRight(s, "\n")
	return s + "\n"
}
