package analytics

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/wiki-triage/models"
)

// Placeholder grammar emitted by the markup converter, plus plain markdown references.
var (
	mdImageRe   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLinkRe    = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)[^)]*\)`)
	refRe       = regexp.MustCompile(`\[(?:JIRA|INCLUDE|PAGE)-REF(?::[^\]]*)?\]`)
	fileRe      = regexp.MustCompile(`\[(?:PDF|Attachment)(?::[^\]]*)?\]`)
	mentionRe   = regexp.MustCompile(`\[~[^\]\s]+\]`)
	labelRe     = regexp.MustCompile(`\[(?:STATUS|MACRO|ADF-CONTENT)\b:?|->`)
	commentRe   = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe       = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	urlRe       = regexp.MustCompile(`https?://[^\s)\]>|]+`)
	fileNameRe  = regexp.MustCompile(`(?i)[\w.\-]+\.(?:pdf|docx?|xlsx?|csv|pptx?)\b`)
	imageNameRe = regexp.MustCompile(`(?i)[\w.\-]+\.(?:png|jpe?g|gif|svg|bmp|webp)\b`)
)

// ExtractSignals counts links, images, files and mentions in text and returns
// the text with those references removed. Reference placeholders never count as words;
// link labels do.
func ExtractSignals(text string) (string, models.Signals) {
	var sig models.Signals
	if text == "" {
		return "", sig
	}

	text = commentRe.ReplaceAllString(text, " ")

	text = mdImageRe.ReplaceAllStringFunc(text, func(string) string {
		sig.Images++
		return " "
	})
	text = mdLinkRe.ReplaceAllStringFunc(text, func(m string) string {
		sig.Links++
		// A URL used as its own label is the same link, not a second one.
		return " " + urlRe.ReplaceAllString(mdLinkRe.FindStringSubmatch(m)[1], " ") + " "
	})
	text = refRe.ReplaceAllStringFunc(text, func(string) string {
		sig.Links++
		return " "
	})
	text = fileRe.ReplaceAllStringFunc(text, func(string) string {
		sig.Files++
		return " "
	})
	text = mentionRe.ReplaceAllStringFunc(text, func(string) string {
		sig.Mentions++
		return " "
	})
	text = urlRe.ReplaceAllStringFunc(text, func(string) string {
		sig.Links++
		return " "
	})
	text = fileNameRe.ReplaceAllStringFunc(text, func(string) string {
		sig.Files++
		return " "
	})
	text = imageNameRe.ReplaceAllStringFunc(text, func(string) string {
		sig.Images++
		return " "
	})

	text = tagRe.ReplaceAllString(text, " ")
	text = labelRe.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " "), sig
}
