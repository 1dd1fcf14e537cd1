package markup

import (
	"strings"

	"golang.org/x/net/html"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "keygen": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// prepare rewrites storage markup so the HTML5 parser keeps its structure:
// self-closing non-void tags (<ri:page .../>) become explicit start/end pairs,
// and CDATA sections become escaped text.
func prepare(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	z.AllowCDATA(true)

	var b strings.Builder
	b.Grow(len(raw) + len(raw)/8)
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the rest is unusable.
			return b.String()
		case html.TextToken:
			b.WriteString(html.EscapeString(string(z.Text())))
		case html.SelfClosingTagToken:
			tok := z.Token()
			if voidElements[tok.Data] {
				b.WriteString(tok.String())
				continue
			}
			tok.Type = html.StartTagToken
			b.WriteString(tok.String())
			b.WriteString("</")
			b.WriteString(tok.Data)
			b.WriteString(">")
		default:
			b.Write(z.Raw())
		}
	}
}

// plainText extracts the character data of raw without building a tree.
func plainText(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	z.AllowCDATA(true)

	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if s := string(name); s == "script" || s == "style" {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if s := string(name); (s == "script" || s == "style") && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}
