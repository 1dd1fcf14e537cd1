package markup

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// normalizeSpace maps non-breaking and zero-width characters to plain spaces.
func normalizeSpace(s string) string {
	return oddSpace.Replace(s)
}

// collapse turns any whitespace run into one space and trims the ends.
func collapse(s string) string {
	return strings.Join(strings.Fields(normalizeSpace(s)), " ")
}

var (
	blockStartRe   = regexp.MustCompile(`^(?:#|>|[-+*](?: |$)|[-*_][-*_ ]*$)`)
	orderedStartRe = regexp.MustCompile(`^(\d{1,9})([.)])( |$)`)
)

// escapeBlockStart keeps a paragraph that opens with a heading, quote, list or
// rule marker from being read back as that block.
func escapeBlockStart(s string) string {
	if m := orderedStartRe.FindStringSubmatchIndex(s); m != nil {
		return s[:m[3]] + `\` + s[m[3]:]
	}
	if blockStartRe.MatchString(s) {
		return `\` + s
	}
	return s
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) (string, bool) {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s, false
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])), true
}

var bracketSafe = strings.NewReplacer("[", "(", "]", ")", "\n", " ")

// placeholderSafe keeps free text from breaking the bracketed placeholder grammar.
func placeholderSafe(s string) string {
	return collapse(bracketSafe.Replace(s))
}

func attr(n *html.Node, keys ...string) string {
	for _, k := range keys {
		for _, a := range n.Attr {
			if a.Key == k && strings.TrimSpace(a.Val) != "" {
				return strings.TrimSpace(a.Val)
			}
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// visibleText is the concatenated character data of n, minus dropped nodes.
func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if classifyNode(n) == kindDropped {
				return
			}
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapse(b.String())
}

// rawText keeps line breaks; used for code.
func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return normalizeSpace(b.String())
}

// findAll returns descendants of n with the given element name, in document order.
func findAll(n *html.Node, name string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, name string) *html.Node {
	if found := findAll(n, name); len(found) > 0 {
		return found[0]
	}
	return nil
}

func childElements(n *html.Node, names ...string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if len(names) == 0 {
			out = append(out, c)
			continue
		}
		for _, name := range names {
			if c.Data == name {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
