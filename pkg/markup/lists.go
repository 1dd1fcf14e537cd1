package markup

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

func (w *walker) list(n *html.Node) string {
	lines := w.listLines(n, "")
	if len(lines) == 0 {
		return ""
	}
	return "\n\n" + strings.Join(lines, "\n") + "\n\n"
}

// listLines renders one list level. Nested lists are indented to the content
// column of their parent item; tables and code inside an item follow it as blocks.
func (w *walker) listLines(n *html.Node, indent string) []string {
	ordered := n.Data == "ol"
	var lines []string
	idx := 1
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			if t := collapse(c.Data); c.Type == html.TextNode && t != "" {
				lines = append(lines, indent+"- "+t)
			}
			continue
		}

		marker := "-"
		if ordered {
			marker = strconv.Itoa(idx) + "."
		}
		childIndent := indent + strings.Repeat(" ", len(marker)+1)

		var text strings.Builder
		var nested, detached []string
		items := []*html.Node{c}
		if c.Data == "li" {
			items = nil
			for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
				items = append(items, gc)
			}
		}
		for _, item := range items {
			switch {
			case item.Type == html.ElementNode && (item.Data == "ul" || item.Data == "ol"):
				nested = append(nested, w.listLines(item, childIndent)...)
			case item.Type == html.ElementNode && (item.Data == "table" || item.Data == "pre"):
				s, _ := w.convert(item)
				if s = strings.Trim(s, "\n"); s != "" {
					detached = append(detached, "\n"+s+"\n")
				}
			default:
				s, _ := w.convert(item)
				text.WriteString(" ")
				text.WriteString(s)
			}
		}

		line := collapse(text.String())
		if line == "" && len(nested) == 0 && len(detached) == 0 {
			continue
		}
		idx++
		lines = append(lines, strings.TrimRight(indent+marker+" "+line, " "))
		lines = append(lines, nested...)
		lines = append(lines, detached...)
	}
	return lines
}
