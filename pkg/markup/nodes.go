package markup

import (
	"golang.org/x/net/html"
)

type nodeKind int

const (
	kindText nodeKind = iota
	kindComment
	kindDropped
	kindMacro
	kindReference
	kindTable
	kindList
	kindHeading
	kindCode
	kindBlock
	kindInline
)

var droppedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "iframe": true,
	"head": true, "title": true, "meta": true, "link": true,
	"ac:placeholder": true, "ac:adf-attribute": true,
	"ac:parameter": true, "ac:default-parameter": true,
}

var referenceTags = map[string]bool{
	"ac:link": true, "ri:user": true, "ac:image": true, "ac:emoticon": true,
	"time": true, "ac:task-list": true, "ac:adf-extension": true,
}

var blockTags = map[string]bool{
	"html": true, "body": true, "p": true, "div": true, "section": true, "article": true,
	"main": true, "header": true, "footer": true, "aside": true, "nav": true, "center": true,
	"address": true, "blockquote": true, "hr": true, "figure": true, "figcaption": true,
	"dl": true, "dt": true, "dd": true, "details": true, "summary": true, "form": true,
	"thead": true, "tbody": true, "tfoot": true, "tr": true, "td": true, "th": true, "caption": true,
	"ac:rich-text-body": true, "ac:plain-text-body": true, "ac:task-body": true,
	"ac:layout": true, "ac:layout-section": true, "ac:layout-cell": true,
	"ac:adf-node": true, "ac:adf-content": true,
}

// classifyNode decides how a node is converted. Order matters: macros first,
// then reference and media nodes, then structure, block containers and finally inline.
func classifyNode(n *html.Node) nodeKind {
	switch n.Type {
	case html.TextNode:
		return kindText
	case html.CommentNode, html.DoctypeNode:
		return kindComment
	case html.DocumentNode:
		return kindBlock
	case html.ElementNode:
	default:
		return kindDropped
	}

	name := n.Data
	switch {
	case name == "ac:structured-macro" || name == "ac:macro":
		return kindMacro
	case droppedTags[name] || isPlaceholderSpan(n):
		return kindDropped
	case referenceTags[name]:
		return kindReference
	case name == "table":
		return kindTable
	case name == "ul" || name == "ol":
		return kindList
	case len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6':
		return kindHeading
	case name == "pre":
		return kindCode
	case blockTags[name]:
		return kindBlock
	default:
		return kindInline
	}
}

// isPlaceholderSpan matches editor instruction text that is never shown to readers.
func isPlaceholderSpan(n *html.Node) bool {
	return n.Data == "span" && (hasClass(n, "text-placeholder") || hasClass(n, "placeholder-inline-tasks"))
}
