// Package metrics parses converted markdown back into document and table metrics.
package metrics

import (
	"strings"

	"github.com/dtnitsch/wiki-triage/models"
	"github.com/dtnitsch/wiki-triage/pkg/analytics"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Extractor attributes every word and signal of a markdown document to either
// a table or the prose outside all tables. Headings are counted separately.
type Extractor struct {
	cfg       models.Config
	analytics *analytics.Analytics
	md        goldmark.Markdown
}

// New returns an Extractor using the placeholder words of cfg.
func New(cfg models.Config) *Extractor {
	return &Extractor{
		cfg:       cfg,
		analytics: analytics.New(cfg),
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Analytics exposes the word classifier used by the extractor.
func (e *Extractor) Analytics() *analytics.Analytics {
	return e.analytics
}

// Extract parses markdown with a GFM parser and walks the tree. Tables are found
// structurally, so prose that merely contains pipes is never mistaken for one.
func (e *Extractor) Extract(markdown string) models.DocumentMetrics {
	src := []byte(markdown)
	doc := e.md.Parser().Parse(text.NewReader(src))

	dm := models.DocumentMetrics{
		Structure: models.Structure{Headings: map[int]int{}},
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *east.Table:
			tm := tableModel(node, src)
			m := e.Table(len(dm.Tables), tm)
			dm.Tables = append(dm.Tables, m)
			dm.TableModels = append(dm.TableModels, tm)
			dm.TotalWords += m.Words + m.HeaderWords
			return ast.WalkSkipChildren, nil

		case *ast.Heading:
			// Heading words are structure, but references in a heading still count outside.
			st := e.analytics.Count(inlineText(node, src))
			dm.Structure.Headings[node.Level]++
			dm.Structure.HeadingWords += st.Words.Total
			dm.Structure.Images += st.Images
			dm.Outside.Signals = dm.Outside.Signals.Add(st.Signals)
			dm.TotalWords += st.Words.Total
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			dm.Structure.CodeBlocks++
			e.addOutside(&dm, blockLines(node, src))
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			dm.Structure.CodeBlocks++
			e.addOutside(&dm, blockLines(node, src))
			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			dm.Structure.Paragraphs++
			e.addOutside(&dm, inlineText(node, src))
			return ast.WalkSkipChildren, nil

		case *ast.TextBlock:
			e.addOutside(&dm, inlineText(node, src))
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			if list, ok := node.Parent().(*ast.List); ok && list.IsOrdered() {
				dm.Structure.OrderedItems++
			} else {
				dm.Structure.UnorderedItems++
			}

		case *ast.Blockquote:
			dm.Structure.Blockquotes++
		}
		return ast.WalkContinue, nil
	})

	for _, t := range dm.Tables {
		dm.TotalCells += t.TotalCells
		dm.FilledCells += t.FilledCells
		dm.AverageFill += t.FillPercentage
		dm.Structure.Images += t.Images
	}
	if len(dm.Tables) > 0 {
		dm.AverageFill /= float64(len(dm.Tables))
	}
	return dm
}

func (e *Extractor) addOutside(dm *models.DocumentMetrics, s string) {
	st := e.analytics.Count(s)
	dm.Outside.Words += st.Words.Total
	dm.Outside.MeaningfulWords += st.Words.Meaningful
	dm.Outside.PlaceholderWords += st.Words.Placeholder
	dm.Outside.Signals = dm.Outside.Signals.Add(st.Signals)
	dm.Structure.Images += st.Images
	dm.TotalWords += st.Words.Total
}

// tableModel rebuilds the cell grid of a GFM table. An all-empty header row
// is the filler the converter writes for headerless tables and is dropped.
func tableModel(t *east.Table, src []byte) models.TableModel {
	var rows [][]string
	hasHeader := false

	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, strings.TrimSpace(inlineText(c, src)))
		}

		if _, ok := row.(*east.TableHeader); ok {
			if strings.TrimSpace(strings.Join(cells, "")) == "" {
				continue
			}
			hasHeader = true
		}
		rows = append(rows, cells)
	}
	return models.NewTableModel(rows, hasHeader)
}

// inlineText flattens the inline children of n back into markdown-ish text that
// keeps link and image syntax, so signals can be counted from it.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	writeInline(&b, n, src)
	return b.String()
}

func writeInline(b *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.Link:
			b.WriteString("[")
			writeInline(b, node, src)
			b.WriteString("](" + string(node.Destination) + ")")
		case *ast.Image:
			b.WriteString("![")
			writeInline(b, node, src)
			b.WriteString("](" + string(node.Destination) + ")")
		case *ast.AutoLink:
			label := string(node.Label(src))
			if node.AutoLinkType == ast.AutoLinkURL && strings.HasPrefix(label, "www.") {
				label = "http://" + label
			}
			b.WriteString(" " + label + " ")
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				b.Write(seg.Value(src))
			}
		case *east.TaskCheckBox:
		default:
			writeInline(b, c, src)
		}
	}
}

func blockLines(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}
