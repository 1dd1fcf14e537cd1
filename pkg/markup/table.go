package markup

import (
	"strconv"
	"strings"

	"github.com/dtnitsch/wiki-triage/models"
	"golang.org/x/net/html"
)

// maxColspan bounds span expansion on hostile input.
const maxColspan = 64

func (w *walker) table(n *html.Node) string {
	t, caption := w.normalizeTable(n)
	return renderTable(t, caption)
}

// normalizeTable expands column spans, detects an all-<th> first row as the
// header and renders every cell to single-line markdown. Row spans are not
// expanded; a spanned value stays in its origin row only.
func (w *walker) normalizeTable(n *html.Node) (models.TableModel, string) {
	caption := ""
	var rows [][]string
	header := false

	for _, tr := range tableRows(n, &caption) {
		var cells []string
		allTH := true
		for _, cell := range childElements(tr, "td", "th") {
			if cell.Data != "th" {
				allTH = false
			}
			cells = append(cells, w.cell(cell))
			for i := 1; i < colspan(cell); i++ {
				cells = append(cells, "")
			}
		}
		if len(cells) == 0 {
			continue
		}
		if len(rows) == 0 && allTH {
			header = true
		}
		rows = append(rows, cells)
	}
	return models.NewTableModel(rows, header), caption
}

// tableRows returns the rows that belong to n itself, not to nested tables.
func tableRows(n *html.Node, caption *string) []*html.Node {
	var rows []*html.Node
	for _, c := range childElements(n) {
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			rows = append(rows, childElements(c, "tr")...)
		case "caption":
			*caption = visibleText(c)
		}
	}
	return rows
}

func colspan(cell *html.Node) int {
	n, err := strconv.Atoi(attr(cell, "colspan"))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxColspan {
		return maxColspan
	}
	return n
}

// cell renders macros first; date recognition runs only on cells without macros
// so macro parameter text is never mistaken for a date.
func (w *walker) cell(n *html.Node) string {
	text := collapse(w.blocks(n))
	if findFirst(n, "ac:structured-macro") == nil && findFirst(n, "ac:macro") == nil {
		text = normalizeDates(text)
	}
	return strings.ReplaceAll(text, "|", `\|`)
}

// renderTable writes a pipe table. A table without a header row gets an empty
// header so the separator row stays valid markdown.
func renderTable(t models.TableModel, caption string) string {
	if t.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n")
	if caption != "" {
		b.WriteString("**" + caption + "**\n\n")
	}

	header := t.Header()
	if header == nil {
		header = make([]string, t.NumCols)
	}
	writeRow(&b, header)
	sep := make([]string, t.NumCols)
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)
	for _, row := range t.DataRows() {
		writeRow(&b, row)
	}
	b.WriteString("\n")
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}
