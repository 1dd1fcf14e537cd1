// Package markup converts wiki storage markup (XHTML with ac:/ri: macro and
// reference tags) into normalized markdown.
package markup

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/wiki-triage/models"
	"golang.org/x/net/html"
)

// Converter turns storage markup into markdown. It holds only configuration and
// a read-only macro registry, so one Converter can serve many goroutines.
type Converter struct {
	cfg        models.Config
	decoration map[string]bool
	macros     map[string]macroRenderer
	logger     *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger logs unknown macros (debug) and recovered node failures (warn).
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// New builds a Converter for cfg.
func New(cfg models.Config, opts ...Option) *Converter {
	c := &Converter{
		cfg:        cfg,
		decoration: make(map[string]bool, len(cfg.DecorationMacros)),
		macros:     builtinMacros(),
	}
	for _, name := range cfg.DecorationMacros {
		c.decoration[strings.ToLower(strings.TrimSpace(name))] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of one conversion.
type Result struct {
	Markdown      string
	UnknownMacros []string
	// Recovered counts sub-trees that failed and were replaced by their text.
	Recovered int
}

// Convert returns the markdown for raw. It never fails: malformed fragments
// degrade to their visible text.
func (c *Converter) Convert(raw string) string {
	return c.ConvertWithStats(raw).Markdown
}

// ConvertWithStats is Convert plus bookkeeping about unknown macros and recovered nodes.
func (c *Converter) ConvertWithStats(raw string) (res Result) {
	if strings.TrimSpace(raw) == "" {
		return Result{Markdown: Cleanup("")}
	}

	w := &walker{c: c}
	defer func() {
		if r := recover(); r != nil {
			c.warn("conversion failed, falling back to plain text", r)
			res = Result{Markdown: Cleanup(collapse(plainText(raw))), UnknownMacros: w.unknown, Recovered: w.recovered + 1}
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(prepare(raw)))
	if err != nil {
		return Result{Markdown: Cleanup(collapse(plainText(raw))), Recovered: 1}
	}

	root := doc.Nodes[0]
	if body := doc.Find("body"); body.Length() > 0 {
		root = body.Get(0)
	}
	return Result{
		Markdown:      Cleanup(w.blocks(root)),
		UnknownMacros: w.unknown,
		Recovered:     w.recovered,
	}
}

// RenderMacro renders one macro outside of a document walk.
func (c *Converter) RenderMacro(m models.MacroDescriptor) string {
	w := &walker{c: c}
	out, _ := w.renderMacro(m)
	return strings.TrimSpace(out)
}

// NormalizeTable builds the table model of a <table> selection.
func (c *Converter) NormalizeTable(sel *goquery.Selection) models.TableModel {
	if sel.Length() == 0 {
		return models.NewTableModel(nil, false)
	}
	w := &walker{c: c}
	t, _ := w.normalizeTable(sel.Get(0))
	return t
}

func (c *Converter) warn(msg string, r any) {
	if c.logger != nil {
		c.logger.Warn(msg, "panic", fmt.Sprint(r))
	}
}

// walker carries per-conversion state. It is never shared between conversions.
type walker struct {
	c         *Converter
	unknown   []string
	recovered int
}

// convert renders n and reports whether the output is block-level.
// A panic anywhere below n is contained here and replaced by n's visible text.
func (w *walker) convert(n *html.Node) (out string, block bool) {
	defer func() {
		if r := recover(); r != nil {
			w.recovered++
			if w.c.logger != nil {
				w.c.logger.Warn("node conversion failed", "node", n.Data, "panic", fmt.Sprint(r))
			}
			out, block = " "+visibleText(n)+" ", false
		}
	}()

	switch classifyNode(n) {
	case kindText:
		return normalizeSpace(n.Data), false
	case kindComment, kindDropped:
		return "", false
	case kindMacro:
		return w.macro(n)
	case kindReference:
		return w.reference(n)
	case kindTable:
		return w.table(n), true
	case kindList:
		return w.list(n), true
	case kindHeading:
		return w.heading(n), true
	case kindCode:
		return w.pre(n), true
	case kindBlock:
		return w.block(n), true
	default:
		return w.inline(n), false
	}
}

// blocks renders the children of a container. Runs of inline output become one
// paragraph with collapsed whitespace; block output is passed through.
func (w *walker) blocks(n *html.Node) string {
	var out, para strings.Builder
	flush := func() {
		if t := collapse(para.String()); t != "" {
			out.WriteString("\n\n")
			out.WriteString(escapeBlockStart(t))
			out.WriteString("\n\n")
		}
		para.Reset()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s, block := w.convert(c)
		if !block {
			para.WriteString(s)
			continue
		}
		flush()
		out.WriteString(s)
	}
	flush()
	return out.String()
}

// inlineChildren renders children on one line; nested blocks are flattened.
func (w *walker) inlineChildren(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s, block := w.convert(c)
		if block {
			s = " " + collapse(s) + " "
		}
		b.WriteString(s)
	}
	return b.String()
}

func (w *walker) block(n *html.Node) string {
	switch n.Data {
	case "hr":
		return "\n\n---\n\n"
	case "blockquote":
		return quote(w.blocks(n))
	default:
		return w.blocks(n)
	}
}

func (w *walker) heading(n *html.Node) string {
	text := collapse(w.inlineChildren(n))
	if text == "" {
		return ""
	}
	level := int(n.Data[1] - '0')
	return "\n\n" + strings.Repeat("#", level) + " " + text + "\n\n"
}

func (w *walker) pre(n *html.Node) string {
	lang := ""
	if code := findFirst(n, "code"); code != nil {
		for _, cls := range strings.Fields(attr(code, "class")) {
			if strings.HasPrefix(cls, "language-") {
				lang = strings.TrimPrefix(cls, "language-")
			}
		}
	}
	return fence(rawText(n), lang)
}

func (w *walker) inline(n *html.Node) string {
	switch n.Data {
	case "strong", "b":
		return wrap("**", w.inlineChildren(n))
	case "em", "i", "cite":
		return wrap("*", w.inlineChildren(n))
	case "s", "del", "strike":
		return wrap("~~", w.inlineChildren(n))
	case "code", "kbd", "samp", "tt":
		return wrap("`", strings.ReplaceAll(visibleText(n), "`", "'"))
	case "br":
		return " "
	case "a":
		return w.anchor(n)
	case "img":
		return image(attr(n, "alt", "title"), attr(n, "src", "data-src"))
	default:
		return w.inlineChildren(n)
	}
}

func (w *walker) anchor(n *html.Node) string {
	href := attr(n, "href")
	text := collapse(w.inlineChildren(n))
	if href == "" || strings.HasPrefix(href, "#") {
		return text
	}
	if text == "" {
		text = href
	}
	return link(text, href)
}

var (
	labelEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)
	destEscaper  = strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29")
)

func link(text, href string) string {
	return "[" + labelEscaper.Replace(text) + "](" + destEscaper.Replace(href) + ")"
}

func image(alt, src string) string {
	alt = collapse(alt)
	if src == "" {
		return alt
	}
	return "![" + labelEscaper.Replace(alt) + "](" + destEscaper.Replace(src) + ")"
}

// wrap surrounds trimmed inner text with mark, keeping the outer spacing.
func wrap(mark, inner string) string {
	t := collapse(inner)
	if t == "" {
		return inner
	}
	lead, trail := "", ""
	if strings.TrimLeft(inner, " \t\n") != inner {
		lead = " "
	}
	if strings.TrimRight(inner, " \t\n") != inner {
		trail = " "
	}
	return lead + mark + t + mark + trail
}

func fence(code, lang string) string {
	code = strings.Trim(code, "\n")
	if strings.TrimSpace(code) == "" {
		return ""
	}
	marker := "```"
	for strings.Contains(code, marker) {
		marker += "`"
	}
	return "\n\n" + marker + lang + "\n" + code + "\n" + marker + "\n\n"
}

// quote prefixes every line of rendered markdown with "> ".
func quote(md string) string {
	md = strings.Trim(md, "\n")
	if strings.TrimSpace(md) == "" {
		return ""
	}
	lines := strings.Split(md, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return "\n\n" + strings.Join(lines, "\n") + "\n\n"
}
