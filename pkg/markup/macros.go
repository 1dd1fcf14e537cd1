package markup

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dtnitsch/wiki-triage/models"
	"golang.org/x/net/html"
)

type macroRenderer struct {
	render func(w *walker, m models.MacroDescriptor) string
	block  bool
}

// builtinMacros is the registry of known macro names. Anything missing here
// goes through the generic placeholder renderer.
func builtinMacros() map[string]macroRenderer {
	code := macroRenderer{renderCode, true}
	toc := macroRenderer{renderTOC, true}
	expand := macroRenderer{renderExpand, true}
	file := macroRenderer{renderFile, false}
	include := macroRenderer{renderInclude, false}
	jira := macroRenderer{renderJira, false}
	pageRef := macroRenderer{renderPageRef, false}
	unwrap := macroRenderer{renderUnwrap, true}
	roadmap := macroRenderer{renderRoadmap, false}
	tasks := macroRenderer{renderTaskMacro, true}

	return map[string]macroRenderer{
		"code": code, "code-block": code, "noformat": code,
		"toc": toc, "table-of-contents": toc,
		"expand": expand, "details": expand,
		"status": {renderStatus, false},
		"panel":  {renderPanel, true},

		"viewpdf": file, "view-file": file, "viewfile": file, "viewdoc": file,
		"view-xls": file, "view-ppt": file, "multimedia": file, "attachments": file,

		"include": include, "include-page": include, "excerpt-include": include,
		"jira": jira, "jira-issues": jira, "jira-issue": jira,

		"children": pageRef, "content-by-label": pageRef, "index": pageRef, "pagetree": pageRef,
		"recently-updated": pageRef, "contributors": pageRef, "report-table": pageRef,
		"content-report-table": pageRef, "detailssummary": pageRef,

		"roadmap": roadmap, "roadmap-planner": roadmap,
		"task-list": tasks, "tasklist": tasks,

		"excerpt": unwrap, "section": unwrap, "column": unwrap, "div": unwrap,
		"ui-tabs": unwrap, "ui-tab": unwrap, "toc-zone": unwrap,

		"anchor": {func(*walker, models.MacroDescriptor) string { return "" }, false},
	}
}

func (w *walker) macro(n *html.Node) (string, bool) {
	return w.renderMacro(describeMacro(n))
}

func (w *walker) renderMacro(m models.MacroDescriptor) (string, bool) {
	if w.c.decoration[m.Name] {
		return renderUnwrap(w, m), true
	}
	r, ok := w.c.macros[m.Name]
	if !ok {
		w.unknown = append(w.unknown, m.Name)
		if w.c.logger != nil {
			w.c.logger.Debug("unknown macro", "name", m.Name)
		}
		return renderGeneric(w, m), false
	}
	return r.render(w, m), r.block
}

// describeMacro extracts name, parameters, metadata and body from a macro node.
// Only direct children are inspected so nested macros keep their own parameters.
func describeMacro(n *html.Node) models.MacroDescriptor {
	m := models.MacroDescriptor{
		Name:       strings.ToLower(attr(n, "ac:name", "name", "ac:macro-name")),
		Parameters: map[string]string{},
		Metadata:   map[string]string{},
	}
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "ac:") && a.Key != "ac:name" && a.Key != "ac:macro-name" {
			m.Metadata[a.Key] = a.Val
		}
	}

	for _, c := range childElements(n) {
		switch c.Data {
		case "ac:parameter", "ac:default-parameter":
			key := attr(c, "ac:name", "name")
			if key == "" {
				key = "default"
			}
			setParam(m.Parameters, key, c)
		case "ac:rich-text-body":
			if m.Kind != models.BodyRich {
				m.Kind, m.RichBody, m.PlainBody = models.BodyRich, c, ""
			}
		case "ac:plain-text-body":
			if m.Kind == models.BodyNone {
				m.Kind, m.PlainBody = models.BodyPlain, strings.Trim(normalizeSpace(rawText(c)), "\n")
			}
		}
	}
	return m
}

// setParam stores a parameter value. Resource identifiers (ri:page, ri:attachment,
// ri:user, ri:url) win over the element text.
func setParam(params map[string]string, key string, p *html.Node) {
	value := visibleText(p)
	if page := findFirst(p, "ri:page"); page != nil {
		if t := attr(page, "ri:content-title"); t != "" {
			value = t
		}
		if s := attr(page, "ri:space-key"); s != "" && params["space"] == "" {
			params["space"] = s
		}
	} else if att := findFirst(p, "ri:attachment"); att != nil {
		value = attr(att, "ri:filename")
	} else if u := findFirst(p, "ri:user"); u != nil {
		value = strings.Trim(mention(u), "[~]")
	} else if u := findFirst(p, "ri:url"); u != nil {
		value = attr(u, "ri:value")
	} else if sp := findFirst(p, "ri:space"); sp != nil {
		value = attr(sp, "ri:space-key")
	}
	params[key] = value
}

// bodyMarkdown renders the macro body: rich bodies recursively, plain bodies as text.
func (w *walker) bodyMarkdown(m models.MacroDescriptor) string {
	switch m.Kind {
	case models.BodyRich:
		if m.RichBody == nil {
			return ""
		}
		return w.blocks(m.RichBody)
	case models.BodyPlain:
		return "\n\n" + m.PlainBody + "\n\n"
	}
	return ""
}

func bodyText(m models.MacroDescriptor) string {
	switch m.Kind {
	case models.BodyRich:
		if m.RichBody == nil {
			return ""
		}
		return visibleText(m.RichBody)
	case models.BodyPlain:
		return collapse(m.PlainBody)
	}
	return ""
}

func renderCode(_ *walker, m models.MacroDescriptor) string {
	lang := ""
	if f := strings.Fields(m.Param("language", "lang")); len(f) > 0 {
		lang = strings.ToLower(f[0])
	}
	code := m.PlainBody
	if m.Kind == models.BodyRich && m.RichBody != nil {
		code = rawText(m.RichBody)
	}
	return fence(code, lang)
}

func renderTOC(*walker, models.MacroDescriptor) string {
	return "\n\n<!-- TOC omitted -->\n\n"
}

// renderExpand emits a <details> block. The summary comes only from the title
// or label parameter, never from the body: badges in the body would leak into it.
func renderExpand(w *walker, m models.MacroDescriptor) string {
	title := collapse(m.Param("title", "label"))
	inner := strings.Trim(w.bodyMarkdown(m), "\n")
	if title == "" && strings.TrimSpace(inner) == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n<details>\n")
	if title != "" {
		b.WriteString("<summary>" + html.EscapeString(title) + "</summary>\n")
	}
	b.WriteString("\n" + inner + "\n\n</details>\n\n")
	return b.String()
}

func renderStatus(_ *walker, m models.MacroDescriptor) string {
	title := placeholderSafe(m.Param("title"))
	if title == "" {
		title = placeholderSafe(bodyText(m))
	}
	if title == "" {
		return "[STATUS]"
	}
	return "[STATUS: " + title + "]"
}

func renderPanel(w *walker, m models.MacroDescriptor) string {
	title := collapse(m.Param("title"))
	inner := strings.Trim(w.bodyMarkdown(m), "\n")
	if title != "" {
		inner = "**" + title + "**\n\n" + inner
	}
	return quote(inner)
}

func renderFile(_ *walker, m models.MacroDescriptor) string {
	name := placeholderSafe(m.Param("name", "file", "filename", "default"))
	if name == "" && m.RichBody != nil {
		if att := findFirst(m.RichBody, "ri:attachment"); att != nil {
			name = placeholderSafe(attr(att, "ri:filename"))
		}
	}
	kind := "Attachment"
	if m.Name == "viewpdf" || strings.HasSuffix(strings.ToLower(name), ".pdf") {
		kind = "PDF"
	}
	if name == "" {
		if m.Name == "attachments" {
			return "[Attachment: page attachments]"
		}
		return "[" + kind + "]"
	}
	return "[" + kind + ": " + name + "]"
}

func renderInclude(_ *walker, m models.MacroDescriptor) string {
	page := placeholderSafe(m.Param("page", "pageTitle", "name", "default"))
	space := placeholderSafe(m.Param("space", "spaceKey"))
	switch {
	case page != "" && space != "":
		return "[INCLUDE-REF: " + page + " (Space: " + space + ")]"
	case page != "":
		return "[INCLUDE-REF: " + page + "]"
	case space != "":
		return "[INCLUDE-REF: Space " + space + "]"
	}
	return "[INCLUDE-REF]"
}

var jqlProjectRe = regexp.MustCompile(`(?i)project\s*=\s*["']([^"']+)["']`)

func renderJira(_ *walker, m models.MacroDescriptor) string {
	server := placeholderSafe(m.Param("server", "servername"))
	if server == "" {
		server = "System Jira"
	}
	subject := m.Param("key")
	if subject == "" {
		if match := jqlProjectRe.FindStringSubmatch(m.Param("jqlQuery", "jql", "query", "default")); match != nil {
			subject = match[1]
		}
	}
	if subject = placeholderSafe(subject); subject != "" {
		return "[JIRA-REF: " + server + " - " + subject + "]"
	}
	return "[JIRA-REF: " + server + "]"
}

func renderPageRef(_ *walker, m models.MacroDescriptor) string {
	var desc string
	switch m.Name {
	case "children":
		desc = "Child pages list"
		if p := m.Param("page"); p != "" {
			desc += " of " + p
		}
	case "content-by-label", "report-table", "content-report-table", "detailssummary":
		desc = "Pages by label"
		if labels := m.Param("labels", "cql"); labels != "" {
			desc = "Pages with labels - " + labels
		}
		if m.Name != "content-by-label" {
			desc = "Report table - " + desc
		}
	case "index":
		desc = "Page index"
	case "pagetree":
		desc = "Page tree"
		if root := m.Param("root"); root != "" {
			desc += " of " + root
		}
	case "recently-updated":
		desc = "Recently updated pages"
	case "contributors":
		desc = "Page contributors"
	default:
		desc = m.Name
	}
	if space := m.Param("spaces", "space"); space != "" {
		desc += " (Space: " + space + ")"
	}
	return "[PAGE-REF: " + placeholderSafe(desc) + "]"
}

func renderRoadmap(w *walker, m models.MacroDescriptor) string {
	title := placeholderSafe(m.Param("title", "label"))
	if title == "" {
		title = "Roadmap"
	}
	if params := w.paramPreview(m.Parameters); params != "" {
		return "[MACRO: " + title + " (" + params + ")]"
	}
	return "[MACRO: " + title + "]"
}

func renderTaskMacro(w *walker, m models.MacroDescriptor) string {
	if m.Kind != models.BodyRich || m.RichBody == nil {
		return ""
	}
	return w.taskList(m.RichBody)
}

func renderUnwrap(w *walker, m models.MacroDescriptor) string {
	return w.bodyMarkdown(m)
}

// renderGeneric keeps an unknown macro visible: its name, a bounded parameter
// preview and a short body preview.
func renderGeneric(w *walker, m models.MacroDescriptor) string {
	name := placeholderSafe(m.Name)
	if name == "" {
		name = "unknown"
	}
	var b strings.Builder
	b.WriteString("[MACRO: " + name)
	if params := w.paramPreview(m.Parameters); params != "" {
		b.WriteString(" (" + params + ")")
	}
	if preview, cut := truncate(placeholderSafe(bodyText(m)), w.c.cfg.MacroBodyPreview); preview != "" {
		if cut {
			preview += "..."
		}
		b.WriteString(" -> " + preview)
	}
	b.WriteString("]")
	return " " + b.String() + " "
}

// paramPreview lists up to MacroParamPreview parameters in key order, skipping
// long values and encoded JSON blobs.
func (w *walker) paramPreview(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		if len(parts) >= w.c.cfg.MacroParamPreview {
			break
		}
		v := placeholderSafe(params[k])
		if v == "" || len(v) > w.c.cfg.MacroValueMax || strings.HasPrefix(v, "%7B") {
			continue
		}
		parts = append(parts, placeholderSafe(k)+"="+v)
	}
	return strings.Join(parts, ", ")
}
