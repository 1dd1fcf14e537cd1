package markup

import (
	"strings"
	"testing"

	"github.com/dtnitsch/wiki-triage/models"
	"github.com/stretchr/testify/assert"
)

func macro(name, inner string) string {
	return `<ac:structured-macro ac:name="` + name + `">` + inner + `</ac:structured-macro>`
}

func param(name, value string) string {
	return `<ac:parameter ac:name="` + name + `">` + value + `</ac:parameter>`
}

func TestConvert_Macros(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"code with language",
			macro("code", param("language", "go")+`<ac:plain-text-body><![CDATA[fmt.Println("a < b")]]></ac:plain-text-body>`),
			"```go\nfmt.Println(\"a < b\")\n```\n",
		},
		{
			"noformat without language",
			macro("noformat", `<ac:plain-text-body><![CDATA[raw text]]></ac:plain-text-body>`),
			"```\nraw text\n```\n",
		},
		{
			"toc",
			`<ac:structured-macro ac:name="toc"/>`,
			"<!-- TOC omitted -->\n",
		},
		{
			"status",
			`<p>State: ` + macro("status", param("title", "In Progress")+param("colour", "Yellow")) + `</p>`,
			"State: [STATUS: In Progress]\n",
		},
		{
			"status without title",
			macro("status", ""),
			"[STATUS]\n",
		},
		{
			"include page",
			macro("include", `<ac:parameter ac:name=""><ac:link><ri:page ri:content-title="Team Home" ri:space-key="ENG"/></ac:link></ac:parameter>`),
			"[INCLUDE-REF: Team Home (Space: ENG)]\n",
		},
		{
			"include without target",
			macro("include", ""),
			"[INCLUDE-REF]\n",
		},
		{
			"jira query",
			macro("jira", param("jqlQuery", `project = "OPS" AND status = Open`)),
			"[JIRA-REF: System Jira - OPS]\n",
		},
		{
			"jira issue key",
			macro("jira", param("server", "Corp Jira")+param("key", "OPS-12")),
			"[JIRA-REF: Corp Jira - OPS-12]\n",
		},
		{
			"pdf viewer",
			macro("viewpdf", param("name", `<ri:attachment ri:filename="design.pdf"/>`)),
			"[PDF: design.pdf]\n",
		},
		{
			"file viewer",
			macro("view-file", param("name", `<ri:attachment ri:filename="budget.xlsx"/>`)),
			"[Attachment: budget.xlsx]\n",
		},
		{
			"children listing",
			macro("children", ""),
			"[PAGE-REF: Child pages list]\n",
		},
		{
			"content by label",
			macro("content-by-label", param("labels", "runbook")),
			"[PAGE-REF: Pages with labels - runbook]\n",
		},
		{
			"decoration unwrapped",
			macro("info", `<ac:rich-text-body><p>Remember to rotate keys.</p></ac:rich-text-body>`),
			"Remember to rotate keys.\n",
		},
		{
			"excerpt unwrapped",
			macro("excerpt", `<ac:rich-text-body><p>Summary line.</p></ac:rich-text-body>`),
			"Summary line.\n",
		},
		{
			"panel",
			macro("panel", param("title", "Heads up")+`<ac:rich-text-body><p>Mind the gap.</p></ac:rich-text-body>`),
			"> **Heads up**\n>\n> Mind the gap.\n",
		},
		{
			"anchor dropped",
			`<p>Top` + macro("anchor", param("", "top")) + `</p>`,
			"Top\n",
		},
		{
			"task list macro",
			macro("task-list", `<ac:rich-text-body><ac:task-list><ac:task><ac:task-status>complete</ac:task-status><ac:task-body>Review</ac:task-body></ac:task></ac:task-list></ac:rich-text-body>`),
			"- [x] Review\n",
		},
		{
			"roadmap",
			macro("roadmap", param("title", "Q3")+param("timeline", "true")),
			"[MACRO: Q3 (timeline=true, title=Q3)]\n",
		},
	}
	c := newTestConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Convert(tt.raw))
		})
	}
}

func TestConvert_ExpandSummary(t *testing.T) {
	c := newTestConverter()
	body := `<ac:rich-text-body><p>Hidden ` + macro("status", param("title", "Done")) + `</p></ac:rich-text-body>`

	t.Run("no title keeps body out of summary", func(t *testing.T) {
		got := c.Convert(macro("expand", body))
		assert.NotContains(t, got, "<summary>")
		assert.Contains(t, got, "<details>")
		assert.Contains(t, got, "Hidden [STATUS: Done]")
	})

	t.Run("title becomes summary", func(t *testing.T) {
		got := c.Convert(macro("expand", param("title", "More")+body))
		assert.Contains(t, got, "<summary>More</summary>")
		assert.Contains(t, got, "[STATUS: Done]")
	})
}

func TestConvert_UnknownMacro(t *testing.T) {
	c := newTestConverter()
	raw := macro("gadget", param("url", "http://x")+param("height", "300")+`<ac:rich-text-body><p>Body text here</p></ac:rich-text-body>`)

	res := c.ConvertWithStats(raw)
	assert.Equal(t, "[MACRO: gadget (height=300, url=http://x) -> Body text here]\n", res.Markdown)
	assert.Equal(t, []string{"gadget"}, res.UnknownMacros)
	assert.Zero(t, res.Recovered)
}

func TestRenderMacro(t *testing.T) {
	c := newTestConverter()

	t.Run("brackets in values are neutralised", func(t *testing.T) {
		m := models.MacroDescriptor{Name: "status", Parameters: map[string]string{"title": "Blocked [x]"}}
		assert.Equal(t, "[STATUS: Blocked (x)]", c.RenderMacro(m))
	})

	t.Run("generic parameter preview is bounded", func(t *testing.T) {
		m := models.MacroDescriptor{
			Name: "widget",
			Parameters: map[string]string{
				"a": "1", "b": "2", "c": "3", "d": "4",
				"blob": "%7B%22json%22%7D",
			},
			Kind:      models.BodyPlain,
			PlainBody: strings.Repeat("word ", 40),
		}
		got := c.RenderMacro(m)
		assert.True(t, strings.HasPrefix(got, "[MACRO: widget (a=1, b=2, c=3) -> "), got)
		assert.NotContains(t, got, "d=4")
		assert.NotContains(t, got, "%7B")
		assert.True(t, strings.HasSuffix(got, "...]"), got)
	})

	t.Run("long values skipped", func(t *testing.T) {
		m := models.MacroDescriptor{Name: "widget", Parameters: map[string]string{"q": strings.Repeat("x", 200)}}
		assert.Equal(t, "[MACRO: widget]", c.RenderMacro(m))
	})

	t.Run("custom decoration list", func(t *testing.T) {
		cfg := models.DefaultConfig()
		cfg.DecorationMacros = []string{"callout"}
		got := New(cfg).Convert(macro("callout", `<ac:rich-text-body><p>Inside</p></ac:rich-text-body>`))
		assert.Equal(t, "Inside\n", got)
	})
}

func TestDescribeMacro_Parameters(t *testing.T) {
	doc := prepare(macro("include",
		`<ac:parameter ac:name="page"><ac:link><ri:page ri:content-title="Home" ri:space-key="DOC"/></ac:link></ac:parameter>`+
			`<ac:parameter ac:name="owner"><ac:link><ri:user ri:account-id="42"/></ac:link></ac:parameter>`+
			`<ac:plain-text-body><![CDATA[plain]]></ac:plain-text-body>`))
	assert.Contains(t, doc, `<ri:page ri:content-title="Home" ri:space-key="DOC"></ri:page>`)

	res := newTestConverter().ConvertWithStats(doc)
	assert.Equal(t, "[INCLUDE-REF: Home (Space: DOC)]\n", res.Markdown)
	assert.Empty(t, res.UnknownMacros)
}
