package markup

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/wiki-triage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConverter() *Converter {
	return New(models.DefaultConfig())
}

func TestConvert_Blocks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "\n"},
		{"whitespace only", " \n\t ", "\n"},
		{"heading and paragraph", `<h2>Overview</h2><p>Hello <strong>world</strong></p>`, "## Overview\n\nHello **world**\n"},
		{"emphasis and strike", `<p><em>soft</em> and <del>gone</del></p>`, "*soft* and ~~gone~~\n"},
		{"inline code", "<p>run <code>make test</code></p>", "run `make test`\n"},
		{"link", `<p>See <a href="https://example.com/x">docs</a></p>`, "See [docs](https://example.com/x)\n"},
		{"anchor without href", `<p><a name="top">Top</a></p>`, "Top\n"},
		{"image", `<p><img src="arch.png" alt="Architecture"/></p>`, "![Architecture](arch.png)\n"},
		{"horizontal rule", `<p>a</p><hr/><p>b</p>`, "a\n\n---\n\nb\n"},
		{"blockquote", `<blockquote><p>quoted</p></blockquote>`, "> quoted\n"},
		{"pre block", "<pre><code class=\"language-sh\">ls -la\necho hi</code></pre>", "```sh\nls -la\necho hi\n```\n"},
		{"dropped nodes", `<p>Keep<script>alert(1)</script><span class="text-placeholder">Type here</span></p>`, "Keep\n"},
		{"non-breaking space", "<p>a\u00a0b\u200bc</p>", "a b c\n"},
		{"entities decoded", `<p>Fish &amp; chips &lt;3</p>`, "Fish & chips <3\n"},
		{"leading hash escaped", `<p># of outages rose</p>`, "\\# of outages rose\n"},
		{"leading quote escaped", `<p>&gt; 5 incidents</p>`, "\\> 5 incidents\n"},
		{"leading dash escaped", `<p>- not a list</p>`, "\\- not a list\n"},
		{"leading number escaped", `<p>2024. A good year</p>`, "2024\\. A good year\n"},
		{"dash run escaped", `<p>---</p>`, "\\---\n"},
		{"inner markers untouched", `<p>Step 1. run # tests</p>`, "Step 1. run # tests\n"},
	}
	c := newTestConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Convert(tt.raw))
		})
	}
}

func TestConvert_Lists(t *testing.T) {
	c := newTestConverter()

	t.Run("nested unordered with empty item", func(t *testing.T) {
		got := c.Convert(`<ul><li>One<ul><li>Nested</li></ul></li><li></li><li>Two</li></ul>`)
		assert.Equal(t, "- One\n  - Nested\n- Two\n", got)
	})

	t.Run("ordered", func(t *testing.T) {
		tests := []struct {
			name string
			raw  string
			want string
		}{
			{"plain", `<ol><li>a</li><li>b</li></ol>`, "1. a\n2. b\n"},
			{"empty first item", `<ol><li></li><li>a</li><li>b</li></ol>`, "1. a\n2. b\n"},
			{"empty middle item", `<ol><li>a</li><li> </li><li>b</li></ol>`, "1. a\n2. b\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, c.Convert(tt.raw))
			})
		}
	})
}

func TestConvert_References(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"user mention",
			`<p>Owner: <ac:link><ri:user ri:account-id="557058:abc"/></ac:link></p>`,
			"Owner: [~557058:abc]\n",
		},
		{
			"two mentions",
			`<p><ac:link><ri:user ri:username="alice"/><ri:user ri:username="@bob"/></ac:link></p>`,
			"[~alice], [~bob]\n",
		},
		{
			"page link",
			`<p><ac:link><ri:page ri:content-title="Runbook"/></ac:link></p>`,
			"[PAGE-REF: Runbook]\n",
		},
		{
			"page link with space",
			`<p><ac:link><ri:page ri:content-title="Runbook" ri:space-key="OPS"/></ac:link></p>`,
			"[PAGE-REF: Runbook (Space: OPS)]\n",
		},
		{
			"attachment link",
			`<p><ac:link><ri:attachment ri:filename="plan.xlsx"/></ac:link></p>`,
			"[Attachment: plan.xlsx]\n",
		},
		{
			"attached image",
			`<p><ac:image><ri:attachment ri:filename="arch.png"/></ac:image></p>`,
			"![](arch.png)\n",
		},
		{
			"image without source",
			`<p><ac:image></ac:image></p>`,
			"[Image]\n",
		},
		{
			"emoticon",
			`<p>Nice <ac:emoticon ac:name="thumbs-up"/></p>`,
			"Nice 👍\n",
		},
		{
			"time element",
			`<p>Due <time datetime="2024-01-15"/></p>`,
			"Due 2024-01-15\n",
		},
	}
	c := newTestConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Convert(tt.raw))
		})
	}
}

func TestConvert_TaskList(t *testing.T) {
	raw := `<ac:task-list>` +
		`<ac:task><ac:task-id>1</ac:task-id><ac:task-status>complete</ac:task-status><ac:task-body>Ship it</ac:task-body></ac:task>` +
		`<ac:task><ac:task-id>2</ac:task-id><ac:task-status>incomplete</ac:task-status><ac:task-body>Write docs</ac:task-body></ac:task>` +
		`<ac:task><ac:task-status>incomplete</ac:task-status><ac:task-body><span class="placeholder-inline-tasks">Type your task here</span></ac:task-body></ac:task>` +
		`</ac:task-list>`

	got := newTestConverter().Convert(raw)
	assert.Equal(t, "- [x] Ship it\n- [ ] Write docs\n", got)
}

func TestConvert_Tables(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"header only",
			`<table><tr><th>Name</th><th>Status</th></tr><tr><td></td><td></td></tr></table>`,
			"| Name | Status |\n| --- | --- |\n|  |  |\n",
		},
		{
			"headerless gets empty header",
			`<table><tr><td>k</td><td>v</td></tr></table>`,
			"|  |  |\n| --- | --- |\n| k | v |\n",
		},
		{
			"colspan expands",
			`<table><tr><th colspan="2">Team</th></tr><tr><td>a</td><td>b</td></tr></table>`,
			"| Team |  |\n| --- | --- |\n| a | b |\n",
		},
		{
			"ragged rows are padded",
			`<table><tr><td>a</td></tr><tr><td>b</td><td>c</td><td>d</td></tr></table>`,
			"|  |  |  |\n| --- | --- | --- |\n| a |  |  |\n| b | c | d |\n",
		},
		{
			"pipe escaped",
			`<table><tr><td>a|b</td></tr></table>`,
			"|  |\n| --- |\n| a\\|b |\n",
		},
		{
			"caption",
			`<table><caption>Owners</caption><tr><td>x</td></tr></table>`,
			"**Owners**\n\n|  |\n| --- |\n| x |\n",
		},
		{
			"empty table",
			`<table></table>`,
			"\n",
		},
	}
	c := newTestConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Convert(tt.raw))
		})
	}
}

func TestConvert_TableDates(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{"iso", "2024-03-05", "2024-03-05"},
		{"slash ymd", "2024/3/5", "2024-03-05"},
		{"us slash", "Due 03/15/2024", "Due 2024-03-15"},
		{"us dash", "03-15-2024", "2024-03-15"},
		{"month name", "March 5th, 2024", "2024-03-05"},
		{"day first month name", "5 Sept 2024", "2024-09-05"},
		{"no date", "next sprint", "next sprint"},
		{"date in link destination", `<a href="https://h.io/2024-1-5/p">notes</a>`, "[notes](https://h.io/2024-1-5/p)"},
		{"date after link", `<a href="https://h.io/2024-1-5/p">notes</a> 03/15/2024`, "[notes](https://h.io/2024-1-5/p) 2024-03-15"},
		{"date in bare url", "https://h.io/2024/01/05/post", "https://h.io/2024/01/05/post"},
		{"datetime attribute", `<time datetime="2024-01-15T10:00:00Z">Jan 15</time>`, "2024-01-15"},
	}
	c := newTestConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Convert(`<table><tr><td>` + tt.cell + `</td></tr></table>`)
			assert.Equal(t, "|  |\n| --- |\n| "+tt.want+" |\n", got)
		})
	}

	t.Run("macro cells keep parameter text", func(t *testing.T) {
		raw := `<table><tr><td><ac:structured-macro ac:name="gadget"><ac:parameter ac:name="since">2024/01/02</ac:parameter></ac:structured-macro></td></tr></table>`
		assert.Contains(t, c.Convert(raw), "since=2024/01/02")
	})
}

func TestConvert_NeverPanics(t *testing.T) {
	inputs := []string{
		"<p><b>unclosed",
		"<ac:structured-macro ac:name=",
		`<table><tr><td colspan="99999">x`,
		"<![CDATA[",
		"]]>",
		"</p></div></table>",
		`<ac:structured-macro ac:name="code"><ac:plain-text-body><![CDATA[unterminated`,
		`<ac:link><ri:user/></ac:link>`,
		`<ac:task-list><ac:task></ac:task></ac:task-list>`,
		`<ac:structured-macro><ac:rich-text-body><ac:structured-macro ac:name="expand">`,
		`<ul><li><table><tr><td>x</td></tr></table></li></ul>`,
		`<time datetime="not a date">later</time>`,
		strings.Repeat("<div>", 500) + "deep" + strings.Repeat("</div>", 3),
		"\x00\xff\xfe",
	}
	c := newTestConverter()
	for _, raw := range inputs {
		assert.NotPanics(t, func() {
			out := c.Convert(raw)
			assert.True(t, strings.HasSuffix(out, "\n"), "output must end with a newline: %q", out)
		}, "input %q", raw)
	}
}

func TestConvert_ColspanIsBounded(t *testing.T) {
	got := newTestConverter().Convert(`<table><tr><td colspan="100000">x</td></tr></table>`)
	header := strings.SplitN(got, "\n", 2)[0]
	assert.Equal(t, maxColspan, strings.Count(header, "|")-1)
}

func TestCleanup(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"a  \n\n\n\nb\t\n",
		"\n\n\nlead",
		"| a |  |\n|  |  |\n",
		"x\r\ny\rz \n",
		"trailing\n\n\n",
	}
	for _, in := range inputs {
		once := Cleanup(in)
		assert.Equal(t, once, Cleanup(once), "cleanup must be idempotent for %q", in)
		assert.True(t, strings.HasSuffix(once, "\n"))
		assert.False(t, strings.HasSuffix(once, "\n\n"), "exactly one trailing newline for %q", in)
		assert.NotContains(t, once, "\n\n\n")
	}

	assert.Equal(t, "a\n\nb\n", Cleanup("a  \n\n\n\nb\t\n"))
}

func TestNormalizeTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<table><tr><th>Key</th><th>Value</th></tr><tr><td>Owner</td><td>Platform team</td></tr><tr><td>Tier</td><td></td></tr></table>`))
	require.NoError(t, err)

	tm := newTestConverter().NormalizeTable(doc.Find("table"))
	assert.True(t, tm.HasHeader)
	assert.True(t, tm.IsKeyValue)
	assert.Equal(t, 3, tm.NumRows)
	assert.Equal(t, 2, tm.NumCols)
	assert.Equal(t, []string{"Key", "Value"}, tm.Header())
	assert.Equal(t, [][]string{{"Owner", "Platform team"}, {"Tier", ""}}, tm.DataRows())

	empty := newTestConverter().NormalizeTable(doc.Find("nothing"))
	assert.True(t, empty.Empty())
}
