package parser

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dtnitsch/wiki-triage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return New(models.DefaultConfig(), WithMarkdown(true))
}

func TestParse_ScenarioHeaderOnlyTable(t *testing.T) {
	report, err := newTestParser().Parse(models.ParseRequest{
		ID:   "A",
		Body: `<table><tr><th>Name</th><th>Status</th></tr><tr><td></td><td></td></tr></table>`,
	})
	require.NoError(t, err)

	require.Len(t, report.Tables, 1)
	assert.Equal(t, models.Gibberish, report.Tables[0].Verdict.Classification)
	assert.Equal(t, "only header row filled", report.Tables[0].Verdict.Reason)
	assert.Equal(t, models.Gibberish, report.Verdict.Classification)
	assert.Equal(t, 1, report.GibberishTables)
	assert.Equal(t, "storage", report.Format)
}

func TestParse_ScenarioInclude(t *testing.T) {
	report, err := newTestParser().Parse(models.ParseRequest{
		ID: "B",
		Body: `<ac:structured-macro ac:name="include"><ac:parameter ac:name="">` +
			`<ac:link><ri:page ri:content-title="Team Home"/></ac:link>` +
			`</ac:parameter></ac:structured-macro>`,
	})
	require.NoError(t, err)

	assert.Contains(t, report.Markdown, "[INCLUDE-REF: Team Home]")
	assert.Equal(t, 1, report.Metrics.Outside.Links)
	assert.Equal(t, models.Useful, report.Verdict.Classification)
	assert.Equal(t, "1 link(s) outside tables", report.Verdict.Reason)
}

func TestParse_ScenarioPlaceholderTable(t *testing.T) {
	report, err := newTestParser().Parse(models.ParseRequest{
		ID:   "C",
		Body: `<table><tr><td>TBD</td><td>TBD</td></tr></table>`,
	})
	require.NoError(t, err)

	require.Len(t, report.Tables, 1)
	tv := report.Tables[0]
	assert.Zero(t, tv.Metrics.MeaningfulWords)
	assert.Equal(t, models.Gibberish, tv.Verdict.Classification)
	assert.Contains(t, tv.Verdict.Reason, "2 placeholder words excluded")
	assert.Equal(t, models.Gibberish, report.Verdict.Classification)
}

func TestParse_OutsideWordBoundary(t *testing.T) {
	words := func(n int) string {
		w := make([]string, n)
		for i := range w {
			w[i] = fmt.Sprintf("word%c%c", 'a'+i/26, 'a'+i%26)
		}
		return "<p>" + strings.Join(w, " ") + "</p>"
	}
	p := newTestParser()

	r29, err := p.Parse(models.ParseRequest{Body: words(29)})
	require.NoError(t, err)
	assert.Equal(t, 29, r29.Metrics.Outside.MeaningfulWords)
	assert.Equal(t, models.Gibberish, r29.Verdict.Classification)

	r30, err := p.Parse(models.ParseRequest{Body: words(30)})
	require.NoError(t, err)
	assert.Equal(t, models.Useful, r30.Verdict.Classification)
	assert.Equal(t, "30 words outside tables", r30.Verdict.Reason)
}

func TestParse_HashParagraphStaysProse(t *testing.T) {
	w := make([]string, 30)
	for i := range w {
		w[i] = fmt.Sprintf("word%c%c", 'a'+i/26, 'a'+i%26)
	}
	report, err := newTestParser().Parse(models.ParseRequest{Body: "<p># of outages " + strings.Join(w, " ") + "</p>"})
	require.NoError(t, err)
	assert.Zero(t, report.Metrics.Structure.Headings[1])
	assert.GreaterOrEqual(t, report.Metrics.Outside.MeaningfulWords, 30)
	assert.Equal(t, models.Useful, report.Verdict.Classification)
	assert.Equal(t, "outside-words", report.Verdict.Rule)
}

func TestParse_HeadingsAreNotProse(t *testing.T) {
	body := "<h1>" + strings.Repeat("heading ", 40) + "</h1><p>short text</p>"
	report, err := newTestParser().Parse(models.ParseRequest{Body: body})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Metrics.Outside.MeaningfulWords)
	assert.Equal(t, models.Gibberish, report.Verdict.Classification)
}

func TestParse_UnknownMacrosReported(t *testing.T) {
	report, err := newTestParser().Parse(models.ParseRequest{
		Body: `<ac:structured-macro ac:name="gadget"><ac:parameter ac:name="x">1</ac:parameter></ac:structured-macro>`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gadget"}, report.UnknownMacros)
}

func TestParse_Keywords(t *testing.T) {
	report, err := New(models.DefaultConfig()).Parse(models.ParseRequest{
		Body: `<p>Deploy the service, then deploy again. TBD 42 <a href="https://x.io/deploy">deploy</a></p>`,
	})
	require.NoError(t, err)
	require.NotEmpty(t, report.Keywords)
	assert.Equal(t, "deploy:3", report.Keywords[0])
	assert.NotContains(t, report.Keywords, "tbd:1")
}

func TestParse_MarkdownDroppedByDefault(t *testing.T) {
	report, err := New(models.DefaultConfig()).Parse(models.ParseRequest{Body: "<p>hello</p>"})
	require.NoError(t, err)
	assert.Empty(t, report.Markdown)
}

func TestParse_RenderedPage(t *testing.T) {
	para := "The platform team maintains the deployment pipeline, reviews every change request, " +
		"and publishes release notes after each successful rollout to production clusters across regions."
	body := `<!DOCTYPE html><html><head><title>Release Guide</title></head><body>` +
		`<nav><a href="/">Home</a></nav><article><h1>Release Guide</h1>` +
		strings.Repeat("<p>"+para+"</p>", 4) +
		`</article></body></html>`

	report, err := newTestParser().Parse(models.ParseRequest{ID: "r1", URL: "https://wiki.example.com/guide", Body: body})
	require.NoError(t, err)
	assert.Equal(t, "rendered", report.Format)
	assert.NotEmpty(t, report.Title)
	assert.Equal(t, models.Useful, report.Verdict.Classification)
}

func TestParse_ConcurrentCallsAgree(t *testing.T) {
	p := newTestParser()
	bodies := []string{
		`<table><tr><th>Name</th><th>Status</th></tr><tr><td></td><td></td></tr></table>`,
		`<p>Ask <ac:link><ri:user ri:username="alice"/></ac:link></p>`,
		`<table><tr><td>alpha beta</td><td>gamma delta</td></tr></table>`,
	}
	want := make([]models.Classification, len(bodies))
	for i, b := range bodies {
		r, err := p.Parse(models.ParseRequest{Body: b})
		require.NoError(t, err)
		want[i] = r.Verdict.Classification
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for n := 0; n < 8; n++ {
		for i, b := range bodies {
			wg.Add(1)
			go func(i int, b string) {
				defer wg.Done()
				r, err := p.Parse(models.ParseRequest{Body: b})
				if err != nil || r.Verdict.Classification != want[i] {
					errs <- fmt.Sprintf("body %d: got %v, err %v", i, r, err)
				}
			}(i, b)
		}
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
