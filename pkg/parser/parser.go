// Package parser runs the full triage pipeline for one document: convert,
// measure, classify.
package parser

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dtnitsch/wiki-triage/models"
	"github.com/dtnitsch/wiki-triage/pkg/detector"
	"github.com/dtnitsch/wiki-triage/pkg/mapreduce"
	"github.com/dtnitsch/wiki-triage/pkg/markup"
	"github.com/dtnitsch/wiki-triage/pkg/metrics"
	"github.com/dtnitsch/wiki-triage/pkg/quality"
	"github.com/go-shiori/go-readability"
)

// keywordLimit caps the keywords kept per report.
const keywordLimit = 10

// Parser wires the converter, the metrics extractor and both classifiers.
// It holds no per-document state and is safe for concurrent use.
type Parser struct {
	cfg          models.Config
	converter    *markup.Converter
	extractor    *metrics.Extractor
	tables       *quality.TableClassifier
	pages        *quality.PageClassifier
	detector     *detector.Detector
	logger       *slog.Logger
	keepMarkdown bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger passes l down to the converter.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// WithDetector enables language tagging for requests that ask for it.
func WithDetector(d *detector.Detector) Option {
	return func(p *Parser) { p.detector = d }
}

// WithMarkdown keeps the converted markdown in every report.
func WithMarkdown(keep bool) Option {
	return func(p *Parser) { p.keepMarkdown = keep }
}

// New builds a Parser for cfg.
func New(cfg models.Config, opts ...Option) *Parser {
	p := &Parser{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}

	var convOpts []markup.Option
	if p.logger != nil {
		convOpts = append(convOpts, markup.WithLogger(p.logger))
	}
	p.converter = markup.New(cfg, convOpts...)
	p.extractor = metrics.New(cfg)
	p.tables = quality.NewTableClassifier(cfg)
	p.pages = quality.NewPageClassifier(cfg)
	return p
}

// Converter exposes the markup converter used by the pipeline.
func (p *Parser) Converter() *markup.Converter {
	return p.converter
}

// Parse converts and classifies one document. Malformed markup never fails;
// only a rendered page that readability cannot process returns an error.
func (p *Parser) Parse(req models.ParseRequest) (*models.Report, error) {
	format := models.ResolveInputFormat(req)
	body, title := req.Body, req.Title

	if format == models.FormatRendered {
		article, err := distill(req.URL, body)
		if err != nil {
			return nil, err
		}
		body = article.Content
		if title == "" {
			title = strings.TrimSpace(article.Title)
		}
	}

	res := p.converter.ConvertWithStats(body)
	report := p.Evaluate(res.Markdown)
	report.ID = req.ID
	report.Title = title
	report.URL = req.URL
	report.Format = format.String()
	report.UnknownMacros = res.UnknownMacros

	if req.DetectLanguage && p.detector != nil {
		report.Language = p.detector.Detect(res.Markdown)
	}
	if !p.keepMarkdown {
		report.Markdown = ""
	}
	return report, nil
}

// Evaluate measures and classifies already converted markdown.
func (p *Parser) Evaluate(markdown string) *models.Report {
	dm := p.extractor.Extract(markdown)

	report := &models.Report{Metrics: dm, Markdown: markdown}
	report.Keywords = mapreduce.TopKeywords(mapreduce.Map(markdown, p.extractor.Analytics()), keywordLimit)
	verdicts := make([]models.Verdict, 0, len(dm.Tables))
	for i, tm := range dm.TableModels {
		v := p.tables.Classify(tm, dm.Tables[i])
		verdicts = append(verdicts, v)
		report.Tables = append(report.Tables, models.TableReport{Index: i, Verdict: v, Metrics: dm.Tables[i]})
		switch v.Classification {
		case models.Useful:
			report.UsefulTables++
		case models.Gibberish:
			report.GibberishTables++
		}
	}
	report.Verdict = p.pages.Classify(verdicts, dm.Outside)
	return report
}

// distill extracts the main article of a rendered HTML page.
func distill(rawURL, html string) (readability.Article, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return readability.Article{}, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return readability.Article{}, fmt.Errorf("failed to distill rendered page: %w", err)
	}
	return article, nil
}
