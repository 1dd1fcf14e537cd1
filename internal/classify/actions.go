package classify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/wiki-triage/internal/common"
	"github.com/dtnitsch/wiki-triage/pkg/caching"
	"github.com/dtnitsch/wiki-triage/pkg/db"
	"github.com/dtnitsch/wiki-triage/pkg/detector"
	"github.com/dtnitsch/wiki-triage/pkg/manifest"
	"github.com/dtnitsch/wiki-triage/pkg/mapreduce"
	"github.com/dtnitsch/wiki-triage/pkg/parser"
	"github.com/dtnitsch/wiki-triage/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ClassifyAction runs every record of a JSONL corpus through the pipeline,
// writes one report per document plus a summary, and records the run.
func ClassifyAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	startTime := time.Now()
	out := c.App.Writer

	input := c.String("input")
	if input == "" {
		fmt.Fprintln(os.Stderr, "Error: No input provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  wiki-triage classify --input corpus.jsonl`)
		fmt.Fprintln(os.Stderr, `  wiki-triage fetch --base-url https://wiki.example.com --page-id 123 | wiki-triage classify --input -`)
		return cli.Exit("", 1)
	}

	format := strings.ToLower(c.String("format"))
	if format != "json" && format != "yaml" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (use json or yaml)\n", format)
		return cli.Exit("", 1)
	}

	cfg, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit("", 2)
	}
	configHash := common.ConfigHash(cfg)

	s := &storage.Storage{}
	var r io.Reader = os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			logger.Error("failed to open input", "input", input, "error", err)
			return cli.Exit("", 1)
		}
		defer f.Close()
		r = f
	}
	docs, err := common.ReadDocuments(r, s)
	if err != nil {
		logger.Error("failed to read corpus", "input", input, "error", err)
		return cli.Exit("", 1)
	}
	if len(docs) == 0 {
		fmt.Fprintln(out, "No documents found")
		return nil
	}

	var cache *caching.Cache
	if !c.Bool("no-cache") {
		ttl, _ := cfg.TTL()
		cache, err = caching.NewCache(cfg.CacheDir, ttl)
		if err != nil {
			logger.Error("failed to initialize cache", "error", err)
			return cli.Exit("", 2)
		}
	}

	var database *db.DB
	var run *db.Run
	if !c.Bool("no-db") {
		database, err = db.Open(c.String("db"))
		if err != nil {
			logger.Error("failed to open database", "error", err)
			return cli.Exit("", 2)
		}
		defer database.Close()

		run, err = database.CreateRun(input, configHash)
		if err != nil {
			logger.Error("failed to create run", "error", err)
			return cli.Exit("", 2)
		}
		logger.Info("Run", "run_id", run.ID, "run_uuid", run.UUID)
	}

	parserOpts := []parser.Option{parser.WithLogger(logger), parser.WithMarkdown(c.Bool("keep-markdown"))}
	if c.Bool("detect-language") {
		parserOpts = append(parserOpts, parser.WithDetector(detector.New()))
	}

	outputDir := c.String("output-dir")
	runner := NewRunner(logger, parser.New(cfg, parserOpts...), cache, s, Options{
		Workers:        cfg.Workers,
		OutputDir:      outputDir,
		Format:         format,
		Rendered:       c.Bool("rendered"),
		DetectLanguage: c.Bool("detect-language"),
		KeepMarkdown:   c.Bool("keep-markdown"),
		ConfigHash:     configHash,
		Resume:         c.Bool("resume"),
	})
	results := runner.Run(docs)
	counts := Tally(results)

	runUUID := ""
	if database != nil {
		runUUID = run.UUID
		if err := Record(logger, database, run.ID, results); err != nil {
			logger.Warn("Failed to finish run in DB", "run_id", run.ID, "error", err)
		}
	}

	manifestPath, err := manifest.GenerateSummary(results, runUUID, outputDir, s)
	if err != nil {
		logger.Error("Error generating summary manifest", "error", err)
	}

	if runUUID != "" {
		fmt.Fprintf(out, "Run %s (#%d)\n", runUUID, run.ID)
	}
	fmt.Fprintf(out, "%d documents: %d useful, %d gibberish, %d failed (%.1fs)\n",
		counts.Total, counts.Useful, counts.Gibberish, counts.Failed, time.Since(startTime).Seconds())
	fmt.Fprintf(out, "Reports: %s\n", outputDir)
	if manifestPath != "" {
		fmt.Fprintf(out, "Summary: %s\n", manifestPath)
	}

	var rules []map[string]int
	for _, res := range results {
		if res.Report != nil {
			rules = append(rules, mapreduce.Count([]string{res.Report.Verdict.Rule}))
		}
	}
	if len(rules) > 0 {
		fmt.Fprintln(out, "\nTop rules:")
		mapreduce.PrintTopKeywords(out, mapreduce.Reduce(rules), 5)
	}

	if counts.Failed == counts.Total {
		return cli.Exit("", 2)
	}
	if counts.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
