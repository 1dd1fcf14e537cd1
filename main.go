package main

import (
	"log"
	"os"

	"github.com/dtnitsch/wiki-triage/internal/classify"
	"github.com/dtnitsch/wiki-triage/internal/convert"
	dbcmd "github.com/dtnitsch/wiki-triage/internal/db"
	"github.com/dtnitsch/wiki-triage/internal/fetch"
	"github.com/dtnitsch/wiki-triage/pkg/db"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "wiki-triage",
		Usage: "Convert wiki pages to markdown and triage them as USEFUL or GIBBERISH",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only log errors"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log per-document progress"},
			&cli.StringFlag{Name: "config", Usage: "YAML file with thresholds and word lists"},
			&cli.StringFlag{Name: "db", Value: db.DefaultDBName, Usage: "SQLite database path", EnvVars: []string{"WIKI_TRIAGE_DB"}},
		},
		Commands: []*cli.Command{
			{
				Name:  "convert",
				Usage: "Print the markdown rendering of one page",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Input file (default: stdin)"},
					&cli.BoolFlag{Name: "rendered", Usage: "Input is a rendered HTML page, not storage markup"},
					&cli.StringFlag{Name: "url", Usage: "Page URL, used to resolve links of rendered pages"},
				},
				Action: convert.ConvertAction,
			},
			{
				Name:  "classify",
				Usage: "Classify every page of a JSONL corpus",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "JSONL corpus of {id,title,url,body} records, - for stdin"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: 4, Usage: "Number of concurrent workers"},
					&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Value: "results", Usage: "Directory for reports and the summary"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "Report format: json or yaml"},
					&cli.IntFlag{Name: "outside-threshold", Usage: "Meaningful words outside tables that make a page useful"},
					&cli.BoolFlag{Name: "rendered", Usage: "Treat every body as a rendered HTML page"},
					&cli.BoolFlag{Name: "detect-language", Usage: "Tag each report with its language"},
					&cli.BoolFlag{Name: "keep-markdown", Usage: "Include the converted markdown in each report"},
					&cli.BoolFlag{Name: "no-cache", Usage: "Skip the conversion cache"},
					&cli.BoolFlag{Name: "resume", Usage: "Reuse reports already in the output directory"},
					&cli.BoolFlag{Name: "no-db", Usage: "Do not record the run in the database"},
				},
				Action: classify.ClassifyAction,
			},
			{
				Name:  "fetch",
				Usage: "Fetch storage-format pages from the wiki REST API into a JSONL corpus",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "base-url", Usage: "Wiki base URL, e.g. https://wiki.example.com"},
					&cli.StringSliceFlag{Name: "page-id", Aliases: []string{"p"}, Usage: "Page id (repeatable or comma-separated)"},
					&cli.StringFlag{Name: "output", Usage: "JSONL file to append to (default: stdout)"},
					&cli.StringFlag{Name: "user", EnvVars: []string{"WIKI_USER"}, Usage: "Basic auth user"},
					&cli.StringFlag{Name: "token", EnvVars: []string{"WIKI_TOKEN"}, Usage: "Basic auth token"},
				},
				Action: fetch.FetchAction,
			},
			{
				Name:  "runs",
				Usage: "List stored runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Number of runs to show"},
				},
				Action: dbcmd.RunsAction,
			},
			{
				Name:      "show",
				Usage:     "List the documents of a run (default: latest)",
				ArgsUsage: "[run id or uuid]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "run", Usage: "Run id, uuid or uuid prefix"},
					&cli.StringFlag{Name: "classification", Usage: "Filter: USEFUL, GIBBERISH or ERROR"},
					&cli.BoolFlag{Name: "tables", Usage: "Include table verdicts"},
					&cli.StringFlag{Name: "format", Value: "text", Usage: "Output format: text, json or yaml"},
				},
				Action: dbcmd.ShowAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
