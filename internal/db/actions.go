package db

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	dbpkg "github.com/dtnitsch/wiki-triage/pkg/db"
	"github.com/dtnitsch/wiki-triage/pkg/mapreduce"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// RunsAction lists stored runs, newest first.
func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open database: %v", err), 2)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	printRuns(c.App.Writer, runs)
	return nil
}

func printRuns(w io.Writer, runs []dbpkg.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return
	}

	fmt.Fprintf(w, "%-6s %-10s %-20s %-7s %-7s %-9s %-7s %s\n",
		"ID", "UUID", "Started", "Docs", "Useful", "Gibberish", "Failed", "Input")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range runs {
		state := ""
		if r.FinishedAt == nil {
			state = " (unfinished)"
		}
		fmt.Fprintf(w, "%-6d %-10s %-20s %-7d %-7d %-9d %-7d %s%s\n",
			r.ID,
			shortUUID(r.UUID),
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Total,
			r.Useful,
			r.Gibberish,
			r.Failed,
			r.Input,
			state,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'wiki-triage show --run <id>' to see documents\n")
}

// ShowAction lists the documents of a run with their verdicts.
func ShowAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open database: %v", err), 2)
	}
	defer database.Close()

	run, err := GetRunOrLatest(c, database)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	classification := strings.ToUpper(c.String("classification"))
	switch classification {
	case "", "USEFUL", "GIBBERISH", "ERROR":
	default:
		return cli.Exit(fmt.Sprintf("unknown classification: %s (use USEFUL, GIBBERISH or ERROR)", classification), 1)
	}

	docs, err := database.GetRunDocuments(run.ID, classification)
	if err != nil {
		return fmt.Errorf("failed to get run documents: %w", err)
	}

	tables := map[int64][]dbpkg.TableVerdictRow{}
	if c.Bool("tables") {
		for _, d := range docs {
			rows, err := database.GetDocumentTables(d.ID)
			if err != nil {
				return fmt.Errorf("failed to get table verdicts: %w", err)
			}
			tables[d.ID] = rows
		}
	}

	switch strings.ToLower(c.String("format")) {
	case "json":
		data, err := json.MarshalIndent(showOutput(run, docs, tables), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(showOutput(run, docs, tables))
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprint(c.App.Writer, string(data))
		return nil
	}

	counts, err := database.ReasonCounts(run.ID)
	if err != nil {
		return fmt.Errorf("failed to count reasons: %w", err)
	}
	printRun(c.App.Writer, run, docs, tables, counts)
	return nil
}

type documentOutput struct {
	dbpkg.DocumentRow `yaml:",inline"`
	Tables            []dbpkg.TableVerdictRow `json:"tables,omitempty" yaml:"tables,omitempty"`
}

func showOutput(run *dbpkg.Run, docs []dbpkg.DocumentRow, tables map[int64][]dbpkg.TableVerdictRow) map[string]any {
	out := make([]documentOutput, len(docs))
	for i, d := range docs {
		out[i] = documentOutput{DocumentRow: d, Tables: tables[d.ID]}
	}
	return map[string]any{"run": run, "documents": out}
}

func printRun(w io.Writer, run *dbpkg.Run, docs []dbpkg.DocumentRow, tables map[int64][]dbpkg.TableVerdictRow, counts map[string]int) {
	fmt.Fprintf(w, "Run %d (%s)\n", run.ID, run.UUID)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Input:     %s\n", run.Input)
	fmt.Fprintf(w, "Documents: %d total (%d useful, %d gibberish, %d failed)\n",
		run.Total, run.Useful, run.Gibberish, run.Failed)

	if len(counts) > 0 {
		fmt.Fprintln(w, "\nRules:")
		mapreduce.PrintTopKeywords(w, counts, len(counts))
	}

	fmt.Fprintf(w, "\nDocuments (%d):\n", len(docs))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for i, d := range docs {
		if d.Error != "" {
			fmt.Fprintf(w, "%2d. [ERROR] %s %s\n", i+1, d.PageID, d.Title)
			fmt.Fprintf(w, "    Error: %s\n", d.Error)
			continue
		}
		fmt.Fprintf(w, "%2d. [%s] %s %s\n", i+1, d.Classification, d.PageID, d.Title)
		fmt.Fprintf(w, "    %s (%s)\n", d.Reason, d.Rule)
		if len(d.UnknownMacros) > 0 {
			fmt.Fprintf(w, "    Unknown macros: %s\n", strings.Join(d.UnknownMacros, ", "))
		}
		for _, t := range tables[d.ID] {
			fmt.Fprintf(w, "    table %d [%s] %s (%s, %dx%d)\n",
				t.Index, t.Classification, t.Reason, t.Tier, t.DataRows, t.Cols)
		}
	}
}
