package db

import (
	"fmt"

	dbpkg "github.com/dtnitsch/wiki-triage/pkg/db"
	"github.com/urfave/cli/v2"
)

// GetRunOrLatest resolves --run (or the first argument) to a run, or returns the latest run if neither is given.
func GetRunOrLatest(c *cli.Context, database *dbpkg.DB) (*dbpkg.Run, error) {
	ref := c.String("run")
	if ref == "" {
		ref = c.Args().First()
	}
	return resolveRun(database, ref)
}

func resolveRun(database *dbpkg.DB, ref string) (*dbpkg.Run, error) {
	if ref == "" {
		runs, err := database.ListRuns(1)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("no runs found. Run 'wiki-triage classify --input <corpus.jsonl>' first")
		}
		return &runs[0], nil
	}
	return database.GetRun(ref)
}

func shortUUID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
