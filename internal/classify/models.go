package classify

import "github.com/dtnitsch/wiki-triage/models"

// Job is one corpus record handed to a worker. Index keeps output in input order.
type Job struct {
	Index    int
	Document models.Document
}

// Options controls how a run treats and writes its documents.
type Options struct {
	Workers        int
	OutputDir      string
	Format         string // "json" or "yaml"
	Rendered       bool
	DetectLanguage bool
	KeepMarkdown   bool
	ConfigHash     string
	// Resume reuses reports already written to OutputDir instead of parsing again.
	Resume bool
}

// Counts are the final tallies of a run.
type Counts struct {
	Total     int
	Useful    int
	Gibberish int
	Failed    int
}
