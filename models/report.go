package models

// TableReport pairs a table's metrics with its verdict.
type TableReport struct {
	Index   int          `json:"index" yaml:"index"`
	Verdict Verdict      `json:"verdict" yaml:"verdict"`
	Metrics TableMetrics `json:"metrics" yaml:"metrics"`
}

// Report is the full pipeline output for one document.
type Report struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Format   string `json:"format" yaml:"format"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	Verdict Verdict         `json:"verdict" yaml:"verdict"`
	Tables  []TableReport   `json:"tables,omitempty" yaml:"tables,omitempty"`
	Metrics DocumentMetrics `json:"metrics" yaml:"metrics"`

	UsefulTables    int `json:"useful_tables" yaml:"useful_tables"`
	GibberishTables int `json:"gibberish_tables" yaml:"gibberish_tables"`

	// UnknownMacros lists macro names rendered through the generic fallback.
	UnknownMacros []string `json:"unknown_macros,omitempty" yaml:"unknown_macros,omitempty"`
	// Keywords are the most frequent meaningful words as "word:count".
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	Markdown string `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}
