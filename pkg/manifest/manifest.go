package manifest

// SummaryManifest is the overview written next to the per-document reports of a run.
// It lets a reader scan totals and the dominant rules without opening every report.
type SummaryManifest struct {
	GeneratedAt    string            `json:"generated_at"`
	RunUUID        string            `json:"run_uuid,omitempty"`
	TotalDocuments int               `json:"total_documents"`
	Useful         int               `json:"useful"`
	Gibberish      int               `json:"gibberish"`
	Failed         int               `json:"failed"`
	TopRules       []string          `json:"top_rules"`
	UnknownMacros  []string          `json:"unknown_macros,omitempty"`
	Results        []DocumentSummary `json:"results"`
}

// DocumentSummary is the one-line view of a single document.
type DocumentSummary struct {
	ID             string   `json:"id"`
	Title          string   `json:"title,omitempty"`
	URL            string   `json:"url,omitempty"`
	FilePath       string   `json:"file_path,omitempty"`
	Status         string   `json:"status"` // "success" or "error"
	Classification string   `json:"classification,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Rule           string   `json:"rule,omitempty"`
	Language       string   `json:"language,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	SizeBytes      int64    `json:"size_bytes,omitempty"`
	ErrorType      string   `json:"error_type,omitempty"`
	ErrorMessage   string   `json:"error_message,omitempty"`
}
