package models

// ParseRequest is a single document handed to the pipeline.
type ParseRequest struct {
	ID    string
	Title string
	URL   string
	Body  string

	// Optional hints
	Format InputFormat `json:"format,omitempty"`

	// DetectLanguage attaches a language tag to the report.
	DetectLanguage bool `json:"detect_language,omitempty"`
}
