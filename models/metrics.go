package models

// SizeTier groups tables by dimension.
type SizeTier string

const (
	TierKeyValue SizeTier = "key-value"
	TierSmall    SizeTier = "small"
	TierMedium   SizeTier = "medium"
	TierLarge    SizeTier = "large"
)

// TierFor picks the tier of a table with the given data rows and columns.
func TierFor(rows, cols int, keyValue bool) SizeTier {
	switch {
	case keyValue:
		return TierKeyValue
	case rows > 15 || cols > 15:
		return TierLarge
	case rows > 5 || cols > 5:
		return TierMedium
	default:
		return TierSmall
	}
}

// WordStats is the word breakdown of a piece of text.
type WordStats struct {
	Total       int `json:"total"`
	Meaningful  int `json:"meaningful"`
	Placeholder int `json:"placeholder"`
	Index       int `json:"index"`
}

// Signals counts the high-confidence references found in text.
type Signals struct {
	Links    int `json:"links"`
	Images   int `json:"images"`
	Files    int `json:"files"`
	Mentions int `json:"mentions"`
}

// Any reports whether at least one signal is present.
func (s Signals) Any() bool {
	return s.Links+s.Images+s.Files+s.Mentions > 0
}

// Add returns the sum of two signal sets.
func (s Signals) Add(o Signals) Signals {
	return Signals{
		Links:    s.Links + o.Links,
		Images:   s.Images + o.Images,
		Files:    s.Files + o.Files,
		Mentions: s.Mentions + o.Mentions,
	}
}

// TextStats is the full analysis of one cell or block of prose.
type TextStats struct {
	Words WordStats `json:"words"`
	Signals
}

// Filled reports whether the text carries content.
func (t TextStats) Filled() bool {
	return t.Words.Meaningful > 0 || t.Signals.Any()
}

// TableMetrics is computed once per table and never mutated.
// All counts exclude the header row.
type TableMetrics struct {
	Index      int      `json:"index"`
	DataRows   int      `json:"data_rows"`
	Cols       int      `json:"cols"`
	HasHeader  bool     `json:"has_header"`
	IsKeyValue bool     `json:"is_key_value"`
	Tier       SizeTier `json:"tier"`

	Words            int `json:"words"`
	MeaningfulWords  int `json:"meaningful_words"`
	PlaceholderWords int `json:"placeholder_words"`
	HeaderWords      int `json:"header_words"`
	Signals

	// CellWords holds meaningful words per data cell, row-major.
	CellWords [][]int `json:"cell_words"`
	// CellFilled marks data cells with meaningful words or a signal.
	CellFilled [][]bool `json:"-"`

	TotalCells     int     `json:"total_cells"`
	FilledCells    int     `json:"filled_cells"`
	FillPercentage float64 `json:"fill_percentage"`
	EmptyRows      []int   `json:"empty_rows,omitempty"`
	EmptyColumns   []int   `json:"empty_columns,omitempty"`
}

// Structure summarises the non-table layout of a document.
type Structure struct {
	Headings       map[int]int `json:"headings,omitempty"`
	HeadingWords   int         `json:"heading_words"`
	Paragraphs     int         `json:"paragraphs"`
	UnorderedItems int         `json:"unordered_items"`
	OrderedItems   int         `json:"ordered_items"`
	CodeBlocks     int         `json:"code_blocks"`
	Blockquotes    int         `json:"blockquotes"`
	Images         int         `json:"images"`
}

// OutsideMetrics are counts restricted to content outside tables and headings.
type OutsideMetrics struct {
	Words            int `json:"words"`
	MeaningfulWords  int `json:"meaningful_words"`
	PlaceholderWords int `json:"placeholder_words"`
	Signals
}

// DocumentMetrics aggregates one converted document.
type DocumentMetrics struct {
	TotalWords int            `json:"total_words"`
	Tables     []TableMetrics `json:"tables"`
	Outside    OutsideMetrics `json:"outside"`
	Structure  Structure      `json:"structure"`

	TotalCells  int          `json:"total_cells"`
	FilledCells int          `json:"filled_cells"`
	AverageFill float64      `json:"average_fill"`
	TableModels []TableModel `json:"-"`
}
