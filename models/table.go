package models

// TableModel is a normalized table: every row has NumCols cells.
// When HasHeader is set, Rows[0] is the header and is excluded from content metrics.
type TableModel struct {
	Rows       [][]string `json:"rows"`
	HasHeader  bool       `json:"has_header"`
	NumRows    int        `json:"num_rows"`
	NumCols    int        `json:"num_cols"`
	IsKeyValue bool       `json:"is_key_value"`
}

// NewTableModel pads every row to the widest row and derives the counts.
func NewTableModel(rows [][]string, hasHeader bool) TableModel {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}

	padded := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, cols)
		copy(row, r)
		padded = append(padded, row)
	}

	t := TableModel{
		Rows:      padded,
		HasHeader: hasHeader && len(padded) > 0,
		NumRows:   len(padded),
		NumCols:   cols,
	}
	t.IsKeyValue = t.NumCols == 2 && len(t.DataRows()) > 0
	return t
}

// Header returns the header row, or nil.
func (t TableModel) Header() []string {
	if !t.HasHeader || len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// DataRows returns every row except the header.
func (t TableModel) DataRows() [][]string {
	if t.HasHeader && len(t.Rows) > 0 {
		return t.Rows[1:]
	}
	return t.Rows
}

// Empty reports whether the table has no cells at all.
func (t TableModel) Empty() bool {
	return t.NumRows == 0 || t.NumCols == 0
}
