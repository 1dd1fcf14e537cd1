package metrics

import (
	"strings"

	"github.com/dtnitsch/wiki-triage/models"
)

// fillScan computes filled cells and empty rows and columns over a filled grid.
type fillScan func(filled [][]bool, cols int) fillResult

type fillResult struct {
	filled, total int
	emptyRows     []int
	emptyCols     []int
}

// fillScans picks the scan per size tier. Every scan yields the same numbers;
// they differ in traversal order only.
var fillScans = map[models.SizeTier]fillScan{
	models.TierKeyValue: scanCells,
	models.TierSmall:    scanCells,
	models.TierMedium:   scanRows,
	models.TierLarge:    scanColumns,
}

// Table computes the metrics of one normalized table. Header words only
// contribute HeaderWords; header signals count like any other cell's. For
// key-value tables MeaningfulWords counts the values column only.
func (e *Extractor) Table(index int, t models.TableModel) models.TableMetrics {
	data := t.DataRows()
	m := models.TableMetrics{
		Index:      index,
		DataRows:   len(data),
		Cols:       t.NumCols,
		HasHeader:  t.HasHeader,
		IsKeyValue: t.IsKeyValue,
		Tier:       models.TierFor(len(data), t.NumCols, t.IsKeyValue),
	}

	for _, h := range t.Header() {
		st := e.analytics.Count(h)
		m.HeaderWords += st.Words.Total
		m.Signals = m.Signals.Add(st.Signals)
	}

	m.CellWords = make([][]int, len(data))
	m.CellFilled = make([][]bool, len(data))
	for r, row := range data {
		m.CellWords[r] = make([]int, t.NumCols)
		m.CellFilled[r] = make([]bool, t.NumCols)
		for c, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			st := e.analytics.Count(cell)
			m.CellWords[r][c] = st.Words.Meaningful
			m.CellFilled[r][c] = st.Filled()
			m.Words += st.Words.Total
			m.PlaceholderWords += st.Words.Placeholder
			m.Signals = m.Signals.Add(st.Signals)
			if !t.IsKeyValue || c == 1 {
				m.MeaningfulWords += st.Words.Meaningful
			}
		}
	}

	res := fillScans[m.Tier](m.CellFilled, t.NumCols)
	m.TotalCells = res.total
	m.FilledCells = res.filled
	m.EmptyRows = res.emptyRows
	m.EmptyColumns = res.emptyCols
	if res.total > 0 {
		m.FillPercentage = float64(res.filled) / float64(res.total) * 100
	}
	return m
}

// scanCells visits every cell once and tracks row and column occupancy together.
func scanCells(filled [][]bool, cols int) fillResult {
	res := fillResult{total: len(filled) * cols}
	colUsed := make([]bool, cols)
	for r, row := range filled {
		used := false
		for c, f := range row {
			if f {
				res.filled++
				used = true
				colUsed[c] = true
			}
		}
		if !used {
			res.emptyRows = append(res.emptyRows, r)
		}
	}
	if len(filled) > 0 {
		for c, used := range colUsed {
			if !used {
				res.emptyCols = append(res.emptyCols, c)
			}
		}
	}
	return res
}

// scanRows counts per row, then derives empty columns from the non-empty rows only.
func scanRows(filled [][]bool, cols int) fillResult {
	res := fillResult{total: len(filled) * cols}
	var busy [][]bool
	for r, row := range filled {
		n := 0
		for _, f := range row {
			if f {
				n++
			}
		}
		if n == 0 {
			res.emptyRows = append(res.emptyRows, r)
			continue
		}
		res.filled += n
		busy = append(busy, row)
	}
	if len(filled) == 0 {
		return res
	}
	for c := 0; c < cols; c++ {
		if !columnUsed(busy, c) {
			res.emptyCols = append(res.emptyCols, c)
		}
	}
	return res
}

// scanColumns walks column-major; row occupancy is collected on the way.
func scanColumns(filled [][]bool, cols int) fillResult {
	res := fillResult{total: len(filled) * cols}
	rowUsed := make([]bool, len(filled))
	for c := 0; c < cols; c++ {
		n := 0
		for r := range filled {
			if filled[r][c] {
				n++
				rowUsed[r] = true
			}
		}
		res.filled += n
		if n == 0 && len(filled) > 0 {
			res.emptyCols = append(res.emptyCols, c)
		}
	}
	for r, used := range rowUsed {
		if !used {
			res.emptyRows = append(res.emptyRows, r)
		}
	}
	return res
}

func columnUsed(rows [][]bool, c int) bool {
	for _, row := range rows {
		if row[c] {
			return true
		}
	}
	return false
}
