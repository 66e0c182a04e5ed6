package models

// VariantTable is an ordered, rectangular in-memory table of genomic
// variant records, one row per variant. Column presence is never
// guaranteed; consumers must treat absent columns as empty.
type VariantTable struct {
	Columns []string
	Rows    [][]string
}

// RowCount returns the number of data rows.
func (t *VariantTable) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *VariantTable) ColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnIndex returns the position of a named column, or -1 when the
// column is absent.
func (t *VariantTable) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col) and whether it is present and
// non-empty. Out-of-range coordinates read as missing.
func (t *VariantTable) Cell(row, col int) (string, bool) {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 {
		return "", false
	}
	cells := t.Rows[row]
	if col >= len(cells) {
		return "", false
	}
	value := cells[col]
	if value == "" {
		return "", false
	}
	return value, true
}
