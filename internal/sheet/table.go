// Package sheet holds the in-memory input/output table and reads and
// writes it as XLSX or CSV.
package sheet

import (
	"fmt"
	"strings"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/model"
)

// Table is a rectangular sheet: a header row and data rows addressed by
// column name. Row indices are 0-based and exclude the header.
type Table struct {
	Sheet  string
	header []string
	index  map[string]int
	rows   [][]string
}

// NewTable builds a Table. Short rows are padded to the header width and
// cells beyond it get "Unnamed: N" columns. The first occurrence of a
// duplicated header name wins.
func NewTable(sheet string, header []string, rows [][]string) *Table {
	t := &Table{Sheet: sheet, index: make(map[string]int)}
	for _, h := range header {
		t.addColumn(strings.TrimSpace(h))
	}
	for _, r := range rows {
		for len(t.header) < len(r) {
			t.addColumn(fmt.Sprintf("Unnamed: %d", len(t.header)))
		}
	}
	for _, r := range rows {
		t.rows = append(t.rows, t.pad(append([]string(nil), r...)))
	}
	return t
}

func (t *Table) addColumn(name string) {
	if _, ok := t.index[name]; !ok {
		t.index[name] = len(t.header)
	}
	t.header = append(t.header, name)
}

func (t *Table) pad(r []string) []string {
	for len(r) < len(t.header) {
		r = append(r, "")
	}
	return r
}

// Header returns a copy of the header row.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of data row i.
func (t *Table) Row(i int) []string {
	return append([]string(nil), t.rows[i]...)
}

// HasColumn reports whether col is in the header.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// EnsureColumns appends any missing columns, blank in every row.
func (t *Table) EnsureColumns(cols ...string) {
	for _, c := range cols {
		if c == "" || t.HasColumn(c) {
			continue
		}
		t.addColumn(c)
		for i := range t.rows {
			t.rows[i] = t.pad(t.rows[i])
		}
	}
}

// Get returns the trimmed cell value, or "" for an unknown column or row.
func (t *Table) Get(row int, col string) string {
	j, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][j])
}

// IsBlank reports whether the cell is empty or whitespace.
func (t *Table) IsBlank(row int, col string) bool {
	return t.Get(row, col) == ""
}

// Set writes v into the cell, adding the column if needed. A nil value
// clears the cell.
func (t *Table) Set(row int, col string, v *string) {
	if row < 0 || row >= len(t.rows) {
		return
	}
	t.EnsureColumns(col)
	val := ""
	if v != nil {
		val = *v
	}
	t.rows[row][t.index[col]] = val
}

// SetRow writes every column of a normalized row.
func (t *Table) SetRow(row int, values model.NormalizedRow) {
	for col, v := range values {
		t.Set(row, col, v)
	}
}

// Organization reads the input columns of a row.
func (t *Table) Organization(row int, cols config.InputColumns) model.Organization {
	return model.Organization{
		Name:    t.Get(row, cols.Name),
		Country: t.Get(row, cols.Country),
		Website: t.Get(row, cols.Website),
	}
}
