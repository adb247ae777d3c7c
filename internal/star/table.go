package star

import (
	"slices"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

// Table is one loop block of a STAR file. Values stay as text; numeric
// interpretation happens where a value is used.
type Table struct {
	Columns []string
	Rows    [][]string
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	return slices.Index(t.Columns, col)
}

func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Column returns a copy of the values of col.
func (t *Table) Column(col string) ([]string, error) {
	idx := t.Index(col)
	if idx < 0 {
		return nil, fault.Format("column %s not found", col)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// AppendRow adds a row; the value count must match the column count.
func (t *Table) AppendRow(values ...string) error {
	if len(values) != len(t.Columns) {
		return fault.Format("row has %d values for %d columns", len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, values)
	return nil
}

// SetColumn overwrites col in place when it exists and appends it otherwise.
func (t *Table) SetColumn(col string, values []string) error {
	if len(values) != len(t.Rows) {
		return fault.Format("column %s has %d values for %d rows", col, len(values), len(t.Rows))
	}
	if idx := t.Index(col); idx >= 0 {
		for i := range t.Rows {
			t.Rows[i][idx] = values[i]
		}
		return nil
	}
	t.Columns = append(t.Columns, col)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// DropColumns removes the named columns. Unknown names are ignored.
func (t *Table) DropColumns(cols ...string) {
	keep := make([]int, 0, len(t.Columns))
	for i, c := range t.Columns {
		if !slices.Contains(cols, c) {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.Columns) {
		return
	}
	t.Columns = pick(t.Columns, keep)
	for i, row := range t.Rows {
		t.Rows[i] = pick(row, keep)
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = slices.Clone(row)
	}
	return c
}

func pick(values []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
