package sheet

import (
	"fmt"
	"strings"

	"github.com/vukdaten/volksfeste/internal/event"
)

// DefaultSheetName is the worksheet title of every written workbook
const DefaultSheetName = "Veranstaltungen"

// MissingColumnError reports an input file without an expected column.
type MissingColumnError struct {
	Path   string
	Column string
	// Alternatives lists other column names that would also have been accepted.
	Alternatives []string
}

func (e *MissingColumnError) Error() string {
	names := append([]string{e.Column}, e.Alternatives...)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	where := ""
	if e.Path != "" {
		where = " in " + e.Path
	}
	return fmt.Sprintf("column %s not found%s", strings.Join(quoted, " or "), where)
}

// Table is a spreadsheet held in memory as strings: a header row plus data rows.
// Every data row is padded to the header width.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// New creates an empty table with the given header
func New(header ...string) *Table {
	return &Table{Header: append([]string{}, header...)}
}

// FromRecords builds a table from event records using the given column order
func FromRecords(records []*event.Record, columns []string) *Table {
	t := New(columns...)
	for _, r := range records {
		t.Rows = append(t.Rows, r.Row(columns))
	}
	return t
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Col returns the index of a column, or -1
func (t *Table) Col(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table has a column
func (t *Table) Has(name string) bool {
	return t.Col(name) >= 0
}

// Require returns a *MissingColumnError for the first absent column
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.Has(n) {
			return &MissingColumnError{Path: t.Path, Column: n}
		}
	}
	return nil
}

// FirstOf returns the first of the named columns present in the table
func (t *Table) FirstOf(names ...string) (string, error) {
	for _, n := range names {
		if t.Has(n) {
			return n, nil
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no column names given")
	}
	return "", &MissingColumnError{Path: t.Path, Column: names[0], Alternatives: names[1:]}
}

// EnsureColumn appends an empty column when it is missing and returns its index
func (t *Table) EnsureColumn(name string) int {
	if i := t.Col(name); i >= 0 {
		return i
	}
	return t.InsertColumn(len(t.Header), name)
}

// InsertColumn inserts an empty column at pos and returns pos
func (t *Table) InsertColumn(pos int, name string) int {
	if pos < 0 || pos > len(t.Header) {
		pos = len(t.Header)
	}
	t.Header = insertAt(t.Header, pos, name)
	for i := range t.Rows {
		t.Rows[i] = insertAt(t.Rows[i], pos, "")
	}
	return pos
}

// Get returns a cell value, trimmed; missing columns read as ""
func (t *Table) Get(row int, column string) string {
	c := t.Col(column)
	if c < 0 || row < 0 || row >= len(t.Rows) || c >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][c])
}

// Set writes a cell value, creating the column when needed
func (t *Table) Set(row int, column, value string) {
	if row < 0 || row >= len(t.Rows) {
		return
	}
	c := t.EnsureColumn(column)
	t.Rows[row][c] = value
}

// IsBlank reports whether a cell has no usable value. Literal "nan" and "None"
// cells come from files written by dataframe tools and count as blank.
func (t *Table) IsBlank(row int, column string) bool {
	v := t.Get(row, column)
	switch strings.ToLower(v) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}

// normalize pads rows to the header width
func (t *Table) normalize() {
	width := len(t.Header)
	for _, r := range t.Rows {
		// Extra cells without a header get synthetic names so no data is lost.
		for j := width; j < len(r); j++ {
			t.Header = append(t.Header, fmt.Sprintf("Unnamed: %d", j))
		}
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range t.Rows {
		for len(r) < width {
			r = append(r, "")
		}
		t.Rows[i] = r
	}
}

func insertAt(s []string, pos int, v string) []string {
	s = append(s, "")
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}
