package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/vukdaten/volksfeste/internal/event"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LinkColumn turns the http cells of a column into hyperlinks.
type LinkColumn struct {
	Column string
	// Label replaces the visible cell text; empty keeps the URL as text.
	Label string
}

// WriteOptions controls how a table is written to a workbook
type WriteOptions struct {
	SheetName      string
	Links          []LinkColumn
	NumericColumns []string
}

// IsLink reports whether a cell value is an absolute http(s) URL
func IsLink(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), "http")
}

// Read loads a .xlsx or .csv file. CSV input may be UTF-8 (with or without BOM)
// or Windows-1252/Latin-1, and may use ',' or ';' as separator.
func Read(path string) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		t, err = readCSV(path)
	default:
		t, err = readXLSX(path)
	}
	if err != nil {
		return nil, err
	}
	t.Path = path
	t.normalize()
	return t, nil
}

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, fmt.Errorf("no sheets found in %s", path)
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	t := &Table{Header: trimAll(rows[0]), Rows: rows[1:]}

	formatDateCells(t)

	// Cells shown as labelled buttons carry their URL as hyperlink target.
	for r, row := range t.Rows {
		for c, v := range row {
			if v == "" || IsLink(v) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				continue
			}
			ok, target, err := f.GetCellHyperLink(name, cell)
			if err == nil && ok && IsLink(target) {
				t.Rows[r][c] = target
			}
		}
	}

	return t, nil
}

// formatDateCells turns date cells, read raw as day serials, back into dd.mm.yyyy
func formatDateCells(t *Table) {
	for _, col := range []string{event.ColVon, event.ColBis} {
		c := t.Col(col)
		if c < 0 {
			continue
		}
		for _, row := range t.Rows {
			if c >= len(row) {
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64); err != nil {
				continue
			}
			if d := event.ParseDate(row[c]); !d.IsZero() {
				row[c] = event.FormatDate(d)
			}
		}
	}
}

func readCSV(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = detectSeparator(text)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	return &Table{Header: trimAll(records[0]), Rows: records[1:]}, nil
}

// decodeText returns data as UTF-8, falling back to Windows-1252 for legacy exports
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func detectSeparator(text string) rune {
	first := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}

// Save writes the table to path; .csv files get UTF-8 with BOM, everything else xlsx.
// The file is written to a temporary name first and renamed into place.
func (t *Table) Save(path string, opts WriteOptions) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = t.WriteCSV(f, true)
	default:
		err = t.WriteXLSX(f, opts)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the table as comma separated values
func (t *Table) WriteCSV(w io.Writer, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes the table as a single-sheet workbook
func (t *Table) WriteXLSX(w io.Writer, opts WriteOptions) error {
	f, err := t.workbook(opts)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

func (t *Table) workbook(opts WriteOptions) (*excelize.File, error) {
	name := opts.SheetName
	if name == "" {
		name = DefaultSheetName
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0000EE", Underline: "single"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating link style: %w", err)
	}

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}

	numeric := make(map[int]bool)
	for _, col := range opts.NumericColumns {
		if c := t.Col(col); c >= 0 {
			numeric[c] = true
		}
	}
	links := make(map[int]LinkColumn)
	for _, lc := range opts.Links {
		if c := t.Col(lc.Column); c >= 0 {
			links[c] = lc
		}
	}

	for r, row := range t.Rows {
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = cellValue(v, numeric[c])
		}

		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(name, start, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", r+2, err)
		}

		for c, lc := range links {
			if c >= len(row) || !IsLink(row[c]) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			url := strings.TrimSpace(row[c])
			if err := f.SetCellHyperLink(name, cell, url, "External"); err != nil {
				f.Close()
				return nil, fmt.Errorf("linking %s: %w", cell, err)
			}
			if lc.Label != "" {
				if err := f.SetCellStr(name, cell, lc.Label); err != nil {
					f.Close()
					return nil, err
				}
			}
			if err := f.SetCellStyle(name, cell, cell, linkStyle); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

func cellValue(v string, numeric bool) interface{} {
	if v == "" {
		return nil
	}
	if numeric {
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return n
		}
	}
	return v
}

func trimAll(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
