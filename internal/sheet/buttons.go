package sheet

import (
	"fmt"

	"github.com/vukdaten/volksfeste/internal/event"
)

// Default button settings for the link-to-button converter
const (
	DefaultButtonColumn = event.ColWeitereInfo
	DefaultButtonLabel  = "🌐 Website"
	MapsButtonLabel     = "🗺️ Maps"
)

// CountLinks returns the number of http cells in a column
func (t *Table) CountLinks(column string) int {
	c := t.Col(column)
	if c < 0 {
		return 0
	}
	n := 0
	for _, row := range t.Rows {
		if IsLink(row[c]) {
			n++
		}
	}
	return n
}

// KeepButtons returns the link settings that keep a sheet's resolved
// Navigation_Echt cells as Maps buttons when it is written again.
func (t *Table) KeepButtons() []LinkColumn {
	if !t.Has(event.ColNavigationEcht) {
		return nil
	}
	return []LinkColumn{{Column: event.ColNavigationEcht, Label: MapsButtonLabel}}
}

// Buttonize reads in, rewrites every http cell of column into a hyperlink
// showing label, and writes the workbook to out. It returns the number of links.
func Buttonize(in, out, column, label string) (int, error) {
	if column == "" {
		column = DefaultButtonColumn
	}
	if label == "" {
		label = DefaultButtonLabel
	}

	t, err := Read(in)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", in, err)
	}
	if err := t.Require(column); err != nil {
		return 0, err
	}

	opts := WriteOptions{
		SheetName:      DefaultSheetName,
		Links:          []LinkColumn{{Column: column, Label: label}},
		NumericColumns: []string{event.ColLatitude, event.ColLongitude},
	}
	if column != event.ColNavigationEcht {
		opts.Links = append(opts.Links, t.KeepButtons()...)
	}
	if err := t.Save(out, opts); err != nil {
		return 0, err
	}
	return t.CountLinks(column), nil
}
