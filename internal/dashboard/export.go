package dashboard

import (
	"bytes"
	"fmt"
	"mime"
	"time"

	"github.com/vukdaten/volksfeste/internal/calendar"
	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/filter"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

type exportFormat string

const (
	formatCSV  exportFormat = "csv"
	formatXLSX exportFormat = "xlsx"
	formatICS  exportFormat = "ics"
)

// ExportColumns are the columns of a CSV or Excel export
var ExportColumns = []string{event.ColVeranstaltung, event.ColOrt, event.ColVon, event.ColBis}

var contentTypes = map[exportFormat]string{
	formatCSV:  "text/csv; charset=utf-8",
	formatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	formatICS:  "text/calendar; charset=utf-8",
}

// ExportTable builds the export sheet: entries sorted by Von, dates as dd.mm.yyyy.
func ExportTable(entries []*event.Entry) *sheet.Table {
	sorted := append([]*event.Entry(nil), entries...)
	event.SortByStart(sorted)

	t := sheet.New(ExportColumns...)
	for _, e := range sorted {
		t.Rows = append(t.Rows, []string{
			e.Title,
			e.Place,
			event.FormatDate(e.Start),
			event.FormatDate(e.End),
		})
	}
	return t
}

// ExportName returns the download file name, e.g. "Volksfeste_Mai.csv"
func ExportName(month string, format exportFormat) string {
	if month == "" {
		month = filter.All
	}
	return fmt.Sprintf("Volksfeste_%s.%s", month, format)
}

// contentDisposition encodes non-ASCII month names per RFC 2231
func contentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

func render(entries []*event.Entry, month string, format exportFormat, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case formatCSV:
		if err := ExportTable(entries).WriteCSV(&buf, false); err != nil {
			return nil, fmt.Errorf("writing csv: %w", err)
		}
	case formatXLSX:
		if err := ExportTable(entries).WriteXLSX(&buf, sheet.WriteOptions{}); err != nil {
			return nil, fmt.Errorf("writing xlsx: %w", err)
		}
	case formatICS:
		sorted := append([]*event.Entry(nil), entries...)
		event.SortByStart(sorted)
		buf.WriteString(calendar.GenerateICS(sorted, "Volksfeste "+month, now))
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}

	return buf.Bytes(), nil
}
