package event

import (
	"strings"
	"time"
)

// Spreadsheet column names. They are the file contract between the tools and stay German.
const (
	ColPLZ            = "PLZ"
	ColOrt            = "Ort"
	ColVeranstaltung  = "Veranstaltung"
	ColVon            = "Von"
	ColBis            = "Bis"
	ColDetailLink     = "Detail_Link"
	ColLink           = "Link"
	ColStadt          = "Stadt"
	ColBundesland     = "Bundesland"
	ColAnschrift      = "Anschrift"
	ColNavigationLink = "Navigation_Link"
	ColParken         = "Parkmöglichkeiten"
	ColBericht        = "Nachricht/Bericht"
	ColBildmaterial   = "Bildmaterial"
	ColBesucher       = "Besucher"
	ColGeschaefte     = "Geschäfte"
	ColWeitereInfo    = "Weitere_Info_Link"
	ColNavigationEcht = "Navigation_Echt"
	ColLatitude       = "Latitude"
	ColLongitude      = "Longitude"
	ColMonat          = "Monat"
)

// ListingColumns are the fields read from the event calendar page, in output order.
var ListingColumns = []string{ColPLZ, ColOrt, ColVeranstaltung, ColVon, ColBis, ColDetailLink}

// DetailColumns are the fields read from a detail page, in output order.
var DetailColumns = []string{
	ColBundesland,
	ColAnschrift,
	ColNavigationLink,
	ColParken,
	ColBericht,
	ColBildmaterial,
	ColBesucher,
	ColGeschaefte,
	ColWeitereInfo,
}

// Record is one row of the event calendar. It has no identity beyond its row position.
type Record struct {
	PLZ           string            `json:"plz"`
	Ort           string            `json:"ort"`
	Veranstaltung string            `json:"veranstaltung"`
	Von           string            `json:"von"`
	Bis           string            `json:"bis"`
	DetailLink    string            `json:"detail_link"`
	Details       map[string]string `json:"details,omitempty"`
}

// NewRecord creates a Record with an empty detail map
func NewRecord(plz, ort, title, von, bis, detailLink string) *Record {
	return &Record{
		PLZ:           strings.TrimSpace(plz),
		Ort:           strings.TrimSpace(ort),
		Veranstaltung: strings.TrimSpace(title),
		Von:           von,
		Bis:           bis,
		DetailLink:    detailLink,
		Details:       make(map[string]string),
	}
}

// Merge copies detail fields into the record. Later values replace earlier ones.
func (r *Record) Merge(details map[string]string) {
	if r.Details == nil {
		r.Details = make(map[string]string, len(details))
	}
	for k, v := range details {
		r.Details[k] = v
	}
}

// Value returns the value of a named column
func (r *Record) Value(column string) string {
	switch column {
	case ColPLZ:
		return r.PLZ
	case ColOrt:
		return r.Ort
	case ColVeranstaltung:
		return r.Veranstaltung
	case ColVon:
		return r.Von
	case ColBis:
		return r.Bis
	case ColDetailLink:
		return r.DetailLink
	}
	return r.Details[column]
}

// Row renders the record as spreadsheet cells in column order
func (r *Record) Row(columns []string) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = r.Value(col)
	}
	return row
}

// Start returns the parsed start date, or the zero time
func (r *Record) Start() time.Time {
	return ParseDate(r.Von)
}

// End returns the parsed end date, or the zero time
func (r *Record) End() time.Time {
	return ParseDate(r.Bis)
}
