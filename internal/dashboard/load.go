package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

// DefaultInput is the sheet written by the geocoding step
const DefaultInput = "volksfeste_mit_koordinaten.xlsx"

// Load reads the event sheet and returns the rows that have coordinates.
// Monat is derived from Von when the column is empty or missing.
func Load(path string) ([]*event.Entry, error) {
	t, err := sheet.Read(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := t.Require(event.ColVeranstaltung, event.ColOrt, event.ColLatitude, event.ColLongitude); err != nil {
		return nil, err
	}

	entries := Entries(t)
	logger.Info("Dashboard data loaded", logger.Fields{
		"file":    path,
		"rows":    t.Len(),
		"entries": len(entries),
	})
	return entries, nil
}

// Entries converts table rows into entries, dropping rows without coordinates.
// The entry ID is the row position.
func Entries(t *sheet.Table) []*event.Entry {
	var entries []*event.Entry
	for i := range t.Rows {
		lat, okLat := parseCoordinate(t.Get(i, event.ColLatitude))
		lon, okLon := parseCoordinate(t.Get(i, event.ColLongitude))
		if !okLat || !okLon {
			continue
		}

		e := &event.Entry{
			ID:             i,
			Title:          t.Get(i, event.ColVeranstaltung),
			Place:          t.Get(i, event.ColOrt),
			PLZ:            t.Get(i, event.ColPLZ),
			State:          t.Get(i, event.ColBundesland),
			Start:          event.ParseDate(t.Get(i, event.ColVon)),
			End:            event.ParseDate(t.Get(i, event.ColBis)),
			Latitude:       lat,
			Longitude:      lon,
			DetailLink:     t.Get(i, event.ColDetailLink),
			InfoLink:       t.Get(i, event.ColWeitereInfo),
			NavigationLink: t.Get(i, event.ColNavigationLink),
		}
		if t.IsBlank(i, event.ColBundesland) {
			e.State = ""
		}

		e.Month = event.NormalizeMonth(t.Get(i, event.ColMonat))
		if t.IsBlank(i, event.ColMonat) {
			e.Month = event.MonthName(e.Start)
		}

		entries = append(entries, e)
	}
	return entries
}

// parseCoordinate accepts a decimal point or a decimal comma
func parseCoordinate(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
