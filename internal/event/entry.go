package event

import (
	"sort"
	"strings"
	"time"
)

// Entry is a geocoded event as shown on the dashboard map and table
type Entry struct {
	ID             int       `json:"id"` // row position in the source sheet
	Title          string    `json:"veranstaltung"`
	Place          string    `json:"ort"`
	PLZ            string    `json:"plz,omitempty"`
	State          string    `json:"bundesland,omitempty"`
	Month          string    `json:"monat"`
	Start          time.Time `json:"von"`
	End            time.Time `json:"bis"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DetailLink     string    `json:"detail_link,omitempty"`
	InfoLink       string    `json:"info_link,omitempty"`
	NavigationLink string    `json:"navigation_link,omitempty"`
}

// SortByStart sorts entries by start date. Entries without a date go last,
// ordered by title.
func SortByStart(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return compareByStart(entries[i], entries[j])
	})
}

// compareByStart reports whether entry i should come before entry j
func compareByStart(i, j *Entry) bool {
	if !i.Start.IsZero() && !j.Start.IsZero() {
		if !i.Start.Equal(j.Start) {
			return i.Start.Before(j.Start)
		}
		return strings.ToLower(i.Title) < strings.ToLower(j.Title)
	}

	// If only one date is valid, put the valid one first
	if !i.Start.IsZero() {
		return true
	}
	if !j.Start.IsZero() {
		return false
	}

	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}
