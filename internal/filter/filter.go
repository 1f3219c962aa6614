// Package filter narrows the dashboard's event list.
//
// A Filter combines up to four criteria, all of which must hold:
//   - Bundesland: exact match unless "Alle"
//   - Monat: exact match unless "Alle"
//   - From: the event starts on or after this date
//   - Search: case-insensitive substring of Veranstaltung or Ort
//
// Example usage:
//
//	f := filter.New()
//	f.State = "Bayern"
//	f.From = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
//	visible := f.Apply(entries)
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vukdaten/volksfeste/internal/event"
)

// All disables the Bundesland or Monat criterion
const All = "Alle"

// Filter represents event filtering criteria
type Filter struct {
	State  string    `json:"bundesland"`
	Month  string    `json:"monat"`
	From   time.Time `json:"ab"`
	Search string    `json:"suche,omitempty"`
}

// New creates a filter that matches every event
func New() *Filter {
	return &Filter{State: All, Month: All}
}

func isAll(v string) bool {
	return v == "" || v == All
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return isAll(f.State) &&
		isAll(f.Month) &&
		f.From.IsZero() &&
		strings.TrimSpace(f.Search) == ""
}

// Matches checks if an entry passes all active criteria. With a From date
// set, entries without a start date never match.
func (f *Filter) Matches(e *event.Entry) bool {
	if !isAll(f.State) && e.State != f.State {
		return false
	}

	if !isAll(f.Month) && e.Month != f.Month {
		return false
	}

	if !f.From.IsZero() {
		if e.Start.IsZero() || e.Start.Before(f.From) {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(e.Title), q) && !strings.Contains(strings.ToLower(e.Place), q) {
			return false
		}
	}

	return true
}

// Apply returns the matching entries in their original order.
func (f *Filter) Apply(entries []*event.Entry) []*event.Entry {
	filtered := make([]*event.Entry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// String returns a human-readable description of the active criteria.
// Format: "Bundesland: Bayern | Monat: Mai | ab 01.05.2025 | Suche: kirmes"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "Keine Filter aktiv"
	}

	var parts []string
	if !isAll(f.State) {
		parts = append(parts, fmt.Sprintf("Bundesland: %s", f.State))
	}
	if !isAll(f.Month) {
		parts = append(parts, fmt.Sprintf("Monat: %s", f.Month))
	}
	if !f.From.IsZero() {
		parts = append(parts, fmt.Sprintf("ab %s", event.FormatDate(f.From)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		parts = append(parts, fmt.Sprintf("Suche: %s", s))
	}

	return strings.Join(parts, " | ")
}

// Clone creates a copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := *f
	return &clone
}

// WithoutSearch returns a copy without the search text. The map shows all
// events of the other criteria while the table narrows down further.
func (f *Filter) WithoutSearch() *Filter {
	clone := f.Clone()
	clone.Search = ""
	return clone
}

// DateBounds returns the earliest start and the latest end date of entries.
// An entry without end date contributes its start.
func DateBounds(entries []*event.Entry) (first, last time.Time) {
	for _, e := range entries {
		if !e.Start.IsZero() && (first.IsZero() || e.Start.Before(first)) {
			first = e.Start
		}
		end := e.End
		if end.IsZero() {
			end = e.Start
		}
		if !end.IsZero() && end.After(last) {
			last = end
		}
	}
	return first, last
}

// States returns the distinct Bundesland values of entries, sorted
func States(entries []*event.Entry) []string {
	seen := make(map[string]bool)
	var states []string
	for _, e := range entries {
		if e.State == "" || seen[e.State] {
			continue
		}
		seen[e.State] = true
		states = append(states, e.State)
	}
	sort.Strings(states)
	return states
}

// MonthGroup is one tab of the event table
type MonthGroup struct {
	Month   string
	Entries []*event.Entry
}

// GroupByMonth splits entries into calendar-ordered month groups, each
// sorted by start date. Months without entries are left out.
func GroupByMonth(entries []*event.Entry) []MonthGroup {
	byMonth := make(map[string][]*event.Entry)
	for _, e := range entries {
		byMonth[e.Month] = append(byMonth[e.Month], e)
	}

	var groups []MonthGroup
	for _, m := range event.Months {
		list := byMonth[m]
		if len(list) == 0 {
			continue
		}
		sorted := append([]*event.Entry(nil), list...)
		event.SortByStart(sorted)
		groups = append(groups, MonthGroup{Month: m, Entries: sorted})
	}
	return groups
}
