package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/vukdaten/volksfeste/internal/event"
)

// Query parameter names used by the dashboard
const (
	ParamState     = "bundesland"
	ParamMonth     = "monat"
	ParamFrom      = "ab"
	ParamSearch    = "q"
	ParamSelection = "sel"
)

// ParseQuery reads a filter from URL query values. Missing values keep the
// defaults of New. The date accepts "02.01.2006" and "2006-01-02".
func ParseQuery(values url.Values) (*Filter, error) {
	f := New()

	if v := strings.TrimSpace(values.Get(ParamState)); v != "" {
		f.State = v
	}

	if v := strings.TrimSpace(values.Get(ParamMonth)); v != "" && v != All {
		month := event.NormalizeMonth(v)
		if !isMonth(month) {
			return nil, fmt.Errorf("invalid month: %s", v)
		}
		f.Month = month
	}

	if v := strings.TrimSpace(values.Get(ParamFrom)); v != "" {
		from := event.ParseDate(v)
		if from.IsZero() {
			return nil, fmt.Errorf("invalid date: %s", v)
		}
		f.From = from
	}

	f.Search = strings.TrimSpace(values.Get(ParamSearch))

	return f, nil
}

// Values encodes the filter as URL query values, the inverse of ParseQuery.
func (f *Filter) Values() url.Values {
	v := url.Values{}
	if !isAll(f.State) {
		v.Set(ParamState, f.State)
	}
	if !isAll(f.Month) {
		v.Set(ParamMonth, f.Month)
	}
	if !f.From.IsZero() {
		v.Set(ParamFrom, f.From.Format("2006-01-02"))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set(ParamSearch, s)
	}
	return v
}

// ParseSelection returns the sorted, distinct entry ids of the "sel" values.
// Values may repeat the parameter or be comma separated.
func ParseSelection(values url.Values) ([]int, error) {
	seen := make(map[int]bool)
	var ids []int

	for _, raw := range values[ParamSelection] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil || id < 0 {
				return nil, fmt.Errorf("invalid selection: %s", part)
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	sort.Ints(ids)
	return ids, nil
}

// Select keeps the entries whose id is in ids; no ids keeps all.
func Select(entries []*event.Entry, ids []int) []*event.Entry {
	if len(ids) == 0 {
		return entries
	}

	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	selected := make([]*event.Entry, 0, len(ids))
	for _, e := range entries {
		if want[e.ID] {
			selected = append(selected, e)
		}
	}
	return selected
}

func isMonth(name string) bool {
	for _, m := range event.Months {
		if m == name {
			return true
		}
	}
	return false
}
