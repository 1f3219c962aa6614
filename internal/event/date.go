package event

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// excelEpoch is day zero of spreadsheet serial dates
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Months lists the German month names in calendar order.
var Months = []string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// ParseDate attempts to parse a date cell into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Supports formats: "24.08.2025", "4.8.2025", "2025-08-24", "2025-08-24 00:00:00"
// and spreadsheet serial day numbers such as "45893".
func ParseDate(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}
	}

	layouts := []string{
		"02.01.2006",
		"2.1.2006",
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}

	// Serial day numbers, as stored when a date cell is read raw
	if serial, err := strconv.ParseFloat(text, 64); err == nil {
		if serial >= 1 && serial < 2958466 {
			return excelEpoch.AddDate(0, 0, int(serial))
		}
	}

	return time.Time{}
}

// FormatDate renders a date as dd.mm.yyyy, or "" for the zero time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

// MonthName returns the German month name of t, or "" for the zero time
func MonthName(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Months[t.Month()-1]
}

// NormalizeMonth capitalises a month cell the way it is displayed ("märz" → "März").
func NormalizeMonth(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
