package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/vukdaten/volksfeste/internal/event"
)

var stamp = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateICS(t *testing.T) {
	entries := []*event.Entry{
		{
			Title:     "Altstadtfest",
			Place:     "Amberg",
			PLZ:       "92224",
			State:     "Bayern",
			Start:     day(time.August, 1),
			End:       day(time.August, 3),
			Latitude:  49.4447,
			Longitude: 11.8583,
			InfoLink:  "https://altstadtfest-amberg.de",
		},
	}

	ics := GenerateICS(entries, "Volksfeste August", stamp)

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Volksfeste//volksfeste//DE",
		"X-WR-CALNAME:Volksfeste August",
		"BEGIN:VEVENT",
		"DTSTAMP:20250401T120000Z",
		"DTSTART;VALUE=DATE:20250801",
		"DTEND;VALUE=DATE:20250804", // exclusive end
		"SUMMARY:Altstadtfest",
		"DESCRIPTION:01.08.2025 - 03.08.2025\\nBayern",
		"LOCATION:92224 Amberg",
		"GEO:49.444700;11.858300",
		"URL:https://altstadtfest-amberg.de",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	if !strings.HasSuffix(ics, "\r\n") {
		t.Error("ICS should end with \\r\\n")
	}
	for _, line := range strings.Split(strings.TrimSuffix(ics, "\n"), "\n") {
		if !strings.HasSuffix(line, "\r") {
			t.Errorf("line %q should end with \\r\\n", line)
		}
	}
}

func TestGenerateICS_SingleDay(t *testing.T) {
	entries := []*event.Entry{{Title: "Maibaumfest", Place: "Dachau", Start: day(time.May, 1)}}

	ics := GenerateICS(entries, "", stamp)

	if !strings.Contains(ics, "DTSTART;VALUE=DATE:20250501") || !strings.Contains(ics, "DTEND;VALUE=DATE:20250502") {
		t.Errorf("single-day event should end the next day:\n%s", ics)
	}
	if strings.Contains(ics, "X-WR-CALNAME:") {
		t.Error("Should not include X-WR-CALNAME when name is empty")
	}
	if strings.Contains(ics, "GEO:") {
		t.Error("Should not include GEO without coordinates")
	}
}

func TestGenerateICS_SkipsUndated(t *testing.T) {
	entries := []*event.Entry{
		{Title: "Event 1", Start: day(time.March, 15)},
		{Title: "ohne Datum"},
		{Title: "Event 2", Start: day(time.April, 20), End: day(time.April, 21)},
	}

	ics := GenerateICS(entries, "Test", stamp)

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("Expected 2 BEGIN:VEVENT, got %d", got)
	}
	if strings.Contains(ics, "ohne Datum") {
		t.Error("undated entry should be left out")
	}
}

func TestGenerateICS_Empty(t *testing.T) {
	if ics := GenerateICS(nil, "Test Calendar", stamp); ics != "" {
		t.Error("Empty entries should return empty string")
	}
	if ics := GenerateICS([]*event.Entry{{Title: "x"}}, "Test Calendar", stamp); ics != "" {
		t.Error("Only undated entries should return empty string")
	}
}

func TestGenerateICS_StableUID(t *testing.T) {
	a := &event.Entry{ID: 1, Title: "Kirmes", Place: "Köln", Start: day(time.June, 7)}
	b := &event.Entry{ID: 9, Title: "Kirmes", Place: "Köln", Start: day(time.June, 7)}
	c := &event.Entry{ID: 1, Title: "Kirmes", Place: "Bonn", Start: day(time.June, 7)}

	if uid(a) != uid(b) {
		t.Error("uid should not depend on the row position")
	}
	if uid(a) == uid(c) {
		t.Error("different places should get different uids")
	}
}

func TestGenerateICS_SpecialCharacters(t *testing.T) {
	entries := []*event.Entry{{Title: "Fest; mit, Sonderzeichen", Start: day(time.July, 4)}}

	ics := GenerateICS(entries, "", stamp)

	if !strings.Contains(ics, "SUMMARY:Fest\\; mit\\, Sonderzeichen") {
		t.Error("Special characters should be escaped in SUMMARY")
	}
}

func TestFormatICSTime(t *testing.T) {
	testTime := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	formatted := formatICSTime(testTime)

	expected := "20260315T143000Z"
	if formatted != expected {
		t.Errorf("formatICSTime() = %q, want %q", formatted, expected)
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text with, comma", "Text with\\, comma"},
		{"Text with; semicolon", "Text with\\; semicolon"},
		{"Text with\\backslash", "Text with\\\\backslash"},
		{"Text with\nnewline", "Text with\\nnewline"},
		{"All, special; chars\\\n", "All\\, special\\; chars\\\\\\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeICS(tt.input)
			if got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
